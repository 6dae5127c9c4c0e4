// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package deploy

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies how a cache record's payload is compressed. The
// values are stored in records; changing them invalidates existing caches.
type Compression uint8

const (
	CompressionNone Compression = 0
	CompressionLZ4  Compression = 1
	CompressionZstd Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", c)
	}
}

// ParseCompression parses the cache.compression option.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd", "":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", name)
	}
}

// zstd.Encoder and zstd.Decoder are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("deploy: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("deploy: zstd decoder initialization failed: " + err.Error())
	}
}

// compress returns data compressed with c and the compression actually
// used. Data that does not shrink is stored uncompressed.
func compress(data []byte, c Compression) ([]byte, Compression, error) {
	switch c {
	case CompressionNone:
		return data, CompressionNone, nil
	case CompressionZstd:
		compressed := zstdEncoder.EncodeAll(data, nil)
		if len(compressed) >= len(data) {
			return data, CompressionNone, nil
		}
		return compressed, CompressionZstd, nil
	case CompressionLZ4:
		destination := make([]byte, lz4.CompressBlockBound(len(data)))
		written, err := lz4.CompressBlock(data, destination, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("lz4 compress: %w", err)
		}
		// Zero means lz4 judged the block incompressible.
		if written == 0 || written >= len(data) {
			return data, CompressionNone, nil
		}
		return destination[:written], CompressionLZ4, nil
	default:
		return nil, 0, fmt.Errorf("unsupported compression %s", c)
	}
}

// decompress reverses compress. size is the uncompressed length and is
// verified.
func decompress(data []byte, c Compression, size int) ([]byte, error) {
	var result []byte
	switch c {
	case CompressionNone:
		result = data
	case CompressionZstd:
		var err error
		result, err = zstdDecoder.DecodeAll(data, make([]byte, 0, size))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
	case CompressionLZ4:
		result = make([]byte, size)
		read, err := lz4.UncompressBlock(data, result)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		result = result[:read]
	default:
		return nil, fmt.Errorf("unsupported compression %s", c)
	}
	if len(result) != size {
		return nil, fmt.Errorf("%s decompress: got %d bytes, expected %d", c, len(result), size)
	}
	return result, nil
}
