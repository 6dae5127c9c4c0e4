// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package deploy

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/seedhost/seedhost/lib/binhash"
	"github.com/seedhost/seedhost/lib/codec"
	"github.com/seedhost/seedhost/lib/compile"
	"github.com/seedhost/seedhost/lib/config"
	"github.com/seedhost/seedhost/sandbox"
)

// cacheDomain separates evaluation keys from any other fingerprint.
const cacheDomain = "seedhost.deploy.evaluation"

// recordVersion is bumped whenever Record or the key input changes shape.
const recordVersion = 1

// recordExtension is the suffix of cache files.
const recordExtension = ".cbor"

// Record is a memoized checker verdict. Only accepted artifacts are
// recorded; a rejection always re-runs the checker so its diagnostic is
// fresh.
type Record struct {
	Key      string `cbor:"key"`
	Artifact []byte `cbor:"artifact"`
	Checked  bool   `cbor:"checked"`
	Checker  string `cbor:"checker"`
}

// envelope is the on-disk framing of a record.
type envelope struct {
	Version     int         `cbor:"version"`
	Compression Compression `cbor:"compression"`
	Size        int         `cbor:"size"`
	Payload     []byte      `cbor:"payload"`
}

// cacheInput is everything an evaluation's verdict depends on.
type cacheInput struct {
	Version   int                          `cbor:"version"`
	Options   *config.Config               `cbor:"options"`
	Fragments map[string]*sandbox.Fragment `cbor:"fragments"`
	Artifact  []byte                       `cbor:"artifact"`
	Checker   string                       `cbor:"checker"`
}

// cacheKey fingerprints the inputs of an evaluation.
func cacheKey(input cacheInput) (codec.Fingerprint, error) {
	input.Version = recordVersion
	return codec.FingerprintValue(cacheDomain, input)
}

// Cache stores records under a directory, sharded by the first byte of
// the key.
type Cache struct {
	Directory   string
	Compression Compression
	Logger      *slog.Logger
}

// NewCache returns the cache configured by the options, or nil when it
// is disabled.
func NewCache(cfg *config.Config, logger *slog.Logger) (*Cache, error) {
	if !cfg.Cache.Enable || cfg.Paths.Cache == "" {
		return nil, nil
	}
	compression, err := ParseCompression(cfg.Cache.Compression)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return &Cache{Directory: cfg.Paths.Cache, Compression: compression, Logger: logger}, nil
}

func (c *Cache) path(key codec.Fingerprint) string {
	name := key.String()
	return filepath.Join(c.Directory, name[:2], name+recordExtension)
}

// Load returns the record for key. A missing record is (nil, nil).
func (c *Cache) Load(key codec.Fingerprint) (*Record, error) {
	data, err := os.ReadFile(c.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache record: %w", err)
	}
	record, err := decodeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("cache record %s: %w", key, err)
	}
	if record.Key != key.String() {
		return nil, fmt.Errorf("cache record %s: holds key %s", key, record.Key)
	}
	return record, nil
}

// Store writes the record for key, replacing any previous one.
func (c *Cache) Store(key codec.Fingerprint, record *Record) error {
	record.Key = key.String()
	data, err := encodeRecord(record, c.Compression)
	if err != nil {
		return err
	}
	if err := compile.WriteFileAtomic(c.path(key), data, 0o644); err != nil {
		return fmt.Errorf("writing cache record: %w", err)
	}
	if c.Logger != nil {
		c.Logger.Debug("cached evaluation", "key", record.Key, "bytes", len(data))
	}
	return nil
}

// Keys lists the keys of every stored record.
func (c *Cache) Keys() ([]string, error) {
	var keys []string
	err := filepath.WalkDir(c.Directory, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == c.Directory {
				return filepath.SkipDir
			}
			return err
		}
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), recordExtension) {
			keys = append(keys, strings.TrimSuffix(entry.Name(), recordExtension))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing cache: %w", err)
	}
	return keys, nil
}

// Describe returns the CBOR diagnostic notation of a stored record.
func (c *Cache) Describe(key string) (string, error) {
	fingerprint, err := parseKey(key)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(c.path(fingerprint))
	if err != nil {
		return "", fmt.Errorf("reading cache record: %w", err)
	}
	payload, err := unwrap(data)
	if err != nil {
		return "", fmt.Errorf("cache record %s: %w", key, err)
	}
	return codec.Diagnose(payload)
}

// Clear removes every record.
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.Directory)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(c.Directory, entry.Name())); err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
	}
	return nil
}

func parseKey(key string) (codec.Fingerprint, error) {
	digest, err := binhash.ParseDigest(key)
	if err != nil {
		return codec.Fingerprint{}, fmt.Errorf("cache key %q: %w", key, err)
	}
	return codec.Fingerprint(digest), nil
}

func encodeRecord(record *Record, compression Compression) ([]byte, error) {
	payload, err := codec.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encoding cache record: %w", err)
	}
	compressed, used, err := compress(payload, compression)
	if err != nil {
		return nil, err
	}
	return codec.Marshal(envelope{
		Version:     recordVersion,
		Compression: used,
		Size:        len(payload),
		Payload:     compressed,
	})
}

func unwrap(data []byte) ([]byte, error) {
	var framed envelope
	if err := codec.Unmarshal(data, &framed); err != nil {
		return nil, fmt.Errorf("decoding envelope: %w", err)
	}
	if framed.Version != recordVersion {
		return nil, fmt.Errorf("record version %d, want %d", framed.Version, recordVersion)
	}
	return decompress(framed.Payload, framed.Compression, framed.Size)
}

func decodeRecord(data []byte) (*Record, error) {
	payload, err := unwrap(data)
	if err != nil {
		return nil, err
	}
	var record Record
	if err := codec.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	return &record, nil
}
