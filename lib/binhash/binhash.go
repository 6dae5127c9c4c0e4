// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Size is the length of a digest in bytes.
const Size = 32

// Digest is the BLAKE3-256 sum of a file.
type Digest [Size]byte

// String returns the lowercase hex form.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// HashReader hashes everything r yields.
func HashReader(r io.Reader) (Digest, error) {
	var digest Digest
	hasher := blake3.New()
	if _, err := io.Copy(hasher, r); err != nil {
		return digest, err
	}
	hasher.Sum(digest[:0])
	return digest, nil
}

// HashFile hashes the file at path. Memory use does not depend on the
// file size.
func HashFile(path string) (Digest, error) {
	file, err := os.Open(path)
	if err != nil {
		return Digest{}, fmt.Errorf("hashing %s: %w", path, err)
	}
	defer file.Close()

	digest, err := HashReader(file)
	if err != nil {
		return Digest{}, fmt.Errorf("hashing %s: %w", path, err)
	}
	return digest, nil
}

// ParseDigest is the inverse of [Digest.String].
func ParseDigest(text string) (Digest, error) {
	var digest Digest
	if len(text) != 2*Size {
		return digest, fmt.Errorf("digest %q: want %d hex characters, got %d", text, 2*Size, len(text))
	}
	if _, err := hex.Decode(digest[:], []byte(text)); err != nil {
		return digest, fmt.Errorf("digest %q: %w", text, err)
	}
	return digest, nil
}
