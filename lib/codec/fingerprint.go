// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// FingerprintSize is the length of a fingerprint in bytes.
const FingerprintSize = 32

// Fingerprint identifies an encoded value within one domain.
type Fingerprint [FingerprintSize]byte

// String returns the lowercase hex form.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// domainKey pads an ASCII domain name to a BLAKE3 key. Distinct domains
// never share a fingerprint for the same bytes.
func domainKey(domain string) []byte {
	if len(domain) == 0 || len(domain) > FingerprintSize {
		panic(fmt.Sprintf("codec: fingerprint domain %q must be 1-%d bytes", domain, FingerprintSize))
	}
	key := make([]byte, FingerprintSize)
	copy(key, domain)
	return key
}

// FingerprintBytes returns the keyed BLAKE3 hash of data in domain.
func FingerprintBytes(domain string, data []byte) Fingerprint {
	hasher, err := blake3.NewKeyed(domainKey(domain))
	if err != nil {
		// Only reachable with a key of the wrong length.
		panic("codec: blake3.NewKeyed: " + err.Error())
	}
	hasher.Write(data)
	var f Fingerprint
	copy(f[:], hasher.Sum(nil))
	return f
}

// FingerprintValue encodes v deterministically and fingerprints the
// encoding.
func FingerprintValue(domain string, v any) (Fingerprint, error) {
	data, err := Marshal(v)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("encoding %s fingerprint input: %w", domain, err)
	}
	return FingerprintBytes(domain, data), nil
}
