// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
)

type sampleRecord struct {
	Unit    string `cbor:"unit"`
	Source  string `cbor:"source,omitempty"`
	Restart int    `cbor:"restart"`
}

type sampleDual struct {
	Version int    `json:"version"`
	Name    string `json:"name"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	t.Parallel()
	original := sampleRecord{Unit: "seed-node", Source: "node", Restart: 30}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded sampleRecord
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != original {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestMarshalMapKeyOrderIsDeterministic(t *testing.T) {
	t.Parallel()
	// Go randomizes map iteration; the encoding must not depend on it.
	value := map[string]any{
		"node.listen":   []any{"0.0.0.0:8776"},
		"node.log":      "INFO",
		"node.relay":    "auto",
		"web.listen":    "127.0.0.1:8080",
		"node.alias":    "seed",
		"preferredSeed": []any{},
	}
	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for range 20 {
		again, err := Marshal(value)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("encoding changed between calls: %x != %x", first, again)
		}
	}
}

func TestEncoderDecoderStream(t *testing.T) {
	t.Parallel()
	records := []sampleRecord{
		{Unit: "seed-node", Restart: 30},
		{Unit: "seed-httpd", Source: "httpd", Restart: 10},
	}

	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for _, record := range records {
		if err := encoder.Encode(record); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}
	decoder := NewDecoder(&buffer)
	for i, want := range records {
		var got sampleRecord
		if err := decoder.Decode(&got); err != nil {
			t.Fatalf("Decode record %d: %v", i, err)
		}
		if got != want {
			t.Errorf("record %d: got %+v, want %+v", i, got, want)
		}
	}
}

func TestJSONTagFallback(t *testing.T) {
	t.Parallel()
	original := sampleDual{Version: 3, Name: "settings"}
	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(notation, `"version"`) {
		t.Errorf("json tag name not used as key: %s", notation)
	}
	var decoded sampleDual
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != original {
		t.Errorf("got %+v, want %+v", decoded, original)
	}
}

func TestUnmarshalAnyProducesStringMaps(t *testing.T) {
	t.Parallel()
	data, err := Marshal(map[string]any{"node": map[string]any{"log": "INFO"}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	top, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded %T, want map[string]any", decoded)
	}
	if _, ok := top["node"].(map[string]any); !ok {
		t.Errorf("nested value is %T, want map[string]any", top["node"])
	}
}

func TestUnmarshalInvalidCBOR(t *testing.T) {
	t.Parallel()
	var record sampleRecord
	if err := Unmarshal([]byte{0xFF, 0xFE, 0xFD}, &record); err == nil {
		t.Error("Unmarshal should reject invalid CBOR")
	}
}

func TestFingerprintDomainSeparation(t *testing.T) {
	t.Parallel()
	data := []byte("same bytes")
	a := FingerprintBytes("seedhost.a", data)
	b := FingerprintBytes("seedhost.b", data)
	if a == b {
		t.Error("different domains produced the same fingerprint")
	}
	if again := FingerprintBytes("seedhost.a", data); again != a {
		t.Error("fingerprint is not stable")
	}
	if len(a.String()) != 2*FingerprintSize {
		t.Errorf("String() length = %d, want %d", len(a.String()), 2*FingerprintSize)
	}
}

func TestFingerprintValueIgnoresMapOrder(t *testing.T) {
	t.Parallel()
	first := map[string]string{"a": "1", "b": "2", "c": "3"}
	second := map[string]string{"c": "3", "b": "2", "a": "1"}
	x, err := FingerprintValue("seedhost.test", first)
	if err != nil {
		t.Fatal(err)
	}
	y, err := FingerprintValue("seedhost.test", second)
	if err != nil {
		t.Fatal(err)
	}
	if x != y {
		t.Errorf("equal maps fingerprinted differently: %s vs %s", x, y)
	}
	z, err := FingerprintValue("seedhost.test", map[string]string{"a": "1"})
	if err != nil {
		t.Fatal(err)
	}
	if z == x {
		t.Error("different values produced the same fingerprint")
	}
}

func TestFingerprintDomainTooLongPanics(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Error("expected panic for oversized domain")
		}
	}()
	FingerprintBytes(strings.Repeat("x", FingerprintSize+1), nil)
}
