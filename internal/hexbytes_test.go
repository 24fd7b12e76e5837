package internal

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestHexBytesJSON(t *testing.T) {
	raw := []byte{0xde, 0xad, 0xbe, 0xef}
	hb := HexBytes(raw)

	enc, err := json.Marshal(hb)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(enc) != `"deadbeef"` {
		t.Fatalf("unexpected encoding: %s", enc)
	}

	var dec HexBytes
	if err := json.Unmarshal(enc, &dec); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !bytes.Equal(dec.Bytes(), raw) {
		t.Fatalf("roundtrip mismatch: got %x, want %x", dec.Bytes(), raw)
	}

	// with 0x prefix
	var dec2 HexBytes
	if err := json.Unmarshal([]byte(`"0xdeadbeef"`), &dec2); err != nil {
		t.Fatalf("unmarshal with prefix failed: %v", err)
	}
	if !bytes.Equal(dec2.Bytes(), raw) {
		t.Fatalf("prefixed roundtrip mismatch: got %x, want %x", dec2.Bytes(), raw)
	}

	if dec2.String() != "deadbeef" {
		t.Fatalf("unexpected string form: %s", dec2.String())
	}
}

func TestHexBytesJSONInvalid(t *testing.T) {
	for _, raw := range []string{`"not-hex"`, `42`, `"0xzz"`} {
		var hb HexBytes
		if err := json.Unmarshal([]byte(raw), &hb); err == nil {
			t.Fatalf("expected error unmarshaling %s", raw)
		}
	}
}
