package wire

import (
	"bytes"
	"testing"
)

func TestRecordRoundTrip(t *testing.T) {
	payloads := [][]byte{
		nil,
		{},
		[]byte("x"),
		bytes.Repeat([]byte{0xAB}, 4096),
	}
	for _, p := range payloads {
		enc := EncodeRecord(p)
		got, err := DecodeRecord(enc)
		if err != nil {
			t.Fatalf("DecodeRecord(%d bytes): %v", len(p), err)
		}
		if !bytes.Equal(got, p) {
			t.Fatalf("round trip mismatch: got %d bytes want %d", len(got), len(p))
		}
	}
}

func TestDecodeRejectsCorrupt(t *testing.T) {
	cases := map[string][]byte{
		"empty":       {},
		"short":       {'M', 'I'},
		"wrong magic": []byte("XXXX\x01\x00\x00\x00\x00"),
		"wrong ver":   []byte("MIRC\x09\x00\x00\x00\x00"),
		"truncated":   EncodeRecord([]byte("hello"))[:8],
		"length lies": append([]byte("MIRC\x01\xff\xff\xff\xff"), 'x'),
	}
	for name, b := range cases {
		if _, err := DecodeRecord(b); err != ErrCorrupt {
			t.Fatalf("%s: expected ErrCorrupt, got %v", name, err)
		}
	}
}

func TestDecodeIgnoresTrailingBytes(t *testing.T) {
	enc := append(EncodeRecord([]byte("abc")), 0x00, 0x00)
	got, err := DecodeRecord(enc)
	if err != nil {
		t.Fatalf("DecodeRecord: %v", err)
	}
	if string(got) != "abc" {
		t.Fatalf("got %q", got)
	}
}
