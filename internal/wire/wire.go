// Package wire frames durable records so hydration can tell foreign or
// corrupt bytes apart from records written by this module.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const version byte = 1

var (
	ErrCorrupt = errors.New("mirrorcache: corrupt record")
	magic4     = [...]byte{'M', 'I', 'R', 'C'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Record: magic(4) | ver(1) | vlen(u32 be) | payload(vlen)
func EncodeRecord(payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(4 + 1 + 4 + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

func DecodeRecord(b []byte) ([]byte, error) {
	const hdr = 4 + 1 + 4
	if len(b) < hdr || !hasMagic(b) || b[4] != version {
		return nil, ErrCorrupt
	}

	off := 5
	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen > len(b)-off { // overflow-safe bound check
		return nil, ErrCorrupt
	}

	return b[off : off+vlen], nil
}
