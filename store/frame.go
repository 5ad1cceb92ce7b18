package store

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// A record is framed as
//
//	encoding (1 byte) | xxhash64 of payload (8 bytes, big endian) | payload
const frameHeaderSize = 1 + 8

func appendFrame(buf []byte, enc Encoding, payload []byte) []byte {
	buf = append(buf, byte(enc))
	buf = binary.BigEndian.AppendUint64(buf, xxhash.Sum64(payload))
	return append(buf, payload...)
}

func parseFrame(rec []byte) (Encoding, []byte, error) {
	if len(rec) < frameHeaderSize {
		return 0, nil, dataErrf(rec, 0, ErrCorrupted, "short record")
	}
	enc := Encoding(rec[0])
	if enc != MsgPack && enc != CBOR {
		return 0, nil, dataErrf(rec, 0, ErrCorrupted, "unknown encoding %d", rec[0])
	}
	payload := rec[frameHeaderSize:]
	if sum := binary.BigEndian.Uint64(rec[1:frameHeaderSize]); sum != xxhash.Sum64(payload) {
		return 0, nil, dataErrf(rec, 1, ErrCorrupted, "checksum mismatch")
	}
	return enc, payload, nil
}
