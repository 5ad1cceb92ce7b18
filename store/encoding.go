package store

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"

	ineld "github.com/inesonic/ineld-sub009"
)

// Encoding selects how snapshots are serialized. The encoding is recorded
// in every record, so a store reads records of either kind.
type Encoding byte

const (
	MsgPack Encoding = iota + 1
	CBOR

	defaultEncoding = MsgPack
)

func (enc Encoding) String() string {
	switch enc {
	case MsgPack:
		return "msgpack"
	case CBOR:
		return "cbor"
	}
	return fmt.Sprintf("Encoding(%d)", byte(enc))
}

var (
	cborEnc = mustEncMode(cbor.CoreDetEncOptions())
	cborDec = mustDecMode(cbor.DecOptions{})
)

func mustEncMode(opts cbor.EncOptions) cbor.EncMode {
	m, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	return m
}

func mustDecMode(opts cbor.DecOptions) cbor.DecMode {
	m, err := opts.DecMode()
	if err != nil {
		panic(err)
	}
	return m
}

// Marshal encodes a snapshot.
func (enc Encoding) Marshal(s *ineld.Snapshot) ([]byte, error) {
	switch enc {
	case MsgPack:
		var buf bytes.Buffer
		e := msgpack.GetEncoder()
		e.Reset(&buf)
		e.SetSortMapKeys(true)
		err := e.Encode(s)
		msgpack.PutEncoder(e)
		if err != nil {
			return nil, fmt.Errorf("failed to encode snapshot using MsgPack: %w", err)
		}
		return buf.Bytes(), nil
	case CBOR:
		data, err := cborEnc.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("failed to encode snapshot using CBOR: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("unsupported encoding %v", enc)
}

// Unmarshal decodes a snapshot.
func (enc Encoding) Unmarshal(data []byte) (*ineld.Snapshot, error) {
	var s ineld.Snapshot
	switch enc {
	case MsgPack:
		d := msgpack.GetDecoder()
		d.Reset(bytes.NewReader(data))
		err := d.Decode(&s)
		msgpack.PutDecoder(d)
		if err != nil {
			return nil, dataErrf(data, 0, err, "failed to decode msgpack snapshot")
		}
	case CBOR:
		if err := cborDec.Unmarshal(data, &s); err != nil {
			return nil, dataErrf(data, 0, err, "failed to decode cbor snapshot")
		}
	default:
		return nil, dataErrf(data, 0, ErrCorrupted, "unsupported encoding %v", enc)
	}
	return &s, nil
}
