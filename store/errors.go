package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that no snapshot is stored under the id.
	ErrNotFound = errors.New("document not found in store")

	// ErrCorrupted indicates a record whose frame or checksum is damaged.
	ErrCorrupted = errors.New("corrupted record")

	// ErrClosed indicates use of a closed store.
	ErrClosed = errors.New("store is closed")
)

// DataError describes a record that could not be decoded.
type DataError struct {
	Data []byte
	Off  int
	Err  error
	Msg  string
}

func dataErrf(data []byte, off int, err error, format string, args ...any) error {
	return &DataError{data, off, err, fmt.Sprintf(format, args...)}
}

func (e *DataError) Unwrap() error {
	return e.Err
}

func (e *DataError) Error() string {
	const prefixLen = 32
	n := len(e.Data)
	data := e.Data
	if n > prefixLen {
		data = data[:prefixLen]
	}
	if e.Err != nil {
		return fmt.Sprintf("%s at %d: %v: (%d) %x", e.Msg, e.Off, e.Err, n, data)
	}
	return fmt.Sprintf("%s at %d: (%d) %x", e.Msg, e.Off, n, data)
}
