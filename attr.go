package ineld

import (
	"fmt"
	"strconv"
)

// Element attribute key-value pair.
type KV struct {
	Key   string `msgpack:"k" cbor:"k"`
	Value string `msgpack:"v" cbor:"v"`
}

// Element attributes.
type Attr struct {
	Id  string `msgpack:"id,omitempty" cbor:"id,omitempty"` // Element ID
	KVs []KV   `msgpack:"kv,omitempty" cbor:"kv,omitempty"` // Key-value pairs, in insertion order
}

// Returns the element's ID.
func (a *Attr) Ident() string {
	return a.Id
}

// Sets the element's ID in-place.
func (a *Attr) SetIdent(id string) {
	a.Id = id
}

// Returns a value of the given key or false if the key is not present.
func (a *Attr) Get(key string) (string, bool) {
	for _, kv := range a.KVs {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Returns an integer value of the given key. Missing keys yield def;
// malformed values are an error.
func (a *Attr) GetInt(key string, def int) (int, error) {
	v, ok := a.Get(key)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("attribute %q: %w", key, err)
	}
	return n, nil
}

// Returns a copy of attributes with the given key-value pair.
func (a Attr) WithKV(key, value string) Attr {
	a = a.copy()
	for i, kv := range a.KVs {
		if kv.Key == key {
			a.KVs[i].Value = value
			return a
		}
	}
	a.KVs = append(a.KVs, KV{key, value})
	return a
}

// Returns a copy of attributes with the given integer value.
func (a Attr) WithInt(key string, value int) Attr {
	return a.WithKV(key, strconv.Itoa(value))
}

// Returns a copy of attributes without the given key.
func (a Attr) WithoutKey(key string) Attr {
	a = a.copy()
	for i, kv := range a.KVs {
		if kv.Key == key {
			a.KVs = append(a.KVs[:i], a.KVs[i+1:]...)
			return a
		}
	}
	return a
}

func (a Attr) copy() Attr {
	if a.KVs != nil {
		a.KVs = append([]KV(nil), a.KVs...)
	}
	return a
}

// Cell geometry attribute keys. Group ids are never persisted; a table is
// described by where each distinct cell starts and how far it spans.
const (
	AttrRow        = "row"
	AttrColumn     = "column"
	AttrRowSpan    = "rowSpan"
	AttrColumnSpan = "columnSpan"
)

// CellGeometry is the persisted description of one distinct cell.
type CellGeometry struct {
	Row, Column         int
	RowSpan, ColumnSpan int
}

// CellAttr returns the attributes describing c. Spans of 1 are omitted.
func CellAttr(c CellGeometry) Attr {
	a := Attr{}.WithInt(AttrRow, c.Row).WithInt(AttrColumn, c.Column)
	if c.RowSpan > 1 {
		a = a.WithInt(AttrRowSpan, c.RowSpan)
	}
	if c.ColumnSpan > 1 {
		a = a.WithInt(AttrColumnSpan, c.ColumnSpan)
	}
	return a
}

// ParseCellAttr reads cell geometry from attributes. Row and column are
// required; spans default to 1.
func ParseCellAttr(a Attr) (CellGeometry, error) {
	var (
		c   CellGeometry
		err error
	)
	if _, ok := a.Get(AttrRow); !ok {
		return c, fmt.Errorf("cell attribute %q missing: %w", AttrRow, ErrGeometry)
	}
	if _, ok := a.Get(AttrColumn); !ok {
		return c, fmt.Errorf("cell attribute %q missing: %w", AttrColumn, ErrGeometry)
	}
	if c.Row, err = a.GetInt(AttrRow, 0); err != nil {
		return c, err
	}
	if c.Column, err = a.GetInt(AttrColumn, 0); err != nil {
		return c, err
	}
	if c.RowSpan, err = a.GetInt(AttrRowSpan, 1); err != nil {
		return c, err
	}
	if c.ColumnSpan, err = a.GetInt(AttrColumnSpan, 1); err != nil {
		return c, err
	}
	return c, nil
}
