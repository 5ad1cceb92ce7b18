package store

// backend is a flat key-value storage (Bolt, in-memory).
type backend interface {
	// get returns a copy of the value, or nil if the key is absent.
	get(key []byte) ([]byte, error)
	put(key, value []byte) error
	// delete reports whether the key was present.
	delete(key []byte) (bool, error)
	// keys returns every key in ascending order.
	keys() ([][]byte, error)
	close() error
}
