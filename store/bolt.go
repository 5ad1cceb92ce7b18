package store

import (
	"go.etcd.io/bbolt"
)

var documentsBucket = []byte("documents")

type boltBackend struct {
	bdb *bbolt.DB
}

func openBoltBackend(path string, opt Options) (backend, error) {
	bopt := *bbolt.DefaultOptions
	bopt.Timeout = opt.Timeout
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
	}
	bdb, err := bbolt.Open(path, 0666, &bopt)
	if err != nil {
		return nil, err
	}
	err = bdb.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(documentsBucket)
		return err
	})
	if err != nil {
		bdb.Close()
		return nil, err
	}
	return &boltBackend{bdb: bdb}, nil
}

func (b *boltBackend) get(key []byte) ([]byte, error) {
	var value []byte
	err := b.bdb.View(func(tx *bbolt.Tx) error {
		// bolt memory is only valid inside the transaction
		if v := tx.Bucket(documentsBucket).Get(key); v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	return value, err
}

func (b *boltBackend) put(key, value []byte) error {
	return b.bdb.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(documentsBucket).Put(key, value)
	})
}

func (b *boltBackend) delete(key []byte) (bool, error) {
	var found bool
	err := b.bdb.Update(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket(documentsBucket)
		if bkt.Get(key) == nil {
			return nil
		}
		found = true
		return bkt.Delete(key)
	})
	return found, err
}

func (b *boltBackend) keys() ([][]byte, error) {
	var keys [][]byte
	err := b.bdb.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(documentsBucket).ForEach(func(k, _ []byte) error {
			keys = append(keys, append([]byte(nil), k...))
			return nil
		})
	})
	return keys, err
}

func (b *boltBackend) close() error {
	return b.bdb.Close()
}
