package utxo

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

// bucketContexts holds one nested bucket per context, keyed by the raw
// 16-byte context id. Inside, keys are Outpoint.Key() and values gob entries.
var bucketContexts = []byte("utxo_contexts")

// BoltStore wraps a bbolt database for UTXO entry storage.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("utxo: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("utxo: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketContexts)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("utxo: create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// PutEntry implements Store.
func (s *BoltStore) PutEntry(contextID uuid.UUID, e *Entry) error {
	if e == nil {
		return fmt.Errorf("%w: entry", ErrNilParam)
	}
	if err := e.Outpoint.Validate(); err != nil {
		return err
	}
	data, err := encodeGob(e)
	if err != nil {
		return fmt.Errorf("utxo: encode entry: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.Bucket(bucketContexts).CreateBucketIfNotExists(contextID[:])
		if err != nil {
			return fmt.Errorf("boltstore: create context bucket: %w", err)
		}
		if err := b.Put(e.Outpoint.Key(), data); err != nil {
			return fmt.Errorf("boltstore: put entry: %w", err)
		}
		return nil
	})
}

// DeleteEntry implements Store.
func (s *BoltStore) DeleteEntry(contextID uuid.UUID, op Outpoint) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketContexts).Bucket(contextID[:])
		if b == nil {
			return nil
		}
		if err := b.Delete(op.Key()); err != nil {
			return fmt.Errorf("boltstore: delete entry: %w", err)
		}
		return nil
	})
}

// LoadEntries implements Store.
func (s *BoltStore) LoadEntries(contextID uuid.UUID) ([]*Entry, error) {
	var out []*Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketContexts).Bucket(contextID[:])
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var e Entry
			if err := decodeGob(v, &e); err != nil {
				return fmt.Errorf("boltstore: decode entry %x: %w", k, err)
			}
			out = append(out, &e)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Contexts implements Store.
func (s *BoltStore) Contexts() ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketContexts).ForEachBucket(func(k []byte) error {
			id, err := uuid.FromBytes(k)
			if err != nil {
				return fmt.Errorf("boltstore: bad context key %x: %w", k, err)
			}
			ids = append(ids, id)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// encodeGob serializes a value using gob encoding.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob deserializes gob-encoded data into a value.
func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
