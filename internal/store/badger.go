// Package store provides durable pkg/oscore.ContextStore implementations:
// a BadgerDB-backed one for single-node embedded deployments and a GORM/SQL-
// backed one for SQLite or PostgreSQL, following the teacher's two parallel
// storage backends for metadata (pkg/store/metadata/badger and
// pkg/controlplane/store's GORM store).
package store

import (
	"context"
	"encoding/binary"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

var (
	keySeq     = []byte("sender_seq")
	keyHighest = []byte("replay_highest")
	keyBitmap  = []byte("replay_bitmap")
)

// BadgerStore persists one endpoint's sender sequence number and replay
// window in a BadgerDB database, scoped to a single (sender_id,
// recipient_id, id_context) tuple by construction - callers open one
// BadgerStore per Endpoint, at a distinct path, the same granularity the
// teacher's BadgerMetadataStore uses per share.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a BadgerDB database at path.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger store at %s: %w", path, err)
	}
	return &BadgerStore{db: db}, nil
}

// Close releases the underlying BadgerDB database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Load implements pkg/oscore.ContextStore.
func (s *BadgerStore) Load(_ context.Context) (seq uint64, highest uint64, bitmap uint32, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		seq, err = getUint64(txn, keySeq)
		if err != nil {
			return err
		}
		highest, err = getUint64(txn, keyHighest)
		if err != nil {
			return err
		}
		bitmap, err = getUint32(txn, keyBitmap)
		return err
	})
	return seq, highest, bitmap, err
}

// SaveSenderSeq implements pkg/oscore.ContextStore.
func (s *BadgerStore) SaveSenderSeq(_ context.Context, seq uint64) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(keySeq, encodeUint64(seq))
	})
}

// SaveReplayWindow implements pkg/oscore.ContextStore. Both values are
// written in the same transaction so a crash never observes one updated
// without the other.
func (s *BadgerStore) SaveReplayWindow(_ context.Context, highest uint64, bitmap uint32) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(keyHighest, encodeUint64(highest)); err != nil {
			return err
		}
		return txn.Set(keyBitmap, encodeUint32(bitmap))
	})
}

func getUint64(txn *badger.Txn, key []byte) (uint64, error) {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var v uint64
	err = item.Value(func(val []byte) error {
		v = binary.BigEndian.Uint64(val)
		return nil
	})
	return v, err
}

func getUint32(txn *badger.Txn, key []byte) (uint32, error) {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var v uint32
	err = item.Value(func(val []byte) error {
		v = binary.BigEndian.Uint32(val)
		return nil
	})
	return v, err
}

func encodeUint64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func encodeUint32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}
