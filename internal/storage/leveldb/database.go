// Package leveldb is the alternate state-persistence backend (database.DB),
// grounded on the teacher's goleveldb-backed node store
// (internal/core/ledger/node/storage.go) and reshaped to satisfy the same
// database.DB interface the pebble backend does, so cmd/deedd can pick
// either at startup.
package leveldb

import (
	"context"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/opendeed/deedd/internal/storage/database"
)

type DB struct {
	db *leveldb.DB
}

// Open opens (creating if absent) a goleveldb database at path.
func Open(path string) (*DB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("storage/leveldb: open %s: %w", path, err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error { return d.db.Close() }

func (d *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	val, err := d.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, database.ErrKeyNotFound
	}
	return val, err
}

func (d *DB) Write(ctx context.Context, key, value []byte) error {
	return d.db.Put(key, value, nil)
}

func (d *DB) Delete(ctx context.Context, key []byte) error {
	return d.db.Delete(key, nil)
}

func (d *DB) Batch(ctx context.Context, ops []database.BatchOperation) error {
	batch := new(leveldb.Batch)
	for _, op := range ops {
		switch op.Type {
		case database.BatchPut:
			batch.Put(op.Key, op.Value)
		case database.BatchDelete:
			batch.Delete(op.Key)
		default:
			return fmt.Errorf("storage/leveldb: unknown batch op %d", op.Type)
		}
	}
	return d.db.Write(batch, nil)
}

func (d *DB) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	var r *util.Range
	if start != nil || end != nil {
		r = &util.Range{Start: start, Limit: end}
	}
	return &dbIterator{iter: d.db.NewIterator(r, nil)}, nil
}

type dbIterator struct {
	iter iterator.Iterator
}

func (it *dbIterator) Next() bool { return it.iter.Next() }

func (it *dbIterator) Key() []byte {
	k := it.iter.Key()
	out := make([]byte, len(k))
	copy(out, k)
	return out
}

func (it *dbIterator) Value() []byte {
	v := it.iter.Value()
	out := make([]byte, len(v))
	copy(out, v)
	return out
}

func (it *dbIterator) Error() error { return it.iter.Error() }

func (it *dbIterator) Close() error {
	it.iter.Release()
	return nil
}
