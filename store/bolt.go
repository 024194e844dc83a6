package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"go.etcd.io/bbolt"
	berrors "go.etcd.io/bbolt/errors"
)

var bucketName = []byte("ids")

// boltBackend stores frames in a single bbolt bucket keyed by Key.String.
type boltBackend struct {
	bdb *bbolt.DB
}

func newBoltBackend(cfg Config) (*boltBackend, error) {
	bopt := *bbolt.DefaultOptions
	bopt.Timeout = cfg.Timeout
	bopt.NoSync = cfg.NoSync
	if cfg.NoSync {
		bopt.NoFreelistSync = true
	}
	if cfg.MmapSize != 0 {
		bopt.InitialMmapSize = cfg.MmapSize
	}

	bdb, err := bbolt.Open(cfg.Path, 0666, &bopt)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", cfg.Path, err)
	}
	err = bdb.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		bdb.Close()
		return nil, fmt.Errorf("store: prepare %s: %w", cfg.Path, err)
	}
	return &boltBackend{bdb: bdb}, nil
}

func (b *boltBackend) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return boltErr(b.bdb.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), value)
	}))
}

func (b *boltBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []byte
	err := b.bdb.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		// v is only valid inside the transaction.
		out = append([]byte(nil), v...)
		return nil
	})
	return out, boltErr(err)
}

func (b *boltBackend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return boltErr(b.bdb.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(key))
	}))
}

func (b *boltBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var keys []string
	p := []byte(prefix)
	err := b.bdb.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketName).Cursor()
		for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			keys = append(keys, string(k))
		}
		return nil
	})
	return keys, boltErr(err)
}

func (b *boltBackend) Close() error {
	return b.bdb.Close()
}

// boltErr maps bbolt's closed-database error onto ErrClosed.
func boltErr(err error) error {
	if errors.Is(err, berrors.ErrDatabaseNotOpen) {
		return ErrClosed
	}
	return err
}
