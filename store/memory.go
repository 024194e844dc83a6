package store

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"
	"golang.org/x/exp/slices"
)

// memoryBackend keeps frames in a concurrent map. Values are copied on the
// way in and out so callers never share memory with the store.
type memoryBackend struct {
	m      *xsync.Map[string, []byte]
	closed atomic.Bool
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{m: xsync.NewMap[string, []byte]()}
}

func (b *memoryBackend) check(ctx context.Context) error {
	if b.closed.Load() {
		return ErrClosed
	}
	return ctx.Err()
}

func (b *memoryBackend) Put(ctx context.Context, key string, value []byte) error {
	if err := b.check(ctx); err != nil {
		return err
	}
	b.m.Store(key, append([]byte(nil), value...))
	return nil
}

func (b *memoryBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if err := b.check(ctx); err != nil {
		return nil, err
	}
	v, ok := b.m.Load(key)
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (b *memoryBackend) Delete(ctx context.Context, key string) error {
	if err := b.check(ctx); err != nil {
		return err
	}
	b.m.Delete(key)
	return nil
}

func (b *memoryBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	if err := b.check(ctx); err != nil {
		return nil, err
	}
	var keys []string
	b.m.Range(func(k string, _ []byte) bool {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
		return true
	})
	slices.Sort(keys)
	return keys, nil
}

func (b *memoryBackend) Close() error {
	if b.closed.Swap(true) {
		return ErrClosed
	}
	b.m.Clear()
	return nil
}
