// Package store persists exported IDS buffers. Every value is framed with a
// portable header, msgpack metadata and a checksum, and kept in a pluggable
// key-value Backend (in memory or a bbolt file).
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oy3o/idscodec"
)

// Store is safe for concurrent use; the sessions it hands out are not.
type Store struct {
	backend Backend
	logger  *zap.Logger
	sugar   *zap.SugaredLogger
}

// Open creates the backend described by cfg.
func Open(cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var backend Backend
	switch cfg.Backend {
	case BackendMemory:
		backend = newMemoryBackend()
	case BackendBolt:
		b, err := newBoltBackend(cfg)
		if err != nil {
			return nil, err
		}
		backend = b
	}
	s := New(backend, logger)
	s.sugar.Infow("store opened", "backend", cfg.Backend, "path", cfg.Path)
	return s, nil
}

// New wraps an existing backend.
func New(backend Backend, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{backend: backend, logger: logger, sugar: logger.Sugar()}
}

// Put stores an exported buffer under key. The buffer's version byte and
// endian marker are checked first; the buffer itself is not modified.
func (s *Store) Put(ctx context.Context, key Key, buf []byte) (Meta, error) {
	if err := key.validate(); err != nil {
		return Meta{}, err
	}
	if err := idscodec.Inspect(buf); err != nil {
		return Meta{}, fmt.Errorf("store: put %s: %w", key, err)
	}
	meta := Meta{
		ID:         uuid.NewString(),
		Entry:      key.Entry,
		IDS:        key.IDS,
		Occurrence: key.Occurrence,
		Created:    time.Now().UTC(),
		Size:       len(buf),
	}
	frame, err := encodeFrame(meta, buf)
	if err != nil {
		return Meta{}, err
	}
	if err := s.backend.Put(ctx, key.String(), frame); err != nil {
		return Meta{}, fmt.Errorf("store: put %s: %w", key, err)
	}
	s.sugar.Debugw("put", "key", key.String(), "id", meta.ID, "size", meta.Size)
	return meta, nil
}

// Get returns the buffer stored under key, ready for Decoder.ImportBuffer.
func (s *Store) Get(ctx context.Context, key Key) ([]byte, Meta, error) {
	if err := key.validate(); err != nil {
		return nil, Meta{}, err
	}
	frame, err := s.backend.Get(ctx, key.String())
	if err != nil {
		return nil, Meta{}, fmt.Errorf("store: get %s: %w", key, err)
	}
	meta, buf, err := decodeFrame(frame)
	if err != nil {
		s.sugar.Warnw("corrupt frame", "key", key.String(), "error", err)
		return nil, Meta{}, fmt.Errorf("store: get %s: %w", key, err)
	}
	s.sugar.Debugw("get", "key", key.String(), "id", meta.ID, "size", meta.Size)
	return buf, meta, nil
}

// PutTree encodes root and stores it.
func (s *Store) PutTree(ctx context.Context, key Key, root idscodec.Structure) (Meta, error) {
	buf, err := idscodec.EncodeTree(root, idscodec.WithLogger(s.logger))
	if err != nil {
		return Meta{}, fmt.Errorf("store: encode %s: %w", key, err)
	}
	return s.Put(ctx, key, buf)
}

// GetTree loads and fully decodes the IDS stored under key.
func (s *Store) GetTree(ctx context.Context, key Key) (idscodec.Structure, Meta, error) {
	buf, meta, err := s.Get(ctx, key)
	if err != nil {
		return nil, Meta{}, err
	}
	root, err := idscodec.DecodeTree(buf, idscodec.WithLogger(s.logger))
	if err != nil {
		return nil, Meta{}, fmt.Errorf("store: decode %s: %w", key, err)
	}
	return root, meta, nil
}

// Decoder loads the buffer under key into a new Decoder. The caller drives
// it from BeginOperation to EndOperation.
func (s *Store) Decoder(ctx context.Context, key Key) (*idscodec.Decoder, error) {
	buf, _, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	dec := idscodec.NewDecoder(idscodec.WithLogger(s.logger))
	if err := dec.ImportBuffer(buf); err != nil {
		return nil, fmt.Errorf("store: import %s: %w", key, err)
	}
	return dec, nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key Key) error {
	if err := key.validate(); err != nil {
		return err
	}
	if err := s.backend.Delete(ctx, key.String()); err != nil {
		return fmt.Errorf("store: delete %s: %w", key, err)
	}
	return nil
}

// List returns the keys stored for entry, in key order.
func (s *Store) List(ctx context.Context, entry string) ([]Key, error) {
	names, err := s.backend.Keys(ctx, entry+"/")
	if err != nil {
		return nil, fmt.Errorf("store: list %s: %w", entry, err)
	}
	keys := make([]Key, 0, len(names))
	for _, name := range names {
		k, err := ParseKey(name)
		if err != nil {
			s.sugar.Warnw("skipping unparsable key", "key", name, "error", err)
			continue
		}
		// "a/b" also matches entries like "a/b/c/ids/0"; keep exact entries.
		if k.Entry == entry {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// Close closes the backend.
func (s *Store) Close() error {
	if err := s.backend.Close(); err != nil && !errors.Is(err, ErrClosed) {
		return err
	}
	return nil
}
