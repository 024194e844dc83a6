package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/oy3o/idscodec"
)

func sampleRoot() idscodec.Structure {
	return idscodec.Structure{
		{Name: "ids_properties/comment", Value: idscodec.Leaf{
			Type: idscodec.Char, Shape: []int{29}, Data: []byte("Example IDS for serialization"),
		}},
		{Name: "profiles_1d", Value: idscodec.AoS{
			{{Name: "label", Value: idscodec.Leaf{Type: idscodec.Char, Shape: []int{1}, Data: []byte("a")}}},
			{{Name: "label", Value: idscodec.Leaf{Type: idscodec.Char, Shape: []int{1}, Data: []byte("b")}}},
		}},
	}
}

// StoreTestSuite runs the same checks against every backend.
type StoreTestSuite struct {
	suite.Suite
	cfg   func(t *testing.T) Config
	store *Store
	logs  *observer.ObservedLogs
	ctx   context.Context
}

func (s *StoreTestSuite) SetupTest() {
	core, logs := observer.New(zapcore.DebugLevel)
	st, err := Open(s.cfg(s.T()), zap.New(core))
	s.Require().NoError(err)
	s.store, s.logs, s.ctx = st, logs, context.Background()
}

func (s *StoreTestSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func (s *StoreTestSuite) TestPutGet() {
	key := Key{Entry: "iter/pulse/134173", IDS: "core_profiles", Occurrence: 0}
	buf, err := idscodec.EncodeTree(sampleRoot())
	s.Require().NoError(err)

	before := time.Now().UTC().Add(-time.Second)
	meta, err := s.store.Put(s.ctx, key, buf)
	s.Require().NoError(err)
	s.Assert().Equal(len(buf), meta.Size)
	s.Assert().Equal(key.Entry, meta.Entry)
	s.Assert().Equal(key.IDS, meta.IDS)
	s.Assert().True(meta.Created.After(before))
	_, err = uuid.Parse(meta.ID)
	s.Assert().NoError(err)

	got, gotMeta, err := s.store.Get(s.ctx, key)
	s.Require().NoError(err)
	s.Assert().Equal(buf, got)
	s.Assert().Equal(meta.ID, gotMeta.ID)
	s.Assert().True(meta.Created.Equal(gotMeta.Created))
	s.Assert().Equal(meta.Occurrence, gotMeta.Occurrence)
}

func (s *StoreTestSuite) TestPutRejectsForeignBuffers() {
	key := Key{Entry: "e", IDS: "ids", Occurrence: 0}

	_, err := s.store.Put(s.ctx, key, []byte{7})
	s.Assert().ErrorIs(err, idscodec.ErrUnknownProtocol)

	buf, err := idscodec.EncodeTree(nil)
	s.Require().NoError(err)
	buf[len(buf)-1] ^= 0xFF // last marker byte
	_, err = s.store.Put(s.ctx, key, buf)
	s.Assert().ErrorIs(err, idscodec.ErrEndiannessMismatch)

	_, _, err = s.store.Get(s.ctx, key)
	s.Assert().ErrorIs(err, ErrNotFound)
}

func (s *StoreTestSuite) TestTreeAndDecoder() {
	key := Key{Entry: "run/1", IDS: "core_profiles", Occurrence: 2}
	_, err := s.store.PutTree(s.ctx, key, sampleRoot())
	s.Require().NoError(err)

	root, _, err := s.store.GetTree(s.ctx, key)
	s.Require().NoError(err)
	s.Assert().Equal(sampleRoot(), root)

	dec, err := s.store.Decoder(s.ctx, key)
	s.Require().NoError(err)
	s.Require().NoError(dec.BeginOperation())
	n, err := dec.BeginArrayOfStructures("profiles_1d")
	s.Require().NoError(err)
	s.Require().Equal(2, n)
	s.Require().NoError(dec.SetElementIndex(1))
	leaf, ok, err := dec.ReadField("label")
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Assert().Equal([]byte("b"), leaf.Data)
	s.Require().NoError(dec.EndArrayOfStructures())
	s.Require().NoError(dec.EndOperation())
}

func (s *StoreTestSuite) TestListAndDelete() {
	keys := []Key{
		{Entry: "a/b", IDS: "equilibrium", Occurrence: 1},
		{Entry: "a/b", IDS: "core_profiles", Occurrence: 0},
		{Entry: "a/b/c", IDS: "equilibrium", Occurrence: 0},
		{Entry: "a/bc", IDS: "equilibrium", Occurrence: 0},
	}
	for _, k := range keys {
		_, err := s.store.PutTree(s.ctx, k, nil)
		s.Require().NoError(err)
	}

	got, err := s.store.List(s.ctx, "a/b")
	s.Require().NoError(err)
	s.Assert().Equal([]Key{keys[1], keys[0]}, got)

	s.Require().NoError(s.store.Delete(s.ctx, keys[0]))
	s.Require().NoError(s.store.Delete(s.ctx, keys[0]), "deleting twice is fine")
	_, _, err = s.store.Get(s.ctx, keys[0])
	s.Assert().ErrorIs(err, ErrNotFound)

	got, err = s.store.List(s.ctx, "a/b")
	s.Require().NoError(err)
	s.Assert().Equal([]Key{keys[1]}, got)

	got, err = s.store.List(s.ctx, "nothing")
	s.Require().NoError(err)
	s.Assert().Empty(got)
}

func (s *StoreTestSuite) TestInvalidKeys() {
	for _, k := range []Key{
		{IDS: "x"},
		{Entry: "e"},
		{Entry: "e", IDS: "a/b"},
		{Entry: "e", IDS: "x", Occurrence: -1},
	} {
		_, err := s.store.PutTree(s.ctx, k, nil)
		s.Assert().ErrorIs(err, ErrInvalidKey, "%+v", k)
		_, _, err = s.store.Get(s.ctx, k)
		s.Assert().ErrorIs(err, ErrInvalidKey, "%+v", k)
	}
}

func (s *StoreTestSuite) TestCanceledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	_, err := s.store.PutTree(ctx, Key{Entry: "e", IDS: "x"}, nil)
	s.Assert().ErrorIs(err, context.Canceled)
}

func (s *StoreTestSuite) TestOpenIsLogged() {
	opened := s.logs.FilterMessage("store opened").All()
	s.Require().Len(opened, 1)
	s.Assert().Equal(s.cfg(s.T()).Backend, opened[0].ContextMap()["backend"])
}

func TestMemoryStore(t *testing.T) {
	suite.Run(t, &StoreTestSuite{cfg: func(*testing.T) Config { return DefaultConfig() }})
}

func TestBoltStore(t *testing.T) {
	suite.Run(t, &StoreTestSuite{cfg: func(t *testing.T) Config {
		cfg := DefaultConfig()
		cfg.Backend = BackendBolt
		cfg.Path = filepath.Join(t.TempDir(), "ids.db")
		cfg.NoSync = true
		cfg.Timeout = time.Second
		return cfg
	}})
}

func TestBoltStorePersists(t *testing.T) {
	cfg := Config{Backend: BackendBolt, Path: filepath.Join(t.TempDir(), "ids.db"), Timeout: time.Second}
	key := Key{Entry: "e", IDS: "x", Occurrence: 3}
	ctx := context.Background()

	st, err := Open(cfg, nil)
	require.NoError(t, err)
	meta, err := st.PutTree(ctx, key, sampleRoot())
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = Open(cfg, nil)
	require.NoError(t, err)
	defer st.Close()
	root, got, err := st.GetTree(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, sampleRoot(), root)
	assert.Equal(t, meta.ID, got.ID)
}

func TestCorruptFrameIsReported(t *testing.T) {
	backend := newMemoryBackend()
	core, logs := observer.New(zapcore.WarnLevel)
	st := New(backend, zap.New(core))
	defer st.Close()
	ctx := context.Background()
	key := Key{Entry: "e", IDS: "x"}

	_, err := st.PutTree(ctx, key, sampleRoot())
	require.NoError(t, err)
	frame, err := backend.Get(ctx, key.String())
	require.NoError(t, err)
	frame[len(frame)-1] ^= 0x01
	require.NoError(t, backend.Put(ctx, key.String(), frame))

	_, _, err = st.Get(ctx, key)
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.Equal(t, 1, logs.FilterMessage("corrupt frame").Len())
}

func TestClosedBackend(t *testing.T) {
	for name, cfg := range map[string]Config{
		"memory": DefaultConfig(),
		"bolt":   {Backend: BackendBolt, Path: filepath.Join(t.TempDir(), "ids.db"), NoSync: true},
	} {
		t.Run(name, func(t *testing.T) {
			st, err := Open(cfg, nil)
			require.NoError(t, err)
			require.NoError(t, st.Close())
			require.NoError(t, st.Close())

			_, err = st.PutTree(context.Background(), Key{Entry: "e", IDS: "x"}, nil)
			assert.ErrorIs(t, err, ErrClosed)
		})
	}
}
