package upload

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tallal-Arif/MerkleStreamBackend/internal/crypto"
	"github.com/Tallal-Arif/MerkleStreamBackend/internal/merkle"
)

func newTestService(t *testing.T, o Options) (*Service, *MemoryStore) {
	t.Helper()

	store := NewMemoryStore()
	o.Store = store
	s := NewService(o)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return s, store
}

func TestProcess(t *testing.T) {
	t.Parallel()

	s, store := newTestService(t, Options{ChunkSize: 4, Workers: 2})

	res, err := s.Process(context.Background(), "../secret report.txt", strings.NewReader("AAAABBBBCCCC"))
	require.NoError(t, err)

	assert.Equal(t, "54e7cad6da668c8861d208aab362e48cccc7b041d489af26caadd7b651abffd7", res.MerkleRoot)
	assert.Equal(t, "secret_report.txt", res.Filename)
	assert.Equal(t, res.ID+"_secret_report.txt", res.StoredName)
	assert.EqualValues(t, 12, res.Size)
	assert.Equal(t, 3, res.Chunks)
	assert.Equal(t, 4, res.ChunkSize)
	assert.Equal(t, crypto.SHA256, res.Algorithm)
	assert.Len(t, res.Tree, 6)
	assert.Equal(t, res.Tree.Root(), res.MerkleRoot)

	stored, err := store.Get(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Record, stored)

	got, err := s.Get(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Record, got)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.UploadCount.WithLabelValues("ok")))
	assert.Equal(t, 12.0, testutil.ToFloat64(s.metrics.UploadedBytes))
}

func TestProcessEmptyStream(t *testing.T) {
	t.Parallel()

	s, store := newTestService(t, Options{})

	_, err := s.Process(context.Background(), "empty.bin", bytes.NewReader(nil))
	assert.ErrorIs(t, err, merkle.ErrEmptyInput)

	list, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.UploadCount.WithLabelValues("empty")))
}

func TestProcessSizeLimit(t *testing.T) {
	t.Parallel()

	s, store := newTestService(t, Options{ChunkSize: 3, MaxBytes: 8})

	_, err := s.Process(context.Background(), "big.bin", bytes.NewReader(make([]byte, 9)))
	assert.ErrorIs(t, err, ErrTooLarge)

	res, err := s.Process(context.Background(), "fits.bin", bytes.NewReader(make([]byte, 8)))
	require.NoError(t, err)
	assert.EqualValues(t, 8, res.Size)
	assert.Equal(t, 3, res.Chunks)

	list, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestProcessUnnamedFile(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t, Options{})
	res, err := s.Process(context.Background(), "файл", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "file", res.Filename)
}

func TestProcessAlternateHasher(t *testing.T) {
	t.Parallel()

	h, err := crypto.NewHasher(crypto.BLAKE2b256)
	require.NoError(t, err)
	s, _ := newTestService(t, Options{Hasher: h})

	res, err := s.Process(context.Background(), "a", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, crypto.BLAKE2b256, res.Algorithm)
	assert.Equal(t, h.Digest([]byte("data")), res.MerkleRoot)
}

type failingStore struct{ *MemoryStore }

func (failingStore) Save(context.Context, Record) error { return errors.New("disk full") }

func TestProcessStoreFailure(t *testing.T) {
	t.Parallel()

	s := NewService(Options{Store: failingStore{NewMemoryStore()}})
	_, err := s.Process(context.Background(), "a", strings.NewReader("data"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestGetInvalidID(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t, Options{})
	_, err := s.Get(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Get(context.Background(), "2b1f43ac-1b6c-4f0e-9a8e-0d5f0c6c7c11")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreListOrder(t *testing.T) {
	t.Parallel()

	m := NewMemoryStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, m.Save(context.Background(), Record{ID: id, CreatedAt: base.Add(time.Duration(i) * time.Minute)}))
	}

	list, err := m.List(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
}
