// Package upload turns uploaded byte streams into merkle roots and records them.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Tallal-Arif/MerkleStreamBackend/internal/chunk"
	"github.com/Tallal-Arif/MerkleStreamBackend/internal/crypto"
	"github.com/Tallal-Arif/MerkleStreamBackend/internal/logging"
	"github.com/Tallal-Arif/MerkleStreamBackend/internal/merkle"
	"github.com/Tallal-Arif/MerkleStreamBackend/internal/sanitize"
)

// ErrTooLarge is returned when an upload exceeds the configured size limit.
var ErrTooLarge = errors.New("upload exceeds size limit")

type Options struct {
	Hasher    crypto.Hasher
	ChunkSize int
	Workers   int
	// MaxBytes caps the size of a single upload; zero means no limit.
	MaxBytes int64
	Store    Store
	Logger   logging.Logger
}

type Service struct {
	hasher    crypto.Hasher
	chunkSize int
	workers   int
	maxBytes  int64
	store     Store
	logger    logging.Logger
	metrics   metrics
	now       func() time.Time
}

func NewService(o Options) *Service {
	if o.ChunkSize <= 0 {
		o.ChunkSize = chunk.DefaultSize
	}
	if o.Store == nil {
		o.Store = NewMemoryStore()
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	return &Service{
		hasher:    o.Hasher,
		chunkSize: o.ChunkSize,
		workers:   o.Workers,
		maxBytes:  o.MaxBytes,
		store:     o.Store,
		logger:    o.Logger,
		metrics:   newMetrics(),
		now:       time.Now,
	}
}

// Result is a stored record together with the full tree it was computed from.
type Result struct {
	Record
	Tree merkle.Tree
}

// Process reads r to the end, builds the merkle tree of its chunks and saves a
// record of the upload. An empty stream fails with merkle.ErrEmptyInput and a
// stream above the size limit with ErrTooLarge; nothing is saved in either case.
func (s *Service) Process(ctx context.Context, filename string, r io.Reader) (res Result, err error) {
	start := s.now()
	defer func() {
		result := "ok"
		switch {
		case errors.Is(err, ErrTooLarge):
			result = "too_large"
		case errors.Is(err, merkle.ErrEmptyInput):
			result = "empty"
		case err != nil:
			result = "error"
		}
		s.metrics.UploadCount.WithLabelValues(result).Inc()
	}()

	name := sanitize.SecureFilename(filename)
	if name == "" {
		name = "file"
	}
	id := uuid.New().String()
	logger := s.logger.WithFields(logrus.Fields{"upload_id": id, "filename": name})

	if s.maxBytes > 0 {
		r = &maxReader{r: r, n: s.maxBytes}
	}
	tree, size, err := merkle.BuildFromReader(ctx, s.hasher, r, s.chunkSize, s.workers)
	if err != nil {
		logger.Debugf("build merkle tree: %v", err)
		return Result{}, fmt.Errorf("build merkle tree: %w", err)
	}
	chunks := int(chunk.Count(size, s.chunkSize))

	rec := Record{
		ID:         id,
		Filename:   name,
		StoredName: id + "_" + name,
		Size:       size,
		Chunks:     chunks,
		ChunkSize:  s.chunkSize,
		Algorithm:  s.hasher.Name(),
		MerkleRoot: tree.Root(),
		CreatedAt:  start.UTC(),
	}
	if err := s.store.Save(ctx, rec); err != nil {
		logger.Debugf("save record: %v", err)
		logger.Error("upload: save record failed")
		return Result{}, fmt.Errorf("save record: %w", err)
	}

	elapsed := s.now().Sub(start)
	s.metrics.UploadedBytes.Add(float64(size))
	s.metrics.ChunkCount.Observe(float64(chunks))
	s.metrics.ProcessDuration.Observe(elapsed.Seconds())
	logger.WithFields(logrus.Fields{
		"size":        size,
		"chunks":      chunks,
		"merkle_root": rec.MerkleRoot,
	}).Infof("file processed in %s", elapsed)

	return Result{Record: rec, Tree: tree}, nil
}

func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Record{}, ErrNotFound
	}
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, limit int) ([]Record, error) {
	return s.store.List(ctx, limit)
}

// maxReader fails with ErrTooLarge once more than n bytes are read.
type maxReader struct {
	r io.Reader
	n int64
}

func (m *maxReader) Read(p []byte) (int, error) {
	if m.n < 0 {
		return 0, ErrTooLarge
	}
	if int64(len(p)) > m.n+1 {
		p = p[:m.n+1]
	}
	n, err := m.r.Read(p)
	m.n -= int64(n)
	if m.n < 0 {
		return n, ErrTooLarge
	}
	return n, err
}
