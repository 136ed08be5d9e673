package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Tallal-Arif/MerkleStreamBackend/internal/upload"
)

const schema = `
CREATE TABLE IF NOT EXISTS uploads (
    upload_id   uuid PRIMARY KEY,
    filename    text NOT NULL,
    stored_name text NOT NULL,
    size        bigint NOT NULL,
    chunks      integer NOT NULL,
    chunk_size  integer NOT NULL,
    algorithm   text NOT NULL,
    merkle_root text NOT NULL,
    created_at  timestamptz NOT NULL DEFAULT now()
)`

// UploadStore keeps upload records in Postgres.
type UploadStore struct {
	pool *pgxpool.Pool
}

var _ upload.Store = (*UploadStore)(nil)

func NewUploadStore(pool *pgxpool.Pool) *UploadStore {
	return &UploadStore{pool: pool}
}

// Migrate creates the uploads table if it does not exist yet.
func (s *UploadStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create uploads table: %w", err)
	}
	return nil
}

func (s *UploadStore) Save(ctx context.Context, r upload.Record) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO uploads (upload_id, filename, stored_name, size, chunks, chunk_size, algorithm, merkle_root, created_at)
         VALUES ($1::uuid,$2,$3,$4,$5,$6,$7,$8,$9)`,
		r.ID, r.Filename, r.StoredName, r.Size, r.Chunks, r.ChunkSize, r.Algorithm, r.MerkleRoot, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	return nil
}

func (s *UploadStore) Get(ctx context.Context, id string) (upload.Record, error) {
	var r upload.Record
	err := s.pool.QueryRow(ctx,
		`SELECT upload_id::text, filename, stored_name, size, chunks, chunk_size, algorithm, merkle_root, created_at
         FROM uploads WHERE upload_id=$1::uuid`, id).
		Scan(&r.ID, &r.Filename, &r.StoredName, &r.Size, &r.Chunks, &r.ChunkSize, &r.Algorithm, &r.MerkleRoot, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return upload.Record{}, upload.ErrNotFound
	}
	if err != nil {
		return upload.Record{}, fmt.Errorf("select upload: %w", err)
	}
	r.CreatedAt = r.CreatedAt.UTC()
	return r, nil
}

func (s *UploadStore) List(ctx context.Context, limit int) ([]upload.Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT upload_id::text, filename, stored_name, size, chunks, chunk_size, algorithm, merkle_root, created_at
         FROM uploads ORDER BY created_at DESC, upload_id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("select uploads: %w", err)
	}
	defer rows.Close()

	list := []upload.Record{}
	for rows.Next() {
		var r upload.Record
		if err := rows.Scan(&r.ID, &r.Filename, &r.StoredName, &r.Size, &r.Chunks, &r.ChunkSize, &r.Algorithm, &r.MerkleRoot, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		r.CreatedAt = r.CreatedAt.UTC()
		list = append(list, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate uploads: %w", err)
	}
	return list, nil
}
