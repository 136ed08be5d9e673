package merkle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Tallal-Arif/MerkleStreamBackend/internal/chunk"
)

// BuildParallel produces the same tree as Build, hashing the leaves and then
// each level's pairs on up to workers goroutines. Every digest is written at its
// final index, so the output does not depend on scheduling.
func BuildParallel(ctx context.Context, h Hasher, chunks [][]byte, workers int) (Tree, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptyInput
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	tree := make(Tree, TreeSize(len(chunks)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, c := range chunks {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tree[i] = h.Digest(c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	off, n := 0, len(chunks)
	for n > 1 {
		next, m := off+n, (n+1)/2
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for j := 0; j < m; j++ {
			j := j
			l := off + 2*j
			r := l + 1
			if r >= off+n {
				r = l
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				tree[next+j] = h.DigestPair(tree[l], tree[r])
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		off, n = next, m
	}
	return tree, nil
}

// BuildFromReader splits r into chunks of size bytes and hashes each leaf as soon
// as it is read, on up to workers goroutines. At most workers+1 chunks are held
// in memory at once: one per running worker plus the one just read. It also
// reports the number of bytes consumed.
func BuildFromReader(ctx context.Context, h Hasher, r io.Reader, size, workers int) (Tree, int64, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	cr := chunk.NewReader(r, size)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	// each worker owns one slot, so growing the slice never races with a write
	var slots []*string
	var readErr error
	for {
		if err := gctx.Err(); err != nil {
			readErr = err
			break
		}
		c, err := cr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			readErr = fmt.Errorf("read chunk %d: %w", len(slots), err)
			break
		}
		slot := new(string)
		slots = append(slots, slot)
		g.Go(func() error {
			*slot = h.Digest(c)
			return nil
		})
	}
	if err := g.Wait(); err != nil && readErr == nil {
		readErr = err
	}
	if readErr != nil {
		return nil, cr.BytesRead(), readErr
	}

	leaves := make([]string, len(slots))
	for i, s := range slots {
		leaves[i] = *s
	}
	tree, err := BuildFromLeaves(h, leaves)
	return tree, cr.BytesRead(), err
}
