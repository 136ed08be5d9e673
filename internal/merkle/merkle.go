// Package merkle builds hex-digest Merkle trees over ordered chunk sequences.
//
// Leaves are the digests of the raw chunks. A parent is the digest of the text
// concatenation of its children's hex digests, left then right. When a level has
// an odd number of nodes the last one is paired with itself, it is never promoted
// unchanged.
package merkle

import (
	"errors"
)

// ErrEmptyInput is returned when a tree is requested over zero chunks.
var ErrEmptyInput = errors.New("merkle: no chunks to build a tree from")

// Hasher is the digest function used for both leaves and parents.
type Hasher interface {
	Digest(data []byte) string
	DigestPair(left, right string) string
}

// Tree holds every digest produced during a build, level by level,
// leaves first and root last.
type Tree []string

// Root returns the last node of the tree, or "" for an empty tree.
func (t Tree) Root() string {
	if len(t) == 0 {
		return ""
	}
	return t[len(t)-1]
}

func (t Tree) Len() int { return len(t) }

// Levels splits the tree into its levels given the leaf count n.
// It returns nil when the tree does not have the shape of a build over n leaves.
func (t Tree) Levels(n int) [][]string {
	if n <= 0 || len(t) != TreeSize(n) {
		return nil
	}
	var levels [][]string
	off := 0
	for {
		levels = append(levels, t[off:off+n:off+n])
		off += n
		if n == 1 {
			return levels
		}
		n = (n + 1) / 2
	}
}

// Leaves returns the first n digests of the tree.
func (t Tree) Leaves(n int) []string {
	if n > len(t) {
		n = len(t)
	}
	if n < 0 {
		n = 0
	}
	return t[:n:n]
}

// TreeSize is the number of nodes a build over n leaves produces:
// n + ceil(n/2) + ceil(ceil(n/2)/2) + ... + 1.
func TreeSize(n int) int {
	if n <= 0 {
		return 0
	}
	total := n
	for n > 1 {
		n = (n + 1) / 2
		total += n
	}
	return total
}

// Build hashes every chunk into a leaf and reduces the leaves to a single root.
func Build(h Hasher, chunks [][]byte) (Tree, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptyInput
	}
	leaves := make([]string, len(chunks))
	for i, c := range chunks {
		leaves[i] = h.Digest(c)
	}
	return BuildFromLeaves(h, leaves)
}

// BuildFromLeaves reduces already computed leaf digests to a root. The returned
// tree starts with a copy of leaves.
func BuildFromLeaves(h Hasher, leaves []string) (Tree, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyInput
	}
	tree := make(Tree, 0, TreeSize(len(leaves)))
	tree = append(tree, leaves...)

	level := tree[:len(leaves)]
	for len(level) > 1 {
		start := len(tree)
		for i := 0; i < len(level); i += 2 {
			left := level[i]
			right := left
			if i+1 < len(level) {
				right = level[i+1]
			}
			tree = append(tree, h.DigestPair(left, right))
		}
		level = tree[start:]
	}
	return tree, nil
}

// Root builds the tree over chunks and returns only its root.
func Root(h Hasher, chunks [][]byte) (string, error) {
	tree, err := Build(h, chunks)
	if err != nil {
		return "", err
	}
	return tree.Root(), nil
}
