package blockindex

import (
	"errors"
	"fmt"

	"github.com/goodnatureofminers/chainverify7000-backend/internal/blockstore"
)

// ErrNotIndexed reports a height the index has no entry for. Dependent
// stages treat this as a hard gap rather than skipping the block.
var ErrNotIndexed = errors.New("height not indexed")

// Reader serves serialized blocks by height by resolving locations through
// the index. Heights should be requested in ascending order; the underlying
// store rewinds by reopening a chunk, which is correct but slow.
type Reader struct {
	ix    *Index
	store *blockstore.Store
}

func NewReader(ix *Index, store *blockstore.Store) *Reader {
	return &Reader{ix: ix, store: store}
}

// Block returns the serialized block at height, verifying the stored bytes
// still hash to what the index recorded.
func (r *Reader) Block(height uint32) ([]byte, error) {
	entry, ok := r.ix.Get(height)
	if !ok {
		return nil, fmt.Errorf("height %d: %w", height, ErrNotIndexed)
	}

	raw, err := r.store.ReadBlock(height, blockstore.Location{Chunk: entry.Chunk, Offset: entry.Offset}, &entry.Hash)
	if err != nil {
		return nil, err
	}
	got, err := blockstore.BlockHash(raw)
	if err != nil {
		return nil, fmt.Errorf("height %d: %w", height, err)
	}
	if got != entry.Hash {
		return nil, fmt.Errorf("height %d hashes to %s, index records %s: %w",
			height, got, entry.Hash, blockstore.ErrStaleLocation)
	}
	return raw, nil
}
