// Package blockindex maps block heights to their locations inside the
// chunked block store. The index is built once by scanning every chunk and
// walking the header chain from genesis, then persisted so later runs load
// it instead of rescanning.
package blockindex

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// IndexFileName is the persisted index file inside the store directory.
const IndexFileName = "chunks.index"

const entrySize = 4 + 4 + 8 + chainhash.HashSize

// ErrWouldShrink reports a save that would replace a larger persisted index,
// which almost always means the caller is about to destroy finished work.
var ErrWouldShrink = errors.New("index would shrink")

// Entry locates one block.
type Entry struct {
	Height uint32
	Chunk  uint32
	Offset uint64
	Hash   chainhash.Hash
}

// Index is the height to location mapping. Heights need not be contiguous
// while a build is in progress.
type Index struct {
	entries map[uint32]Entry
}

func New() *Index {
	return &Index{entries: map[uint32]Entry{}}
}

func (ix *Index) Len() int {
	return len(ix.entries)
}

func (ix *Index) Get(height uint32) (Entry, bool) {
	e, ok := ix.entries[height]
	return e, ok
}

func (ix *Index) Put(e Entry) {
	ix.entries[e.Height] = e
}

// Heights returns all indexed heights in ascending order.
func (ix *Index) Heights() []uint32 {
	heights := make([]uint32, 0, len(ix.entries))
	for h := range ix.entries {
		heights = append(heights, h)
	}
	sort.Slice(heights, func(i, j int) bool { return heights[i] < heights[j] })
	return heights
}

// MaxContiguousHeight returns the largest height h such that every height in
// [0, h] is indexed. The second result is false when even height 0 is absent.
func (ix *Index) MaxContiguousHeight() (uint32, bool) {
	if _, ok := ix.entries[0]; !ok {
		return 0, false
	}
	h := uint32(0)
	for {
		if _, ok := ix.entries[h+1]; !ok {
			return h, true
		}
		h++
	}
}

// Load reads the persisted index at path, returning an empty index when the
// file does not exist yet.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), nil
		}
		return nil, fmt.Errorf("open index %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var countBuf [8]byte
	if _, err := io.ReadFull(r, countBuf[:]); err != nil {
		return nil, fmt.Errorf("read index entry count: %w", err)
	}
	count := binary.LittleEndian.Uint64(countBuf[:])

	ix := &Index{entries: make(map[uint32]Entry, count)}
	buf := make([]byte, entrySize)
	for i := uint64(0); i < count; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("read index entry %d of %d: %w", i, count, err)
		}
		var e Entry
		e.Height = binary.LittleEndian.Uint32(buf[0:4])
		e.Chunk = binary.LittleEndian.Uint32(buf[4:8])
		e.Offset = binary.LittleEndian.Uint64(buf[8:16])
		copy(e.Hash[:], buf[16:entrySize])
		ix.entries[e.Height] = e
	}
	if _, err := r.ReadByte(); err != io.EOF {
		return nil, fmt.Errorf("index %s has bytes past entry %d", path, count)
	}
	return ix, nil
}

// Save atomically persists the index at path. Unless force is set, it
// refuses to overwrite a persisted index with more entries than this one.
func (ix *Index) Save(path string, force bool) error {
	if !force {
		if existing, err := Load(path); err == nil && existing.Len() > ix.Len() {
			return fmt.Errorf("persisted index holds %d entries, new index %d: %w",
				existing.Len(), ix.Len(), ErrWouldShrink)
		}
	}

	buf := make([]byte, 0, 8+len(ix.entries)*entrySize)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(ix.entries)))
	for _, h := range ix.Heights() {
		e := ix.entries[h]
		buf = binary.LittleEndian.AppendUint32(buf, e.Height)
		buf = binary.LittleEndian.AppendUint32(buf, e.Chunk)
		buf = binary.LittleEndian.AppendUint64(buf, e.Offset)
		buf = append(buf, e.Hash[:]...)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("install index: %w", err)
	}
	return nil
}
