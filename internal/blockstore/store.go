package blockstore

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"go.uber.org/zap"
)

// MissingChunk is the sentinel chunk number addressing the secondary store of
// blocks recovered over RPC instead of a primary chunk file.
const MissingChunk uint32 = 999

const sourceBufferSize = 1 << 20

// Location addresses one block inside the store.
type Location struct {
	Chunk  uint32
	Offset uint64
}

// Store reads blocks from the chunked primary files and the missing-block
// secondary store. Primary reads hold one open chunk at a time and only move
// forward; reading a smaller offset reopens the chunk from the start.
type Store struct {
	dir     string
	meta    Meta
	logger  *zap.Logger
	missing *MissingStore

	cur       ByteSource
	curReader *bufio.Reader
	curChunk  uint32
	curOffset uint64
	curOpen   bool
}

// Open loads the store metadata in dir and prepares both the primary cursor
// and the missing-block store.
func Open(dir string, logger *zap.Logger) (*Store, error) {
	meta, err := LoadMeta(dir)
	if err != nil {
		return nil, err
	}
	missing, err := OpenMissingStore(dir, logger)
	if err != nil {
		return nil, err
	}
	return &Store{
		dir:     dir,
		meta:    meta,
		logger:  logger.Named("blockstore"),
		missing: missing,
	}, nil
}

func (s *Store) Meta() Meta {
	return s.meta
}

func (s *Store) Missing() *MissingStore {
	return s.missing
}

// ReadBlock returns the serialized block at loc. Reads from the missing
// store verify wantHash and transparently rescan when the recorded offset
// has drifted; primary chunk offsets come from the index and are trusted.
func (s *Store) ReadBlock(height uint32, loc Location, wantHash *chainhash.Hash) ([]byte, error) {
	if loc.Chunk == MissingChunk {
		block, err := s.missing.ReadBlock(height, wantHash)
		if errors.Is(err, ErrStaleLocation) {
			s.logger.Info("missing store offset stale, rescanning",
				zap.Uint32("height", height))
			return s.missing.Rescan(height, wantHash)
		}
		return block, err
	}
	return s.readPrimary(loc)
}

func (s *Store) readPrimary(loc Location) ([]byte, error) {
	if loc.Chunk >= s.meta.NumChunks {
		return nil, fmt.Errorf("chunk %d of %d: %w", loc.Chunk, s.meta.NumChunks, ErrNotFound)
	}
	if !s.curOpen || s.curChunk != loc.Chunk || loc.Offset < s.curOffset {
		if err := s.openChunk(loc.Chunk); err != nil {
			return nil, err
		}
	}
	if loc.Offset > s.curOffset {
		if _, err := io.CopyN(io.Discard, s.curReader, int64(loc.Offset-s.curOffset)); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("offset %d beyond chunk %d: %w", loc.Offset, loc.Chunk, ErrNotFound)
			}
			return nil, fmt.Errorf("seek to offset %d in chunk %d: %w", loc.Offset, loc.Chunk, err)
		}
		s.curOffset = loc.Offset
	}

	block, err := readFrame(s.curReader)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("offset %d beyond chunk %d: %w", loc.Offset, loc.Chunk, ErrNotFound)
		}
		return nil, fmt.Errorf("chunk %d offset %d: %w", loc.Chunk, loc.Offset, err)
	}
	s.curOffset += frameOverhead + uint64(len(block))
	return block, nil
}

func (s *Store) openChunk(chunk uint32) error {
	if s.curOpen {
		if err := s.cur.Close(); err != nil {
			s.logger.Warn("close chunk", zap.Uint32("chunk", s.curChunk), zap.Error(err))
		}
		s.curOpen = false
	}
	src, err := newZstdSource(chunkPath(s.dir, chunk))
	if err != nil {
		return err
	}
	s.cur = src
	s.curReader = bufio.NewReaderSize(src, sourceBufferSize)
	s.curChunk = chunk
	s.curOffset = 0
	s.curOpen = true
	return nil
}

func (s *Store) Close() error {
	if !s.curOpen {
		return nil
	}
	s.curOpen = false
	return s.cur.Close()
}

// ScanChunk streams every frame of one primary chunk through fn together
// with its decompressed offset. It opens its own source so concurrent scans
// of different chunks don't share cursor state.
func ScanChunk(ctx context.Context, dir string, chunk uint32, fn func(offset uint64, block []byte) error) error {
	src, err := newZstdSource(chunkPath(dir, chunk))
	if err != nil {
		return err
	}
	defer src.Close()

	reader := bufio.NewReaderSize(src, sourceBufferSize)
	var offset uint64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		block, err := readFrame(reader)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("chunk %d offset %d: %w", chunk, offset, err)
		}
		if err := fn(offset, block); err != nil {
			return err
		}
		offset += frameOverhead + uint64(len(block))
	}
}

// BlockHash computes the block hash from the 80-byte header at the front of
// a serialized block.
func BlockHash(block []byte) (chainhash.Hash, error) {
	if len(block) < 80 {
		return chainhash.Hash{}, fmt.Errorf("block of %d bytes has no header: %w", len(block), ErrCorruptFrame)
	}
	return chainhash.DoubleHashH(block[:80]), nil
}
