package blockstore

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
)

const (
	missingDataName  = "chunk_missing.bin.zst"
	missingMetaName  = "missing_blocks.meta"
	missingCacheName = "missing_blocks.cache"
)

// MissingStore holds blocks fetched over RPC because the primary chunks
// never contained them. The compressed data file is append-only, each block
// one independent zstd stream; random reads go through a decompressed cache
// file rebuilt on demand. Offsets refer to the decompressed byte stream.
type MissingStore struct {
	dir    string
	logger *zap.Logger

	offsets    map[uint32]uint64
	totalBytes uint64
}

// OpenMissingStore loads the missing-block metadata in dir, starting empty
// when none exists yet.
func OpenMissingStore(dir string, logger *zap.Logger) (*MissingStore, error) {
	m := &MissingStore{
		dir:     dir,
		logger:  logger.Named("missing_store"),
		offsets: map[uint32]uint64{},
	}
	if err := m.loadMeta(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MissingStore) Has(height uint32) bool {
	_, ok := m.offsets[height]
	return ok
}

func (m *MissingStore) Len() int {
	return len(m.offsets)
}

// ReadBlock returns the block recorded for height, verifying wantHash when
// given. Any disagreement between the recorded offset and the cache contents
// comes back as ErrStaleLocation.
func (m *MissingStore) ReadBlock(height uint32, wantHash *chainhash.Hash) ([]byte, error) {
	offset, ok := m.offsets[height]
	if !ok {
		return nil, fmt.Errorf("height %d not in missing store: %w", height, ErrNotFound)
	}
	if err := m.ensureCache(); err != nil {
		return nil, err
	}

	f, err := os.Open(m.cachePath())
	if err != nil {
		return nil, fmt.Errorf("open missing store cache: %w", err)
	}
	defer f.Close()

	if _, err := f.Seek(int64(offset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek missing store cache to %d: %w", offset, err)
	}
	block, err := readFrame(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("height %d offset %d: %w", height, offset, ErrStaleLocation)
	}
	if wantHash != nil {
		got, err := BlockHash(block)
		if err != nil {
			return nil, fmt.Errorf("height %d offset %d: %w", height, offset, ErrStaleLocation)
		}
		if got != *wantHash {
			return nil, fmt.Errorf("height %d hash %s, want %s: %w", height, got, wantHash, ErrStaleLocation)
		}
	}
	return block, nil
}

// Rescan walks the whole cache looking for the frame whose hash matches
// wantHash, repairs the recorded offset for height, and returns the block.
func (m *MissingStore) Rescan(height uint32, wantHash *chainhash.Hash) ([]byte, error) {
	if wantHash == nil {
		return nil, fmt.Errorf("rescan for height %d needs the expected block hash", height)
	}
	if err := m.ensureCache(); err != nil {
		return nil, err
	}

	f, err := os.Open(m.cachePath())
	if err != nil {
		return nil, fmt.Errorf("open missing store cache: %w", err)
	}
	defer f.Close()

	reader := bufio.NewReaderSize(f, sourceBufferSize)
	var offset uint64
	for {
		block, err := readFrame(reader)
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("height %d not found by rescan: %w", height, ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("missing store cache offset %d: %w", offset, err)
		}
		got, err := BlockHash(block)
		if err == nil && got == *wantHash {
			m.offsets[height] = offset
			if err := m.saveMeta(); err != nil {
				return nil, err
			}
			m.logger.Info("missing store offset repaired",
				zap.Uint32("height", height),
				zap.Uint64("offset", offset))
			return block, nil
		}
		offset += frameOverhead + uint64(len(block))
	}
}

// AppendBlock stores one more recovered block, extending the data file, the
// cache, and the persisted metadata together. Appending a height the store
// already knows replaces its offset; the old frame stays orphaned in the
// append-only files.
func (m *MissingStore) AppendBlock(height uint32, block []byte) error {
	if prev, ok := m.offsets[height]; ok {
		m.logger.Warn("missing store already holds height, replacing offset",
			zap.Uint32("height", height),
			zap.Uint64("offset", prev))
	}
	if err := m.ensureCache(); err != nil {
		return err
	}
	frame := appendFrame(nil, block)

	df, err := os.OpenFile(m.dataPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open missing store data: %w", err)
	}
	enc, err := zstd.NewWriter(df)
	if err != nil {
		_ = df.Close()
		return fmt.Errorf("open zstd writer: %w", err)
	}
	if _, err := enc.Write(frame); err != nil {
		_ = enc.Close()
		_ = df.Close()
		return fmt.Errorf("compress block %d: %w", height, err)
	}
	if err := enc.Close(); err != nil {
		_ = df.Close()
		return fmt.Errorf("flush zstd stream: %w", err)
	}
	if err := df.Close(); err != nil {
		return fmt.Errorf("close missing store data: %w", err)
	}

	cf, err := os.OpenFile(m.cachePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open missing store cache: %w", err)
	}
	if _, err := cf.Write(frame); err != nil {
		_ = cf.Close()
		return fmt.Errorf("extend missing store cache: %w", err)
	}
	if err := cf.Close(); err != nil {
		return fmt.Errorf("close missing store cache: %w", err)
	}

	m.offsets[height] = m.totalBytes
	m.totalBytes += uint64(len(frame))
	return m.saveMeta()
}

// ensureCache rebuilds the decompressed cache when it is absent or shorter
// than the metadata says it must be.
func (m *MissingStore) ensureCache() error {
	if m.totalBytes == 0 {
		return nil
	}
	if info, err := os.Stat(m.cachePath()); err == nil && uint64(info.Size()) >= m.totalBytes {
		return nil
	}

	src, err := newZstdSource(m.dataPath())
	if err != nil {
		return err
	}
	defer src.Close()

	tmp := m.cachePath() + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create missing store cache: %w", err)
	}
	written, err := io.Copy(out, src)
	if err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("decompress missing store data: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close missing store cache: %w", err)
	}
	if uint64(written) < m.totalBytes {
		_ = os.Remove(tmp)
		return fmt.Errorf("missing store data holds %d bytes, metadata says %d", written, m.totalBytes)
	}
	if err := os.Rename(tmp, m.cachePath()); err != nil {
		return fmt.Errorf("install missing store cache: %w", err)
	}
	m.logger.Info("missing store cache rebuilt", zap.Uint64("bytes", uint64(written)))
	return nil
}

func (m *MissingStore) loadMeta() error {
	f, err := os.Open(m.metaPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open missing store metadata: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("parse missing store metadata: malformed line %q", line)
		}
		if key == "total_bytes" {
			m.totalBytes, err = strconv.ParseUint(value, 10, 64)
			if err != nil {
				return fmt.Errorf("parse missing store total_bytes: %w", err)
			}
			continue
		}
		height, err := strconv.ParseUint(key, 10, 32)
		if err != nil {
			return fmt.Errorf("parse missing store height %q: %w", key, err)
		}
		offset, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("parse missing store offset for height %s: %w", key, err)
		}
		m.offsets[uint32(height)] = offset
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read missing store metadata: %w", err)
	}
	return nil
}

func (m *MissingStore) saveMeta() error {
	heights := make([]uint32, 0, len(m.offsets))
	for h := range m.offsets {
		heights = append(heights, h)
	}
	sort.Slice(heights, func(i, j int) bool { return heights[i] < heights[j] })

	var sb strings.Builder
	fmt.Fprintf(&sb, "total_bytes=%d\n", m.totalBytes)
	for _, h := range heights {
		fmt.Fprintf(&sb, "%d=%d\n", h, m.offsets[h])
	}

	tmp := m.metaPath() + ".tmp"
	if err := os.WriteFile(tmp, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write missing store metadata: %w", err)
	}
	if err := os.Rename(tmp, m.metaPath()); err != nil {
		return fmt.Errorf("install missing store metadata: %w", err)
	}
	return nil
}

func (m *MissingStore) dataPath() string {
	return filepath.Join(m.dir, missingDataName)
}

func (m *MissingStore) metaPath() string {
	return filepath.Join(m.dir, missingMetaName)
}

func (m *MissingStore) cachePath() string {
	return filepath.Join(m.dir, missingCacheName)
}
