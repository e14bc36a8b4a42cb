// Package blockstore reads serialized blocks out of chunked, zstd-compressed
// container files. Each chunk holds length-prefixed frames written
// back-to-back; access is through a forward-only cursor because the
// decompression stream cannot seek backward. A secondary store holds blocks
// recovered over RPC that were absent from the primary chunks.
package blockstore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// ByteSource is a forward-only stream of decompressed chunk bytes. The
// concrete implementation links a compression library; callers must not
// depend on which.
type ByteSource interface {
	io.Reader
	Close() error
}

type zstdSource struct {
	f   *os.File
	dec *zstd.Decoder
}

func newZstdSource(path string) (ByteSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open chunk %s: %w", path, err)
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("open zstd stream %s: %w", path, err)
	}
	return &zstdSource{f: f, dec: dec}, nil
}

func (s *zstdSource) Read(p []byte) (int, error) {
	return s.dec.Read(p)
}

func (s *zstdSource) Close() error {
	s.dec.Close()
	return s.f.Close()
}

const (
	frameOverhead = 4
	// maxFrameSize bounds one serialized block; anything larger means the
	// stream position is wrong or the bytes are garbage.
	maxFrameSize = 32 << 20
)

var (
	// ErrNotFound reports a block absent from the store.
	ErrNotFound = errors.New("block not found")
	// ErrCorruptFrame reports undecodable frame bytes at the read position.
	ErrCorruptFrame = errors.New("corrupt chunk frame")
	// ErrStaleLocation reports a recorded offset that no longer points at
	// the expected block. Callers recover via MissingStore.Rescan.
	ErrStaleLocation = errors.New("stale block location")
)

// readFrame reads one [u32 length][bytes] frame, returning io.EOF at a clean
// end of stream.
func readFrame(r io.Reader) ([]byte, error) {
	var lenBuf [frameOverhead]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("frame length: %w", ErrCorruptFrame)
	}

	n := binary.LittleEndian.Uint32(lenBuf[:])
	if n == 0 || n > maxFrameSize {
		return nil, fmt.Errorf("frame length %d: %w", n, ErrCorruptFrame)
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("frame body: %w", ErrCorruptFrame)
	}
	return buf, nil
}

// appendFrame serializes block as one frame onto dst.
func appendFrame(dst []byte, block []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(block)))
	return append(dst, block...)
}
