// Package extsort sorts binary record streams larger than memory by spilling
// bounded sorted chunks to disk and k-way merging them with a min-heap.
package extsort

import (
	"bufio"
	"container/heap"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

const (
	defaultChunkRecords = 4 << 20
	streamBufferSize    = 1 << 20
	cancelCheckEvery    = 1 << 14
)

// Codec serializes records of one binary layout.
type Codec[T any] interface {
	// Append serializes rec onto dst and returns the extended slice.
	Append(dst []byte, rec T) []byte
	// Read decodes the next record from r. A clean end of stream is io.EOF;
	// a record cut off mid-way must surface as a distinct decode error.
	Read(r *bufio.Reader) (T, error)
}

// Config bounds the sorter's working set.
type Config struct {
	// ChunkRecords caps how many records are buffered and sorted in memory
	// before spilling. Zero selects the package default.
	ChunkRecords int
	// TempDir holds the numbered spill files for the duration of one sort.
	TempDir string
}

// Stats reports one completed sort.
type Stats struct {
	Records int64
	Spills  int
}

// Sort reads every record from in, sorts the whole stream under less, and
// writes the totally ordered result to out. Spill files live in cfg.TempDir
// and are removed as soon as each one is exhausted during the merge, keeping
// peak disk usage near one input size.
func Sort[T any](ctx context.Context, in io.Reader, out io.Writer, codec Codec[T], less func(a, b T) bool, cfg Config, logger *zap.Logger) (Stats, error) {
	stats := Stats{}
	if cfg.ChunkRecords <= 0 {
		cfg.ChunkRecords = defaultChunkRecords
	}
	if cfg.TempDir == "" {
		return stats, errors.New("temp dir is required")
	}
	if err := os.MkdirAll(cfg.TempDir, 0o755); err != nil {
		return stats, fmt.Errorf("create temp dir: %w", err)
	}

	spills, records, err := writeSortedSpills(ctx, in, codec, less, cfg, logger)
	stats.Records = records
	stats.Spills = len(spills)
	if err != nil {
		removeSpills(spills)
		return stats, err
	}

	if err := mergeSpills(ctx, spills, out, codec, less); err != nil {
		removeSpills(spills)
		return stats, err
	}
	return stats, nil
}

func writeSortedSpills[T any](ctx context.Context, in io.Reader, codec Codec[T], less func(a, b T) bool, cfg Config, logger *zap.Logger) ([]string, int64, error) {
	reader := bufio.NewReaderSize(in, streamBufferSize)
	buf := make([]T, 0, min(cfg.ChunkRecords, 1<<20))

	var (
		spills  []string
		records int64
	)
	for {
		if err := ctx.Err(); err != nil {
			return spills, records, err
		}

		buf = buf[:0]
		sawEOF := false
		for len(buf) < cfg.ChunkRecords {
			rec, err := codec.Read(reader)
			if errors.Is(err, io.EOF) {
				sawEOF = true
				break
			}
			if err != nil {
				return spills, records, fmt.Errorf("read record %d: %w", records+int64(len(buf)), err)
			}
			buf = append(buf, rec)
		}
		if len(buf) == 0 {
			return spills, records, nil
		}

		sort.Slice(buf, func(i, j int) bool { return less(buf[i], buf[j]) })

		path := filepath.Join(cfg.TempDir, fmt.Sprintf("chunk_%d.bin", len(spills)))
		if err := writeSpill(path, buf, codec); err != nil {
			return spills, records, err
		}
		spills = append(spills, path)
		records += int64(len(buf))
		logger.Debug("spill written",
			zap.Int("spill", len(spills)-1),
			zap.Int("records", len(buf)),
		)

		if sawEOF {
			return spills, records, nil
		}
	}
}

func writeSpill[T any](path string, records []T, codec Codec[T]) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create spill %s: %w", path, err)
	}

	w := bufio.NewWriterSize(f, streamBufferSize)
	scratch := make([]byte, 0, 4096)
	for i := range records {
		scratch = codec.Append(scratch[:0], records[i])
		if _, err := w.Write(scratch); err != nil {
			_ = f.Close()
			return fmt.Errorf("write spill %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush spill %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close spill %s: %w", path, err)
	}
	return nil
}

func removeSpills(paths []string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}

type mergeHead[T any] struct {
	rec T
	src int
}

type mergeHeap[T any] struct {
	heads []mergeHead[T]
	less  func(a, b T) bool
}

func (h *mergeHeap[T]) Len() int { return len(h.heads) }

func (h *mergeHeap[T]) Less(i, j int) bool {
	if h.less(h.heads[i].rec, h.heads[j].rec) {
		return true
	}
	if h.less(h.heads[j].rec, h.heads[i].rec) {
		return false
	}
	return h.heads[i].src < h.heads[j].src
}

func (h *mergeHeap[T]) Swap(i, j int) { h.heads[i], h.heads[j] = h.heads[j], h.heads[i] }

func (h *mergeHeap[T]) Push(x any) { h.heads = append(h.heads, x.(mergeHead[T])) }

func (h *mergeHeap[T]) Pop() any {
	last := h.heads[len(h.heads)-1]
	h.heads = h.heads[:len(h.heads)-1]
	return last
}

type spillSource struct {
	f *os.File
	r *bufio.Reader
}

func mergeSpills[T any](ctx context.Context, spills []string, out io.Writer, codec Codec[T], less func(a, b T) bool) error {
	sources := make([]*spillSource, len(spills))
	retired := make([]bool, len(spills))

	retire := func(i int) error {
		if retired[i] {
			return nil
		}
		retired[i] = true
		if err := sources[i].f.Close(); err != nil {
			return fmt.Errorf("close spill %s: %w", spills[i], err)
		}
		if err := os.Remove(spills[i]); err != nil {
			return fmt.Errorf("remove spill %s: %w", spills[i], err)
		}
		return nil
	}
	defer func() {
		for i := range sources {
			if sources[i] != nil && !retired[i] {
				_ = sources[i].f.Close()
			}
		}
	}()

	h := &mergeHeap[T]{less: less, heads: make([]mergeHead[T], 0, len(spills))}
	for i, path := range spills {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open spill %s: %w", path, err)
		}
		sources[i] = &spillSource{f: f, r: bufio.NewReaderSize(f, streamBufferSize)}

		rec, err := codec.Read(sources[i].r)
		if errors.Is(err, io.EOF) {
			if err := retire(i); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("read spill %s: %w", path, err)
		}
		h.heads = append(h.heads, mergeHead[T]{rec: rec, src: i})
	}
	heap.Init(h)

	w := bufio.NewWriterSize(out, streamBufferSize)
	scratch := make([]byte, 0, 4096)
	var written int64
	for h.Len() > 0 {
		if written%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		head := h.heads[0]
		scratch = codec.Append(scratch[:0], head.rec)
		if _, err := w.Write(scratch); err != nil {
			return fmt.Errorf("write merged record: %w", err)
		}
		written++

		rec, err := codec.Read(sources[head.src].r)
		switch {
		case errors.Is(err, io.EOF):
			heap.Pop(h)
			if err := retire(head.src); err != nil {
				return err
			}
		case err != nil:
			return fmt.Errorf("read spill %s: %w", spills[head.src], err)
		default:
			h.heads[0].rec = rec
			heap.Fix(h, 0)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush merged output: %w", err)
	}
	return nil
}
