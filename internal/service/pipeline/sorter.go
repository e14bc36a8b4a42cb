package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/chainverify7000-backend/internal/record"
	"github.com/goodnatureofminers/chainverify7000-backend/pkg/extsort"
)

// FileSorter sorts the pipeline's record files with the external sorter. Each
// sort writes to a temp file next to the target and renames on success, so a
// killed sort never leaves a half-written artifact behind.
type FileSorter struct {
	chunkRecords int
	tempDir      string
	logger       *zap.Logger
}

func NewFileSorter(chunkRecords int, tempDir string, logger *zap.Logger) *FileSorter {
	return &FileSorter{
		chunkRecords: chunkRecords,
		tempDir:      tempDir,
		logger:       logger.Named("sort"),
	}
}

func (s *FileSorter) SortInputs(ctx context.Context, inPath, outPath string) error {
	return sortFile(ctx, s, inPath, outPath, record.InputCodec{}, record.LessInputByPrevout)
}

func (s *FileSorter) SortOutputs(ctx context.Context, inPath, outPath string) error {
	return sortFile(ctx, s, inPath, outPath, record.OutputCodec{}, record.LessOutputByPrevout)
}

func (s *FileSorter) SortJoined(ctx context.Context, inPath, outPath string) error {
	return sortFile(ctx, s, inPath, outPath, record.JoinedCodec{}, record.LessJoinedBySpend)
}

func sortFile[T any](
	ctx context.Context,
	s *FileSorter,
	inPath, outPath string,
	codec extsort.Codec[T],
	less func(a, b T) bool,
) (err error) {
	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", inPath, err)
	}
	defer in.Close()

	tmpPath := outPath + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmpPath, err)
	}
	defer func() {
		if err != nil {
			_ = out.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	cfg := extsort.Config{
		ChunkRecords: s.chunkRecords,
		TempDir:      filepath.Join(s.tempDir, filepath.Base(outPath)+".spills"),
	}
	stats, err := extsort.Sort(ctx, in, out, codec, less, cfg, s.logger)
	if err != nil {
		return fmt.Errorf("sort %s: %w", inPath, err)
	}
	if err = out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}
	if err = os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("publish %s: %w", outPath, err)
	}

	s.logger.Info("sort finished",
		zap.String("output", outPath),
		zap.Int64("records", stats.Records),
		zap.Int("spills", stats.Spills))
	return nil
}
