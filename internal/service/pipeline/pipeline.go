// Package pipeline drives the extract → sort → join → re-sort → verify
// stages over the artifacts in one data directory. Every stage is a separate
// restartable pass; a stage refuses to run until the artifact it consumes
// exists and passes a basic sanity check.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/chainverify7000-backend/internal/model"
	"github.com/goodnatureofminers/chainverify7000-backend/internal/record"
	"github.com/goodnatureofminers/chainverify7000-backend/internal/service/verifier"
)

// Artifact file names inside the data directory.
const (
	InputsUnsortedFile  = "inputs_unsorted.bin"
	InputsSortedFile    = "inputs_sorted.bin"
	OutputsUnsortedFile = "outputs_unsorted.bin"
	OutputsSortedFile   = "outputs_sorted.bin"
	JoinedUnsortedFile  = "joined_unsorted.bin"
	JoinedSortedFile    = "joined_sorted.bin"
	FailureLogFile      = "failures.log"
	SortTempDir         = "sort_tmp"
)

// Stage labels used in logs and metrics.
const (
	StageExtractInputs  = "extract_inputs"
	StageSortInputs     = "sort_inputs"
	StageExtractOutputs = "extract_outputs"
	StageSortOutputs    = "sort_outputs"
	StageJoin           = "join"
	StageSortJoined     = "sort_joined"
	StageVerify         = "verify"
)

var (
	// ErrMissingArtifact reports a stage whose input artifact is absent or
	// empty; the producing stage has not completed.
	ErrMissingArtifact = errors.New("pipeline artifact missing or empty")

	// ErrMisalignedArtifact reports a fixed-record artifact whose size is
	// not a whole number of records.
	ErrMisalignedArtifact = errors.New("pipeline artifact misaligned")
)

type Config struct {
	DataDir     string
	Network     model.Network
	StartHeight uint32
	EndHeight   uint32
}

type Pipeline struct {
	cfg       Config
	extractor Extractor
	sorter    Sorter
	joiner    Joiner
	verifier  Verifier
	reporter  Reporter
	index     HeightIndex
	metrics   Metrics
	logger    *zap.Logger
}

// New wires a Pipeline. reporter and index may be nil; run reporting and the
// index section of Status degrade accordingly.
func New(
	cfg Config,
	extractor Extractor,
	sorter Sorter,
	joiner Joiner,
	verify Verifier,
	reporter Reporter,
	index HeightIndex,
	metrics Metrics,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		extractor: extractor,
		sorter:    sorter,
		joiner:    joiner,
		verifier:  verify,
		reporter:  reporter,
		index:     index,
		metrics:   metrics,
		logger:    logger.Named("pipeline"),
	}
}

func (p *Pipeline) ExtractInputs(ctx context.Context) error {
	return p.stage(StageExtractInputs, func() error {
		stats, err := p.extractor.ExtractInputs(ctx, p.path(InputsUnsortedFile), p.cfg.StartHeight, p.cfg.EndHeight)
		if err != nil {
			return err
		}
		p.logger.Info("inputs extracted",
			zap.Uint64("blocks", stats.Blocks),
			zap.Uint64("records", stats.Records),
			zap.Bool("resumed", stats.Resumed))
		return nil
	})
}

func (p *Pipeline) SortInputs(ctx context.Context) error {
	return p.stage(StageSortInputs, func() error {
		if err := p.requireArtifact(InputsUnsortedFile, record.InputRecordSize); err != nil {
			return err
		}
		return p.sorter.SortInputs(ctx, p.path(InputsUnsortedFile), p.path(InputsSortedFile))
	})
}

func (p *Pipeline) ExtractOutputs(ctx context.Context) error {
	return p.stage(StageExtractOutputs, func() error {
		stats, err := p.extractor.ExtractOutputs(ctx, p.path(OutputsUnsortedFile), p.cfg.StartHeight, p.cfg.EndHeight)
		if err != nil {
			return err
		}
		p.logger.Info("outputs extracted",
			zap.Uint64("blocks", stats.Blocks),
			zap.Uint64("records", stats.Records),
			zap.Uint64("oversize_scripts", stats.OversizeScripts),
			zap.Bool("resumed", stats.Resumed))
		return nil
	})
}

func (p *Pipeline) SortOutputs(ctx context.Context) error {
	return p.stage(StageSortOutputs, func() error {
		if err := p.requireArtifact(OutputsUnsortedFile, 0); err != nil {
			return err
		}
		return p.sorter.SortOutputs(ctx, p.path(OutputsUnsortedFile), p.path(OutputsSortedFile))
	})
}

func (p *Pipeline) Join(ctx context.Context) error {
	return p.stage(StageJoin, func() error {
		if err := p.requireArtifact(InputsSortedFile, record.InputRecordSize); err != nil {
			return err
		}
		if err := p.requireArtifact(OutputsSortedFile, 0); err != nil {
			return err
		}
		stats, err := p.joiner.Run(ctx, p.path(InputsSortedFile), p.path(OutputsSortedFile), p.path(JoinedUnsortedFile))
		if err != nil {
			return err
		}
		p.logger.Info("join finished",
			zap.Uint64("joined", stats.Joined),
			zap.Uint64("unmatched_inputs", stats.UnmatchedInputs),
			zap.Bool("resumed", stats.Resumed))
		return nil
	})
}

func (p *Pipeline) SortJoined(ctx context.Context) error {
	return p.stage(StageSortJoined, func() error {
		if err := p.requireArtifact(JoinedUnsortedFile, 0); err != nil {
			return err
		}
		return p.sorter.SortJoined(ctx, p.path(JoinedUnsortedFile), p.path(JoinedSortedFile))
	})
}

// Verify runs script verification over the configured height range and, when
// a reporter is wired, persists the run summary. Script failures are an
// outcome, not an error; only I/O and stream faults fail the stage.
func (p *Pipeline) Verify(ctx context.Context) error {
	return p.stage(StageVerify, func() error {
		if err := p.requireArtifact(JoinedSortedFile, 0); err != nil {
			return err
		}
		stats, err := p.verifier.Run(ctx, p.path(JoinedSortedFile), p.cfg.StartHeight, p.cfg.EndHeight)
		if err != nil {
			return err
		}
		p.logger.Info("verification outcome",
			zap.Uint64("verified", stats.Verified),
			zap.Uint64("script_false", stats.ScriptFalse),
			zap.Uint64("script_errors", stats.ScriptErrors),
			zap.Uint64("missing_prevout", stats.MissingPrevout))
		return p.report(ctx, stats)
	})
}

// All runs the remaining stages in order. Extraction and the join resume on
// their own and re-enter even when their artifact exists; a sort is skipped
// once its output is present, since a published sorted file is always whole.
func (p *Pipeline) All(ctx context.Context) error {
	steps := []struct {
		output string
		rerun  bool
		run    func(context.Context) error
	}{
		{InputsUnsortedFile, true, p.ExtractInputs},
		{InputsSortedFile, false, p.SortInputs},
		{OutputsUnsortedFile, true, p.ExtractOutputs},
		{OutputsSortedFile, false, p.SortOutputs},
		{JoinedUnsortedFile, true, p.Join},
		{JoinedSortedFile, false, p.SortJoined},
	}
	for _, step := range steps {
		if !step.rerun {
			if info, err := os.Stat(p.path(step.output)); err == nil && info.Size() > 0 {
				p.logger.Info("stage output present, skipping", zap.String("artifact", step.output))
				continue
			}
		}
		if err := step.run(ctx); err != nil {
			return err
		}
	}
	return p.Verify(ctx)
}

func (p *Pipeline) report(ctx context.Context, stats verifier.Stats) error {
	if p.reporter == nil {
		return nil
	}
	rep := model.RunReport{
		Network:        p.cfg.Network,
		StartHeight:    stats.StartHeight,
		EndHeight:      stats.EndHeight,
		Verified:       stats.Verified,
		ScriptFalse:    stats.ScriptFalse,
		ScriptErrors:   stats.ScriptErrors,
		MissingPrevout: stats.MissingPrevout,
		ElapsedSeconds: stats.FinishedAt.Sub(stats.StartedAt).Seconds(),
		StartedAt:      stats.StartedAt,
		FinishedAt:     stats.FinishedAt,
	}
	if err := p.reporter.InsertRunReports(ctx, []model.RunReport{rep}); err != nil {
		return fmt.Errorf("insert run report: %w", err)
	}
	return nil
}

func (p *Pipeline) stage(stage string, fn func() error) (err error) {
	started := time.Now()
	defer func() {
		p.metrics.ObserveStage(stage, err, started)
	}()

	p.logger.Info("stage started", zap.String("stage", stage))
	if err = fn(); err != nil {
		p.logger.Error("stage failed", zap.String("stage", stage), zap.Error(err))
		return fmt.Errorf("%s: %w", stage, err)
	}
	p.logger.Info("stage finished",
		zap.String("stage", stage),
		zap.Duration("elapsed", time.Since(started)))
	return nil
}

func (p *Pipeline) path(name string) string {
	return filepath.Join(p.cfg.DataDir, name)
}

func (p *Pipeline) requireArtifact(name string, align int64) error {
	info, err := os.Stat(p.path(name))
	if os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", name, ErrMissingArtifact)
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", name, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%s: %w", name, ErrMissingArtifact)
	}
	if align > 1 && info.Size()%align != 0 {
		return fmt.Errorf("%s is %d bytes, not a multiple of %d: %w",
			name, info.Size(), align, ErrMisalignedArtifact)
	}
	return nil
}
