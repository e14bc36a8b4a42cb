// Package join merge-joins the sorted input stream against the sorted output
// stream on (txid, output index), emitting one JoinedPrevout per input whose
// creating output exists. Both files must already be totally ordered by their
// prevout key.
package join

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/chainverify7000-backend/internal/record"
)

const (
	defaultProgressEvery = 10_000_000
	streamBufferSize     = 1 << 20
	cancelCheckEvery     = 1 << 14
)

// Stats summarizes one join run.
type Stats struct {
	Joined          uint64
	UnmatchedInputs uint64
	InputsRead      uint64
	Resumed         bool
}

type Joiner struct {
	metrics       Metrics
	logger        *zap.Logger
	progressEvery uint64
}

func New(metrics Metrics, logger *zap.Logger, progressEvery uint64) *Joiner {
	if progressEvery == 0 {
		progressEvery = defaultProgressEvery
	}
	return &Joiner{
		metrics:       metrics,
		logger:        logger.Named("join"),
		progressEvery: progressEvery,
	}
}

// Run joins inputsPath against outputsPath into joinedPath. On key equality
// only the input cursor advances, so an output stays current until every
// input referencing it has been matched. An input smaller than the current
// output has no creating output in range; it is counted, not fatal. An
// existing joined file resumes where it left off when its last record can be
// traced back to a unique input; otherwise the join restarts from scratch.
func (j *Joiner) Run(ctx context.Context, inputsPath, outputsPath, joinedPath string) (stats Stats, err error) {
	resumeKey, resuming, err := resume(joinedPath, inputsPath, j.logger)
	if err != nil {
		return Stats{}, err
	}

	stats = Stats{Resumed: resuming}
	if resuming {
		j.logger.Info("resuming join past prevout", zap.Stringer("key", resumeKey))
	}

	inputs, err := os.Open(inputsPath)
	if err != nil {
		return stats, fmt.Errorf("open inputs %s: %w", inputsPath, err)
	}
	defer inputs.Close()
	outputs, err := os.Open(outputsPath)
	if err != nil {
		return stats, fmt.Errorf("open outputs %s: %w", outputsPath, err)
	}
	defer outputs.Close()

	mode := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if resuming {
		mode = os.O_WRONLY | os.O_APPEND
	}
	joined, err := os.OpenFile(joinedPath, mode, 0o644)
	if err != nil {
		return stats, fmt.Errorf("open joined %s: %w", joinedPath, err)
	}

	inR := bufio.NewReaderSize(inputs, streamBufferSize)
	outR := bufio.NewReaderSize(outputs, streamBufferSize)
	w := bufio.NewWriterSize(joined, streamBufferSize)
	defer func() {
		if ferr := w.Flush(); ferr != nil && err == nil {
			err = fmt.Errorf("flush joined %s: %w", joinedPath, ferr)
		}
		if cerr := joined.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close joined %s: %w", joinedPath, cerr)
		}
	}()

	stats, err = j.merge(ctx, &stats, inR, outR, w, resumeKey)
	return stats, err
}

func (j *Joiner) merge(
	ctx context.Context,
	stats *Stats,
	inR, outR *bufio.Reader,
	w *bufio.Writer,
	resumeKey *record.PrevoutKey,
) (Stats, error) {
	var (
		inCodec  record.InputCodec
		outCodec record.OutputCodec
	)

	in, inOK, err := readInput(inCodec, inR)
	if err != nil {
		return *stats, err
	}
	out, outOK, err := readOutput(outCodec, outR)
	if err != nil {
		return *stats, err
	}

	// Position both cursors strictly past the key the last persisted join
	// was produced from.
	if resumeKey != nil {
		for inOK && in.Key().Compare(*resumeKey) <= 0 {
			if in, inOK, err = readInput(inCodec, inR); err != nil {
				return *stats, err
			}
		}
		for outOK && out.Key().Compare(*resumeKey) <= 0 {
			if out, outOK, err = readOutput(outCodec, outR); err != nil {
				return *stats, err
			}
		}
	}

	var (
		joinedCodec record.JoinedCodec
		scratch     []byte
		unmatched   uint64
	)
	for inOK {
		if stats.InputsRead%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return *stats, err
			}
		}
		if !outOK {
			// Every remaining input references an output past the
			// processed range.
			stats.UnmatchedInputs++
			unmatched++
			stats.InputsRead++
			if in, inOK, err = readInput(inCodec, inR); err != nil {
				return *stats, err
			}
			continue
		}

		switch c := in.Key().Compare(out.Key()); {
		case c == 0:
			rec := record.NewJoinedPrevout(in, out)
			scratch = joinedCodec.Append(scratch[:0], rec)
			if _, err := w.Write(scratch); err != nil {
				return *stats, fmt.Errorf("write joined record: %w", err)
			}
			stats.Joined++
			stats.InputsRead++
			j.metrics.AddJoinedRecords(1)
			if in, inOK, err = readInput(inCodec, inR); err != nil {
				return *stats, err
			}
		case c < 0:
			stats.UnmatchedInputs++
			unmatched++
			stats.InputsRead++
			if in, inOK, err = readInput(inCodec, inR); err != nil {
				return *stats, err
			}
		default:
			if out, outOK, err = readOutput(outCodec, outR); err != nil {
				return *stats, err
			}
		}

		if unmatched > 0 {
			j.metrics.AddUnmatchedInputs(int(unmatched))
			unmatched = 0
		}
		if stats.InputsRead > 0 && stats.InputsRead%j.progressEvery == 0 {
			j.logger.Info("join progress",
				zap.Uint64("inputs", stats.InputsRead),
				zap.Uint64("joined", stats.Joined),
				zap.Uint64("unmatched", stats.UnmatchedInputs))
		}
	}

	j.logger.Info("join finished",
		zap.Uint64("inputs", stats.InputsRead),
		zap.Uint64("joined", stats.Joined),
		zap.Uint64("unmatched", stats.UnmatchedInputs))
	return *stats, nil
}

func readInput(codec record.InputCodec, r *bufio.Reader) (record.InputRecord, bool, error) {
	rec, err := codec.Read(r)
	if errors.Is(err, io.EOF) {
		return record.InputRecord{}, false, nil
	}
	if err != nil {
		return record.InputRecord{}, false, fmt.Errorf("read input record: %w", err)
	}
	return rec, true, nil
}

func readOutput(codec record.OutputCodec, r *bufio.Reader) (record.OutputRecord, bool, error) {
	rec, err := codec.Read(r)
	if errors.Is(err, io.EOF) {
		return record.OutputRecord{}, false, nil
	}
	if err != nil {
		return record.OutputRecord{}, false, fmt.Errorf("read output record: %w", err)
	}
	return rec, true, nil
}
