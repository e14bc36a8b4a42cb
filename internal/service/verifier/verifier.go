// Package verifier replays every script of a block range against the
// prevouts recovered by the join stages. Blocks are consumed strictly in
// height order so activation flags, the median-time-past window, and the
// same-block output fallback stay correct; verification inside one block
// fans out across a worker pool.
package verifier

import (
	"bufio"
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/chainverify7000-backend/internal/model"
	"github.com/goodnatureofminers/chainverify7000-backend/internal/record"
	"github.com/goodnatureofminers/chainverify7000-backend/internal/script"
	"github.com/goodnatureofminers/chainverify7000-backend/pkg/workerpool"
)

const (
	defaultBatchSize          = 2000
	defaultProgressEvery      = 1000
	defaultFailureSampleEvery = 100
	mtpWarmupBlocks           = 11
	streamBufferSize          = 1 << 20
)

// Outcome labels for metrics and failure reporting.
const (
	OutcomeVerified       = "verified"
	OutcomeScriptFalse    = "script_false"
	OutcomeScriptError    = "script_error"
	OutcomeMissingPrevout = "missing_prevout"
)

// ErrStreamOutOfOrder reports a joined prevout whose spend location lies
// before the block currently being verified. The re-sort stage guarantees
// spend order, so this means the joined file is stale or corrupt.
var ErrStreamOutOfOrder = errors.New("joined prevout stream out of order")

type Config struct {
	Network model.Network
	// Workers sizes the verification pool; zero means GOMAXPROCS.
	Workers int
	// BatchSize is how many inputs one worker verifies per dispatch.
	BatchSize int
	// FailureSampleEvery reports every Nth failure to the log and sink.
	FailureSampleEvery int
	FailureLogPath     string
	ProgressEvery      uint32
}

// Stats summarizes one verification run.
type Stats struct {
	StartHeight     uint32
	EndHeight       uint32
	Blocks          uint64
	Transactions    uint64
	Verified        uint64
	ScriptFalse     uint64
	ScriptErrors    uint64
	MissingPrevout  uint64
	FailuresByClass map[string]uint64
	StartedAt       time.Time
	FinishedAt      time.Time
}

type Verifier struct {
	cfg     Config
	source  BlockSource
	sink    FailureSink
	metrics Metrics
	logger  *zap.Logger
}

// New wires a Verifier. A nil sink disables durable failure reporting; the
// sampled failure log file is kept either way.
func New(cfg Config, source BlockSource, sink FailureSink, metrics Metrics, logger *zap.Logger) *Verifier {
	if cfg.Workers < 1 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.FailureSampleEvery < 1 {
		cfg.FailureSampleEvery = defaultFailureSampleEvery
	}
	if cfg.ProgressEvery == 0 {
		cfg.ProgressEvery = defaultProgressEvery
	}
	return &Verifier{
		cfg:     cfg,
		source:  source,
		sink:    sink,
		metrics: metrics,
		logger:  logger.Named("verifier"),
	}
}

// inputTask verifies one input of one transaction. The prevouts slice is
// shared between all tasks of the same transaction. height and mtp ride
// along for failure context; the engine itself consumes only the flags.
type inputTask struct {
	tx         *wire.MsgTx
	txHash     string
	txIndex    uint32
	inputIndex uint32
	prevouts   []script.Prevout
	flags      txscript.ScriptFlags
	height     uint32
	mtp        int64
}

// Run verifies every script of blocks [start, end) against the spend-order
// joined prevout file at joinedPath.
func (v *Verifier) Run(ctx context.Context, joinedPath string, start, end uint32) (Stats, error) {
	stats := Stats{
		StartHeight:     start,
		EndHeight:       end,
		FailuresByClass: map[string]uint64{},
		StartedAt:       time.Now(),
	}

	params, err := script.Params(v.cfg.Network)
	if err != nil {
		return stats, err
	}
	schedule := script.NewSchedule(params)

	joined, err := os.Open(joinedPath)
	if err != nil {
		return stats, fmt.Errorf("open joined prevouts %s: %w", joinedPath, err)
	}
	defer joined.Close()
	prevouts := newPrevoutStream(bufio.NewReaderSize(joined, streamBufferSize))

	failures, err := newFailureRecorder(v.cfg, v.sink, v.logger)
	if err != nil {
		return stats, err
	}
	defer failures.Close()

	window, err := v.warmTimeWindow(start)
	if err != nil {
		return stats, err
	}

	var (
		verified       atomic.Uint64
		scriptFalse    atomic.Uint64
		scriptErrors   atomic.Uint64
		missingPrevout uint64
	)
	for height := start; height < end; height++ {
		if err := ctx.Err(); err != nil {
			return v.finish(stats, &verified, &scriptFalse, &scriptErrors, missingPrevout, failures), err
		}

		block, err := v.readBlock(height)
		if err != nil {
			return v.finish(stats, &verified, &scriptFalse, &scriptErrors, missingPrevout, failures), err
		}

		blockPrevouts, err := prevouts.takeBlock(height)
		if err != nil {
			return v.finish(stats, &verified, &scriptFalse, &scriptErrors, missingPrevout, failures), err
		}

		tasks, missed := v.buildTasks(schedule, block, height, blockPrevouts, window.MedianTimePast(), failures)
		missingPrevout += missed
		stats.Transactions += uint64(len(block.Transactions()))

		err = workerpool.ProcessChunked(ctx, v.cfg.Workers, v.cfg.BatchSize, tasks,
			func(ctx context.Context, batch []inputTask) error {
				for i := range batch {
					v.verifyOne(ctx, &batch[i], &verified, &scriptFalse, &scriptErrors, failures)
				}
				return nil
			}, nil)
		if err != nil {
			return v.finish(stats, &verified, &scriptFalse, &scriptErrors, missingPrevout, failures), err
		}

		window.Push(block.MsgBlock().Header.Timestamp.Unix())
		stats.Blocks++

		if (height-start+1)%v.cfg.ProgressEvery == 0 {
			v.metrics.SetVerifiedHeight(height)
			v.logger.Info("verification progress",
				zap.Uint32("height", height),
				zap.Uint64("verified", verified.Load()),
				zap.Uint64("script_false", scriptFalse.Load()),
				zap.Uint64("script_errors", scriptErrors.Load()),
				zap.Uint64("missing_prevout", missingPrevout))
		}
	}

	if end > start {
		v.metrics.SetVerifiedHeight(end - 1)
	}
	stats = v.finish(stats, &verified, &scriptFalse, &scriptErrors, missingPrevout, failures)
	v.logger.Info("verification finished",
		zap.Uint32("start", start),
		zap.Uint32("end", end),
		zap.Uint64("verified", stats.Verified),
		zap.Uint64("script_false", stats.ScriptFalse),
		zap.Uint64("script_errors", stats.ScriptErrors),
		zap.Uint64("missing_prevout", stats.MissingPrevout))
	return stats, nil
}

func (v *Verifier) finish(
	stats Stats,
	verified, scriptFalse, scriptErrors *atomic.Uint64,
	missingPrevout uint64,
	failures *failureRecorder,
) Stats {
	stats.Verified = verified.Load()
	stats.ScriptFalse = scriptFalse.Load()
	stats.ScriptErrors = scriptErrors.Load()
	stats.MissingPrevout = missingPrevout
	stats.FailuresByClass = failures.byClass()
	stats.FinishedAt = time.Now()

	v.metrics.AddOutcomes(OutcomeVerified, int(stats.Verified))
	v.metrics.AddOutcomes(OutcomeScriptFalse, int(stats.ScriptFalse))
	v.metrics.AddOutcomes(OutcomeScriptError, int(stats.ScriptErrors))
	v.metrics.AddOutcomes(OutcomeMissingPrevout, int(stats.MissingPrevout))
	return stats
}

func (v *Verifier) readBlock(height uint32) (*btcutil.Block, error) {
	raw, err := v.source.Block(height)
	if err != nil {
		return nil, fmt.Errorf("read block %d: %w", height, err)
	}
	block, err := btcutil.NewBlockFromBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("decode block %d: %w", height, err)
	}
	return block, nil
}

// warmTimeWindow seeds the median-time-past window with the headers of the
// blocks immediately preceding start, so verification resumed mid-chain
// computes the same medians as a run from genesis.
func (v *Verifier) warmTimeWindow(start uint32) (*script.TimeWindow, error) {
	window := script.NewTimeWindow()
	from := uint32(0)
	if start > mtpWarmupBlocks {
		from = start - mtpWarmupBlocks
	}
	for height := from; height < start; height++ {
		block, err := v.readBlock(height)
		if err != nil {
			return nil, fmt.Errorf("warm median-time-past window: %w", err)
		}
		window.Push(block.MsgBlock().Header.Timestamp.Unix())
	}
	return window, nil
}

// buildTasks resolves the prevout vector of every non-coinbase transaction
// and emits one task per resolvable input. A transaction with any
// unresolved prevout contributes no tasks: signature hashes commit to every
// input's amount and script, so a single gap makes all of them unverifiable.
func (v *Verifier) buildTasks(
	schedule script.Schedule,
	block *btcutil.Block,
	height uint32,
	blockPrevouts map[spendRef]record.JoinedPrevout,
	mtp int64,
	failures *failureRecorder,
) ([]inputTask, uint64) {
	base := schedule.BaseFlags(height)

	var (
		tasks        []inputTask
		missing      uint64
		blockOutputs map[wire.OutPoint]*wire.TxOut
	)
	for txIdx, tx := range block.Transactions() {
		if txIdx == 0 {
			continue // coinbase spends nothing
		}

		msg := tx.MsgTx()
		resolved := make([]script.Prevout, len(msg.TxIn))
		complete := true
		for inIdx, in := range msg.TxIn {
			if rec, ok := blockPrevouts[spendRef{tx: uint32(txIdx), input: uint32(inIdx)}]; ok {
				resolved[inIdx] = script.Prevout{Value: rec.Value, PkScript: rec.Script}
				continue
			}
			// Outputs created and spent inside one block never cross
			// the external join; resolve them from the block itself.
			if blockOutputs == nil {
				blockOutputs = indexBlockOutputs(block)
			}
			if out, ok := blockOutputs[in.PreviousOutPoint]; ok {
				resolved[inIdx] = script.Prevout{Value: out.Value, PkScript: out.PkScript}
				continue
			}
			complete = false
			break
		}
		if !complete {
			missing += uint64(len(msg.TxIn))
			failures.record(context.Background(), sampledFailure{
				network: v.cfg.Network,
				height:  height,
				mtp:     mtp,
				txHash:  tx.Hash().String(),
				txIndex: uint32(txIdx),
				class:   OutcomeMissingPrevout,
				detail:  "transaction has unresolved prevouts",
				tx:      msg,
			})
			continue
		}

		flags := schedule.TxFlags(base, height, msg)
		txHash := tx.Hash().String()
		for inIdx := range msg.TxIn {
			tasks = append(tasks, inputTask{
				tx:         msg,
				txHash:     txHash,
				txIndex:    uint32(txIdx),
				inputIndex: uint32(inIdx),
				prevouts:   resolved,
				flags:      flags,
				height:     height,
				mtp:        mtp,
			})
		}
	}
	return tasks, missing
}

func (v *Verifier) verifyOne(
	ctx context.Context,
	task *inputTask,
	verified, scriptFalse, scriptErrors *atomic.Uint64,
	failures *failureRecorder,
) {
	ok, err := script.VerifyInput(task.tx, int(task.inputIndex), task.prevouts, task.flags)
	switch {
	case err != nil:
		scriptErrors.Add(1)
		failures.record(ctx, sampledFailure{
			network:    v.cfg.Network,
			height:     task.height,
			mtp:        task.mtp,
			txHash:     task.txHash,
			txIndex:    task.txIndex,
			inputIndex: task.inputIndex,
			class:      script.Class(task.prevouts[task.inputIndex].PkScript),
			detail:     err.Error(),
			tx:         task.tx,
		})
	case !ok:
		scriptFalse.Add(1)
		failures.record(ctx, sampledFailure{
			network:    v.cfg.Network,
			height:     task.height,
			mtp:        task.mtp,
			txHash:     task.txHash,
			txIndex:    task.txIndex,
			inputIndex: task.inputIndex,
			class:      script.Class(task.prevouts[task.inputIndex].PkScript),
			detail:     "script evaluated to false",
			tx:         task.tx,
		})
	default:
		verified.Add(1)
	}
}

func indexBlockOutputs(block *btcutil.Block) map[wire.OutPoint]*wire.TxOut {
	outputs := map[wire.OutPoint]*wire.TxOut{}
	for _, tx := range block.Transactions() {
		hash := *tx.Hash()
		for outIdx, out := range tx.MsgTx().TxOut {
			outputs[wire.OutPoint{Hash: hash, Index: uint32(outIdx)}] = out
		}
	}
	return outputs
}

// spendRef addresses one input inside the current block.
type spendRef struct {
	tx    uint32
	input uint32
}

// prevoutStream reads the spend-ordered joined file one block at a time
// with a single record of lookahead.
type prevoutStream struct {
	r       *bufio.Reader
	codec   record.JoinedCodec
	pending *record.JoinedPrevout
	primed  bool
}

func newPrevoutStream(r *bufio.Reader) *prevoutStream {
	return &prevoutStream{r: r}
}

func (s *prevoutStream) takeBlock(height uint32) (map[spendRef]record.JoinedPrevout, error) {
	if !s.primed {
		if err := s.advance(); err != nil {
			return nil, err
		}
		s.primed = true
	}

	prevouts := map[spendRef]record.JoinedPrevout{}
	for s.pending != nil {
		rec := *s.pending
		if rec.SpendingHeight > height {
			break
		}
		if rec.SpendingHeight < height {
			return nil, fmt.Errorf("prevout for height %d while verifying %d: %w",
				rec.SpendingHeight, height, ErrStreamOutOfOrder)
		}
		prevouts[spendRef{tx: rec.SpendingTxIndex, input: rec.SpendingInputIndex}] = rec
		if err := s.advance(); err != nil {
			return nil, err
		}
	}
	return prevouts, nil
}

func (s *prevoutStream) advance() error {
	rec, err := s.codec.Read(s.r)
	if errors.Is(err, io.EOF) {
		s.pending = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("read joined prevout: %w", err)
	}
	s.pending = &rec
	return nil
}

type sampledFailure struct {
	network    model.Network
	height     uint32
	mtp        int64
	txHash     string
	txIndex    uint32
	inputIndex uint32
	class      string
	detail     string
	tx         *wire.MsgTx
}

// failureRecorder tallies failures per script class and forwards every Nth
// one, with full transaction hex, to the durable log and the sink.
type failureRecorder struct {
	sampleEvery uint64
	sink        FailureSink
	logger      *zap.Logger

	seen atomic.Uint64

	mu      sync.Mutex
	classes map[string]uint64
	file    *os.File
	w       *bufio.Writer
}

func newFailureRecorder(cfg Config, sink FailureSink, logger *zap.Logger) (*failureRecorder, error) {
	rec := &failureRecorder{
		sampleEvery: uint64(cfg.FailureSampleEvery),
		sink:        sink,
		logger:      logger,
		classes:     map[string]uint64{},
	}
	if cfg.FailureLogPath != "" {
		f, err := os.OpenFile(cfg.FailureLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open failure log %s: %w", cfg.FailureLogPath, err)
		}
		rec.file = f
		rec.w = bufio.NewWriter(f)
	}
	return rec, nil
}

func (r *failureRecorder) record(ctx context.Context, failure sampledFailure) {
	r.mu.Lock()
	r.classes[failure.class]++
	r.mu.Unlock()

	n := r.seen.Add(1)
	if (n-1)%r.sampleEvery != 0 {
		return
	}

	txHex := ""
	if failure.tx != nil {
		var buf bytes.Buffer
		buf.Grow(failure.tx.SerializeSize())
		if err := failure.tx.Serialize(&buf); err == nil {
			txHex = hex.EncodeToString(buf.Bytes())
		}
	}

	if r.w != nil {
		r.mu.Lock()
		fmt.Fprintf(r.w, "height=%d mtp=%d tx=%s tx_index=%d input=%d class=%s detail=%q hex=%s\n",
			failure.height, failure.mtp, failure.txHash, failure.txIndex, failure.inputIndex,
			failure.class, failure.detail, txHex)
		r.mu.Unlock()
	}

	if r.sink != nil {
		err := r.sink.Add(ctx, model.ScriptFailure{
			Network:     failure.network,
			Height:      failure.height,
			TxHash:      failure.txHash,
			TxIndex:     failure.txIndex,
			InputIndex:  failure.inputIndex,
			ScriptClass: failure.class,
			Detail:      failure.detail,
			TxHex:       txHex,
			RecordedAt:  time.Now(),
		})
		if err != nil {
			r.logger.Warn("failure not queued for reporting", zap.Error(err))
		}
	}
}

func (r *failureRecorder) byClass() map[string]uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]uint64, len(r.classes))
	for class, count := range r.classes {
		out[class] = count
	}
	return out
}

func (r *failureRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.w == nil {
		return nil
	}
	if err := r.w.Flush(); err != nil {
		_ = r.file.Close()
		return err
	}
	return r.file.Close()
}
