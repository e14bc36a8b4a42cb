// Package extract walks blocks in height order and emits the binary input
// and output records the sort and join stages consume.
package extract

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/btcsuite/btcd/btcutil"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/chainverify7000-backend/internal/record"
)

const (
	defaultProgressEvery = 10_000
	writeBufferSize      = 1 << 20

	// KindInputs and KindOutputs label the two extraction passes in logs
	// and metrics.
	KindInputs  = "inputs"
	KindOutputs = "outputs"
)

// Stats summarizes one extraction run.
type Stats struct {
	StartHeight     uint32
	EndHeight       uint32
	Blocks          uint64
	Records         uint64
	OversizeScripts uint64
	Resumed         bool
}

type Extractor struct {
	source        BlockSource
	metrics       Metrics
	logger        *zap.Logger
	progressEvery uint32
}

func New(source BlockSource, metrics Metrics, logger *zap.Logger, progressEvery uint32) *Extractor {
	if progressEvery == 0 {
		progressEvery = defaultProgressEvery
	}
	return &Extractor{
		source:        source,
		metrics:       metrics,
		logger:        logger.Named("extract"),
		progressEvery: progressEvery,
	}
}

// ExtractInputs appends one InputRecord per non-coinbase input of every
// block in [start, end) to path. An existing file resumes where it left
// off; its last height is dropped and re-extracted whole so a kill mid-block
// cannot leave a partial block behind.
func (e *Extractor) ExtractInputs(ctx context.Context, path string, start, end uint32) (Stats, error) {
	resumeFrom, resuming, err := resumeInputs(path)
	if err != nil {
		return Stats{}, err
	}

	codec := record.InputCodec{}
	var scratch []byte
	return e.walk(ctx, KindInputs, path, start, end, resumeFrom, resuming,
		func(height uint32, txIdx int, tx *btcutil.Tx, w *bufio.Writer) (int, error) {
			if txIdx == 0 {
				return 0, nil // coinbase spends nothing
			}
			for inIdx, in := range tx.MsgTx().TxIn {
				rec := record.InputRecord{
					PrevoutTxID:  in.PreviousOutPoint.Hash,
					PrevoutIndex: in.PreviousOutPoint.Index,
					Height:       height,
					TxIndex:      uint32(txIdx),
					InputIndex:   uint32(inIdx),
				}
				scratch = codec.Append(scratch[:0], rec)
				if _, err := w.Write(scratch); err != nil {
					return inIdx, err
				}
			}
			return len(tx.MsgTx().TxIn), nil
		})
}

// ExtractOutputs appends one OutputRecord per output of every transaction,
// coinbase included, in [start, end) to path. Scripts too large for the
// record format are stored empty and counted.
func (e *Extractor) ExtractOutputs(ctx context.Context, path string, start, end uint32) (Stats, error) {
	resumeFrom, resuming, err := resumeOutputs(path)
	if err != nil {
		return Stats{}, err
	}

	codec := record.OutputCodec{}
	var (
		scratch  []byte
		oversize uint64
	)
	stats, err := e.walk(ctx, KindOutputs, path, start, end, resumeFrom, resuming,
		func(height uint32, txIdx int, tx *btcutil.Tx, w *bufio.Writer) (int, error) {
			for outIdx, out := range tx.MsgTx().TxOut {
				script := out.PkScript
				if len(script) > record.MaxScriptLen {
					oversize++
					e.logger.Warn("script exceeds record capacity, storing empty",
						zap.Uint32("height", height),
						zap.Stringer("txid", tx.Hash()),
						zap.Int("script_bytes", len(script)))
					script = nil
				}
				rec := record.OutputRecord{
					TxID:       *tx.Hash(),
					Index:      uint32(outIdx),
					Height:     height,
					IsCoinbase: txIdx == 0,
					Value:      out.Value,
					Script:     script,
				}
				scratch = codec.Append(scratch[:0], rec)
				if _, err := w.Write(scratch); err != nil {
					return outIdx, err
				}
			}
			return len(tx.MsgTx().TxOut), nil
		})
	stats.OversizeScripts = oversize
	return stats, err
}

type emitFunc func(height uint32, txIdx int, tx *btcutil.Tx, w *bufio.Writer) (int, error)

func (e *Extractor) walk(
	ctx context.Context,
	kind, path string,
	start, end, resumeFrom uint32,
	resuming bool,
	emit emitFunc,
) (stats Stats, err error) {
	stats = Stats{StartHeight: start, EndHeight: end, Resumed: resuming}
	if resuming && resumeFrom > start {
		stats.StartHeight = resumeFrom
	}
	if stats.StartHeight >= end {
		e.logger.Info("nothing left to extract",
			zap.String("kind", kind),
			zap.Uint32("from", stats.StartHeight),
			zap.Uint32("end", end))
		return stats, nil
	}
	if resuming {
		e.logger.Info("resuming extraction",
			zap.String("kind", kind),
			zap.Uint32("from", stats.StartHeight))
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return stats, fmt.Errorf("open %s: %w", path, err)
	}
	w := bufio.NewWriterSize(f, writeBufferSize)
	defer func() {
		if ferr := w.Flush(); ferr != nil && err == nil {
			err = fmt.Errorf("flush %s: %w", path, ferr)
		}
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	for height := stats.StartHeight; height < end; height++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		raw, err := e.source.Block(height)
		if err != nil {
			return stats, fmt.Errorf("read block %d: %w", height, err)
		}
		block, err := btcutil.NewBlockFromBytes(raw)
		if err != nil {
			return stats, fmt.Errorf("decode block %d: %w", height, err)
		}

		blockRecords := 0
		for txIdx, tx := range block.Transactions() {
			n, err := emit(height, txIdx, tx, w)
			blockRecords += n
			if err != nil {
				return stats, fmt.Errorf("block %d tx %d: %w", height, txIdx, err)
			}
		}
		stats.Blocks++
		stats.Records += uint64(blockRecords)
		e.metrics.AddExtractedRecords(kind, blockRecords)

		if (height-stats.StartHeight+1)%e.progressEvery == 0 {
			e.metrics.SetExtractedHeight(kind, height)
			e.logger.Info("extraction progress",
				zap.String("kind", kind),
				zap.Uint32("height", height),
				zap.Uint64("records", stats.Records))
		}
	}

	e.metrics.SetExtractedHeight(kind, end-1)
	e.logger.Info("extraction finished",
		zap.String("kind", kind),
		zap.Uint32("from", stats.StartHeight),
		zap.Uint32("end", end),
		zap.Uint64("blocks", stats.Blocks),
		zap.Uint64("records", stats.Records))
	return stats, nil
}
