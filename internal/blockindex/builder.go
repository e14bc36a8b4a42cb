package blockindex

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/chainverify7000-backend/internal/blockstore"
	"github.com/goodnatureofminers/chainverify7000-backend/internal/clock"
	"github.com/goodnatureofminers/chainverify7000-backend/pkg/workerpool"
)

const (
	defaultSnapshotEvery = 50_000
	defaultRPCAttempts   = 3
	defaultRPCRetryDelay = time.Second
	defaultRPCTimeout    = 30 * time.Second
	defaultRPCRateLimit  = 4
)

type Config struct {
	Dir           string
	GenesisHash   chainhash.Hash
	ScanWorkers   int
	SnapshotEvery int
	RPCAttempts   int
	RPCRetryDelay time.Duration
	RPCTimeout    time.Duration
	RPCRateLimit  int
}

// Builder assembles the height index: a parallel scan hashes every frame in
// every chunk, then a sequential walk follows prev_hash links from genesis
// assigning heights. Blocks the chunks never held are fetched through the
// oracle and parked in the missing store.
type Builder struct {
	cfg     Config
	meta    blockstore.Meta
	missing *blockstore.MissingStore
	oracle  ChainOracle
	limiter ratelimit.Limiter
	metrics Metrics
	logger  *zap.Logger
}

// NewBuilder wires a Builder. A nil oracle disables backfill: the walk then
// stops at the first gap and persists what it has.
func NewBuilder(
	cfg Config,
	meta blockstore.Meta,
	missing *blockstore.MissingStore,
	oracle ChainOracle,
	metrics Metrics,
	logger *zap.Logger,
) *Builder {
	if cfg.ScanWorkers < 1 {
		cfg.ScanWorkers = runtime.GOMAXPROCS(0)
	}
	if cfg.SnapshotEvery < 1 {
		cfg.SnapshotEvery = defaultSnapshotEvery
	}
	if cfg.RPCAttempts < 1 {
		cfg.RPCAttempts = defaultRPCAttempts
	}
	if cfg.RPCRetryDelay <= 0 {
		cfg.RPCRetryDelay = defaultRPCRetryDelay
	}
	if cfg.RPCTimeout <= 0 {
		cfg.RPCTimeout = defaultRPCTimeout
	}
	if cfg.RPCRateLimit < 1 {
		cfg.RPCRateLimit = defaultRPCRateLimit
	}
	return &Builder{
		cfg:     cfg,
		meta:    meta,
		missing: missing,
		oracle:  oracle,
		limiter: ratelimit.New(cfg.RPCRateLimit),
		metrics: metrics,
		logger:  logger.Named("blockindex"),
	}
}

// Build produces the index, resuming from a persisted snapshot when one
// exists. Cancellation persists progress before returning.
func (b *Builder) Build(ctx context.Context) (*Index, error) {
	indexPath := filepath.Join(b.cfg.Dir, IndexFileName)
	ix, err := Load(indexPath)
	if err != nil {
		return nil, err
	}
	if b.meta.TotalBlocks == 0 {
		return ix, nil
	}
	target := uint32(b.meta.TotalBlocks - 1)
	if h, ok := ix.MaxContiguousHeight(); ok && h >= target {
		b.logger.Info("index already complete",
			zap.Uint32("height", h),
			zap.Int("entries", ix.Len()))
		return ix, nil
	}

	byHash, byPrev, err := b.scanChunks(ctx)
	if err != nil {
		return nil, err
	}

	var (
		height uint32
		cur    chainhash.Hash
	)
	if h, ok := ix.MaxContiguousHeight(); ok {
		e, _ := ix.Get(h)
		height, cur = h, e.Hash
		b.logger.Info("resuming chain walk", zap.Uint32("height", h))
	} else {
		ref, ok := byHash[b.cfg.GenesisHash]
		if !ok {
			return nil, fmt.Errorf("genesis block %s not found in store", b.cfg.GenesisHash)
		}
		ix.Put(Entry{Height: 0, Chunk: ref.chunk, Offset: ref.offset, Hash: b.cfg.GenesisHash})
		height, cur = 0, b.cfg.GenesisHash
	}

	sinceSnapshot := 0
	for height < target {
		if err := ctx.Err(); err != nil {
			b.saveProgress(ix, indexPath)
			return nil, err
		}

		next := height + 1
		entry, found := b.nextFromChunks(next, cur, byPrev)
		if !found {
			if b.oracle == nil {
				b.logger.Warn("chain walk stopped at gap, no oracle configured",
					zap.Uint32("height", next))
				break
			}
			entry, err = b.backfill(ctx, next)
			if err != nil {
				b.saveProgress(ix, indexPath)
				return nil, fmt.Errorf("backfill height %d: %w", next, err)
			}
		}

		ix.Put(entry)
		height, cur = next, entry.Hash
		b.metrics.SetIndexedHeight(height)

		sinceSnapshot++
		if sinceSnapshot >= b.cfg.SnapshotEvery {
			sinceSnapshot = 0
			if err := ix.Save(indexPath, false); err != nil {
				return nil, err
			}
			b.logger.Info("index snapshot saved",
				zap.Uint32("height", height),
				zap.Int("entries", ix.Len()))
		}
	}

	if err := ix.Save(indexPath, false); err != nil {
		return nil, err
	}
	b.logger.Info("index build finished",
		zap.Uint32("height", height),
		zap.Int("entries", ix.Len()))
	return ix, nil
}

type frameRef struct {
	chunk  uint32
	offset uint64
	hash   chainhash.Hash
}

func (b *Builder) scanChunks(ctx context.Context) (map[chainhash.Hash]frameRef, map[chainhash.Hash][]frameRef, error) {
	chunks := make([]uint32, b.meta.NumChunks)
	for i := range chunks {
		chunks[i] = uint32(i)
	}

	var (
		mu     sync.Mutex
		byHash = make(map[chainhash.Hash]frameRef, b.meta.TotalBlocks)
		byPrev = make(map[chainhash.Hash][]frameRef, b.meta.TotalBlocks)
	)
	start := time.Now()
	err := workerpool.Process(ctx, b.cfg.ScanWorkers, chunks, func(ctx context.Context, chunk uint32) error {
		scanStart := time.Now()
		scanErr := blockstore.ScanChunk(ctx, b.cfg.Dir, chunk, func(offset uint64, block []byte) error {
			hash, err := blockstore.BlockHash(block)
			if err != nil {
				return fmt.Errorf("chunk %d offset %d: %w", chunk, offset, err)
			}
			var prev chainhash.Hash
			copy(prev[:], block[4:4+chainhash.HashSize])

			ref := frameRef{chunk: chunk, offset: offset, hash: hash}
			mu.Lock()
			byHash[hash] = ref
			byPrev[prev] = append(byPrev[prev], ref)
			mu.Unlock()
			return nil
		})
		b.metrics.ObserveChunkScan(time.Since(scanStart), scanErr)
		return scanErr
	}, nil)
	if err != nil {
		return nil, nil, err
	}

	b.logger.Info("chunks scanned",
		zap.Uint32("chunks", b.meta.NumChunks),
		zap.Int("blocks", len(byHash)),
		zap.Duration("took", time.Since(start)))
	return byHash, byPrev, nil
}

func (b *Builder) nextFromChunks(height uint32, parent chainhash.Hash, byPrev map[chainhash.Hash][]frameRef) (Entry, bool) {
	candidates := byPrev[parent]
	if len(candidates) == 0 {
		return Entry{}, false
	}

	ref := candidates[0]
	if len(candidates) > 1 {
		// Stale siblings share a parent; prefer the one the chain continues from.
		for _, c := range candidates {
			if len(byPrev[c.hash]) > 0 {
				ref = c
				break
			}
		}
		b.logger.Warn("multiple successors for block, picked the one with a descendant",
			zap.Uint32("height", height),
			zap.Int("candidates", len(candidates)))
	}
	return Entry{Height: height, Chunk: ref.chunk, Offset: ref.offset, Hash: ref.hash}, true
}

// backfill obtains the block for height through the oracle and parks it in
// the missing store, reusing bytes already stored there when they still
// match the chain.
func (b *Builder) backfill(ctx context.Context, height uint32) (Entry, error) {
	hash, err := b.blockHashAt(ctx, height)
	if err != nil {
		return Entry{}, err
	}

	if b.missing.Has(height) {
		_, err := b.missing.ReadBlock(height, hash)
		if err != nil && errors.Is(err, blockstore.ErrStaleLocation) {
			_, err = b.missing.Rescan(height, hash)
		}
		if err == nil {
			return b.missingEntry(height, *hash), nil
		}
		b.logger.Warn("stored missing block unusable, refetching",
			zap.Uint32("height", height),
			zap.Error(err))
	}

	raw, err := b.blockBytesFor(ctx, hash)
	if err != nil {
		return Entry{}, err
	}
	got, err := blockstore.BlockHash(raw)
	if err != nil {
		return Entry{}, err
	}
	if got != *hash {
		return Entry{}, fmt.Errorf("oracle block for height %d hashes to %s, want %s", height, got, hash)
	}
	if err := b.missing.AppendBlock(height, raw); err != nil {
		return Entry{}, err
	}

	b.metrics.IncBackfilledBlocks()
	b.logger.Info("missing block backfilled",
		zap.Uint32("height", height),
		zap.Stringer("hash", hash))
	return b.missingEntry(height, *hash), nil
}

// missingEntry records only the sentinel chunk; the authoritative offset
// lives in the missing store metadata, which can repair itself.
func (b *Builder) missingEntry(height uint32, hash chainhash.Hash) Entry {
	return Entry{Height: height, Chunk: blockstore.MissingChunk, Hash: hash}
}

func (b *Builder) blockHashAt(ctx context.Context, height uint32) (*chainhash.Hash, error) {
	b.limiter.Take()
	var hash *chainhash.Hash
	err := clock.Retry(ctx, b.cfg.RPCAttempts, b.cfg.RPCRetryDelay, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, b.cfg.RPCTimeout)
		defer cancel()
		var err error
		hash, err = b.oracle.BlockHash(callCtx, int64(height))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("block hash at height %d: %w", height, err)
	}
	return hash, nil
}

func (b *Builder) blockBytesFor(ctx context.Context, hash *chainhash.Hash) ([]byte, error) {
	b.limiter.Take()
	var raw []byte
	err := clock.Retry(ctx, b.cfg.RPCAttempts, b.cfg.RPCRetryDelay, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, b.cfg.RPCTimeout)
		defer cancel()
		var err error
		raw, err = b.oracle.BlockBytes(callCtx, hash)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("block bytes for %s: %w", hash, err)
	}
	return raw, nil
}

func (b *Builder) saveProgress(ix *Index, indexPath string) {
	if err := ix.Save(indexPath, false); err != nil {
		b.logger.Warn("save index progress", zap.Error(err))
	}
}
