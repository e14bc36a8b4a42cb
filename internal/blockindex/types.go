package blockindex

import (
	"context"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

// ChainOracle answers chain queries for blocks absent from the primary
// chunks, typically backed by a bitcoind RPC node.
type ChainOracle interface {
	BlockHash(ctx context.Context, height int64) (*chainhash.Hash, error)
	BlockBytes(ctx context.Context, hash *chainhash.Hash) ([]byte, error)
}

type Metrics interface {
	ObserveChunkScan(duration time.Duration, err error)
	IncBackfilledBlocks()
	SetIndexedHeight(height uint32)
}
