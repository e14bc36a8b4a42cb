package rpcclient

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/btcsuite/btcd/wire"
)

type (
	RPCMetrics interface {
		Observe(operation string, err error, started time.Time)
	}
)

// ObservedClient wraps the btcd RPC client with per-operation metrics and
// context-aware calls. The underlying client has no context plumbing, so a
// canceled context abandons the in-flight call rather than interrupting it.
type ObservedClient struct {
	client     *rpcclient.Client
	rpcMetrics RPCMetrics
}

func NewObservedClient(client *rpcclient.Client, rpcMetrics RPCMetrics) *ObservedClient {
	return &ObservedClient{
		client:     client,
		rpcMetrics: rpcMetrics,
	}
}

func (r *ObservedClient) BlockCount(ctx context.Context) (count int64, err error) {
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe("get_block_count", err, started)
	}()
	return call(ctx, r.client.GetBlockCount)
}

func (r *ObservedClient) BlockHash(ctx context.Context, blockHeight int64) (hash *chainhash.Hash, err error) {
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe("get_block_hash", err, started)
	}()
	return call(ctx, func() (*chainhash.Hash, error) {
		return r.client.GetBlockHash(blockHeight)
	})
}

// BlockBytes returns the block serialized in wire encoding with witness
// data, matching what the chunked store holds.
func (r *ObservedClient) BlockBytes(ctx context.Context, blockHash *chainhash.Hash) (raw []byte, err error) {
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe("get_block", err, started)
	}()

	msg, err := call(ctx, func() (*wire.MsgBlock, error) {
		return r.client.GetBlock(blockHash)
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(msg.SerializeSize())
	if err := msg.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("serialize block %s: %w", blockHash, err)
	}
	return buf.Bytes(), nil
}

func call[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}
	resCh := make(chan result, 1)
	go func() {
		value, err := fn()
		resCh <- result{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case res := <-resCh:
		return res.value, res.err
	}
}
