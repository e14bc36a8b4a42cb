package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainverify7000-backend/internal/model"
)

// InsertScriptFailures stores sampled verification failures in ClickHouse.
func (r *Repository) InsertScriptFailures(ctx context.Context, failures []model.ScriptFailure) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("insert_script_failures", firstNetwork(failures), err, start)
	}()

	if len(failures) == 0 {
		return nil
	}

	const query = `
INSERT INTO script_failures (
	network,
	height,
	tx_hash,
	tx_index,
	input_index,
	script_class,
	detail,
	tx_hex,
	recorded_at
) VALUES`

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare script failures batch: %w", err)
	}

	for _, failure := range failures {
		if err = batch.Append(
			string(failure.Network),
			failure.Height,
			failure.TxHash,
			failure.TxIndex,
			failure.InputIndex,
			failure.ScriptClass,
			failure.Detail,
			failure.TxHex,
			failure.RecordedAt,
		); err != nil {
			return fmt.Errorf("append script failure: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert script failures: %w", err)
	}
	return nil
}
