package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainverify7000-backend/internal/model"
)

// InsertRunReports stores run summary rows in ClickHouse.
func (r *Repository) InsertRunReports(ctx context.Context, reports []model.RunReport) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("insert_run_reports", firstNetwork(reports), err, start)
	}()

	if len(reports) == 0 {
		return nil
	}

	const query = `
INSERT INTO run_reports (
	network,
	start_height,
	end_height,
	verified,
	script_false,
	script_errors,
	missing_prevout,
	elapsed_seconds,
	started_at,
	finished_at
) VALUES`

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare run reports batch: %w", err)
	}

	for _, report := range reports {
		if err = batch.Append(
			string(report.Network),
			report.StartHeight,
			report.EndHeight,
			report.Verified,
			report.ScriptFalse,
			report.ScriptErrors,
			report.MissingPrevout,
			report.ElapsedSeconds,
			report.StartedAt,
			report.FinishedAt,
		); err != nil {
			return fmt.Errorf("append run report: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert run reports: %w", err)
	}
	return nil
}
