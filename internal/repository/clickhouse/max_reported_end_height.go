package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainverify7000-backend/internal/model"
)

// MaxReportedEndHeight returns the largest end height any finished run has
// reported for the network, zero when no run has reported yet.
func (r *Repository) MaxReportedEndHeight(ctx context.Context, network model.Network) (uint32, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("max_reported_end_height", network, err, start)
	}()

	const query = `
SELECT coalesce(max(end_height), toUInt32(0)) AS max_end_height
FROM run_reports
WHERE network = ?`

	rows, err := r.conn.Query(ctx, query, network)
	if err != nil {
		return 0, fmt.Errorf("query max reported end height: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	var height uint32
	if !rows.Next() {
		return 0, fmt.Errorf("max reported end height not found")
	}

	if err = rows.Scan(&height); err != nil {
		return 0, fmt.Errorf("scan max reported end height: %w", err)
	}
	if err = rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate max reported end height: %w", err)
	}

	return height, nil
}
