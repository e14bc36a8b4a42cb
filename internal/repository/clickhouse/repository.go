// Package clickhouse persists verification outcomes: sampled script
// failures and per-run summary reports.
package clickhouse

import (
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/goodnatureofminers/chainverify7000-backend/internal/model"
)

type (
	Metrics interface {
		Observe(operation string, network model.Network, err error, started time.Time)
	}
)

type Repository struct {
	conn    clickhouse.Conn
	metrics Metrics
}

func NewRepository(dsn string, metrics Metrics) (*Repository, error) {
	if dsn == "" {
		return nil, errors.New("clickhouse dsn is required")
	}

	options, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse clickhouse dsn: %w", err)
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open clickhouse connection: %w", err)
	}

	return &Repository{conn: conn, metrics: metrics}, nil
}

func firstNetwork[T any](items []T) model.Network {
	if len(items) == 0 {
		return ""
	}

	switch v := any(items[0]).(type) {
	case model.ScriptFailure:
		return v.Network
	case model.RunReport:
		return v.Network
	default:
		return ""
	}
}
