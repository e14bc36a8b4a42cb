package pipeline

import (
	"context"
	"time"

	"github.com/goodnatureofminers/chainverify7000-backend/internal/extract"
	"github.com/goodnatureofminers/chainverify7000-backend/internal/join"
	"github.com/goodnatureofminers/chainverify7000-backend/internal/model"
	"github.com/goodnatureofminers/chainverify7000-backend/internal/service/verifier"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Extractor interface {
		ExtractInputs(ctx context.Context, path string, start, end uint32) (extract.Stats, error)
		ExtractOutputs(ctx context.Context, path string, start, end uint32) (extract.Stats, error)
	}

	Sorter interface {
		SortInputs(ctx context.Context, inPath, outPath string) error
		SortOutputs(ctx context.Context, inPath, outPath string) error
		SortJoined(ctx context.Context, inPath, outPath string) error
	}

	Joiner interface {
		Run(ctx context.Context, inputsPath, outputsPath, joinedPath string) (join.Stats, error)
	}

	Verifier interface {
		Run(ctx context.Context, joinedPath string, start, end uint32) (verifier.Stats, error)
	}

	// Reporter is the optional ClickHouse sink; a nil Reporter disables
	// durable run reporting.
	Reporter interface {
		InsertRunReports(ctx context.Context, reports []model.RunReport) error
		MaxReportedEndHeight(ctx context.Context, network model.Network) (uint32, error)
	}

	// HeightIndex reports how far the block index extends without gaps.
	HeightIndex interface {
		MaxContiguousHeight() (uint32, bool)
	}

	Metrics interface {
		ObserveStage(stage string, err error, started time.Time)
	}
)
