package verifier

import (
	"context"

	"github.com/goodnatureofminers/chainverify7000-backend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// BlockSource returns the serialized block at a height, typically the
	// chunked store behind the height index.
	BlockSource interface {
		Block(height uint32) ([]byte, error)
	}

	// FailureSink receives sampled verification failures for durable
	// reporting. Add must not block on network I/O.
	FailureSink interface {
		Add(ctx context.Context, failure model.ScriptFailure) error
	}

	Metrics interface {
		AddOutcomes(outcome string, n int)
		SetVerifiedHeight(height uint32)
	}
)
