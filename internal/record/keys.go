// Package record defines the binary record layouts flowing between pipeline
// stages: one record per spent input, one per created output, and the joined
// prevout produced by matching the two. All fields are little-endian and
// records are written back-to-back with no separators, so readers reconstruct
// boundaries from the fixed headers and script length prefixes.
package record

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Plausibility bounds used when scanning a partially written file for the
// last parseable record.
const (
	MaxPlausibleHeight = 1_000_000
	MaxPlausibleValue  = 2_100_000_000_000_000
)

// PrevoutKey orders input and output records by the output being referenced.
type PrevoutKey struct {
	TxID  chainhash.Hash
	Index uint32
}

// Compare returns -1, 0, or 1 ordering first by txid bytes, then by index.
func (k PrevoutKey) Compare(other PrevoutKey) int {
	if c := bytes.Compare(k.TxID[:], other.TxID[:]); c != 0 {
		return c
	}
	switch {
	case k.Index < other.Index:
		return -1
	case k.Index > other.Index:
		return 1
	default:
		return 0
	}
}

// Less reports whether k sorts before other.
func (k PrevoutKey) Less(other PrevoutKey) bool {
	return k.Compare(other) < 0
}

func (k PrevoutKey) String() string {
	return fmt.Sprintf("%s:%d", k.TxID, k.Index)
}

// SpendKey orders joined prevouts by where the spend happens in the chain.
type SpendKey struct {
	Height     uint32
	TxIndex    uint32
	InputIndex uint32
}

// Compare returns -1, 0, or 1 ordering by height, tx index, then input index.
func (k SpendKey) Compare(other SpendKey) int {
	switch {
	case k.Height != other.Height:
		if k.Height < other.Height {
			return -1
		}
		return 1
	case k.TxIndex != other.TxIndex:
		if k.TxIndex < other.TxIndex {
			return -1
		}
		return 1
	case k.InputIndex != other.InputIndex:
		if k.InputIndex < other.InputIndex {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// Less reports whether k sorts before other.
func (k SpendKey) Less(other SpendKey) bool {
	return k.Compare(other) < 0
}

func (k SpendKey) String() string {
	return fmt.Sprintf("%d/%d/%d", k.Height, k.TxIndex, k.InputIndex)
}
