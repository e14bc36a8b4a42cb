// Package script computes per-height verification flag sets and
// median-time-past, and adapts the txscript engine to the batch verifier's
// call shape.
package script

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"

	"github.com/goodnatureofminers/chainverify7000-backend/internal/model"
)

// Params maps a network name onto btcd chain parameters.
func Params(network model.Network) (*chaincfg.Params, error) {
	switch network {
	case model.Mainnet:
		return &chaincfg.MainNetParams, nil
	case model.Testnet:
		return &chaincfg.TestNet3Params, nil
	case model.Regtest:
		return &chaincfg.RegressionNetParams, nil
	}
	return nil, fmt.Errorf("unknown network %q", network)
}
