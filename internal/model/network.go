// Package model defines domain types shared between the pipeline stages and
// persistence.
package model

type Network string

var (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet3"
	Regtest Network = "regtest"
)
