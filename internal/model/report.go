package model

import "time"

// ScriptFailure is one sampled verification failure persisted to ClickHouse
// with enough context to re-investigate without re-reading the chain.
type ScriptFailure struct {
	Network     Network
	Height      uint32
	TxHash      string
	TxIndex     uint32
	InputIndex  uint32
	ScriptClass string
	Detail      string
	TxHex       string
	RecordedAt  time.Time
}

// RunReport summarizes one finished verification run.
type RunReport struct {
	Network        Network
	StartHeight    uint32
	EndHeight      uint32
	Verified       uint64
	ScriptFalse    uint64
	ScriptErrors   uint64
	MissingPrevout uint64
	ElapsedSeconds float64
	StartedAt      time.Time
	FinishedAt     time.Time
}
