package script

import (
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// Mainnet activation heights of the rule bundles chaincfg carries no height
// field for.
const (
	mainnetP2SHHeight    = 173805
	mainnetCSVHeight     = 481824
	mainnetSegwitHeight  = 481824
	mainnetTaprootHeight = 709632
)

// Schedule maps block heights onto the verification rule bundles in force on
// one chain. Each bundle becomes live for every block at or past its height.
type Schedule struct {
	p2sh    uint32
	dersig  uint32
	cltv    uint32
	csv     uint32
	segwit  uint32
	taproot uint32
}

// NewSchedule derives the activation schedule from chain parameters. The
// DERSIG and CLTV heights come straight from params; the bundles chaincfg
// tracks as version-bits deployments rather than heights use the historical
// heights on mainnet and apply from genesis on the test chains, which verify
// under the full modern rule set.
func NewSchedule(params *chaincfg.Params) Schedule {
	s := Schedule{
		dersig: uint32(params.BIP0066Height),
		cltv:   uint32(params.BIP0065Height),
	}
	if params.Net == wire.MainNet {
		s.p2sh = mainnetP2SHHeight
		s.csv = mainnetCSVHeight
		s.segwit = mainnetSegwitHeight
		s.taproot = mainnetTaprootHeight
	}
	return s
}

// BaseFlags returns the flags every input of a block at height must satisfy,
// before per-transaction witness and taproot additions.
func (s Schedule) BaseFlags(height uint32) txscript.ScriptFlags {
	var flags txscript.ScriptFlags
	if height >= s.p2sh {
		flags |= txscript.ScriptBip16
	}
	if height >= s.dersig {
		flags |= txscript.ScriptVerifyDERSignatures |
			txscript.ScriptVerifyStrictEncoding |
			txscript.ScriptVerifyLowS
	}
	if height >= s.cltv {
		flags |= txscript.ScriptVerifyCheckLockTimeVerify
	}
	if height >= s.csv {
		flags |= txscript.ScriptVerifyCheckSequenceVerify |
			txscript.ScriptStrictMultiSig
	}
	return flags
}

// TxFlags extends base flags with the witness bit when the transaction
// carries witness data past segwit activation, and the taproot bit when any
// of its outputs pays to taproot.
func (s Schedule) TxFlags(base txscript.ScriptFlags, height uint32, tx *wire.MsgTx) txscript.ScriptFlags {
	flags := base
	if height >= s.segwit && tx.HasWitness() {
		flags |= txscript.ScriptVerifyWitness
	}
	if height >= s.taproot && anyTaprootOutput(tx) {
		flags |= txscript.ScriptVerifyTaproot
	}
	return flags
}

func anyTaprootOutput(tx *wire.MsgTx) bool {
	for _, out := range tx.TxOut {
		if txscript.IsPayToTaproot(out.PkScript) {
			return true
		}
	}
	return false
}
