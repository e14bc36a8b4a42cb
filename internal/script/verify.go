package script

import (
	"fmt"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// Prevout carries the created output an input consumes.
type Prevout struct {
	Value    int64
	PkScript []byte
}

// VerifyInput runs the script engine for one input of tx. prevouts must hold
// one entry per input in input order; signature hashes depend on all of
// them. The results distinguish a script that completed and evaluated false,
// (false, nil), from one that aborted, (false, err).
func VerifyInput(tx *wire.MsgTx, inputIndex int, prevouts []Prevout, flags txscript.ScriptFlags) (bool, error) {
	if inputIndex < 0 || inputIndex >= len(tx.TxIn) {
		return false, fmt.Errorf("input %d out of range, tx has %d inputs", inputIndex, len(tx.TxIn))
	}
	if len(prevouts) != len(tx.TxIn) {
		return false, fmt.Errorf("%d prevouts for %d inputs", len(prevouts), len(tx.TxIn))
	}

	fetcher := txscript.NewMultiPrevOutFetcher(nil)
	for i, in := range tx.TxIn {
		fetcher.AddPrevOut(in.PreviousOutPoint, &wire.TxOut{
			Value:    prevouts[i].Value,
			PkScript: prevouts[i].PkScript,
		})
	}
	sigHashes := txscript.NewTxSigHashes(tx, fetcher)

	prev := prevouts[inputIndex]
	vm, err := txscript.NewEngine(prev.PkScript, tx, inputIndex, flags, nil, sigHashes, prev.Value, fetcher)
	if err != nil {
		return false, err
	}
	if err := vm.Execute(); err != nil {
		if txscript.IsErrorCode(err, txscript.ErrEvalFalse) ||
			txscript.IsErrorCode(err, txscript.ErrEmptyStack) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Class buckets a prevout script for failure statistics.
func Class(pkScript []byte) string {
	return txscript.GetScriptClass(pkScript).String()
}
