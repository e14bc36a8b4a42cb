package record

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// InputRecordSize is the fixed on-disk size of one InputRecord.
const InputRecordSize = 48

// ErrTruncatedRecord marks a record cut off before its declared end.
var ErrTruncatedRecord = errors.New("truncated record")

// InputRecord describes one non-coinbase transaction input: the prevout it
// consumes and where in the chain the spend occurs.
type InputRecord struct {
	PrevoutTxID  chainhash.Hash
	PrevoutIndex uint32
	Height       uint32
	TxIndex      uint32
	InputIndex   uint32
}

// Key returns the prevout this input consumes.
func (r InputRecord) Key() PrevoutKey {
	return PrevoutKey{TxID: r.PrevoutTxID, Index: r.PrevoutIndex}
}

// SpendKey returns the chain location of the spend itself.
func (r InputRecord) SpendKey() SpendKey {
	return SpendKey{Height: r.Height, TxIndex: r.TxIndex, InputIndex: r.InputIndex}
}

// LessInputByPrevout is the comparator for the inputs sort stage.
func LessInputByPrevout(a, b InputRecord) bool {
	return a.Key().Less(b.Key())
}

// InputCodec reads and writes InputRecords.
type InputCodec struct{}

// Append serializes rec onto dst.
func (InputCodec) Append(dst []byte, rec InputRecord) []byte {
	dst = append(dst, rec.PrevoutTxID[:]...)
	dst = binary.LittleEndian.AppendUint32(dst, rec.PrevoutIndex)
	dst = binary.LittleEndian.AppendUint32(dst, rec.Height)
	dst = binary.LittleEndian.AppendUint32(dst, rec.TxIndex)
	dst = binary.LittleEndian.AppendUint32(dst, rec.InputIndex)
	return dst
}

// Read decodes the next record, returning io.EOF at a clean end of stream.
func (InputCodec) Read(r *bufio.Reader) (InputRecord, error) {
	var raw [InputRecordSize]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return InputRecord{}, io.EOF
		}
		return InputRecord{}, fmt.Errorf("input record: %w", ErrTruncatedRecord)
	}
	rec, err := ParseInput(raw[:])
	if err != nil {
		return InputRecord{}, err
	}
	return rec, nil
}

// ParseInput decodes one InputRecord from the start of b.
func ParseInput(b []byte) (InputRecord, error) {
	if len(b) < InputRecordSize {
		return InputRecord{}, fmt.Errorf("input record needs %d bytes, have %d: %w", InputRecordSize, len(b), ErrTruncatedRecord)
	}

	var rec InputRecord
	copy(rec.PrevoutTxID[:], b[:32])
	rec.PrevoutIndex = binary.LittleEndian.Uint32(b[32:36])
	rec.Height = binary.LittleEndian.Uint32(b[36:40])
	rec.TxIndex = binary.LittleEndian.Uint32(b[40:44])
	rec.InputIndex = binary.LittleEndian.Uint32(b[44:48])
	return rec, nil
}
