package record

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// OutputHeaderSize is the fixed header preceding an OutputRecord's script.
const OutputHeaderSize = 51

// MaxScriptLen is the longest script an output or joined record can carry.
const MaxScriptLen = math.MaxUint16

// OutputRecord describes one created transaction output with everything a
// future spend needs to verify against it.
type OutputRecord struct {
	TxID       chainhash.Hash
	Index      uint32
	Height     uint32
	IsCoinbase bool
	Value      int64
	Script     []byte
}

// Key returns the identity a spending input will reference.
func (r OutputRecord) Key() PrevoutKey {
	return PrevoutKey{TxID: r.TxID, Index: r.Index}
}

// Plausible reports whether the header fields pass the sanity bounds used
// when hunting for record boundaries in a partially written file.
func (r OutputRecord) Plausible() bool {
	return r.Height < MaxPlausibleHeight && r.Value >= 0 && r.Value < MaxPlausibleValue
}

// LessOutputByPrevout is the comparator for the outputs sort stage.
func LessOutputByPrevout(a, b OutputRecord) bool {
	return a.Key().Less(b.Key())
}

// OutputCodec reads and writes OutputRecords.
type OutputCodec struct{}

// Append serializes rec onto dst. Scripts longer than MaxScriptLen must be
// clamped by the producer before encoding.
func (OutputCodec) Append(dst []byte, rec OutputRecord) []byte {
	dst = append(dst, rec.TxID[:]...)
	dst = binary.LittleEndian.AppendUint32(dst, rec.Index)
	dst = binary.LittleEndian.AppendUint32(dst, rec.Height)
	dst = appendBool(dst, rec.IsCoinbase)
	dst = binary.LittleEndian.AppendUint64(dst, uint64(rec.Value))
	dst = binary.LittleEndian.AppendUint16(dst, uint16(len(rec.Script)))
	return append(dst, rec.Script...)
}

// Read decodes the next record, returning io.EOF at a clean end of stream.
func (OutputCodec) Read(r *bufio.Reader) (OutputRecord, error) {
	var hdr [OutputHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return OutputRecord{}, io.EOF
		}
		return OutputRecord{}, fmt.Errorf("output record header: %w", ErrTruncatedRecord)
	}

	rec, scriptLen := parseOutputHeader(hdr[:])
	if scriptLen > 0 {
		rec.Script = make([]byte, scriptLen)
		if _, err := io.ReadFull(r, rec.Script); err != nil {
			return OutputRecord{}, fmt.Errorf("output record script: %w", ErrTruncatedRecord)
		}
	}
	return rec, nil
}

// ParseOutput decodes one OutputRecord from the start of b, returning the
// record and how many bytes it occupied.
func ParseOutput(b []byte) (OutputRecord, int, error) {
	if len(b) < OutputHeaderSize {
		return OutputRecord{}, 0, fmt.Errorf("output record needs %d header bytes, have %d: %w", OutputHeaderSize, len(b), ErrTruncatedRecord)
	}

	rec, scriptLen := parseOutputHeader(b[:OutputHeaderSize])
	total := OutputHeaderSize + scriptLen
	if len(b) < total {
		return OutputRecord{}, 0, fmt.Errorf("output record script needs %d bytes, have %d: %w", scriptLen, len(b)-OutputHeaderSize, ErrTruncatedRecord)
	}
	if scriptLen > 0 {
		rec.Script = append([]byte(nil), b[OutputHeaderSize:total]...)
	}
	return rec, total, nil
}

func parseOutputHeader(b []byte) (OutputRecord, int) {
	var rec OutputRecord
	copy(rec.TxID[:], b[:32])
	rec.Index = binary.LittleEndian.Uint32(b[32:36])
	rec.Height = binary.LittleEndian.Uint32(b[36:40])
	rec.IsCoinbase = b[40] != 0
	rec.Value = int64(binary.LittleEndian.Uint64(b[41:49]))
	return rec, int(binary.LittleEndian.Uint16(b[49:51]))
}

func appendBool(dst []byte, v bool) []byte {
	if v {
		return append(dst, 1)
	}
	return append(dst, 0)
}
