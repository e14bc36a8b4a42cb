package record

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// JoinedHeaderSize is the fixed header preceding a JoinedPrevout's script.
const JoinedHeaderSize = 27

// JoinedPrevout pairs a spend location with the output it consumes, carrying
// everything script verification needs without re-reading the creating block.
type JoinedPrevout struct {
	SpendingHeight     uint32
	SpendingTxIndex    uint32
	SpendingInputIndex uint32
	PrevoutHeight      uint32
	IsCoinbase         bool
	Value              int64
	Script             []byte
}

// NewJoinedPrevout combines a matched input/output pair.
func NewJoinedPrevout(in InputRecord, out OutputRecord) JoinedPrevout {
	return JoinedPrevout{
		SpendingHeight:     in.Height,
		SpendingTxIndex:    in.TxIndex,
		SpendingInputIndex: in.InputIndex,
		PrevoutHeight:      out.Height,
		IsCoinbase:         out.IsCoinbase,
		Value:              out.Value,
		Script:             out.Script,
	}
}

// Key returns the chain location of the spend.
func (r JoinedPrevout) Key() SpendKey {
	return SpendKey{Height: r.SpendingHeight, TxIndex: r.SpendingTxIndex, InputIndex: r.SpendingInputIndex}
}

// Plausible reports whether the header fields pass the sanity bounds used
// when hunting for record boundaries in a partially written file.
func (r JoinedPrevout) Plausible() bool {
	return r.SpendingHeight < MaxPlausibleHeight &&
		r.PrevoutHeight < MaxPlausibleHeight &&
		r.Value >= 0 && r.Value < MaxPlausibleValue
}

// LessJoinedBySpend is the comparator for the final re-sort into spend order.
func LessJoinedBySpend(a, b JoinedPrevout) bool {
	return a.Key().Less(b.Key())
}

// JoinedCodec reads and writes JoinedPrevouts.
type JoinedCodec struct{}

// Append serializes rec onto dst.
func (JoinedCodec) Append(dst []byte, rec JoinedPrevout) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, rec.SpendingHeight)
	dst = binary.LittleEndian.AppendUint32(dst, rec.SpendingTxIndex)
	dst = binary.LittleEndian.AppendUint32(dst, rec.SpendingInputIndex)
	dst = binary.LittleEndian.AppendUint32(dst, rec.PrevoutHeight)
	dst = appendBool(dst, rec.IsCoinbase)
	dst = binary.LittleEndian.AppendUint64(dst, uint64(rec.Value))
	dst = binary.LittleEndian.AppendUint16(dst, uint16(len(rec.Script)))
	return append(dst, rec.Script...)
}

// Read decodes the next record, returning io.EOF at a clean end of stream.
func (JoinedCodec) Read(r *bufio.Reader) (JoinedPrevout, error) {
	var hdr [JoinedHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return JoinedPrevout{}, io.EOF
		}
		return JoinedPrevout{}, fmt.Errorf("joined prevout header: %w", ErrTruncatedRecord)
	}

	rec, scriptLen := parseJoinedHeader(hdr[:])
	if scriptLen > 0 {
		rec.Script = make([]byte, scriptLen)
		if _, err := io.ReadFull(r, rec.Script); err != nil {
			return JoinedPrevout{}, fmt.Errorf("joined prevout script: %w", ErrTruncatedRecord)
		}
	}
	return rec, nil
}

// ParseJoined decodes one JoinedPrevout from the start of b, returning the
// record and how many bytes it occupied.
func ParseJoined(b []byte) (JoinedPrevout, int, error) {
	if len(b) < JoinedHeaderSize {
		return JoinedPrevout{}, 0, fmt.Errorf("joined prevout needs %d header bytes, have %d: %w", JoinedHeaderSize, len(b), ErrTruncatedRecord)
	}

	rec, scriptLen := parseJoinedHeader(b[:JoinedHeaderSize])
	total := JoinedHeaderSize + scriptLen
	if len(b) < total {
		return JoinedPrevout{}, 0, fmt.Errorf("joined prevout script needs %d bytes, have %d: %w", scriptLen, len(b)-JoinedHeaderSize, ErrTruncatedRecord)
	}
	if scriptLen > 0 {
		rec.Script = append([]byte(nil), b[JoinedHeaderSize:total]...)
	}
	return rec, total, nil
}

func parseJoinedHeader(b []byte) (JoinedPrevout, int) {
	var rec JoinedPrevout
	rec.SpendingHeight = binary.LittleEndian.Uint32(b[0:4])
	rec.SpendingTxIndex = binary.LittleEndian.Uint32(b[4:8])
	rec.SpendingInputIndex = binary.LittleEndian.Uint32(b[8:12])
	rec.PrevoutHeight = binary.LittleEndian.Uint32(b[12:16])
	rec.IsCoinbase = b[16] != 0
	rec.Value = int64(binary.LittleEndian.Uint64(b[17:25]))
	return rec, int(binary.LittleEndian.Uint16(b[25:27]))
}
