package record

import "errors"

// TailInfo describes the parseable tail of a partially written record file.
// Offsets are relative to the scanned window.
type TailInfo struct {
	Start           int
	Consumed        int
	LastHeight      uint32
	LastHeightStart int
}

// ScanTail finds the earliest offset in window from which consecutive
// records parse cleanly to the end of the window, tolerating one truncated
// record at the very end. parse returns a record's height field, its encoded
// size, and an error for bytes that do not begin a plausible record. Heights
// are written in nondecreasing order, so LastHeightStart marks where the
// final, possibly incomplete height begins.
func ScanTail(window []byte, parse func([]byte) (uint32, int, error)) (TailInfo, bool) {
	for start := 0; start < len(window); start++ {
		if info, ok := scanFrom(window, start, parse); ok {
			return info, true
		}
	}
	return TailInfo{}, false
}

func scanFrom(window []byte, start int, parse func([]byte) (uint32, int, error)) (TailInfo, bool) {
	info := TailInfo{Start: start, LastHeightStart: start}
	off := start
	parsedAny := false
	for off < len(window) {
		height, n, err := parse(window[off:])
		if err != nil {
			// A truncated trailing record is expected after a crash;
			// anything else disqualifies this start offset.
			if parsedAny && errors.Is(err, ErrTruncatedRecord) {
				break
			}
			return TailInfo{}, false
		}
		if !parsedAny || height != info.LastHeight {
			info.LastHeight = height
			info.LastHeightStart = off
		}
		parsedAny = true
		off += n
		info.Consumed = off - start
	}
	if !parsedAny {
		return TailInfo{}, false
	}
	return info, true
}
