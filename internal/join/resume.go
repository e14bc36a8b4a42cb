package join

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/chainverify7000-backend/internal/record"
)

const resumeWindowBytes = 8 << 20

// ErrAmbiguousResume reports two input records carrying the same spend
// location. The resume key is recovered by matching the last joined record's
// spend location against the inputs file, which is only sound while spend
// locations are unique; a duplicate means the inputs file was produced by
// overlapping extraction runs and the join must restart from clean inputs.
var ErrAmbiguousResume = errors.New("ambiguous join resume: duplicate spend location in inputs")

// resume prepares an existing joined file for appending. The last complete
// record's spend location is traced back to the inputs file to recover the
// prevout key both cursors must skip past. A joined file whose tail cannot
// be parsed, or whose last record has no originating input, degrades to a
// full restart. A trailing partial record is cut off.
func resume(joinedPath, inputsPath string, logger *zap.Logger) (*record.PrevoutKey, bool, error) {
	f, err := os.OpenFile(joinedPath, os.O_RDWR, 0)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("open %s: %w", joinedPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, false, fmt.Errorf("stat %s: %w", joinedPath, err)
	}
	if info.Size() == 0 {
		return nil, false, nil
	}

	windowStart := info.Size() - resumeWindowBytes
	if windowStart < 0 {
		windowStart = 0
	}
	window := make([]byte, info.Size()-windowStart)
	if _, err := f.ReadAt(window, windowStart); err != nil && !errors.Is(err, io.EOF) {
		return nil, false, fmt.Errorf("read tail of %s: %w", joinedPath, err)
	}

	last, end, ok := lastJoinedRecord(window)
	if !ok {
		logger.Warn("joined file tail unparseable, restarting join",
			zap.String("path", joinedPath))
		if err := f.Truncate(0); err != nil {
			return nil, false, fmt.Errorf("truncate %s: %w", joinedPath, err)
		}
		return nil, false, nil
	}
	if err := f.Truncate(windowStart + int64(end)); err != nil {
		return nil, false, fmt.Errorf("truncate %s: %w", joinedPath, err)
	}

	key, err := findSpendingInput(inputsPath, last.Key())
	if err != nil {
		if errors.Is(err, errResumeInputNotFound) {
			logger.Warn("last joined record has no originating input, restarting join",
				zap.Stringer("spend", last.Key()))
			if err := f.Truncate(0); err != nil {
				return nil, false, fmt.Errorf("truncate %s: %w", joinedPath, err)
			}
			return nil, false, nil
		}
		return nil, false, err
	}
	return key, true, nil
}

// lastJoinedRecord finds the last complete JoinedPrevout in window along
// with the offset just past it. Record boundaries are recovered by hunting
// for the earliest offset from which plausible records parse through to the
// end, tolerating one truncated trailing record.
func lastJoinedRecord(window []byte) (record.JoinedPrevout, int, bool) {
	for start := 0; start < len(window); start++ {
		var (
			last   record.JoinedPrevout
			parsed bool
		)
		off := start
		for off < len(window) {
			rec, n, err := record.ParseJoined(window[off:])
			if err != nil {
				break
			}
			if !rec.Plausible() {
				parsed = false
				break
			}
			last, parsed = rec, true
			off += n
		}
		if parsed && (off == len(window) || len(window)-off < record.JoinedHeaderSize ||
			isTruncatedTail(window[off:])) {
			return last, off, true
		}
	}
	return record.JoinedPrevout{}, 0, false
}

// isTruncatedTail reports whether the remaining bytes look like a record cut
// off mid-write rather than garbage that should disqualify the parse.
func isTruncatedTail(rest []byte) bool {
	_, _, err := record.ParseJoined(rest)
	return errors.Is(err, record.ErrTruncatedRecord)
}

var errResumeInputNotFound = errors.New("resume input not found")

// findSpendingInput scans the whole inputs file for the record whose spend
// location matches want, returning its prevout key. The scan always runs to
// end of file so a second input with the same spend location is detected
// instead of silently resuming from the wrong key.
func findSpendingInput(inputsPath string, want record.SpendKey) (*record.PrevoutKey, error) {
	f, err := os.Open(inputsPath)
	if err != nil {
		return nil, fmt.Errorf("open inputs %s: %w", inputsPath, err)
	}
	defer f.Close()

	var (
		codec record.InputCodec
		found *record.PrevoutKey
	)
	r := bufio.NewReaderSize(f, streamBufferSize)
	for {
		rec, err := codec.Read(r)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("scan inputs %s: %w", inputsPath, err)
		}
		if rec.SpendKey() != want {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("spend location %s: %w", want, ErrAmbiguousResume)
		}
		key := rec.Key()
		found = &key
	}
	if found == nil {
		return nil, fmt.Errorf("spend location %s: %w", want, errResumeInputNotFound)
	}
	return found, nil
}
