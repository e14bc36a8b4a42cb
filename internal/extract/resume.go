package extract

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goodnatureofminers/chainverify7000-backend/internal/record"
)

const resumeWindowBytes = 8 << 20

// resumeInputs prepares an existing inputs file for appending. A trailing
// partial record is cut off, then every record of the last height present is
// dropped so that height is re-extracted whole on resume. Returns the height
// to restart from and whether the file held usable records.
func resumeInputs(path string) (uint32, bool, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, false, fmt.Errorf("stat %s: %w", path, err)
	}
	aligned := info.Size() - info.Size()%record.InputRecordSize
	if aligned != info.Size() {
		if err := f.Truncate(aligned); err != nil {
			return 0, false, fmt.Errorf("truncate %s: %w", path, err)
		}
	}
	n := aligned / record.InputRecordSize
	if n == 0 {
		return 0, false, nil
	}

	heightAt := func(i int64) (uint32, error) {
		buf := make([]byte, record.InputRecordSize)
		if _, err := f.ReadAt(buf, i*record.InputRecordSize); err != nil {
			return 0, fmt.Errorf("read record %d of %s: %w", i, path, err)
		}
		rec, err := record.ParseInput(buf)
		if err != nil {
			return 0, err
		}
		return rec.Height, nil
	}

	last, err := heightAt(n - 1)
	if err != nil {
		return 0, false, err
	}

	// Heights are nondecreasing, so the first record of the last height is
	// found by binary search.
	lo, hi := int64(0), n-1
	for lo < hi {
		mid := (lo + hi) / 2
		h, err := heightAt(mid)
		if err != nil {
			return 0, false, err
		}
		if h < last {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if err := f.Truncate(lo * record.InputRecordSize); err != nil {
		return 0, false, fmt.Errorf("truncate %s: %w", path, err)
	}
	return last, true, nil
}

// resumeOutputs prepares an existing outputs file for appending. Record
// boundaries are recovered by scanning a bounded tail window for the
// earliest offset from which plausible records parse through to the end of
// the file; the last height is then dropped for whole re-extraction. A tail
// with no parseable records degrades to a full stage restart.
func resumeOutputs(path string) (uint32, bool, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, false, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		return 0, false, nil
	}

	windowStart := info.Size() - resumeWindowBytes
	if windowStart < 0 {
		windowStart = 0
	}
	window := make([]byte, info.Size()-windowStart)
	if _, err := f.ReadAt(window, windowStart); err != nil && !errors.Is(err, io.EOF) {
		return 0, false, fmt.Errorf("read tail of %s: %w", path, err)
	}

	tail, ok := record.ScanTail(window, func(b []byte) (uint32, int, error) {
		rec, n, err := record.ParseOutput(b)
		if err != nil {
			return 0, 0, err
		}
		if !rec.Plausible() {
			return 0, 0, errImplausibleRecord
		}
		return rec.Height, n, nil
	})
	if !ok {
		if err := f.Truncate(0); err != nil {
			return 0, false, fmt.Errorf("truncate %s: %w", path, err)
		}
		return 0, false, nil
	}

	if err := f.Truncate(windowStart + int64(tail.LastHeightStart)); err != nil {
		return 0, false, fmt.Errorf("truncate %s: %w", path, err)
	}
	return tail.LastHeight, true, nil
}

var errImplausibleRecord = errors.New("implausible record")
