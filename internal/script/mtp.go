package script

import "sort"

const mtpWindowSize = 11

// TimeWindow tracks the timestamps of the most recently processed block
// headers to compute median-time-past. Callers push a block only after
// verifying it, so the window never includes the block being verified.
type TimeWindow struct {
	times []int64
}

func NewTimeWindow() *TimeWindow {
	return &TimeWindow{times: make([]int64, 0, mtpWindowSize)}
}

// MedianTimePast returns the median of the retained timestamps, zero before
// any block has been pushed.
func (w *TimeWindow) MedianTimePast() int64 {
	if len(w.times) == 0 {
		return 0
	}
	sorted := make([]int64, len(w.times))
	copy(sorted, w.times)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted[len(sorted)/2]
}

// Push appends a processed block's timestamp, evicting the oldest entry once
// the window is full.
func (w *TimeWindow) Push(timestamp int64) {
	if len(w.times) == mtpWindowSize {
		copy(w.times, w.times[1:])
		w.times[len(w.times)-1] = timestamp
		return
	}
	w.times = append(w.times, timestamp)
}
