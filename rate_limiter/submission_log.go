package rate_limiter

import (
	"encoding/json"
	"math"
	"time"
)

// The submission log is stored as a JSON array of unix-millisecond
// timestamps, ascending. Appends only ever add the current time, so the
// order holds on its own after every prune.

// decodeLog parses a stored submission log. Malformed JSON, a non-array
// value, and non-numeric or negative entries are all discarded rather than
// reported: a corrupted store must never block a submission.
func decodeLog(raw string) []time.Time {
	var values []interface{}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil
	}
	entries := make([]time.Time, 0, len(values))
	for _, v := range values {
		ms, ok := v.(float64)
		if !ok || math.IsNaN(ms) || math.IsInf(ms, 0) || ms < 0 {
			continue
		}
		entries = append(entries, time.UnixMilli(int64(ms)))
	}
	return entries
}

func encodeLog(entries []time.Time) string {
	ms := make([]int64, 0, len(entries))
	for _, t := range entries {
		ms = append(ms, t.UnixMilli())
	}
	b, _ := json.Marshal(ms)
	return string(b)
}

// pruneExpired keeps the entries still strictly inside the rolling window
// relative to now. Order is preserved and the input is left untouched.
func pruneExpired(entries []time.Time, now time.Time) []time.Time {
	kept := make([]time.Time, 0, len(entries))
	for _, t := range entries {
		if now.Sub(t) < Window {
			kept = append(kept, t)
		}
	}
	return kept
}
