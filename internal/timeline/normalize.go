package timeline

import (
	"fmt"
	"sort"
)

// NormalizeOptions configures NormalizeNarrationEvents.
type NormalizeOptions struct {
	// VideoDurationMS is the known source video duration, or 0 if unknown.
	VideoDurationMS int64
}

// rawEvent pairs a parsed event with its original input order, so the sort
// below can use (start_ms, original_index) as spec.md §4.2 requires.
type rawEvent struct {
	event         NarrationEvent
	originalIndex int
}

// NormalizeNarrationEvents implements spec.md §4.2's normalize_narration_events:
// sort by (start_ms, original_index); drop events starting at/after a known
// video duration; fill in missing/invalid end_ms; assign sequential "nK" ids
// with "_N" collision suffixes. Returns empty_output if nothing survives.
func NormalizeNarrationEvents(events []NarrationEvent, opts NormalizeOptions) ([]NarrationEvent, error) {
	raws := make([]rawEvent, len(events))
	for i, e := range events {
		raws[i] = rawEvent{event: e, originalIndex: i}
	}
	sort.SliceStable(raws, func(i, j int) bool {
		if raws[i].event.StartMS != raws[j].event.StartMS {
			return raws[i].event.StartMS < raws[j].event.StartMS
		}
		return raws[i].originalIndex < raws[j].originalIndex
	})

	kept := make([]NarrationEvent, 0, len(raws))
	for _, r := range raws {
		e := r.event
		if opts.VideoDurationMS > 0 && e.StartMS >= opts.VideoDurationMS {
			continue
		}
		kept = append(kept, e)
	}

	for i := range kept {
		if kept[i].EndMS > kept[i].StartMS {
			continue
		}
		var next int64 = -1
		if i+1 < len(kept) {
			next = kept[i+1].StartMS
		}
		candidate := kept[i].StartMS + 3000
		if opts.VideoDurationMS > 0 && candidate > opts.VideoDurationMS {
			candidate = opts.VideoDurationMS
		}
		if next >= 0 {
			candidate = next
		}
		if candidate < kept[i].StartMS+500 {
			candidate = kept[i].StartMS + 500
		}
		kept[i].EndMS = candidate
	}

	used := map[string]int{}
	for i := range kept {
		base := fmt.Sprintf("n%d", i+1)
		id := base
		if n, ok := used[base]; ok {
			n++
			used[base] = n
			id = fmt.Sprintf("%s_%d", base, n)
		} else {
			used[base] = 0
		}
		kept[i].ID = id
	}

	if len(kept) == 0 {
		return nil, newErr(CodeEmptyOutput, "$.narration_events", "normalization produced zero narration events")
	}
	return kept, nil
}
