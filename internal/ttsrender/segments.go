package ttsrender

import (
	"sort"

	"github.com/apresai/narrated-demo/internal/timeline"
)

const (
	segmentFillMaxMS = 3000
	segmentMinMS     = 500
)

// DeriveSegments implements spec.md §4.7's "Timeline → segments" step:
// events without text are dropped, the remainder sorted by (start_ms, id),
// out-of-range starts dropped, and missing/invalid ends back-filled from
// the next surviving event (or a 3s default), floored at a 500ms minimum.
func DeriveSegments(events []timeline.NarrationEvent, videoDurationMS int64) []Segment {
	kept := make([]timeline.NarrationEvent, 0, len(events))
	for _, e := range events {
		if e.Text == "" {
			continue
		}
		kept = append(kept, e)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].StartMS != kept[j].StartMS {
			return kept[i].StartMS < kept[j].StartMS
		}
		return kept[i].ID < kept[j].ID
	})

	var out []Segment
	for i, e := range kept {
		if e.StartMS < 0 || e.StartMS >= videoDurationMS {
			continue
		}

		end := e.EndMS
		if end <= e.StartMS {
			fillCap := e.StartMS + segmentFillMaxMS
			if fillCap > videoDurationMS {
				fillCap = videoDurationMS
			}
			end = fillCap
			if i+1 < len(kept) && kept[i+1].StartMS > e.StartMS {
				end = kept[i+1].StartMS
			}
		}
		if end < e.StartMS+segmentMinMS {
			end = e.StartMS + segmentMinMS
		}

		out = append(out, Segment{
			ID:             e.ID,
			StartMS:        e.StartMS,
			EndMS:          end,
			Text:           e.Text,
			VoiceProfileID: e.VoiceProfileID,
		})
	}
	return out
}
