package importers

import (
	"regexp"
	"strings"

	"github.com/apresai/narrated-demo/internal/timeline"
)

// sentenceBoundary splits prose on any '.', '!' or '?' followed by
// whitespace (the punctuation is consumed with the split; the next word's
// case is not checked) — a cheap approximation
// that avoids pulling in a full sentence tokenizer for a supplemental,
// best-effort feature.
var sentenceBoundary = regexp.MustCompile(`(?:[.!?])\s+`)

// DraftOptions controls DraftFromProse's pacing.
type DraftOptions struct {
	// WordsPerSecond paces each sentence's duration. Defaults to 2.5
	// (roughly 150 words/minute, a comfortable narration speed) when 0.
	WordsPerSecond float64
	// MinDurationMS floors every sentence's duration so short sentences
	// don't flash by in under a second. Defaults to 1200ms when 0.
	MinDurationMS int64
}

const (
	defaultWordsPerSecond = 2.5
	defaultMinDurationMS  = 1200
)

// DraftFromProse splits a block of prose into sentence-level narration
// events, paced by word count, and stitches them back-to-back starting at
// 0ms. It is not reachable from the HTTP import surface — it exists for
// operators bootstrapping a first-pass timeline from a script draft
// before hand-tuning timestamps.
func DraftFromProse(text string, opts DraftOptions) (*timeline.Timeline, error) {
	wps := opts.WordsPerSecond
	if wps <= 0 {
		wps = defaultWordsPerSecond
	}
	minDur := opts.MinDurationMS
	if minDur <= 0 {
		minDur = defaultMinDurationMS
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil, &timeline.ValidationError{
			Code:    timeline.CodeEmptyOutput,
			Message: "prose contained no usable sentences",
		}
	}

	events := make([]timeline.NarrationEvent, 0, len(sentences))
	var cursor int64
	for _, s := range sentences {
		words := len(strings.Fields(s))
		durMS := int64(float64(words) / wps * 1000)
		if durMS < minDur {
			durMS = minDur
		}
		events = append(events, timeline.NarrationEvent{
			StartMS: cursor,
			EndMS:   cursor + durMS,
			Text:    s,
		})
		cursor += durMS
	}

	normalized, err := timeline.NormalizeNarrationEvents(events, timeline.NormalizeOptions{})
	if err != nil {
		return nil, err
	}
	return &timeline.Timeline{
		TimelineVersion: timeline.SchemaVersion,
		NarrationEvents: normalized,
	}, nil
}

func splitSentences(text string) []string {
	collapsed := strings.Join(strings.Fields(text), " ")
	if collapsed == "" {
		return nil
	}
	parts := sentenceBoundary.Split(collapsed, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}
