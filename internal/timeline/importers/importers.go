// Package importers converts external narration formats — timestamped
// text, SRT subtitles, and raw timeline JSON — into the canonical
// timeline.Timeline model (spec.md §4.2).
package importers

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/apresai/narrated-demo/internal/timeline"
)

// Format names accepted by Import and returned by Detect.
const (
	FormatTimestampedTXT = "timestamped_txt"
	FormatSRT            = "srt"
	FormatJSON           = "json"
	FormatAuto           = "auto"
)

// Options controls how an imported narration list is normalized after
// parsing.
type Options struct {
	VideoDurationMS int64
}

// Import parses raw into a timeline.Timeline, auto-detecting the format
// when format is FormatAuto or empty. filename, if non-empty, is used
// only as an extension hint for detection.
func Import(raw []byte, format, filename string, opts Options) (*timeline.Timeline, error) {
	f := format
	if f == "" || f == FormatAuto {
		f = Detect(raw, filename)
	}

	switch f {
	case FormatJSON:
		return importJSON(raw)
	case FormatSRT:
		events, err := parseSRT(string(raw))
		if err != nil {
			return nil, err
		}
		return importFromEvents(events, opts)
	case FormatTimestampedTXT:
		events, err := parseTimestampedTXT(string(raw))
		if err != nil {
			return nil, err
		}
		return importFromEvents(events, opts)
	default:
		return nil, &timeline.ValidationError{
			Code:    timeline.CodeUnsupportedFormat,
			Message: fmt.Sprintf("unsupported timeline import format %q", format),
		}
	}
}

// Detect guesses the source format from the file extension first, then
// falls back to sniffing the content.
func Detect(raw []byte, filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FormatJSON
	case ".srt":
		return FormatSRT
	case ".txt":
		return FormatTimestampedTXT
	}

	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "{") {
		return FormatJSON
	}
	if looksLikeSRT(trimmed) {
		return FormatSRT
	}
	return FormatTimestampedTXT
}

func looksLikeSRT(s string) bool {
	lines := strings.SplitN(s, "\n", 4)
	for _, l := range lines {
		if strings.Contains(l, "-->") {
			return true
		}
	}
	return false
}

func importJSON(raw []byte) (*timeline.Timeline, error) {
	var t timeline.Timeline
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, &timeline.ValidationError{
			Code:    timeline.CodeSchemaInvalid,
			Message: fmt.Sprintf("invalid timeline JSON: %v", err),
		}
	}
	if _, err := timeline.Parse(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

func importFromEvents(events []timeline.NarrationEvent, opts Options) (*timeline.Timeline, error) {
	normalized, err := timeline.NormalizeNarrationEvents(events, timeline.NormalizeOptions{
		VideoDurationMS: opts.VideoDurationMS,
	})
	if err != nil {
		return nil, err
	}
	return &timeline.Timeline{
		TimelineVersion: timeline.SchemaVersion,
		NarrationEvents: normalized,
	}, nil
}
