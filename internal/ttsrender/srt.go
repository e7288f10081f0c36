package ttsrender

import (
	"fmt"
	"os"
	"strings"
)

// GenerateSRT renders segments as an SRT subtitle document using
// HH:MM:SS,mmm timestamps, per spec.md §6.
func GenerateSRT(segments []SegmentResult) string {
	var b strings.Builder
	for i, s := range segments {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", formatSRTTimestamp(s.Segment.StartMS), formatSRTTimestamp(s.Segment.EndMS))
		b.WriteString(s.Segment.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

func formatSRTTimestamp(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	h := ms / 3_600_000
	m := (ms % 3_600_000) / 60_000
	s := (ms % 60_000) / 1000
	msRemainder := ms % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, msRemainder)
}

// WriteSRT writes GenerateSRT's output to path.
func WriteSRT(segments []SegmentResult, path string) error {
	return os.WriteFile(path, []byte(GenerateSRT(segments)), 0o644)
}
