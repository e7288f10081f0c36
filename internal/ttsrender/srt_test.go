package ttsrender

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSRTTimestamp(t *testing.T) {
	assert.Equal(t, "00:00:01,500", formatSRTTimestamp(1500))
	assert.Equal(t, "01:01:01,001", formatSRTTimestamp(3661001))
	assert.Equal(t, "00:00:00,000", formatSRTTimestamp(-5))
}

func TestGenerateSRT_NumbersBlocksSequentially(t *testing.T) {
	segs := []SegmentResult{
		{Segment: Segment{StartMS: 0, EndMS: 1000, Text: "first"}},
		{Segment: Segment{StartMS: 1000, EndMS: 2500, Text: "second"}},
	}
	srt := GenerateSRT(segs)
	assert.Contains(t, srt, "1\n00:00:00,000 --> 00:00:01,000\nfirst")
	assert.Contains(t, srt, "2\n00:00:01,000 --> 00:00:02,500\nsecond")
}
