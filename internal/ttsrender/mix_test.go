package ttsrender

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMixFilterComplex_OneSegment(t *testing.T) {
	segments := []SegmentResult{
		{Segment: Segment{StartMS: 1000}, AudioDurationMS: 2000},
	}
	fc := buildMixFilterComplex(segments, 5000)
	assert.Contains(t, fc, "[0:a]atrim=end=2.000,asetpts=N/SR/TB,adelay=1000|1000,apad[a0]")
	assert.Contains(t, fc, "[a0]amix=inputs=1:dropout_transition=0:normalize=0[aout]")
	assert.Contains(t, fc, "[aout]atrim=end=5.000,asetpts=N/SR/TB[narr]")
}

func TestBuildMixFilterComplex_MultipleSegmentsConcatenateLabels(t *testing.T) {
	segments := []SegmentResult{
		{Segment: Segment{StartMS: 0}, AudioDurationMS: 1000},
		{Segment: Segment{StartMS: 1000}, AudioDurationMS: 1000},
	}
	fc := buildMixFilterComplex(segments, 5000)
	assert.Contains(t, fc, "[a0][a1]amix=inputs=2")
}
