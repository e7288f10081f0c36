package ttsrender

import (
	"testing"

	"github.com/apresai/narrated-demo/internal/timeline"
	"github.com/stretchr/testify/assert"
)

func TestDeriveSegments_DropsTextless(t *testing.T) {
	events := []timeline.NarrationEvent{
		{ID: "n1", StartMS: 0, EndMS: 1000, Text: "hello"},
		{ID: "n2", StartMS: 1000, EndMS: 2000, Text: ""},
	}
	segs := DeriveSegments(events, 10000)
	assert.Len(t, segs, 1)
	assert.Equal(t, "n1", segs[0].ID)
}

func TestDeriveSegments_DropsOutOfRangeStart(t *testing.T) {
	events := []timeline.NarrationEvent{
		{ID: "n1", StartMS: 9000, EndMS: 9500, Text: "late"},
	}
	segs := DeriveSegments(events, 5000)
	assert.Empty(t, segs)
}

func TestDeriveSegments_FillsMissingEndFromNext(t *testing.T) {
	events := []timeline.NarrationEvent{
		{ID: "n1", StartMS: 0, Text: "a"},
		{ID: "n2", StartMS: 2000, EndMS: 4000, Text: "b"},
	}
	segs := DeriveSegments(events, 10000)
	assert.Equal(t, int64(2000), segs[0].EndMS)
}

func TestDeriveSegments_FillsMissingEndNoNext_CapsAt3sAndVideoDuration(t *testing.T) {
	events := []timeline.NarrationEvent{
		{ID: "n1", StartMS: 9000, Text: "last"},
	}
	segs := DeriveSegments(events, 10000)
	assert.Equal(t, int64(10000), segs[0].EndMS)
}

func TestDeriveSegments_EnforcesMinimumDuration(t *testing.T) {
	events := []timeline.NarrationEvent{
		{ID: "n1", StartMS: 1000, EndMS: 1100, Text: "short"},
	}
	segs := DeriveSegments(events, 10000)
	assert.Equal(t, int64(1500), segs[0].EndMS)
}

func TestDeriveSegments_SortsByStartThenID(t *testing.T) {
	events := []timeline.NarrationEvent{
		{ID: "n2", StartMS: 1000, EndMS: 2000, Text: "second"},
		{ID: "n1", StartMS: 0, EndMS: 1000, Text: "first"},
	}
	segs := DeriveSegments(events, 10000)
	assert.Equal(t, []string{"n1", "n2"}, []string{segs[0].ID, segs[1].ID})
}
