package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeNarrationEvents_SortsByStart(t *testing.T) {
	in := []NarrationEvent{
		{StartMS: 2000, EndMS: 2500, Text: "second"},
		{StartMS: 0, EndMS: 500, Text: "first"},
	}
	out, err := NormalizeNarrationEvents(in, NormalizeOptions{})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "first", out[0].Text)
	assert.Equal(t, "n1", out[0].ID)
	assert.Equal(t, "second", out[1].Text)
	assert.Equal(t, "n2", out[1].ID)
}

func TestNormalizeNarrationEvents_DropsPastVideoDuration(t *testing.T) {
	in := []NarrationEvent{
		{StartMS: 0, EndMS: 1000, Text: "kept"},
		{StartMS: 5000, EndMS: 6000, Text: "dropped"},
	}
	out, err := NormalizeNarrationEvents(in, NormalizeOptions{VideoDurationMS: 4000})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "kept", out[0].Text)
}

func TestNormalizeNarrationEvents_FillsMissingEnd(t *testing.T) {
	in := []NarrationEvent{
		{StartMS: 0, EndMS: 0, Text: "a"},
		{StartMS: 4000, EndMS: 4500, Text: "b"},
	}
	out, err := NormalizeNarrationEvents(in, NormalizeOptions{})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, int64(4000), out[0].EndMS)
}

func TestNormalizeNarrationEvents_FillsMissingEndNoNext(t *testing.T) {
	in := []NarrationEvent{
		{StartMS: 1000, EndMS: 0, Text: "only"},
	}
	out, err := NormalizeNarrationEvents(in, NormalizeOptions{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(4000), out[0].EndMS)
}

func TestNormalizeNarrationEvents_EmptyOutput(t *testing.T) {
	in := []NarrationEvent{
		{StartMS: 5000, EndMS: 5500, Text: "too late"},
	}
	out, err := NormalizeNarrationEvents(in, NormalizeOptions{VideoDurationMS: 4000})
	require.Error(t, err)
	assert.Nil(t, out)
	ve, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, CodeEmptyOutput, ve.Code)
}
