package importers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImport_TimestampedTXT(t *testing.T) {
	raw := []byte("# comment\n[00:00] hello there\n[00:05] second line\n")
	tl, err := Import(raw, FormatTimestampedTXT, "", Options{})
	require.NoError(t, err)
	require.Len(t, tl.NarrationEvents, 2)
	assert.Equal(t, "hello there", tl.NarrationEvents[0].Text)
	assert.Equal(t, int64(0), tl.NarrationEvents[0].StartMS)
	assert.Equal(t, int64(5000), tl.NarrationEvents[1].StartMS)
}

func TestImport_TimestampedTXT_HourForm(t *testing.T) {
	raw := []byte("[01:02:03] long line\n")
	tl, err := Import(raw, FormatTimestampedTXT, "", Options{})
	require.NoError(t, err)
	require.Len(t, tl.NarrationEvents, 1)
	assert.Equal(t, int64(3723000), tl.NarrationEvents[0].StartMS)
}

func TestImport_TimestampedTXT_Unparsable(t *testing.T) {
	raw := []byte("not a timestamp line\n")
	_, err := Import(raw, FormatTimestampedTXT, "", Options{})
	require.Error(t, err)
}

func TestImport_SRT(t *testing.T) {
	raw := []byte("1\n00:00:00,000 --> 00:00:02,500\nhello there\n\n2\n00:00:02,500 --> 00:00:05,000\nsecond line\n")
	tl, err := Import(raw, FormatSRT, "", Options{})
	require.NoError(t, err)
	require.Len(t, tl.NarrationEvents, 2)
	assert.Equal(t, "hello there", tl.NarrationEvents[0].Text)
	assert.Equal(t, int64(2500), tl.NarrationEvents[0].EndMS)
}

func TestImport_SRT_NoIndex(t *testing.T) {
	raw := []byte("00:00:00.000 --> 00:00:01.000\nhello\n")
	tl, err := Import(raw, FormatSRT, "", Options{})
	require.NoError(t, err)
	require.Len(t, tl.NarrationEvents, 1)
}

func TestImport_JSON(t *testing.T) {
	raw := []byte(`{"timeline_version":"1.0","narration_events":[{"id":"n1","start_ms":0,"end_ms":1000,"text":"hi"}]}`)
	tl, err := Import(raw, FormatJSON, "", Options{})
	require.NoError(t, err)
	require.Len(t, tl.NarrationEvents, 1)
}

func TestDetect_ByExtension(t *testing.T) {
	assert.Equal(t, FormatJSON, Detect(nil, "foo.json"))
	assert.Equal(t, FormatSRT, Detect(nil, "foo.srt"))
	assert.Equal(t, FormatTimestampedTXT, Detect(nil, "foo.txt"))
}

func TestDetect_BySniff(t *testing.T) {
	assert.Equal(t, FormatJSON, Detect([]byte(`{"a":1}`), ""))
	assert.Equal(t, FormatSRT, Detect([]byte("1\n00:00:00,000 --> 00:00:01,000\nhi"), ""))
	assert.Equal(t, FormatTimestampedTXT, Detect([]byte("[00:00] hi"), ""))
}

func TestDraftFromProse(t *testing.T) {
	tl, err := DraftFromProse("This is sentence one. This is sentence two! And a third?", DraftOptions{})
	require.NoError(t, err)
	require.Len(t, tl.NarrationEvents, 3)
	for i := 1; i < len(tl.NarrationEvents); i++ {
		assert.GreaterOrEqual(t, tl.NarrationEvents[i].StartMS, tl.NarrationEvents[i-1].EndMS)
	}
}
