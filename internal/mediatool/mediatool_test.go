package mediatool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests exercise the runner against /bin/sh rather than real ffmpeg/
// ffprobe binaries, mirroring the teacher's own sh-stand-in test pattern
// for exec.Command wrapping.

func TestRunFFmpeg_Success(t *testing.T) {
	r := &Runner{FFmpegPath: "/bin/sh"}
	res, err := r.RunFFmpeg(context.Background(), "-c", "echo hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", res.Stdout)
}

func TestRunFFmpeg_FailureCapturesStderrTail(t *testing.T) {
	r := &Runner{FFmpegPath: "/bin/sh"}
	_, err := r.RunFFmpeg(context.Background(), "-c", "echo boom >&2; exit 3")
	require.Error(t, err)
	mtErr, ok := err.(*MediaToolError)
	require.True(t, ok)
	assert.Equal(t, 3, mtErr.ExitCode)
	assert.Contains(t, mtErr.StderrTail, "boom")
}

func TestTail_TruncatesLongOutput(t *testing.T) {
	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'x'
	}
	out := tail(string(long), 500)
	assert.Len(t, out, 500)
}

func TestProbeResult_Playable(t *testing.T) {
	var nilResult *ProbeResult
	assert.False(t, nilResult.Playable())

	p := &ProbeResult{HasVideo: true, DurationMS: 1000}
	assert.True(t, p.Playable())

	p2 := &ProbeResult{HasVideo: false, DurationMS: 1000}
	assert.False(t, p2.Playable())

	p3 := &ProbeResult{HasVideo: true, DurationMS: 0}
	assert.False(t, p3.Playable())
}
