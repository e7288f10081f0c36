package unified

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/apresai/narrated-demo/internal/demo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunID_HasPrefixAndIsUnique(t *testing.T) {
	id1, err := NewRunID("unified")
	require.NoError(t, err)
	id2, err := NewRunID("unified")
	require.NoError(t, err)

	assert.Contains(t, id1, "unified_")
	assert.NotEqual(t, id1, id2)
}

func TestSelectSourceVideo_FallsBackWhenRawDemoMissing(t *testing.T) {
	dir := t.TempDir()
	got := selectSourceVideo(&demo.Result{}, dir, "/data/projects/p1/input.mp4")
	assert.Equal(t, "/data/projects/p1/input.mp4", got)
}

func TestSelectSourceVideo_UsesRawDemoWhenPlayable(t *testing.T) {
	dir := t.TempDir()
	writeFakeRawDemo(t, dir)
	playable := true
	res := &demo.Result{ArtifactSummary: demo.ArtifactSummary{RawDemoPlayable: &playable}}
	got := selectSourceVideo(res, dir, "/data/projects/p1/input.mp4")
	assert.Equal(t, filepath.Join(dir, "raw_demo.mp4"), got)
}

func TestSelectSourceVideo_UsesRawDemoWhenNoPlayabilityFlag(t *testing.T) {
	dir := t.TempDir()
	writeFakeRawDemo(t, dir)
	res := &demo.Result{}
	got := selectSourceVideo(res, dir, "/data/projects/p1/input.mp4")
	assert.Equal(t, filepath.Join(dir, "raw_demo.mp4"), got)
}

func TestSelectSourceVideo_FallsBackWhenNotPlayable(t *testing.T) {
	dir := t.TempDir()
	writeFakeRawDemo(t, dir)
	playable := false
	res := &demo.Result{ArtifactSummary: demo.ArtifactSummary{RawDemoPlayable: &playable}}
	got := selectSourceVideo(res, dir, "/data/projects/p1/input.mp4")
	assert.Equal(t, "/data/projects/p1/input.mp4", got)
}

func writeFakeRawDemo(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "raw_demo.mp4"), []byte("fake-mp4-bytes"), 0o644))
}
