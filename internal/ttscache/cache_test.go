package ttscache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeKey_Deterministic(t *testing.T) {
	params := map[string]any{"b": 2, "a": 1}
	k1, err := ComputeKey("hello  world", params, "http://tts", "chatterbox_tts_json", "", "")
	require.NoError(t, err)
	k2, err := ComputeKey("hello world", params, "http://tts", "chatterbox_tts_json", "", "")
	require.NoError(t, err)
	assert.Equal(t, k1, k2, "whitespace-collapsed equal text should hash identically")
}

func TestComputeKey_DiffersOnParams(t *testing.T) {
	k1, err := ComputeKey("hello", map[string]any{"a": 1}, "ep", "mode", "", "")
	require.NoError(t, err)
	k2, err := ComputeKey("hello", map[string]any{"a": 2}, "ep", "mode", "", "")
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)
}

func TestCache_StoreThenRestore(t *testing.T) {
	dir := t.TempDir()
	c, err := New(filepath.Join(dir, "cache"))
	require.NoError(t, err)

	src := filepath.Join(dir, "seg001.wav")
	require.NoError(t, os.WriteFile(src, []byte("fake-wav-bytes"), 0o644))

	key := Key("abc123")
	require.NoError(t, c.Store(key, src))

	out := filepath.Join(dir, "restored.wav")
	hit, err := c.Restore(key, out)
	require.NoError(t, err)
	assert.True(t, hit)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "fake-wav-bytes", string(data))
}

func TestCache_RestoreMiss(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir)
	require.NoError(t, err)

	hit, err := c.Restore(Key("nonexistent"), filepath.Join(dir, "out.wav"))
	require.NoError(t, err)
	assert.False(t, hit)
}
