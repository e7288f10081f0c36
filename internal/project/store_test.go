package project

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/apresai/narrated-demo/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CreateAndLoad(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p, err := store.Create("proj1", now)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, p.SchemaVersion)
	assert.Equal(t, config.NarrationTTSOnly, p.Settings.NarrationMode)
	assert.Contains(t, p.TTSProfiles, "default")

	loaded, err := store.Load("proj1", now)
	require.NoError(t, err)
	assert.Equal(t, "proj1", loaded.ProjectID)
}

func TestStore_LoadMissingIsNotFound(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("missing", time.Now())
	require.Error(t, err)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestStore_UpdateRoundTrips(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = store.Create("proj1", now)
	require.NoError(t, err)

	updated, err := store.Update("proj1", now.Add(time.Minute), func(p *Project) error {
		p.Settings.DemoContext = "# notes"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "# notes", updated.Settings.DemoContext)

	reloaded, err := store.Load("proj1", now.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "# notes", reloaded.Settings.DemoContext)
}

func TestEnsureDefaults_Idempotent(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := &Project{ProjectID: "p1"}
	EnsureDefaults(p, now)
	first, err := json.Marshal(p)
	require.NoError(t, err)

	EnsureDefaults(p, now)
	second, err := json.Marshal(p)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAppendRender_TrimsAndSetsLastID(t *testing.T) {
	p := &Project{}
	EnsureDefaults(p, time.Now())
	for i := 0; i < HistorySoftCap+5; i++ {
		p.AppendRender(RenderRecord{RenderID: "r" + itoa(i)})
	}
	assert.Len(t, p.Renders.History, HistorySoftCap)
	assert.Equal(t, "r"+itoa(HistorySoftCap+4), p.Renders.LastRenderID)
	assert.Equal(t, "r"+itoa(5), p.Renders.History[0].RenderID)
}

func itoa(i int) string {
	digits := "0123456789"
	if i == 0 {
		return "0"
	}
	var b []byte
	for i > 0 {
		b = append([]byte{digits[i%10]}, b...)
		i /= 10
	}
	return string(b)
}
