package action

import (
	"testing"

	"github.com/apresai/narrated-demo/internal/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAndSort_DuplicateID(t *testing.T) {
	events := []timeline.ActionEvent{
		{ID: "a1", AtMS: 0, Action: timeline.ActionClick, Target: "#x"},
		{ID: "a1", AtMS: 10, Action: timeline.ActionWait, Args: map[string]any{"ms": float64(10)}},
	}
	_, errs := ValidateAndSort(events)
	require.NotEmpty(t, errs)
	assert.Equal(t, timeline.CodeDuplicateID, errs[0].Code)
	assert.Equal(t, 1, errs[0].ActionIndex)
	assert.Equal(t, "a1", errs[0].ActionID)
}

func TestValidateAndSort_GotoRequiresHTTPTarget(t *testing.T) {
	events := []timeline.ActionEvent{
		{ID: "a1", AtMS: 0, Action: timeline.ActionGoto, Target: "ftp://example.com"},
	}
	_, errs := ValidateAndSort(events)
	require.NotEmpty(t, errs)
}

func TestValidateAndSort_FillRequiresValue(t *testing.T) {
	events := []timeline.ActionEvent{
		{ID: "a1", AtMS: 0, Action: timeline.ActionFill, Target: "#x"},
	}
	_, errs := ValidateAndSort(events)
	require.NotEmpty(t, errs)
}

func TestValidateAndSort_WaitOutOfRange(t *testing.T) {
	events := []timeline.ActionEvent{
		{ID: "a1", AtMS: 0, Action: timeline.ActionWait, Args: map[string]any{"ms": float64(999999)}},
	}
	_, errs := ValidateAndSort(events)
	require.NotEmpty(t, errs)
}

func TestValidateAndSort_SortsTiesBySourceOrder(t *testing.T) {
	// SourceIndex is deliberately preset to a bogus value (99 on both
	// events) here to confirm
	// ValidateAndSort derives ordering from each event's position in the
	// input slice, not from a caller-supplied SourceIndex (which the HTTP
	// API never populates).
	events := []timeline.ActionEvent{
		{ID: "z", AtMS: 100, Action: timeline.ActionClick, Target: "#z", SourceIndex: 99},
		{ID: "a", AtMS: 100, Action: timeline.ActionClick, Target: "#a", SourceIndex: 99},
	}
	sorted, errs := ValidateAndSort(events)
	require.Empty(t, errs)
	require.Len(t, sorted, 2)
	assert.Equal(t, "z", sorted[0].ID)
	assert.Equal(t, "a", sorted[1].ID)
	assert.Equal(t, 0, sorted[0].SourceIndex)
	assert.Equal(t, 1, sorted[1].SourceIndex)
}

func TestValidateAndSort_Valid(t *testing.T) {
	events := []timeline.ActionEvent{
		{ID: "a1", AtMS: 0, Action: timeline.ActionGoto, Target: "https://example.com", TimeoutMS: 5000, Retries: 1},
		{ID: "a2", AtMS: 1000, Action: timeline.ActionClick, Target: "#btn", TimeoutMS: 5000},
	}
	sorted, errs := ValidateAndSort(events)
	require.Empty(t, errs)
	require.Len(t, sorted, 2)
}
