package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_DuplicateNarrationID(t *testing.T) {
	tl := &Timeline{
		TimelineVersion: SchemaVersion,
		NarrationEvents: []NarrationEvent{
			{ID: "n1", StartMS: 0, EndMS: 1000, Text: "a"},
			{ID: "n1", StartMS: 1000, EndMS: 2000, Text: "b"},
		},
	}
	errs := ValidateAll(tl)
	require.NotEmpty(t, errs)
	assert.Equal(t, CodeDuplicateID, errs[0].Code)
}

func TestValidate_EndBeforeStart(t *testing.T) {
	tl := &Timeline{
		TimelineVersion: SchemaVersion,
		NarrationEvents: []NarrationEvent{
			{ID: "n1", StartMS: 1000, EndMS: 500, Text: "a"},
		},
	}
	err := Validate(tl)
	require.Error(t, err)
	ve, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, CodeEndBeforeStart, ve.Code)
}

func TestValidate_DuplicateActionID(t *testing.T) {
	tl := &Timeline{
		TimelineVersion: SchemaVersion,
		ActionEvents: []ActionEvent{
			{ID: "dup", AtMS: 0, Action: ActionClick, Target: "#x"},
			{ID: "dup", AtMS: 10, Action: ActionWait},
		},
	}
	errs := ValidateAll(tl)
	require.NotEmpty(t, errs)
	var found *ValidationError
	for _, e := range errs {
		if e.Code == CodeDuplicateID && e.ActionID == "dup" {
			found = e
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, 1, found.ActionIndex)
}

func TestValidate_Valid(t *testing.T) {
	tl := &Timeline{
		TimelineVersion: SchemaVersion,
		NarrationEvents: []NarrationEvent{
			{ID: "n1", StartMS: 0, EndMS: 1000, Text: "hello"},
		},
	}
	assert.NoError(t, Validate(tl))
}
