package project

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewProjectID mints a project id, the same ULID construction used for
// demo run, unified run and queue job ids; render ids are built from a
// timestamp by ttsrender.RenderID instead.
func NewProjectID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("generating project id: %w", err)
	}
	return "proj_" + id.String(), nil
}
