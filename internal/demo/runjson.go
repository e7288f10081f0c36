package demo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// WriteRunJSON persists the full result to logsDir/run.json, per spec.md
// §4.6 ("Every run writes logs/run.json with the full result").
func WriteRunJSON(logsDir string, result *Result) error {
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir %s: %w", logsDir, err)
	}
	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling run result: %w", err)
	}

	path := filepath.Join(logsDir, "run.json")
	w, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("staging %s: %w", path, err)
	}
	defer w.Cleanup()

	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return w.CloseAtomicallyReplace()
}
