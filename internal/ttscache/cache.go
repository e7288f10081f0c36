// Package ttscache implements the content-addressed TTS audio cache
// described in spec.md §4.4: equal synthesis inputs, regardless of which
// profile produced them, deterministically share one cached WAV file.
package ttscache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/renameio/v2"
)

// Key is the cache's SHA-256 content key.
type Key string

// keyInput is the canonical JSON shape hashed to produce a Key. Field
// order here doesn't matter for the hash (encoding/json sorts map keys,
// and these are all named struct fields serialized in a fixed order) but
// every field spec.md §4.4 lists must be present.
type keyInput struct {
	Text           string         `json:"text"`
	Params         map[string]any `json:"params"`
	Endpoint       string         `json:"endpoint"`
	Mode           string         `json:"mode"`
	AudioPromptSHA string         `json:"audio_prompt_sha256,omitempty"`
	ModelSignature string         `json:"model_signature,omitempty"`
}

// ComputeKey hashes the canonical JSON of {text, params, endpoint, mode,
// audio_prompt_sha256?, model_signature?}. text is whitespace-collapsed
// and params keys are sorted before hashing, so formatting differences
// that don't change meaning don't change the key.
func ComputeKey(text string, params map[string]any, endpoint, mode, audioPromptSHA, modelSignature string) (Key, error) {
	normalizedParams := make(map[string]any, len(params))
	keys := make([]string, 0, len(params))
	for k, v := range params {
		keys = append(keys, k)
		normalizedParams[k] = v
	}
	sort.Strings(keys)

	ordered := make(map[string]any, len(keys))
	for _, k := range keys {
		ordered[k] = normalizedParams[k]
	}

	input := keyInput{
		Text:           collapseWhitespace(text),
		Params:         ordered,
		Endpoint:       endpoint,
		Mode:           mode,
		AudioPromptSHA: audioPromptSHA,
		ModelSignature: modelSignature,
	}

	payload, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("marshaling tts cache key input: %w", err)
	}
	sum := sha256.Sum256(payload)
	return Key(hex.EncodeToString(sum[:])), nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Cache is a directory of content-addressed WAV files rooted at dir
// (cmd/api and cmd/worker use "<data_dir>/cache/tts" and
// "<data_dir>/cache/tts_preview", shared by all projects).
type Cache struct {
	Dir string
}

// New returns a Cache rooted at dir, creating the directory if needed.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating tts cache dir %s: %w", dir, err)
	}
	return &Cache{Dir: dir}, nil
}

func (c *Cache) path(key Key) string {
	return filepath.Join(c.Dir, string(key)+".wav")
}

// Restore copies the cached file for key to out, if present. hit reports
// whether the cache entry existed.
func (c *Cache) Restore(key Key, out string) (hit bool, err error) {
	src := c.path(key)
	in, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("opening cached audio %s: %w", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return false, fmt.Errorf("creating output dir for %s: %w", out, err)
	}
	w, err := renameio.NewPendingFile(out)
	if err != nil {
		return false, fmt.Errorf("staging %s: %w", out, err)
	}
	defer w.Cleanup()

	if _, err := io.Copy(w, in); err != nil {
		return false, fmt.Errorf("copying cached audio to %s: %w", out, err)
	}
	if err := w.CloseAtomicallyReplace(); err != nil {
		return false, fmt.Errorf("committing %s: %w", out, err)
	}
	return true, nil
}

// Store copies out into the cache under key, replacing any existing entry.
func (c *Cache) Store(key Key, out string) error {
	in, err := os.Open(out)
	if err != nil {
		return fmt.Errorf("opening rendered audio %s: %w", out, err)
	}
	defer in.Close()

	dst := c.path(key)
	w, err := renameio.NewPendingFile(dst)
	if err != nil {
		return fmt.Errorf("staging cache entry %s: %w", dst, err)
	}
	defer w.Cleanup()

	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("copying %s into cache: %w", out, err)
	}
	return w.CloseAtomicallyReplace()
}
