// Package ttsprofile resolves a project's TTS voice profiles into the
// endpoint, mode and parameter set a render actually calls (spec.md §4.4).
package ttsprofile

import (
	"fmt"
	"sort"

	"github.com/apresai/narrated-demo/internal/config"
)

// VoiceMode selects how a profile supplies voice identity to the TTS call.
type VoiceMode string

const (
	VoicePredefined     VoiceMode = "predefined_voice"
	VoiceReferenceAudio VoiceMode = "reference_audio"
)

// DefaultProfileID is the profile every project is seeded with and the
// fallback used when a caller omits profile_id.
const DefaultProfileID = "default"

// Profile is a named TTS voice configuration, persisted under a project's
// tts_profiles map.
type Profile struct {
	ProfileID         string         `json:"profile_id"`
	DisplayName       string         `json:"display_name"`
	Provider          string         `json:"provider"`
	Endpoint          string         `json:"endpoint,omitempty"`
	VoiceMode         VoiceMode      `json:"voice_mode"`
	PredefinedVoiceID string         `json:"predefined_voice_id,omitempty"`
	AudioPromptPath   string         `json:"audio_prompt_path,omitempty"`
	Params            map[string]any `json:"params,omitempty"`
}

// NewDefault returns the always-present "default" profile for a freshly
// created project.
func NewDefault() Profile {
	return Profile{
		ProfileID:   DefaultProfileID,
		DisplayName: "Default",
		Provider:    "chatterbox",
		VoiceMode:   VoicePredefined,
		Params:      map[string]any{},
	}
}

// Resolve looks up id (defaulting to DefaultProfileID) in profiles. A
// missing id is an error — unlike most lookups in this system, there is
// no silent fallback to default once an id is explicitly supplied.
func Resolve(profiles map[string]Profile, id string) (Profile, error) {
	if id == "" {
		id = DefaultProfileID
	}
	p, ok := profiles[id]
	if !ok {
		return Profile{}, fmt.Errorf("tts profile %q not found", id)
	}
	return p, nil
}

// ResolveEndpoint falls back profile → project settings → global config,
// per spec.md §4.4.
func ResolveEndpoint(profile Profile, projectEndpoint string, cfg config.Config) (string, error) {
	if profile.Endpoint != "" {
		return profile.Endpoint, nil
	}
	if projectEndpoint != "" {
		return projectEndpoint, nil
	}
	if cfg.TTSEndpoint != "" {
		return cfg.TTSEndpoint, nil
	}
	return "", fmt.Errorf("no TTS endpoint configured: profile, project settings, and TTS_ENDPOINT are all empty")
}

// ResolveParams merges project defaults, then profile params, then an
// explicit per-call override, each layer overwriting the previous on key
// collision. voice_mode then injects the voice-identity key:
// reference_audio sets audio_prompt_path, predefined_voice sets voice.
func ResolveParams(projectDefaults, override map[string]any, profile Profile) map[string]any {
	merged := map[string]any{}
	for k, v := range projectDefaults {
		merged[k] = v
	}
	for k, v := range profile.Params {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}

	switch profile.VoiceMode {
	case VoiceReferenceAudio:
		if profile.AudioPromptPath != "" {
			merged["audio_prompt_path"] = profile.AudioPromptPath
		}
	case VoicePredefined:
		if profile.PredefinedVoiceID != "" {
			merged["voice"] = profile.PredefinedVoiceID
		}
	}
	return merged
}

// SortedKeys returns params' keys in sorted order. ttscache.ComputeKey
// does not call it; it sorts its own keys.
func SortedKeys(params map[string]any) []string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
