package ttsprofile

import (
	"testing"

	"github.com/apresai/narrated-demo/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_DefaultsToDefaultID(t *testing.T) {
	profiles := map[string]Profile{DefaultProfileID: NewDefault()}
	p, err := Resolve(profiles, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultProfileID, p.ProfileID)
}

func TestResolve_MissingIDIsError(t *testing.T) {
	profiles := map[string]Profile{DefaultProfileID: NewDefault()}
	_, err := Resolve(profiles, "nope")
	assert.Error(t, err)
}

func TestResolveEndpoint_FallsBack(t *testing.T) {
	cfg := config.Config{TTSEndpoint: "http://global"}
	ep, err := ResolveEndpoint(Profile{}, "", cfg)
	require.NoError(t, err)
	assert.Equal(t, "http://global", ep)

	ep, err = ResolveEndpoint(Profile{}, "http://project", cfg)
	require.NoError(t, err)
	assert.Equal(t, "http://project", ep)

	ep, err = ResolveEndpoint(Profile{Endpoint: "http://profile"}, "http://project", cfg)
	require.NoError(t, err)
	assert.Equal(t, "http://profile", ep)
}

func TestResolveEndpoint_NoneConfigured(t *testing.T) {
	_, err := ResolveEndpoint(Profile{}, "", config.Config{})
	assert.Error(t, err)
}

func TestResolveParams_MergeOrderAndVoiceInjection(t *testing.T) {
	profile := Profile{
		VoiceMode:         VoicePredefined,
		PredefinedVoiceID: "voice-1",
		Params:            map[string]any{"speed": 1.0, "pitch": 0.5},
	}
	merged := ResolveParams(
		map[string]any{"speed": 0.8, "extra": "default"},
		map[string]any{"pitch": 0.9},
		profile,
	)
	assert.Equal(t, 1.0, merged["speed"])
	assert.Equal(t, 0.9, merged["pitch"])
	assert.Equal(t, "default", merged["extra"])
	assert.Equal(t, "voice-1", merged["voice"])
}

func TestResolveParams_ReferenceAudioInjectsPromptPath(t *testing.T) {
	profile := Profile{
		VoiceMode:       VoiceReferenceAudio,
		AudioPromptPath: "/data/ref.wav",
	}
	merged := ResolveParams(nil, nil, profile)
	assert.Equal(t, "/data/ref.wav", merged["audio_prompt_path"])
}
