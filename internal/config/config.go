// Package config loads the process-wide typed configuration from the
// environment into a Config value that constructors take explicitly. A
// few settings are still read from the environment elsewhere: API_ADDR,
// DEMOCTL_API and TTS_API_KEY by the cmd/* entry points, and
// OTEL_EXPORTER_OTLP_LOGS_HEADERS by internal/observability.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// NarrationMode enumerates settings.narration_mode per spec §3.
type NarrationMode string

const (
	NarrationTTSOnly         NarrationMode = "tts_only"
	NarrationUnified         NarrationMode = "unified"
	NarrationTimelineUnified NarrationMode = "timeline_unified"
	NarrationLegacySegment   NarrationMode = "legacy_segment"
	NarrationLegacyHolistic  NarrationMode = "legacy_holistic"
	NarrationSegment         NarrationMode = "segment"
	NarrationHolistic        NarrationMode = "holistic"
	NarrationTimeline        NarrationMode = "timeline"
)

// ValidNarrationModes is the allowed set for settings.narration_mode.
var ValidNarrationModes = []NarrationMode{
	NarrationTTSOnly, NarrationUnified, NarrationTimelineUnified,
	NarrationLegacySegment, NarrationLegacyHolistic, NarrationSegment,
	NarrationHolistic, NarrationTimeline,
}

// IsValidNarrationMode reports whether m is one of ValidNarrationModes.
func IsValidNarrationMode(m string) bool {
	for _, v := range ValidNarrationModes {
		if string(v) == m {
			return true
		}
	}
	return false
}

// ExecutionMode enumerates settings.demo_capture_execution_mode per spec §3.
type ExecutionMode string

const (
	ExecutionPlaywrightOptional ExecutionMode = "playwright_optional"
	ExecutionPlaywrightRequired ExecutionMode = "playwright_required"
)

// TTSMode enumerates the external TTS endpoint's request contract (§6).
type TTSMode string

const (
	TTSModeChatterboxJSON  TTSMode = "chatterbox_tts_json"
	TTSModeOpenAISpeech    TTSMode = "openai_audio_speech"
)

// Config is the single source of environment-derived settings, threaded
// explicitly into every constructor that needs it (no package globals).
type Config struct {
	QueueURL      string
	QueueName     string
	DataDir       string
	TTSEndpoint   string
	TTSMode       TTSMode
	ExecutionMode ExecutionMode
	NarrationMode NarrationMode

	// AWS / observability, mirrors the teacher's env surface.
	AWSRegion           string
	S3Bucket            string
	SecretPrefix        string
	OTLPLogsHeaders     string
	MaxConcurrentTasks  int
}

// Load reads Config from the environment, applying the defaults named in
// spec.md §6 "Environment configuration".
func Load() (Config, error) {
	cfg := Config{
		QueueURL:           envOr("QUEUE_URL", "redis://127.0.0.1:6379/0"),
		QueueName:          envOr("QUEUE_NAME", "default"),
		DataDir:            envOr("DATA_DIR", "/data"),
		TTSEndpoint:        os.Getenv("TTS_ENDPOINT"),
		TTSMode:            TTSMode(envOr("TTS_MODE", string(TTSModeChatterboxJSON))),
		ExecutionMode:      ExecutionMode(envOr("DEMO_CAPTURE_EXECUTION_MODE", string(ExecutionPlaywrightOptional))),
		NarrationMode:      NarrationMode(envOr("NARRATION_MODE", string(NarrationTTSOnly))),
		AWSRegion:          envOr("AWS_REGION", "us-east-1"),
		S3Bucket:           os.Getenv("S3_BUCKET"),
		SecretPrefix:       envOr("SECRET_PREFIX", "/narrated-demo/"),
		OTLPLogsHeaders:    os.Getenv("OTEL_EXPORTER_OTLP_LOGS_HEADERS"),
		MaxConcurrentTasks: envIntOr("MAX_CONCURRENT_TASKS", 5),
	}

	if cfg.ExecutionMode != ExecutionPlaywrightOptional && cfg.ExecutionMode != ExecutionPlaywrightRequired {
		return Config{}, fmt.Errorf("invalid DEMO_CAPTURE_EXECUTION_MODE %q", cfg.ExecutionMode)
	}
	if !IsValidNarrationMode(string(cfg.NarrationMode)) {
		return Config{}, fmt.Errorf("invalid NARRATION_MODE %q", cfg.NarrationMode)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
