// Package timeline holds the canonical narration/action timeline model and
// its two-phase validator (spec.md §4.1).
package timeline

// SchemaVersion is the only timeline_version this module accepts on input
// and the only one it ever writes.
const SchemaVersion = "1.0"

// NarrationEvent is a single line of voice-over bound to a time interval.
type NarrationEvent struct {
	ID             string         `json:"id"`
	StartMS        int64          `json:"start_ms"`
	EndMS          int64          `json:"end_ms"`
	Text           string         `json:"text"`
	VoiceProfileID string         `json:"voice_profile_id,omitempty"`
	Meta           map[string]any `json:"meta,omitempty"`
}

// ActionEvent is a scripted browser action on the timeline.
type ActionEvent struct {
	ID          string         `json:"id"`
	AtMS        int64          `json:"at_ms"`
	Action      string         `json:"action"`
	Target      string         `json:"target,omitempty"`
	Args        map[string]any `json:"args,omitempty"`
	TimeoutMS   int64          `json:"timeout_ms"`
	Retries     int            `json:"retries"`
	SourceIndex int            `json:"source_index"`
}

// Timeline is the canonical JSON document accepted bit-exactly by the
// external schema (spec.md §6).
type Timeline struct {
	TimelineVersion string           `json:"timeline_version"`
	NarrationEvents []NarrationEvent `json:"narration_events"`
	ActionEvents    []ActionEvent    `json:"action_events"`
}

// Action verbs accepted by ActionEvent.Action (spec.md §3).
const (
	ActionGoto  = "goto"
	ActionClick = "click"
	ActionFill  = "fill"
	ActionPress = "press"
	ActionWait  = "wait"
)

// Default/bound constants for ActionEvent fields (spec.md §3).
const (
	DefaultTimeoutMS = 10000
	MinTimeoutMS     = 100
	MaxTimeoutMS     = 120000
	DefaultRetries   = 1
	MinRetries       = 0
	MaxRetries       = 3
	MinWaitMS        = 0
	MaxWaitMS        = 120000
)
