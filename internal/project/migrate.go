package project

import (
	"time"

	"github.com/apresai/narrated-demo/internal/config"
	"github.com/apresai/narrated-demo/internal/timeline"
	"github.com/apresai/narrated-demo/internal/ttsprofile"
)

// migrationStep brings a project from one schema_version up to the next.
// EnsureDefaults runs every step whose "from" version is still present,
// in order, so a document several versions behind is migrated in one
// pass. Steps are idempotent: running a step twice on an
// already-migrated document is a no-op, which is what makes
// EnsureDefaults(EnsureDefaults(p)) == EnsureDefaults(p) hold.
type migrationStep struct {
	from string
	to   string
	run  func(p *Project)
}

// migrations lists every version step this store knows, oldest first.
// "" (the zero value for a document with no schema_version field at all)
// is the original, pre-versioning shape.
var migrations = []migrationStep{
	{from: "", to: "1.0", run: migrateV0},
}

// EnsureDefaults runs the default-filling migration pass spec.md §4.3
// describes: any missing, wrong-typed, or legacy field is replaced with
// its current default, and the project is left at CurrentSchemaVersion.
// No legacy per-segment narration is projected into
// timeline.narration_events: migrateV0 is an empty step and Project
// carries no legacy narration fields.
func EnsureDefaults(p *Project, now time.Time) {
	for _, step := range migrations {
		if p.SchemaVersion == step.from {
			step.run(p)
			p.SchemaVersion = step.to
		}
	}
	if p.SchemaVersion == "" {
		p.SchemaVersion = CurrentSchemaVersion
	}

	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	if p.Settings.NarrationMode == "" {
		p.Settings.NarrationMode = config.NarrationTTSOnly
	}
	if p.Settings.DemoCaptureExecutionMode == "" {
		p.Settings.DemoCaptureExecutionMode = config.ExecutionPlaywrightOptional
	}
	if p.Settings.TTSDefaults == nil {
		p.Settings.TTSDefaults = map[string]any{}
	}

	if p.Timeline.TimelineVersion == "" {
		p.Timeline.TimelineVersion = timeline.SchemaVersion
	}
	if p.Timeline.NarrationEvents == nil {
		p.Timeline.NarrationEvents = []timeline.NarrationEvent{}
	}
	if p.Timeline.ActionEvents == nil {
		p.Timeline.ActionEvents = []timeline.ActionEvent{}
	}

	if p.TTSProfiles == nil {
		p.TTSProfiles = map[string]ttsprofile.Profile{}
	}
	if _, ok := p.TTSProfiles[ttsprofile.DefaultProfileID]; !ok {
		p.TTSProfiles[ttsprofile.DefaultProfileID] = ttsprofile.NewDefault()
	}

	if p.Renders.History == nil {
		p.Renders.History = []RenderRecord{}
	}
	if p.Demo.Runs == nil {
		p.Demo.Runs = []DemoRunRecord{}
	}
}

// migrateV0 projects legacy fields that predate schema_version into the
// current shape. There is no legacy per-segment data to migrate in this
// codebase's history, so this currently only exists to anchor the
// migration chain at "" → "1.0"; future legacy-field projections land
// here.
func migrateV0(p *Project) {
	if len(p.Timeline.NarrationEvents) == 0 {
		// Hook for projecting legacy per-segment narration data, per
		// spec.md §4.3. No legacy producer exists in this build.
	}
}
