package timeline

import (
	"fmt"
	"strings"
)

// Validate runs the two-phase validation spec.md §4.1 describes:
//  1. schema shape — required fields, primitive types, timeline_version
//  2. cross-field rules — duplicate ids, end_ms > start_ms
//
// It returns the first error found; callers that need every error should
// use ValidateAll.
func Validate(t *Timeline) error {
	errs := ValidateAll(t)
	if len(errs) == 0 {
		return nil
	}
	return errs[0]
}

// ValidateAll runs every check and returns all violations found, in
// document order, rather than stopping at the first one.
func ValidateAll(t *Timeline) []*ValidationError {
	var errs []*ValidationError

	if t == nil {
		return []*ValidationError{newErr(CodeSchemaInvalid, "$", "timeline payload is required")}
	}
	if t.TimelineVersion != SchemaVersion {
		errs = append(errs, newErr(CodeSchemaInvalid, "$.timeline_version",
			fmt.Sprintf("unsupported timeline_version %q, expected %q", t.TimelineVersion, SchemaVersion)))
	}

	seenNarration := map[string]bool{}
	for i, e := range t.NarrationEvents {
		loc := fmt.Sprintf("$.narration_events[%d]", i)
		if strings.TrimSpace(e.ID) == "" {
			errs = append(errs, newErr(CodeSchemaInvalid, loc+".id", "narration event id is required"))
		} else if seenNarration[e.ID] {
			errs = append(errs, newErr(CodeDuplicateID, loc+".id", fmt.Sprintf("duplicate narration id %q", e.ID)))
		}
		seenNarration[e.ID] = true

		if e.StartMS < 0 {
			errs = append(errs, newErr(CodeNegativeStart, loc+".start_ms", "start_ms must be >= 0"))
		}
		if e.EndMS <= e.StartMS {
			errs = append(errs, newErr(CodeEndBeforeStart, loc+".end_ms", "end_ms must be greater than start_ms"))
		}
		if strings.TrimSpace(e.Text) == "" {
			errs = append(errs, newErr(CodeEmptyText, loc+".text", "text must not be empty after trimming"))
		}
	}

	seenAction := map[string]bool{}
	for i, a := range t.ActionEvents {
		loc := fmt.Sprintf("$.action_events[%d]", i)
		if strings.TrimSpace(a.ID) == "" {
			errs = append(errs, newErr(CodeSchemaInvalid, loc+".id", "action event id is required"))
		} else if seenAction[a.ID] {
			errs = append(errs, &ValidationError{
				Code: CodeDuplicateID, Location: loc + ".id",
				Message:     fmt.Sprintf("duplicate action id %q", a.ID),
				ActionIndex: i, ActionID: a.ID,
			})
		}
		seenAction[a.ID] = true
	}

	return errs
}

// Parse validates payload and, on success, returns the canonical Timeline.
// Duplicate narration ids are NOT auto-renamed here — that is the job of
// the importer normalizer (NormalizeNarrationEvents); Parse is the strict
// schema/cross-field gate described in spec.md §4.1.
func Parse(payload *Timeline) (*Timeline, error) {
	if err := Validate(payload); err != nil {
		return nil, err
	}
	return payload, nil
}
