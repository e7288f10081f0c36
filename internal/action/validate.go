// Package action implements the strict schema/ordering validator for
// timeline action events (spec.md §4.5).
package action

import (
	"fmt"
	"sort"
	"strings"

	"github.com/apresai/narrated-demo/internal/timeline"
)

// ValidateAndSort checks every action event against the rules spec.md §4.5
// lists, returning all violations found (in input order). On success it
// also returns the events re-sorted by (at_ms, source_index, id) — equal
// timestamps resolve to source order, never a lexical id sort.
func ValidateAndSort(events []timeline.ActionEvent) ([]timeline.ActionEvent, []*timeline.ValidationError) {
	var errs []*timeline.ValidationError

	seen := map[string]bool{}
	for i, a := range events {
		if e := validateOne(i, a, seen); e != nil {
			errs = append(errs, e...)
		}
		seen[a.ID] = true
	}

	if len(errs) > 0 {
		return nil, errs
	}

	sorted := make([]timeline.ActionEvent, len(events))
	copy(sorted, events)
	for i := range sorted {
		sorted[i].SourceIndex = i
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].AtMS != sorted[j].AtMS {
			return sorted[i].AtMS < sorted[j].AtMS
		}
		if sorted[i].SourceIndex != sorted[j].SourceIndex {
			return sorted[i].SourceIndex < sorted[j].SourceIndex
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted, nil
}

func validateOne(i int, a timeline.ActionEvent, seen map[string]bool) []*timeline.ValidationError {
	var errs []*timeline.ValidationError
	fail := func(code, msg string) {
		errs = append(errs, &timeline.ValidationError{
			Code: code, Message: msg, ActionIndex: i, ActionID: a.ID,
		})
	}

	if strings.TrimSpace(a.ID) == "" {
		fail(timeline.CodeSchemaInvalid, "action id is required")
	} else if seen[a.ID] {
		fail(timeline.CodeDuplicateID, fmt.Sprintf("duplicate action id %q", a.ID))
	}

	switch a.Action {
	case timeline.ActionGoto, timeline.ActionClick, timeline.ActionFill, timeline.ActionPress:
		if strings.TrimSpace(a.Target) == "" {
			fail(timeline.CodeSchemaInvalid, fmt.Sprintf("%s requires a target", a.Action))
		}
	case timeline.ActionWait:
		// wait has no target; args.ms is checked below.
	default:
		fail(timeline.CodeSchemaInvalid, fmt.Sprintf("unsupported action verb %q", a.Action))
	}

	if a.Action == timeline.ActionGoto && a.Target != "" {
		if !strings.HasPrefix(a.Target, "http://") && !strings.HasPrefix(a.Target, "https://") {
			fail(timeline.CodeSchemaInvalid, "goto target must start with http:// or https://")
		}
	}

	if a.Action == timeline.ActionFill {
		v, ok := a.Args["value"]
		if !ok {
			fail(timeline.CodeSchemaInvalid, "fill requires args.value")
		} else if !isScalar(v) {
			fail(timeline.CodeSchemaInvalid, "fill args.value must be a string, number, or bool")
		}
	}

	if a.Action == timeline.ActionPress {
		key, _ := a.Args["key"].(string)
		if strings.TrimSpace(key) == "" {
			fail(timeline.CodeSchemaInvalid, "press requires a non-empty args.key")
		}
	}

	if a.Action == timeline.ActionWait {
		ms, ok := numericArg(a.Args["ms"])
		if !ok {
			fail(timeline.CodeSchemaInvalid, "wait requires numeric args.ms")
		} else if ms < timeline.MinWaitMS || ms > timeline.MaxWaitMS {
			fail(timeline.CodeSchemaInvalid, fmt.Sprintf("wait args.ms must be within [%d, %d]", timeline.MinWaitMS, timeline.MaxWaitMS))
		} else if a.TimeoutMS > 0 && ms > a.TimeoutMS {
			fail(timeline.CodeSchemaInvalid, "wait args.ms must not exceed the action timeout")
		}
	}

	timeoutMS := a.TimeoutMS
	if timeoutMS == 0 {
		timeoutMS = timeline.DefaultTimeoutMS
	}
	if timeoutMS < timeline.MinTimeoutMS || timeoutMS > timeline.MaxTimeoutMS {
		fail(timeline.CodeSchemaInvalid, fmt.Sprintf("timeout_ms must be within [%d, %d]", timeline.MinTimeoutMS, timeline.MaxTimeoutMS))
	}

	if a.Retries < timeline.MinRetries || a.Retries > timeline.MaxRetries {
		fail(timeline.CodeSchemaInvalid, fmt.Sprintf("retries must be within [%d, %d]", timeline.MinRetries, timeline.MaxRetries))
	}

	return errs
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool, float64, int, int64:
		return true
	default:
		return false
	}
}

func numericArg(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}
