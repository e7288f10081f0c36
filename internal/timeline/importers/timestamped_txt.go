package importers

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/apresai/narrated-demo/internal/timeline"
)

// timestampedLine matches "[MM:SS] text" or "[HH:MM:SS] text".
var timestampedLine = regexp.MustCompile(`^\[(\d{1,2}):(\d{2})(?::(\d{2}))?\]\s*(.*)$`)

// parseTimestampedTXT reads one narration event per non-comment, non-blank
// line. Lines starting with "#" are comments. A line that doesn't match
// the bracketed-timestamp shape, or whose minute/second component is out
// of range, or whose text is empty, is reported with its 1-based line
// number.
func parseTimestampedTXT(text string) ([]timeline.NarrationEvent, error) {
	var events []timeline.NarrationEvent

	scanner := bufio.NewScanner(strings.NewReader(text))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		m := timestampedLine.FindStringSubmatch(line)
		if m == nil {
			return nil, lineErr(timeline.CodeUnparsableLine, lineNo,
				fmt.Sprintf("line %d does not match [MM:SS] or [HH:MM:SS] text", lineNo))
		}

		startMS, err := timestampToMS(m[1], m[2], m[3])
		if err != nil {
			return nil, lineErr(timeline.CodeInvalidTimestamp, lineNo, err.Error())
		}

		body := strings.TrimSpace(m[4])
		if body == "" {
			return nil, lineErr(timeline.CodeEmptyText, lineNo,
				fmt.Sprintf("line %d has a timestamp but no text", lineNo))
		}

		events = append(events, timeline.NarrationEvent{
			StartMS: startMS,
			Text:    body,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading timestamped text: %w", err)
	}

	if len(events) == 0 {
		return nil, &timeline.ValidationError{
			Code:    timeline.CodeEmptyOutput,
			Message: "no narration lines found",
		}
	}
	return events, nil
}

// timestampToMS converts an (hh, mm, ss) or (mm, ss) capture group triple
// into milliseconds. Groups 1 and 2 are always present; group 3 is set
// only in the HH:MM:SS form, where g1/g2/g3 are hours/minutes/seconds.
// In the short MM:SS form g3 is empty and g1/g2 are minutes/seconds.
func timestampToMS(g1, g2, g3 string) (int64, error) {
	var hh, mm, ss int
	var err error
	if g3 != "" {
		if hh, err = strconv.Atoi(g1); err != nil {
			return 0, fmt.Errorf("invalid hour %q", g1)
		}
		if mm, err = strconv.Atoi(g2); err != nil {
			return 0, fmt.Errorf("invalid minute %q", g2)
		}
		if ss, err = strconv.Atoi(g3); err != nil {
			return 0, fmt.Errorf("invalid second %q", g3)
		}
	} else {
		if mm, err = strconv.Atoi(g1); err != nil {
			return 0, fmt.Errorf("invalid minute %q", g1)
		}
		if ss, err = strconv.Atoi(g2); err != nil {
			return 0, fmt.Errorf("invalid second %q", g2)
		}
	}
	if mm >= 60 || ss >= 60 {
		return 0, fmt.Errorf("minute/second component out of range: %02d:%02d", mm, ss)
	}
	total := int64(hh)*3600 + int64(mm)*60 + int64(ss)
	return total * 1000, nil
}

func lineErr(code string, line int, msg string) *timeline.ValidationError {
	return &timeline.ValidationError{
		Code:       code,
		Message:    msg,
		LineNumber: line,
	}
}
