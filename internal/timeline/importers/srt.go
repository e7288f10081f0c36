package importers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/apresai/narrated-demo/internal/timeline"
)

// srtTimecode matches "HH:MM:SS,mmm" or "HH:MM:SS.mmm" — SRT officially
// uses a comma, but a dot shows up often enough in the wild to tolerate.
var srtTimecode = regexp.MustCompile(`(\d{2}):(\d{2}):(\d{2})[.,](\d{3})`)

// parseSRT parses a standard SubRip file into narration events. Blocks are
// separated by one or more blank lines; the numeric index line is
// optional, and index/text bodies are otherwise left unparsed — only the
// "HH:MM:SS,mmm --> HH:MM:SS,mmm" line and the following text lines
// matter.
func parseSRT(text string) ([]timeline.NarrationEvent, error) {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	blocks := splitBlocks(normalized)

	var events []timeline.NarrationEvent
	for blockNo, block := range blocks {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) == 0 {
			continue
		}

		idx := 0
		if isSRTIndex(lines[0]) {
			idx = 1
		}
		if idx >= len(lines) {
			return nil, lineErr(timeline.CodeUnparsableLine, blockNo+1,
				fmt.Sprintf("block %d has no timecode line", blockNo+1))
		}

		startMS, endMS, err := parseSRTTimecodeLine(lines[idx])
		if err != nil {
			return nil, lineErr(timeline.CodeInvalidTimestamp, blockNo+1, err.Error())
		}
		if endMS <= startMS {
			return nil, lineErr(timeline.CodeEndBeforeStart, blockNo+1,
				fmt.Sprintf("block %d: end timecode must be after start", blockNo+1))
		}

		body := strings.TrimSpace(strings.Join(lines[idx+1:], "\n"))
		if body == "" {
			return nil, lineErr(timeline.CodeEmptyText, blockNo+1,
				fmt.Sprintf("block %d has a timecode but no text", blockNo+1))
		}

		events = append(events, timeline.NarrationEvent{
			StartMS: startMS,
			EndMS:   endMS,
			Text:    body,
		})
	}

	if len(events) == 0 {
		return nil, &timeline.ValidationError{
			Code:    timeline.CodeEmptyOutput,
			Message: "no subtitle blocks found",
		}
	}
	return events, nil
}

func splitBlocks(text string) []string {
	raw := regexp.MustCompile(`\n{2,}`).Split(strings.TrimSpace(text), -1)
	blocks := make([]string, 0, len(raw))
	for _, b := range raw {
		if strings.TrimSpace(b) != "" {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

func isSRTIndex(line string) bool {
	_, err := strconv.Atoi(strings.TrimSpace(line))
	return err == nil
}

func parseSRTTimecodeLine(line string) (startMS, endMS int64, err error) {
	matches := srtTimecode.FindAllStringSubmatch(line, 2)
	if len(matches) != 2 {
		return 0, 0, fmt.Errorf("expected an SRT timecode line, got %q", line)
	}
	if startMS, err = srtGroupsToMS(matches[0]); err != nil {
		return 0, 0, err
	}
	if endMS, err = srtGroupsToMS(matches[1]); err != nil {
		return 0, 0, err
	}
	return startMS, endMS, nil
}

func srtGroupsToMS(g []string) (int64, error) {
	hh, err := strconv.Atoi(g[1])
	if err != nil {
		return 0, fmt.Errorf("invalid hour %q", g[1])
	}
	mm, err := strconv.Atoi(g[2])
	if err != nil {
		return 0, fmt.Errorf("invalid minute %q", g[2])
	}
	ss, err := strconv.Atoi(g[3])
	if err != nil {
		return 0, fmt.Errorf("invalid second %q", g[3])
	}
	ms, err := strconv.Atoi(g[4])
	if err != nil {
		return 0, fmt.Errorf("invalid millisecond %q", g[4])
	}
	if mm >= 60 || ss >= 60 {
		return 0, fmt.Errorf("minute/second component out of range: %02d:%02d", mm, ss)
	}
	return int64(hh)*3600000 + int64(mm)*60000 + int64(ss)*1000 + int64(ms), nil
}
