package ttsrender

import (
	"context"
	"fmt"
	"path/filepath"
)

// mux implements spec.md §4.7's Mux phase: stream-copy the source video,
// AAC-encode the mixed narration, join with -shortest into final.mp4,
// then attach the generated SRT as mov_text captions into
// final_with_captions.mp4.
func (p *Pipeline) mux(ctx context.Context, sourceVideo, narrationWAV, srtPath, exportsDir string) (finalMP4, finalCaptions string, err error) {
	finalMP4 = filepath.Join(exportsDir, "final.mp4")
	finalCaptions = filepath.Join(exportsDir, "final_with_captions.mp4")

	if _, err := p.MediaTool.RunFFmpeg(ctx,
		"-y",
		"-i", sourceVideo,
		"-i", narrationWAV,
		"-map", "0:v:0", "-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		finalMP4,
	); err != nil {
		return "", "", fmt.Errorf("muxing video+narration: %w", err)
	}

	if _, err := p.MediaTool.RunFFmpeg(ctx,
		"-y",
		"-i", finalMP4,
		"-i", srtPath,
		"-map", "0", "-map", "1",
		"-c", "copy",
		"-c:s", "mov_text",
		finalCaptions,
	); err != nil {
		return finalMP4, "", fmt.Errorf("attaching captions: %w", err)
	}

	return finalMP4, finalCaptions, nil
}
