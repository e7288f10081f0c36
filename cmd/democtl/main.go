// Command democtl is a thin CLI over the HTTP/API Surface (spec.md §6):
// upload a screen recording, import a narration timeline, enqueue a
// render or demo-capture job, and watch it to completion. It talks to a
// running cmd/api process over HTTP; it never touches ffmpeg, a browser,
// or the project store directly, mirroring the teacher's own separation
// between its cobra-driven CLI and the pipeline it drives.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var flagAPI string

var rootCmd = &cobra.Command{
	Use:   "democtl",
	Short: "Drive a narrated-demo project through the API",
}

var createCmd = &cobra.Command{
	Use:   "create <video.mp4>",
	Short: "Upload a screen recording and create a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient(flagAPI)
		p, err := client.CreateProject(args[0])
		if err != nil {
			return err
		}
		fmt.Println(p.ProjectID)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <project-id> <timeline-file>",
	Short: "Import a narration timeline (timestamped_txt, srt, or json; auto-detected by extension)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, path := args[0], args[1]
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		format := flagFormat
		if format == "" {
			format = detectFormat(path)
		}

		client := newAPIClient(flagAPI)
		resp, err := client.ImportTimeline(projectID, string(content), format)
		if err != nil {
			return err
		}
		fmt.Printf("imported %d narration event(s), %d action event(s) (timeline_version %s)\n",
			resp.NarrationEventCount, resp.ActionEventCount, resp.TimelineVersion)
		return nil
	},
}

var renderCmd = &cobra.Command{
	Use:   "render <project-id>",
	Short: "Enqueue a render job and print its job id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return enqueueAndMaybeWatch(newAPIClient(flagAPI).EnqueueRender, args[0])
	},
}

var demoCmd = &cobra.Command{
	Use:   "demo <project-id>",
	Short: "Enqueue a demo-capture job and print its job id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return enqueueAndMaybeWatch(newAPIClient(flagAPI).EnqueueDemoRun, args[0])
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch <job-id>",
	Short: "Watch a job's status until it finishes or fails",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchJob(args[0])
	},
}

var flagFormat string
var flagWatch bool
var flagVerbose bool

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAPI, "api", envOr("DEMOCTL_API", "http://localhost:8080"), "base URL of the cmd/api process")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "plain line-based progress output instead of the interactive spinner (for CI logs and piped output)")
	importCmd.Flags().StringVar(&flagFormat, "format", "", "import_format override (auto, timestamped_txt, srt, json)")
	renderCmd.Flags().BoolVar(&flagWatch, "watch", true, "watch the job after enqueuing it")
	demoCmd.Flags().BoolVar(&flagWatch, "watch", true, "watch the job after enqueuing it")

	rootCmd.AddCommand(createCmd, importCmd, renderCmd, demoCmd, watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "democtl:", err)
		os.Exit(1)
	}
}

func enqueueAndMaybeWatch(enqueue func(string) (*enqueueResponse, error), projectID string) error {
	resp, err := enqueue(projectID)
	if err != nil {
		return err
	}
	fmt.Println(resp.JobID)
	if !flagWatch {
		return nil
	}
	return watchJob(resp.JobID)
}

func watchJob(jobID string) error {
	client := newAPIClient(flagAPI)

	if flagVerbose {
		return watchPlain(client, jobID)
	}

	m := newWatchModel(client, jobID)
	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return fmt.Errorf("watch TUI error: %w", err)
	}
	final := result.(watchModel)
	if final.err != nil {
		return final.err
	}
	if final.job != nil && final.job.Status == "failed" {
		return fmt.Errorf("job %s failed: %s", jobID, final.job.Error)
	}
	return nil
}

// detectFormat mirrors the auto-detect-by-extension half of §4.2's
// import_format=auto rule, for callers that don't pass --format.
func detectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".srt":
		return "srt"
	case ".json":
		return "json"
	default:
		return "timestamped_txt"
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
