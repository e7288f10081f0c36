package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/apresai/narrated-demo/internal/queue"
)

// pollInterval mirrors the teacher's interactive.go cadence for anything
// that has to repaint against live state, slowed down since job status
// only needs to be checked a few times a second at most.
const pollInterval = 750 * time.Millisecond

var (
	watchTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#7D56F4")).
				MarginBottom(1)

	watchSpinnerStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#04B575"))

	watchStatusStyle = map[queue.Status]lipgloss.Style{
		queue.StatusQueued:   lipgloss.NewStyle().Foreground(lipgloss.Color("#555555")),
		queue.StatusStarted:  lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true),
		queue.StatusFinished: lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true),
		queue.StatusFailed:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555")).Bold(true),
	}

	watchErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555")).Bold(true)
	watchHelpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).MarginTop(1)
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type frameTickMsg time.Time
type pollTickMsg time.Time

type jobResultMsg struct {
	job *queue.Job
	err error
}

// watchModel polls GET /jobs/{id} until the job reaches a terminal state,
// rendering a spinner while queued/started, grounded on interactive.go's
// lipgloss style vocabulary adapted from a settings menu to a status
// display.
type watchModel struct {
	client  *apiClient
	jobID   string
	job     *queue.Job
	err     error
	frame   int
	start   time.Time
	done    bool
	quit    bool
}

func newWatchModel(client *apiClient, jobID string) watchModel {
	return watchModel{client: client, jobID: jobID, start: time.Now()}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.poll(), m.frameTick())
}

func (m watchModel) frameTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return frameTickMsg(t) })
}

func (m watchModel) pollTick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return pollTickMsg(t) })
}

func (m watchModel) poll() tea.Cmd {
	return func() tea.Msg {
		job, err := m.client.GetJob(m.jobID)
		return jobResultMsg{job: job, err: err}
	}
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.quit = true
			return m, tea.Quit
		}
	case frameTickMsg:
		if m.done {
			return m, nil
		}
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, m.frameTick()
	case pollTickMsg:
		if m.done {
			return m, nil
		}
		return m, m.poll()
	case jobResultMsg:
		if msg.err != nil {
			m.err = msg.err
			m.done = true
			return m, tea.Quit
		}
		m.job = msg.job
		switch msg.job.Status {
		case queue.StatusFinished, queue.StatusFailed:
			m.done = true
			return m, tea.Quit
		default:
			return m, m.pollTick()
		}
	}
	return m, nil
}

func (m watchModel) View() string {
	title := watchTitleStyle.Render(fmt.Sprintf("job %s", m.jobID))

	if m.err != nil {
		return title + "\n" + watchErrorStyle.Render("error: "+m.err.Error()) + "\n"
	}
	if m.job == nil {
		return title + "\n" + watchSpinnerStyle.Render(spinnerFrames[m.frame]) + " waiting for status...\n"
	}

	style := watchStatusStyle[m.job.Status]
	line := style.Render(string(m.job.Status))
	if !m.done {
		line = watchSpinnerStyle.Render(spinnerFrames[m.frame]) + " " + line
	}

	out := title + "\n" + line + fmt.Sprintf("  (%s elapsed)\n", time.Since(m.start).Round(time.Second))
	if m.job.Status == queue.StatusFailed && m.job.Error != "" {
		out += "\n" + watchErrorStyle.Render(m.job.Error) + "\n"
	}
	if m.done {
		out += watchHelpStyle.Render("job reached a terminal state") + "\n"
	} else {
		out += watchHelpStyle.Render("ctrl+c to stop watching (job keeps running)") + "\n"
	}
	return out
}
