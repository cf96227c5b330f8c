package cli

import (
	"context"
	"fmt"

	progressbar "charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/mfaulhaber/catalogd/internal/progress"
)

// Theme holds the color scheme for the progress display.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// updateMsg carries one progress message from the stream.
type updateMsg progress.Message

// streamClosedMsg arrives when the websocket stream ends.
type streamClosedMsg struct {
	err error
}

// watchModel is the bubbletea model for live job progress.
type watchModel struct {
	jobID    string
	updates  chan progress.Message
	closed   chan error
	cancel   context.CancelFunc
	progress progressbar.Model
	theme    Theme

	status    string
	processed int
	total     int
	pct       float64
	final     *progress.Message
	done      bool
	quitting  bool
	err       error
}

// newWatchModel creates a new watch model and starts the stream reader.
func newWatchModel(jobID string) watchModel {
	ctx, cancel := context.WithCancel(context.Background())

	updates := make(chan progress.Message)
	closed := make(chan error, 1)

	go func() {
		closed <- apiClient.WatchProgress(ctx, jobID, func(msg progress.Message) error {
			updates <- msg
			return nil
		})
	}()

	prog := progressbar.New(
		progressbar.WithDefaultBlend(),
		progressbar.WithWidth(40),
	)

	return watchModel{
		jobID:    jobID,
		updates:  updates,
		closed:   closed,
		cancel:   cancel,
		progress: prog,
		theme:    defaultTheme,
		status:   "Connecting...",
	}
}

// Init returns the initial command (start reading the stream).
func (m watchModel) Init() tea.Cmd {
	return tea.Batch(
		m.nextUpdate(),
		m.progress.Init(),
	)
}

// nextUpdate waits for the next stream message or the stream closing.
func (m watchModel) nextUpdate() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-m.updates:
			return updateMsg(msg)
		case err := <-m.closed:
			return streamClosedMsg{err: err}
		}
	}
}

// Update handles messages and returns the updated model.
func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		}

	case updateMsg:
		pm := progress.Message(msg)
		m.status = pm.Message

		switch pm.Type {
		case progress.TypeProgress:
			m.processed = pm.Processed
			m.total = pm.Total
			if pm.Total > 0 {
				m.pct = float64(pm.Processed) / float64(pm.Total)
			}
		case progress.TypeComplete:
			m.processed = pm.Processed
			m.total = pm.Total
			m.pct = 1
		}

		if pm.Terminal() {
			final := pm
			m.final = &final
			m.done = true
			if pm.Type == progress.TypeError {
				m.err = fmt.Errorf("%s", pm.Message)
			}
			m.cancel()
			return m, tea.Quit
		}
		return m, m.nextUpdate()

	case streamClosedMsg:
		if msg.err != nil && !m.done {
			m.err = msg.err
			m.done = true
			return m, tea.Quit
		}
		return m, nil

	case progressbar.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m watchModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

// renderContent builds the display string.
func (m watchModel) renderContent() string {
	if m.done || m.quitting {
		return m.finalView()
	}

	status := m.theme.statusStyle().Render(m.status)
	bar := m.progress.ViewAs(m.pct)
	counts := ""
	if m.total > 0 {
		counts = fmt.Sprintf(" %d/%d rows", m.processed, m.total)
	}
	hint := m.theme.hintStyle().Render("Press Ctrl+C to stop watching (the job keeps running)")

	return fmt.Sprintf("%s\n%s%s\n%s\n", status, bar, counts, hint)
}

// finalView renders the completion message.
func (m watchModel) finalView() string {
	if m.quitting {
		msg := fmt.Sprintf("\nJob %s continues in background.\nUse 'catalogctl watch %s' to reconnect.\n",
			m.jobID, m.jobID)
		return m.theme.hintStyle().Render(msg)
	}

	if m.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ Job failed: %s\n", m.err))
	}

	if m.final != nil && m.final.Type == progress.TypeComplete {
		out := m.theme.completedStyle().Render("✓ Completed") + "\n\n"
		out += fmt.Sprintf("  Rows processed: %d\n", m.final.Processed)
		out += fmt.Sprintf("  Rows total:     %d\n", m.final.Total)
		return out
	}

	return m.theme.completedStyle().Render("✓ Completed\n")
}

// watchJob runs the interactive progress UI for a job.
// Returns nil on success or Ctrl+C (job continues), error on job failure.
func watchJob(jobID string) error {
	model := newWatchModel(jobID)
	p := tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("progress UI error: %w", err)
	}

	if m, ok := finalModel.(watchModel); ok {
		if m.quitting {
			return nil
		}
		if m.err != nil {
			exitWithError("%v", m.err)
		}
	}

	return nil
}
