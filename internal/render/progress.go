package render

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/ticketpilot/pkg/models"
)

// ErrInterrupted is returned when the user aborts a running analysis.
var ErrInterrupted = errors.New("interrupted")

// Job runs an analysis.
type Job func(ctx context.Context) (*models.AnalysisResult, error)

type jobDoneMsg struct {
	result *models.AnalysisResult
	err    error
}

// progressModel shows a spinner until its job finishes.
type progressModel struct {
	spinner spinner.Model
	label   string
	run     func() tea.Msg

	result      *models.AnalysisResult
	err         error
	done        bool
	interrupted bool
}

func newProgressModel(label string, run func() tea.Msg) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return progressModel{spinner: s, label: label, run: run}
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run)
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case jobDoneMsg:
		m.result, m.err, m.done = msg.result, msg.err, true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			m.interrupted = true
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done || m.interrupted {
		return ""
	}
	return fmt.Sprintf("%s %s\n", m.spinner.View(), m.label)
}

// WithSpinner runs job while animating a spinner on out. When animation
// is off the job runs directly.
func WithSpinner(ctx context.Context, out io.Writer, label string, animate bool, job Job) (*models.AnalysisResult, error) {
	if !animate {
		return job(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newProgressModel(label, func() tea.Msg {
		r, err := job(ctx)
		return jobDoneMsg{result: r, err: err}
	})
	final, err := tea.NewProgram(m, tea.WithOutput(out), tea.WithContext(ctx)).Run()
	if err != nil {
		return nil, fmt.Errorf("progress display: %w", err)
	}

	fm := final.(progressModel)
	if fm.interrupted {
		return nil, ErrInterrupted
	}
	return fm.result, fm.err
}
