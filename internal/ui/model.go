package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertwitch/metapatch/internal/queue"
	"github.com/dustin/go-humanize"
)

const maxLogLines = 100

//nolint:gochecknoglobals
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Padding(0, 1)
)

// QueueProgressMsg carries a fresh [queue.Progress] snapshot.
type QueueProgressMsg struct {
	t       time.Time
	data    queue.Progress
	outcome runOutcome
}

// TeaModel is the principal [tea.Model] for the command-line user interface.
type TeaModel struct {
	width  int
	height int

	cancel context.CancelFunc

	uiHandler *Handler

	fullWidthWithBorders  int
	splitWidthWithBorders int

	data         queue.Progress
	outcome      runOutcome
	progressBar  progress.Model
	logsViewport viewport.Model
	logs         []string

	ready bool
}

// NewTeaModel returns an initial new [TeaModel].
//
//nolint:mnd
func NewTeaModel(uiHandler *Handler, cancel context.CancelFunc) TeaModel {
	return TeaModel{
		uiHandler: uiHandler,
		cancel:    cancel,
		progressBar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(80),
		),
		logsViewport: viewport.New(80, 20),
		logs:         make([]string, 0, maxLogLines),
	}
}

// Init initializes the model within a [tea.Program].
func (m TeaModel) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		pollProgress(m.uiHandler),
	)
}

// pollProgress schedules the next [QueueProgressMsg].
func pollProgress(h *Handler) tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { //nolint:mnd
		return QueueProgressMsg{t: t, data: h.progress.Progress(), outcome: h.runOutcome()}
	})
}

// Update is the principal message handling method of the model.
//
//nolint:mnd,ireturn
func (m TeaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()

			return m, tea.Quit
		case "q":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		m.fullWidthWithBorders = m.width - 2
		m.splitWidthWithBorders = (m.width / 2) - 2

		m.progressBar.Width = m.splitWidthWithBorders

		// Upper panels take about a third of the height, the viewport the
		// rest minus its borders and title.
		lowerHeight := m.height - m.height/3
		m.logsViewport.Width = m.fullWidthWithBorders
		m.logsViewport.Height = lowerHeight - 3

		m.renderLogs()

		if !m.ready {
			m.ready = true
			m.uiHandler.Ready.Store(true)
		}

	case QueueProgressMsg:
		m.data = msg.data
		m.outcome = msg.outcome

		cmds = append(cmds,
			m.progressBar.SetPercent(m.data.ProgressPct/100),
			pollProgress(m.uiHandler),
		)

	case LogMsg:
		if len(m.logs) >= maxLogLines {
			m.logs = m.logs[1:]
		}
		m.logs = append(m.logs, string(msg))

		m.renderLogs()

	case progress.FrameMsg:
		updated, cmd := m.progressBar.Update(msg)
		if progressModel, ok := updated.(progress.Model); ok {
			m.progressBar = progressModel
		}
		cmds = append(cmds, cmd)
	}

	m.logsViewport, cmd = m.logsViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *TeaModel) renderLogs() {
	if len(m.logs) == 0 {
		return
	}

	logs := lipgloss.NewStyle().
		Width(m.logsViewport.Width).
		Render(strings.TrimSuffix(strings.Join(m.logs, ""), "\n"))

	m.logsViewport.SetContent(logs)
	m.logsViewport.GotoBottom()
}

// View is the principal rendering function of the model.
func (m TeaModel) View() string {
	if !m.ready {
		return "Loading the GUI..."
	}

	progressSection := lipgloss.JoinHorizontal(
		lipgloss.Top,
		borderStyle.Width(m.splitWidthWithBorders).Render(m.progressView()),
		borderStyle.Width(m.splitWidthWithBorders).Render(m.infoView()),
	)

	logsTitle := "Process Information"
	if m.uiHandler.LogWriter != nil {
		if dropped := m.uiHandler.LogWriter.Dropped(); dropped > 0 {
			logsTitle += fmt.Sprintf(" (%s lines dropped)", humanize.Comma(int64(dropped))) //nolint:gosec
		}
	}

	logsSection := borderStyle.
		Width(m.fullWidthWithBorders).
		Render(
			lipgloss.JoinVertical(
				lipgloss.Left,
				titleStyle.Width(m.fullWidthWithBorders).Render(logsTitle),
				lipgloss.NewStyle().Width(m.fullWidthWithBorders).Render(m.logsViewport.View()),
			),
		)

	helpSection := helpStyle.
		Width(m.fullWidthWithBorders).
		Render("q: quit gui • ctrl+c: quit program")

	return lipgloss.JoinVertical(
		lipgloss.Left,
		progressSection,
		logsSection,
		helpSection,
	)
}

func (m TeaModel) progressView() string {
	p := m.data

	finished, finishTime := p.HasFinished, p.FinishTime
	if m.outcome.done {
		finished, finishTime = true, m.outcome.at
	}

	var details string
	if !finished {
		var timeLeftMin float64
		if !p.ETA.IsZero() {
			timeLeftMin = time.Until(p.ETA).Minutes()
		}

		details = fmt.Sprintf(
			"Progress: %.2f%% (%d/%d)\n"+
				"Files: InProgress=%d, Success=%d, Failed=%d\n"+
				"Time: Started=%v, ETA=%v (%.1fmin left)\n"+
				"Speed: %.0f files/s\n",
			p.ProgressPct, p.ProcessedItems, p.TotalItems,
			p.InProgressItems, p.SuccessItems, p.SkippedItems,
			p.StartTime.Format("15:04:05"), p.ETA.Format("15:04:05"), timeLeftMin,
			p.ItemsPerSec,
		)
	} else {
		details = fmt.Sprintf(
			"Progress: %.2f%% (%d/%d)\n"+
				"Files: InProgress=%d, Success=%d, Failed=%d\n"+
				"Time: Started=%v, Finished=%v\n"+
				"Result: %s\n",
			p.ProgressPct, p.ProcessedItems, p.TotalItems,
			p.InProgressItems, p.SuccessItems, p.SkippedItems,
			p.StartTime.Format("15:04:05"), finishTime.Format("15:04:05"),
			m.resultText(),
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Width(m.splitWidthWithBorders).Render("Patching"),
		"",
		m.progressBar.View(),
		"",
		infoStyle.Width(m.splitWidthWithBorders).Render(details),
	)
}

func (m TeaModel) resultText() string {
	switch {
	case !m.outcome.done:
		return "OK"
	case m.outcome.err != nil:
		return "failed: " + m.outcome.err.Error()
	case m.data.TotalItems == 0:
		return "no matching files"
	default:
		return "OK"
	}
}

func (m TeaModel) infoView() string {
	info := m.uiHandler.info

	preset := info.Preset
	if preset == "" {
		preset = "(custom)"
	}

	details := fmt.Sprintf(
		"Directory: %s\nFilter: %s\nPreset: %s\nSearch: %s\nReplace: %s\nDry-run: %t\n",
		info.Dir, strconv.Quote(info.Filter), preset,
		strconv.Quote(info.Search), strconv.Quote(info.Replace), info.DryRun,
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Width(m.splitWidthWithBorders).Render("Substitution"),
		"",
		infoStyle.Width(m.splitWidthWithBorders).Render(details),
	)
}
