package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yerlanov/trackd/internal/models"
)

// TimerModel is the live timer view shown while a session is running.
type TimerModel struct {
	width  int
	height int

	tracker *models.Tracker
	active  *models.ActiveSession

	elapsed time.Duration
	spin    spinner.Model

	// UI state
	stopping bool // user pressed S; caller should stop the session
	exiting  bool // user left the view, session keeps running
}

// timerTickMsg is sent every second to update the elapsed time.
type timerTickMsg struct{}

// NewTimerModel creates the timer view for a running session.
func NewTimerModel(t *models.Tracker, active *models.ActiveSession) TimerModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))

	return TimerModel{
		tracker: t,
		active:  active,
		elapsed: time.Since(active.StartTime),
		spin:    sp,
	}
}

// Init starts the per-second tick and the spinner.
func (m TimerModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, timerTick())
}

func timerTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return timerTickMsg{}
	})
}

// Update handles messages.
func (m TimerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case timerTickMsg:
		m.elapsed = time.Since(m.active.StartTime)
		if m.stopping || m.exiting {
			return m, nil
		}
		return m, timerTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "s", "S":
			m.stopping = true
			return m, tea.Quit
		case "ctrl+c", "esc", "q":
			m.exiting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the timer.
func (m TimerModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccentMain)).
		Bold(true)
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Bold(true)
	clockStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccentBright)).
		Bold(true)
	infoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorSecondaryText)).
		Italic(true)

	header := fmt.Sprintf("%s TRACKING TIME", m.spin.View())
	title := fmt.Sprintf("#%d  %s", m.tracker.ID, m.tracker.Name)
	clock := formatElapsed(m.elapsed)
	info := fmt.Sprintf("Started at %s · target %.1fh on days %s",
		m.active.StartTime.Local().Format("15:04:05"),
		m.tracker.TargetHours,
		m.tracker.WorkDays)

	panel := lipgloss.JoinVertical(
		lipgloss.Center,
		headerStyle.Render(header),
		"",
		titleStyle.Render(title),
		"",
		clockStyle.Render(clock),
		"",
		infoStyle.Render(info),
	)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorAccentMain)).
		Padding(1, 4)

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Italic(true)
	help := helpStyle.Render("s stop & save · esc/q exit (keep running)")

	content := lipgloss.JoinVertical(lipgloss.Center, boxStyle.Render(panel), "", help)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

// formatElapsed renders elapsed time as HH:MM:SS, or MM:SS under an hour.
func formatElapsed(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// RunTimer shows the live timer and reports whether the user asked to stop
// the session. The caller owns the actual stop so the lifecycle stays in
// one place.
func RunTimer(t *models.Tracker, active *models.ActiveSession) (stopRequested bool, err error) {
	p := tea.NewProgram(NewTimerModel(t, active), tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	m := finalModel.(TimerModel)
	return m.stopping, nil
}
