package watch

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ayusman/mudra/internal/game"
	"github.com/ayusman/mudra/internal/server/api"
)

const historySize = 8

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	cardStyle  = lipgloss.NewStyle().
			Padding(0, 1).
			Width(34).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	winStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	loseStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

type eventMsg api.Event

type feedErrMsg struct{ err error }

// Model implements the Bubble Tea spectator view.
type Model struct {
	source Source
	server string

	rpsGesture string
	rpsState   string
	scores     game.ScoreBoard
	lastResult string

	hcrGesture string
	steering   int

	history []string
	frames  int
	err     error
	width   int
}

// NewModel creates a spectator model reading from source. server is shown
// in the header.
func NewModel(source Source, server string) *Model {
	return &Model{source: source, server: server, rpsState: "waiting"}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return waitForEvent(m.source)
}

func waitForEvent(src Source) tea.Cmd {
	return func() tea.Msg {
		e, err := src.Next()
		if err != nil {
			return feedErrMsg{err: err}
		}
		return eventMsg(e)
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil
	case eventMsg:
		m.apply(api.Event(msg))
		return m, waitForEvent(m.source)
	case feedErrMsg:
		m.err = msg.err
		return m, nil
	}
	return m, nil
}

func (m *Model) apply(e api.Event) {
	m.frames++
	switch e.Game {
	case api.GameRPS:
		if e.Gesture != "" {
			m.rpsGesture = e.Gesture
		}
		if e.State != "" {
			m.rpsState = e.State
		}
		if e.Scores != nil {
			m.scores = *e.Scores
		}
		if e.Result != "" {
			m.lastResult = e.Result
			m.push(fmt.Sprintf("%s vs %s: %s", m.rpsGesture, e.AIMove, resultText(e.Result)))
		}
	case api.GameHCR:
		m.hcrGesture = e.Gesture
		if e.Fired {
			m.steering++
			m.push("steer " + e.Gesture)
		}
	}
}

func (m *Model) push(line string) {
	m.history = append(m.history, line)
	if len(m.history) > historySize {
		m.history = m.history[len(m.history)-historySize:]
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("mudra live"))
	b.WriteString(mutedStyle.Render("  " + m.server))
	b.WriteString("\n")

	rps := strings.Join([]string{
		labelStyle.Render("Rock Paper Scissors"),
		row("gesture", orDash(m.rpsGesture)),
		row("state", m.rpsState),
		row("score", fmt.Sprintf("you %d  ai %d  ties %d", m.scores.Player, m.scores.AI, m.scores.Ties)),
		row("last", styledResult(m.lastResult)),
	}, "\n")
	hcr := strings.Join([]string{
		labelStyle.Render("Steering"),
		row("gesture", orDash(m.hcrGesture)),
		row("changes", fmt.Sprint(m.steering)),
		row("frames", fmt.Sprint(m.frames)),
		"",
	}, "\n")

	cards := []string{cardStyle.Render(rps), cardStyle.Render(hcr)}
	if m.width > 0 && m.width < 2*lipgloss.Width(cards[0]) {
		b.WriteString(lipgloss.JoinVertical(lipgloss.Left, cards...))
	} else {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	b.WriteString("\n")

	if len(m.history) == 0 {
		b.WriteString(mutedStyle.Render("waiting for rounds..."))
	} else {
		b.WriteString(strings.Join(m.history, "\n"))
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("feed closed: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(footerStyle.Render("q quit"))
	return b.String()
}

func row(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-8s", label)) + " " + valueStyle.Render(value)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func resultText(outcome string) string {
	switch outcome {
	case game.PlayerWins.String():
		return game.PlayerWins.Message()
	case game.AIWins.String():
		return game.AIWins.Message()
	case game.Tie.String():
		return game.Tie.Message()
	}
	return outcome
}

func styledResult(outcome string) string {
	switch outcome {
	case "":
		return "-"
	case game.PlayerWins.String():
		return winStyle.Render(resultText(outcome))
	case game.AIWins.String():
		return loseStyle.Render(resultText(outcome))
	}
	return resultText(outcome)
}

// Run connects to the server's event feed and renders it until the user
// quits or ctx is cancelled.
func Run(ctx context.Context, addr string) error {
	wsURL, err := FeedURL(addr)
	if err != nil {
		return err
	}
	feed, err := Dial(ctx, wsURL)
	if err != nil {
		return err
	}
	defer feed.Close()

	_, err = tea.NewProgram(NewModel(feed, addr), tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
