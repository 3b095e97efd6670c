package watch

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ayusman/mudra/internal/game"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/server/api"
)

type sliceSource struct {
	events []api.Event
}

func (s *sliceSource) Next() (api.Event, error) {
	if len(s.events) == 0 {
		return api.Event{}, errors.New("eof")
	}
	e := s.events[0]
	s.events = s.events[1:]
	return e, nil
}

// drain feeds every event from the source through Update.
func drain(t *testing.T, m *Model) {
	t.Helper()
	cmd := m.Init()
	for i := 0; cmd != nil && i < 100; i++ {
		_, cmd = m.Update(cmd())
	}
}

func TestModel_AppliesEvents(t *testing.T) {
	scores := &game.ScoreBoard{Player: 1}
	src := &sliceSource{events: []api.Event{
		{Game: api.GameRPS, Gesture: "Paper", State: "counting"},
		{Game: api.GameRPS, Gesture: "Paper", State: "resolved", Result: "player", AIMove: "Rock", Scores: scores},
		{Game: api.GameHCR, Gesture: "GAS", Fired: true},
		{Game: api.GameHCR, Gesture: "GAS"},
	}}
	m := NewModel(src, "localhost:8080")
	drain(t, m)

	if m.rpsGesture != "Paper" {
		t.Errorf("rpsGesture = %q, want Paper", m.rpsGesture)
	}
	if m.rpsState != "resolved" {
		t.Errorf("rpsState = %q, want resolved", m.rpsState)
	}
	if m.scores != *scores {
		t.Errorf("scores = %+v, want %+v", m.scores, *scores)
	}
	if m.steering != 1 {
		t.Errorf("steering = %d, want 1", m.steering)
	}
	if m.frames != 4 {
		t.Errorf("frames = %d, want 4", m.frames)
	}
	want := []string{"Paper vs Rock: You win!", "steer GAS"}
	if strings.Join(m.history, "|") != strings.Join(want, "|") {
		t.Errorf("history = %v, want %v", m.history, want)
	}
	if m.err == nil {
		t.Error("err should be set once the source is exhausted")
	}
}

func TestModel_HistoryIsBounded(t *testing.T) {
	m := NewModel(&sliceSource{}, "")
	for i := 0; i < historySize+5; i++ {
		m.apply(api.Event{Game: api.GameHCR, Gesture: "NONE", Fired: true})
	}
	if len(m.history) != historySize {
		t.Errorf("len(history) = %d, want %d", len(m.history), historySize)
	}
}

func TestModel_Quit(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		quit bool
	}{
		{"q", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}, true},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, true},
		{"other", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel(&sliceSource{}, "")
			_, cmd := m.Update(tt.msg)
			if (cmd != nil) != tt.quit {
				t.Fatalf("cmd = %v, want quit %v", cmd, tt.quit)
			}
			if tt.quit {
				if _, ok := cmd().(tea.QuitMsg); !ok {
					t.Error("expected tea.QuitMsg")
				}
			}
		})
	}
}

func TestModel_View(t *testing.T) {
	m := NewModel(&sliceSource{}, "localhost:8080")
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	view := m.View()
	for _, want := range []string{"mudra live", "localhost:8080", "Rock Paper Scissors", "Steering", "waiting for rounds", "q quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m.apply(api.Event{Game: api.GameRPS, Gesture: "Rock", State: "resolved", Result: "ai", AIMove: "Paper",
		Scores: &game.ScoreBoard{AI: 2, Ties: 1}})
	m.Update(feedErrMsg{err: errors.New("connection reset")})
	view = m.View()
	for _, want := range []string{"Rock vs Paper: AI wins!", "ai 2", "ties 1", "feed closed: connection reset"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestFeedURL(t *testing.T) {
	tests := []struct {
		addr    string
		want    string
		wantErr bool
	}{
		{addr: ":8080", want: "ws://localhost:8080/api/events"},
		{addr: "localhost:8080", want: "ws://localhost:8080/api/events"},
		{addr: "http://game.local:9000", want: "ws://game.local:9000/api/events"},
		{addr: "https://game.local", want: "wss://game.local/api/events"},
		{addr: "ftp://game.local", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			got, err := FeedURL(tt.addr)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FeedURL(%q) error = %v, wantErr %v", tt.addr, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("FeedURL(%q) = %q, want %q", tt.addr, got, tt.want)
			}
		})
	}
}

func TestFeed_ReceivesHubEvents(t *testing.T) {
	hub := server.NewHub()
	ts := httptest.NewServer(hub)
	defer ts.Close()
	defer hub.Close()

	wsURL, err := FeedURL(ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	feed, err := Dial(ctx, wsURL)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer feed.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	hub.Publish(api.Event{Game: api.GameHCR, Gesture: "BRAKE", Fired: true})

	e, err := feed.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if e.Game != api.GameHCR || e.Gesture != "BRAKE" || !e.Fired {
		t.Errorf("event = %+v", e)
	}
}
