// Package watch renders the live game event feed in the terminal.
package watch

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/server/api"
)

// EventsPath is the websocket endpoint served by the game server.
const EventsPath = "/api/events"

// Source yields events one at a time.
type Source interface {
	Next() (api.Event, error)
}

// Feed is a websocket subscription to a game server.
type Feed struct {
	conn *websocket.Conn
}

// FeedURL turns a server address such as "localhost:8080" or
// "http://host:8080" into the websocket URL of its event feed.
func FeedURL(addr string) (string, error) {
	if !strings.Contains(addr, "://") {
		if strings.HasPrefix(addr, ":") {
			addr = "localhost" + addr
		}
		addr = "http://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return "", fmt.Errorf("parse server address: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = EventsPath
	return u.String(), nil
}

// Dial connects to the event feed at wsURL.
func Dial(ctx context.Context, wsURL string) (*Feed, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", wsURL, err)
	}
	return &Feed{conn: conn}, nil
}

// Next blocks until the next event arrives.
func (f *Feed) Next() (api.Event, error) {
	var e api.Event
	if err := f.conn.ReadJSON(&e); err != nil {
		return api.Event{}, err
	}
	return e, nil
}

// Close ends the subscription.
func (f *Feed) Close() error {
	return f.conn.Close()
}
