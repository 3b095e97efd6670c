package plugin

import (
	"context"
	"encoding/json"

	"github.com/ayusman/mudra/internal/game"
)

// Plugin names and actions used by the games.
const (
	KeyboardPlugin = "keyboard"
	ActionKeyDown  = "key-down"
	ActionKeyUp    = "key-up"

	SoundPlugin = "sound"
	ActionPlay  = "play"
)

// Keyboard sends steering key events through the keyboard plugin.
type Keyboard struct {
	exec   *Executor
	plugin *Plugin
}

// NewKeyboard looks up the keyboard plugin.
func NewKeyboard(m *Manager, exec *Executor) (*Keyboard, error) {
	p, err := m.Require(KeyboardPlugin, ActionKeyDown, ActionKeyUp)
	if err != nil {
		return nil, err
	}
	return &Keyboard{exec: exec, plugin: p}, nil
}

type keyParams struct {
	Key string `json:"key"`
}

// Press implements game.Keyboard.
func (k *Keyboard) Press(key game.Key) error {
	return k.send(ActionKeyDown, key)
}

// Release implements game.Keyboard.
func (k *Keyboard) Release(key game.Key) error {
	return k.send(ActionKeyUp, key)
}

func (k *Keyboard) send(action string, key game.Key) error {
	params, err := json.Marshal(keyParams{Key: string(key)})
	if err != nil {
		return err
	}
	return k.exec.Call(context.Background(), k.plugin, &Request{Action: action, Params: params})
}

// Sound plays round result tones through the sound plugin.
type Sound struct {
	exec   *Executor
	plugin *Plugin
}

// NewSound looks up the sound plugin.
func NewSound(m *Manager, exec *Executor) (*Sound, error) {
	p, err := m.Require(SoundPlugin, ActionPlay)
	if err != nil {
		return nil, err
	}
	return &Sound{exec: exec, plugin: p}, nil
}

// Play sounds the tone for a round outcome.
func (s *Sound) Play(ctx context.Context, o game.Outcome) error {
	return s.exec.Call(ctx, s.plugin, &Request{Action: ActionPlay, Event: o.String()})
}
