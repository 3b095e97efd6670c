package game

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

func TestSteering_GasFiresOnce(t *testing.T) {
	kb := &RecordingKeyboard{}
	clock := NewManualClock(time.Unix(0, 0))
	s := NewSteering(kb, clock, DefaultCooldown)

	changed, err := s.Apply(gesture.Gas)
	if err != nil || !changed {
		t.Fatalf("first Gas: changed=%v err=%v", changed, err)
	}

	for i := 0; i < 10; i++ {
		clock.Advance(100 * time.Millisecond)
		if changed, _ := s.Apply(gesture.Gas); changed {
			t.Fatalf("repeat Gas fired at step %d", i)
		}
	}

	want := []KeyEvent{{Key: KeyRight, Pressed: true}}
	if got := kb.Events(); !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestSteering_Cooldown(t *testing.T) {
	kb := &RecordingKeyboard{}
	clock := NewManualClock(time.Unix(0, 0))
	s := NewSteering(kb, clock, DefaultCooldown)

	s.Apply(gesture.Gas)

	clock.Advance(100 * time.Millisecond)
	if changed, _ := s.Apply(gesture.Brake); changed {
		t.Fatal("Brake fired inside the cooldown window")
	}
	if s.Active() != gesture.Gas {
		t.Errorf("Active() = %s, want GAS", s.Active())
	}

	clock.Advance(200 * time.Millisecond)
	if changed, _ := s.Apply(gesture.Brake); !changed {
		t.Fatal("Brake did not fire after the cooldown")
	}

	clock.Advance(300 * time.Millisecond)
	if changed, _ := s.Apply(gesture.None); !changed {
		t.Fatal("None did not fire after the cooldown")
	}

	want := []KeyEvent{
		{Key: KeyRight, Pressed: true},
		{Key: KeyLeft, Pressed: true},
		{Key: KeyRight, Pressed: false},
		{Key: KeyLeft, Pressed: false},
	}
	if got := kb.Events(); !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestSteering_InitialNoneIsQuiet(t *testing.T) {
	kb := &RecordingKeyboard{}
	s := NewSteering(kb, NewManualClock(time.Unix(0, 0)), DefaultCooldown)

	if _, err := s.Apply(gesture.None); err != nil {
		t.Fatalf("Apply(None) error = %v", err)
	}
	if len(kb.Events()) != 0 {
		t.Errorf("expected no key events, got %v", kb.Events())
	}
}

func TestSteering_RejectsOtherGestures(t *testing.T) {
	s := NewSteering(&RecordingKeyboard{}, nil, DefaultCooldown)
	if _, err := s.Apply(gesture.Rock); err == nil {
		t.Error("expected error for Rock")
	}
}

type failingKeyboard struct{}

func (failingKeyboard) Press(Key) error   { return errors.New("no display") }
func (failingKeyboard) Release(Key) error { return errors.New("no display") }

func TestSteering_KeyboardError(t *testing.T) {
	s := NewSteering(failingKeyboard{}, NewManualClock(time.Unix(0, 0)), DefaultCooldown)

	if _, err := s.Apply(gesture.Gas); err == nil {
		t.Fatal("expected keyboard error")
	}
	if s.Active() != gesture.None {
		t.Errorf("failed change should not be recorded, Active() = %s", s.Active())
	}
}
