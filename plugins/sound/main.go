// Package main provides the sound plugin. It plays a short tone for each
// round outcome: high for a player win, low for an AI win, medium for a tie.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action string          `json:"action"`
	Event  string          `json:"event,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Tone is a beep frequency and length.
type Tone struct {
	Frequency  int `json:"frequency"`
	DurationMS int `json:"duration_ms"`
}

// outcomeTones maps round outcomes to tones.
var outcomeTones = map[string]Tone{
	"player": {Frequency: 1000, DurationMS: 500},
	"ai":     {Frequency: 500, DurationMS: 500},
	"tie":    {Frequency: 750, DurationMS: 300},
}

// macSounds maps round outcomes to bundled system sounds.
var macSounds = map[string]string{
	"player": "/System/Library/Sounds/Glass.aiff",
	"ai":     "/System/Library/Sounds/Basso.aiff",
	"tie":    "/System/Library/Sounds/Tink.aiff",
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	var err error
	switch req.Action {
	case "play":
		err = playOutcome(req.Event)
	case "beep":
		var t Tone
		if err = json.Unmarshal(req.Params, &t); err == nil {
			err = beep(t)
		}
	default:
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}
	if err != nil {
		writeErrorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
		return
	}

	writeSuccessResponse()
}

func playOutcome(outcome string) error {
	tone, ok := outcomeTones[outcome]
	if !ok {
		return fmt.Errorf("unknown outcome %q", outcome)
	}
	if runtime.GOOS == "darwin" {
		return run("afplay", macSounds[outcome])
	}
	return beep(tone)
}

// beep uses the beep utility when installed and falls back to the terminal bell.
func beep(t Tone) error {
	if t.Frequency <= 0 || t.DurationMS <= 0 {
		return fmt.Errorf("invalid tone %+v", t)
	}
	if path, err := exec.LookPath("beep"); err == nil {
		return run(path, "-f", strconv.Itoa(t.Frequency), "-l", strconv.Itoa(t.DurationMS))
	}
	tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("no audio output: %w", err)
	}
	defer tty.Close()
	_, err = tty.Write([]byte("\a"))
	return err
}

func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: errMsg})
}

func writeSuccessResponse() {
	json.NewEncoder(os.Stdout).Encode(Response{Success: true})
}

func run(name string, args ...string) error {
	output, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
