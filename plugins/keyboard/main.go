// Package main provides the keyboard plugin. It holds and releases arrow keys
// for the steering game using xdotool on Linux and System Events on macOS.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
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

// KeyParams names the key for key-down and key-up.
type KeyParams struct {
	Key string `json:"key"`
}

// xdotoolKeys maps key names to X keysyms.
var xdotoolKeys = map[string]string{
	"left":  "Left",
	"right": "Right",
	"up":    "Up",
	"down":  "Down",
	"space": "space",
}

// macKeyCodes maps key names to System Events key codes.
var macKeyCodes = map[string]int{
	"left":  123,
	"right": 124,
	"down":  125,
	"up":    126,
	"space": 49,
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	var p KeyParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &p); err != nil {
			writeErrorResponse(fmt.Sprintf("failed to parse params: %v", err))
			return
		}
	}
	key := strings.ToLower(p.Key)
	if key == "" {
		writeErrorResponse("key is required")
		return
	}

	var err error
	switch req.Action {
	case "key-down":
		err = keyDown(key)
	case "key-up":
		err = keyUp(key)
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

func keyDown(key string) error {
	switch runtime.GOOS {
	case "linux":
		sym, ok := xdotoolKeys[key]
		if !ok {
			return fmt.Errorf("unsupported key %q", key)
		}
		return run("xdotool", "keydown", sym)
	case "darwin":
		code, ok := macKeyCodes[key]
		if !ok {
			return fmt.Errorf("unsupported key %q", key)
		}
		return run("osascript", "-e", fmt.Sprintf(`tell application "System Events" to key code %d`, code))
	default:
		return fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}
}

// keyUp releases key. System Events sends taps, so macOS has nothing to release.
func keyUp(key string) error {
	switch runtime.GOOS {
	case "linux":
		sym, ok := xdotoolKeys[key]
		if !ok {
			return fmt.Errorf("unsupported key %q", key)
		}
		return run("xdotool", "keyup", sym)
	case "darwin":
		if _, ok := macKeyCodes[key]; !ok {
			return fmt.Errorf("unsupported key %q", key)
		}
		return nil
	default:
		return fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}
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
