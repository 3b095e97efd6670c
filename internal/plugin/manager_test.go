package plugin

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeManifest creates <root>/<dir>/plugin.json.
func writeManifest(t *testing.T, root, dir string, m Manifest) string {
	t.Helper()

	pluginDir := filepath.Join(root, dir)
	if err := os.MkdirAll(pluginDir, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pluginDir, "plugin.json"), data, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return pluginDir
}

func TestManager_Discover(t *testing.T) {
	tmpDir := t.TempDir()
	pluginDir := writeManifest(t, tmpDir, "keyboard", Manifest{
		Name:        KeyboardPlugin,
		Version:     "1.0.0",
		Description: "Arrow key control",
		Executable:  "keyboard",
		Actions:     []string{ActionKeyDown, ActionKeyUp},
	})

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 1 {
		t.Fatalf("expected 1 plugin, got %d", len(plugins))
	}

	plugin := plugins[0]
	if plugin.Manifest.Name != KeyboardPlugin || plugin.Manifest.Version != "1.0.0" {
		t.Errorf("unexpected manifest: %+v", plugin.Manifest)
	}
	if plugin.Path != pluginDir {
		t.Errorf("expected path %q, got %q", pluginDir, plugin.Path)
	}
	if plugin.Executable != filepath.Join(pluginDir, "keyboard") {
		t.Errorf("unexpected executable %q", plugin.Executable)
	}
}

func TestManager_Discover_Skips(t *testing.T) {
	tmpDir := t.TempDir()
	writeManifest(t, tmpDir, "b", Manifest{Name: "b", Executable: "b"})
	writeManifest(t, tmpDir, "a", Manifest{Name: "a", Executable: "a"})

	if err := os.MkdirAll(filepath.Join(tmpDir, "no-manifest"), 0755); err != nil {
		t.Fatal(err)
	}
	badDir := filepath.Join(tmpDir, "bad")
	os.MkdirAll(badDir, 0755)
	os.WriteFile(filepath.Join(badDir, "plugin.json"), []byte("not valid json"), 0644)
	os.WriteFile(filepath.Join(tmpDir, "README"), []byte("loose file"), 0644)

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed unexpectedly: %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(plugins))
	}
	if plugins[0].Manifest.Name != "a" || plugins[1].Manifest.Name != "b" {
		t.Errorf("List() not sorted: %s, %s", plugins[0].Manifest.Name, plugins[1].Manifest.Name)
	}
}

func TestManager_Discover_MissingDir(t *testing.T) {
	manager := NewManager("/path/that/does/not/exist")

	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed on non-existent dir: %v", err)
	}
	if len(manager.List()) != 0 {
		t.Fatalf("expected 0 plugins")
	}
	if manager.PluginDir() != "/path/that/does/not/exist" {
		t.Errorf("PluginDir() = %q", manager.PluginDir())
	}
}

func TestManager_Require(t *testing.T) {
	tmpDir := t.TempDir()
	writeManifest(t, tmpDir, "sound", Manifest{Name: SoundPlugin, Executable: "sound", Actions: []string{ActionPlay}})

	manager := NewManager(tmpDir)
	manager.Discover()

	if _, err := manager.Require(SoundPlugin, ActionPlay); err != nil {
		t.Errorf("Require() error = %v", err)
	}
	if _, err := manager.Require(SoundPlugin, ActionKeyDown); !errors.Is(err, ErrUnsupportedAction) {
		t.Errorf("Require(key-down) error = %v, want ErrUnsupportedAction", err)
	}
	if _, err := manager.Get("nonexistent"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("Get() error = %v, want ErrPluginNotFound", err)
	}
}
