package wayland

import (
	"errors"
	"testing"

	"github.com/windowlog/windowlog/pkg/window"
)

const swayTree = `{
	"id": 1, "type": "root", "name": "root", "focused": false,
	"nodes": [{
		"id": 3, "type": "output", "name": "eDP-1", "focused": false,
		"nodes": [{
			"id": 4, "type": "workspace", "name": "1", "focused": false,
			"nodes": [
				{"id": 10, "type": "con", "name": "Terminal", "focused": false, "app_id": "foot", "nodes": []},
				{"id": 11, "type": "con", "name": null, "focused": false, "layout": "splitv", "nodes": [
					{"id": 12, "type": "con", "name": "Mozilla Firefox", "focused": true, "app_id": "firefox", "nodes": []}
				]}
			],
			"floating_nodes": []
		}]
	}]
}`

const swayFloatingTree = `{
	"type": "root", "name": "root",
	"nodes": [{"type": "workspace", "name": "2", "nodes": [],
		"floating_nodes": [{"type": "floating_con", "name": "Picture-in-Picture", "focused": true}]}]
}`

const swayEmptyWorkspace = `{
	"type": "root", "name": "root",
	"nodes": [{"type": "workspace", "name": "3", "focused": true, "nodes": []}]
}`

func TestParseSwayTree(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "nested focused view", input: swayTree, want: "Mozilla Firefox"},
		{name: "floating view", input: swayFloatingTree, want: "Picture-in-Picture"},
		{name: "empty workspace focused", input: swayEmptyWorkspace, wantErr: window.ErrNoFocus},
		{name: "nothing focused", input: `{"type":"root","name":"root","nodes":[]}`, wantErr: window.ErrNoFocus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSwayTree([]byte(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("parseSwayTree() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseSwayTree() = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := parseSwayTree([]byte("not json")); err == nil {
		t.Error("parseSwayTree() accepted malformed input")
	}
}

func TestParseHyprlandWindow(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{
			name:  "active window",
			input: `{"address": "0x55d1", "class": "kitty", "title": "Terminal Window", "pid": 5678}`,
			want:  "Terminal Window",
		},
		{name: "nothing focused", input: `{}`, wantErr: window.ErrNoFocus},
		{name: "blank title", input: `{"class": "kitty", "title": "  "}`, wantErr: window.ErrNoFocus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseHyprlandWindow([]byte(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("parseHyprlandWindow() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseHyprlandWindow() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectCompositor(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"hyprland socket", map[string]string{"HYPRLAND_INSTANCE_SIGNATURE": "abc", "SWAYSOCK": "/run/sway"}, "hyprland"},
		{"sway socket", map[string]string{"SWAYSOCK": "/run/user/1000/sway-ipc.sock"}, "sway"},
		{"desktop name", map[string]string{"XDG_CURRENT_DESKTOP": "Hyprland"}, "hyprland"},
		{"sway desktop name", map[string]string{"XDG_CURRENT_DESKTOP": "sway"}, "sway"},
		{"gnome", map[string]string{"XDG_CURRENT_DESKTOP": "ubuntu:GNOME"}, "unknown"},
		{"nothing", map[string]string{}, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getenv := func(k string) string { return tt.env[k] }
			if got := detectCompositor(getenv); got != tt.want {
				t.Errorf("detectCompositor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSourceRunsCompositorTool(t *testing.T) {
	var called []string
	s := &Source{
		compositor: "hyprland",
		hasHyprctl: true,
		run: func(name string, args ...string) ([]byte, error) {
			called = append(called, name)
			return []byte(`{"title": "notes.txt - Editor"}`), nil
		},
	}

	if !s.IsAvailable() {
		t.Fatal("IsAvailable() = false")
	}

	obs, errs := window.Observe(s)
	if !obs.Focused || obs.Title != "notes.txt - Editor" {
		t.Errorf("Observe() = %+v", obs)
	}
	if len(errs) != 1 || !errors.Is(errs[0], window.ErrUnsupported) {
		t.Errorf("Observe() errors = %v, want the unsupported idle query", errs)
	}
	if len(called) != 1 || called[0] != "hyprctl" {
		t.Errorf("commands run = %v", called)
	}
}

func TestSourceToolFailure(t *testing.T) {
	s := &Source{
		compositor: "sway",
		hasSwaymsg: true,
		run: func(name string, args ...string) ([]byte, error) {
			return nil, errors.New("exit status 1")
		},
	}

	if _, err := s.FocusedTitle(); err == nil {
		t.Error("FocusedTitle() succeeded when swaymsg failed")
	}
}

func TestUnknownCompositor(t *testing.T) {
	s := &Source{compositor: "unknown", run: runCommand}
	if s.IsAvailable() {
		t.Error("IsAvailable() = true for an unknown compositor")
	}
	if _, err := s.FocusedTitle(); err == nil {
		t.Error("FocusedTitle() succeeded for an unknown compositor")
	}
	if s.Name() != "wayland" || s.Close() != nil {
		t.Error("unexpected Name or Close result")
	}
}
