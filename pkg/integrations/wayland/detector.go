package wayland

import (
	"encoding/json"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/windowlog/windowlog/pkg/window"
)

// Source implements window.Source for wlroots-style compositors that expose
// an IPC command line tool. Wayland has no portable idle query, so
// IdleDuration always reports window.ErrUnsupported.
type Source struct {
	compositor string
	hasSwaymsg bool
	hasHyprctl bool
	run        func(name string, args ...string) ([]byte, error)
}

// NewSource creates a new Wayland source
func NewSource() *Source {
	s := &Source{run: runCommand}
	s.hasSwaymsg = commandExists("swaymsg")
	s.hasHyprctl = commandExists("hyprctl")
	s.compositor = detectCompositor(os.Getenv)
	return s
}

func runCommand(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

// commandExists checks if a command is available in PATH
func commandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

// detectCompositor identifies the compositor from the IPC sockets it
// advertises in the environment.
func detectCompositor(getenv func(string) string) string {
	switch {
	case getenv("HYPRLAND_INSTANCE_SIGNATURE") != "":
		return "hyprland"
	case getenv("SWAYSOCK") != "":
		return "sway"
	}

	desktop := strings.ToLower(getenv("XDG_CURRENT_DESKTOP"))
	switch {
	case strings.Contains(desktop, "hyprland"):
		return "hyprland"
	case strings.Contains(desktop, "sway"):
		return "sway"
	}

	return "unknown"
}

func (s *Source) Name() string {
	return "wayland"
}

// IsAvailable checks if the compositor's IPC tool is installed
func (s *Source) IsAvailable() bool {
	switch s.compositor {
	case "sway":
		return s.hasSwaymsg
	case "hyprland":
		return s.hasHyprctl
	default:
		return false
	}
}

func (s *Source) FocusedTitle() (string, error) {
	switch s.compositor {
	case "sway":
		output, err := s.run("swaymsg", "-t", "get_tree", "-r")
		if err != nil {
			return "", errors.Wrap(err, "failed to execute swaymsg")
		}
		return parseSwayTree(output)

	case "hyprland":
		output, err := s.run("hyprctl", "activewindow", "-j")
		if err != nil {
			return "", errors.Wrap(err, "failed to execute hyprctl")
		}
		return parseHyprlandWindow(output)

	default:
		return "", errors.Errorf("unsupported wayland compositor: %s", s.compositor)
	}
}

func (s *Source) IdleDuration() (time.Duration, error) {
	return 0, window.ErrUnsupported
}

func (s *Source) Close() error {
	return nil
}

// swayNode is one node of the sway layout tree
type swayNode struct {
	Name          *string    `json:"name"`
	Focused       bool       `json:"focused"`
	Type          string     `json:"type"`
	Nodes         []swayNode `json:"nodes"`
	FloatingNodes []swayNode `json:"floating_nodes"`
}

func (n *swayNode) findFocused() *swayNode {
	if n.Focused {
		return n
	}
	for i := range n.Nodes {
		if f := n.Nodes[i].findFocused(); f != nil {
			return f
		}
	}
	for i := range n.FloatingNodes {
		if f := n.FloatingNodes[i].findFocused(); f != nil {
			return f
		}
	}
	return nil
}

// parseSwayTree returns the name of the focused view in a get_tree reply.
// A focused workspace or output means no window has focus.
func parseSwayTree(data []byte) (string, error) {
	var root swayNode
	if err := json.Unmarshal(data, &root); err != nil {
		return "", errors.Wrap(err, "failed to parse sway tree")
	}

	focused := root.findFocused()
	if focused == nil || focused.Name == nil {
		return "", window.ErrNoFocus
	}
	if focused.Type != "con" && focused.Type != "floating_con" {
		return "", window.ErrNoFocus
	}

	title := strings.TrimSpace(*focused.Name)
	if title == "" {
		return "", window.ErrNoFocus
	}
	return title, nil
}

// parseHyprlandWindow reads `hyprctl activewindow -j`, which prints "{}" when
// nothing is focused.
func parseHyprlandWindow(data []byte) (string, error) {
	var active struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(data, &active); err != nil {
		return "", errors.Wrap(err, "failed to parse hyprctl output")
	}

	title := strings.TrimSpace(active.Title)
	if title == "" {
		return "", window.ErrNoFocus
	}
	return title, nil
}
