package detector

import (
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/windowlog/windowlog/pkg/integrations/mutter"
	"github.com/windowlog/windowlog/pkg/integrations/wayland"
	"github.com/windowlog/windowlog/pkg/integrations/x11"
	"github.com/windowlog/windowlog/pkg/window"
)

const autoBackend = "auto"

var constructors = map[string]func() window.Source{
	"x11":     func() window.Source { return x11.NewSource() },
	"mutter":  func() window.Source { return mutter.NewSource() },
	"wayland": func() window.Source { return wayland.NewSource() },
}

// New returns the first available source among the candidates for backend.
// Unavailable sources are closed.
func New(backend string) (window.Source, error) {
	names := Candidates(backend)
	if len(names) == 0 {
		return nil, errors.Errorf("unknown backend %q", backend)
	}

	for _, name := range names {
		src := constructors[name]()
		if src.IsAvailable() {
			return src, nil
		}
		src.Close()
	}

	return nil, errors.Errorf("no usable observation backend (tried %s)", strings.Join(names, ", "))
}

// Candidates lists the backends New tries, in order. An explicit backend is
// tried alone; auto orders all of them by the current session.
func Candidates(backend string) []string {
	backend = strings.ToLower(backend)
	if backend != "" && backend != autoBackend {
		if _, ok := constructors[backend]; !ok {
			return nil
		}
		return []string{backend}
	}

	gnome := isGnome()

	switch DetectDisplayServer() {
	case "wayland":
		if gnome {
			return []string{"mutter", "wayland", "x11"}
		}
		return []string{"wayland", "mutter", "x11"}
	case "x11":
		if gnome {
			return []string{"x11", "mutter"}
		}
		return []string{"x11"}
	default:
		return []string{"x11", "mutter", "wayland"}
	}
}

func isGnome() bool {
	desktop := strings.ToLower(os.Getenv("XDG_CURRENT_DESKTOP"))
	return strings.Contains(desktop, "gnome") || strings.Contains(desktop, "ubuntu")
}

func DetectDisplayServer() string {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}
