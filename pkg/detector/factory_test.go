package detector

import (
	"reflect"
	"testing"
	"time"

	"github.com/windowlog/windowlog/pkg/window"
)

func setSession(t *testing.T, sessionType, waylandDisplay, x11Display, desktop string) {
	t.Helper()
	t.Setenv("XDG_SESSION_TYPE", sessionType)
	t.Setenv("WAYLAND_DISPLAY", waylandDisplay)
	t.Setenv("DISPLAY", x11Display)
	t.Setenv("XDG_CURRENT_DESKTOP", desktop)
}

func TestDetectDisplayServer(t *testing.T) {
	tests := []struct {
		name             string
		sessionType      string
		waylandDisplay   string
		x11Display       string
		expectedContains string
	}{
		{
			name:             "Wayland session",
			sessionType:      "wayland",
			waylandDisplay:   "wayland-0",
			x11Display:       "",
			expectedContains: "wayland",
		},
		{
			name:             "X11 session",
			sessionType:      "x11",
			waylandDisplay:   "",
			x11Display:       ":0",
			expectedContains: "x11",
		},
		{
			name:             "Unknown session",
			sessionType:      "",
			waylandDisplay:   "",
			x11Display:       "",
			expectedContains: "unknown",
		},
		{
			name:             "Wayland display set",
			sessionType:      "",
			waylandDisplay:   "wayland-1",
			x11Display:       "",
			expectedContains: "wayland",
		},
		{
			name:             "X11 display set",
			sessionType:      "",
			waylandDisplay:   "",
			x11Display:       ":1",
			expectedContains: "x11",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setSession(t, tt.sessionType, tt.waylandDisplay, tt.x11Display, "")

			result := DetectDisplayServer()
			if result != tt.expectedContains {
				t.Errorf("DetectDisplayServer() = %s, want %s", result, tt.expectedContains)
			}
		})
	}
}

func TestCandidates(t *testing.T) {
	tests := []struct {
		name        string
		backend     string
		sessionType string
		desktop     string
		want        []string
	}{
		{"explicit x11", "x11", "wayland", "GNOME", []string{"x11"}},
		{"explicit is case insensitive", "Mutter", "", "", []string{"mutter"}},
		{"unknown backend", "quartz", "", "", nil},
		{"gnome wayland", "auto", "wayland", "ubuntu:GNOME", []string{"mutter", "wayland", "x11"}},
		{"sway", "auto", "wayland", "sway", []string{"wayland", "mutter", "x11"}},
		{"gnome x11", "", "x11", "GNOME", []string{"x11", "mutter"}},
		{"plain x11", "auto", "x11", "XFCE", []string{"x11"}},
		{"no session", "auto", "", "", []string{"x11", "mutter", "wayland"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setSession(t, tt.sessionType, "", "", tt.desktop)

			if got := Candidates(tt.backend); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Candidates(%q) = %v, want %v", tt.backend, got, tt.want)
			}
		})
	}
}

type stubSource struct {
	name      string
	available bool
	closed    *[]string
}

func (s *stubSource) FocusedTitle() (string, error)        { return s.name, nil }
func (s *stubSource) IdleDuration() (time.Duration, error) { return 0, nil }
func (s *stubSource) IsAvailable() bool                    { return s.available }
func (s *stubSource) Name() string                         { return s.name }
func (s *stubSource) Close() error {
	*s.closed = append(*s.closed, s.name)
	return nil
}

func stubConstructors(t *testing.T, available map[string]bool) *[]string {
	t.Helper()
	closed := &[]string{}

	orig := constructors
	t.Cleanup(func() { constructors = orig })

	constructors = map[string]func() window.Source{}
	for _, name := range []string{"x11", "mutter", "wayland"} {
		name := name
		constructors[name] = func() window.Source {
			return &stubSource{name: name, available: available[name], closed: closed}
		}
	}
	return closed
}

func TestNewFallsBack(t *testing.T) {
	setSession(t, "wayland", "wayland-0", ":0", "GNOME")
	closed := stubConstructors(t, map[string]bool{"x11": true})

	src, err := New("auto")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if src.Name() != "x11" {
		t.Errorf("New() picked %s, want x11", src.Name())
	}
	if want := []string{"mutter", "wayland"}; !reflect.DeepEqual(*closed, want) {
		t.Errorf("closed = %v, want %v", *closed, want)
	}
}

func TestNewExplicitUnavailable(t *testing.T) {
	setSession(t, "x11", "", ":0", "")
	stubConstructors(t, map[string]bool{"x11": true})

	if _, err := New("wayland"); err == nil {
		t.Error("New(wayland) succeeded with wayland unavailable")
	}
	if _, err := New("quartz"); err == nil {
		t.Error("New(quartz) succeeded")
	}
}

func TestNewNothingAvailable(t *testing.T) {
	setSession(t, "", "", "", "")
	stubConstructors(t, nil)

	src, err := New("auto")
	if err == nil || src != nil {
		t.Fatalf("New() = %v, %v; want an error", src, err)
	}
}
