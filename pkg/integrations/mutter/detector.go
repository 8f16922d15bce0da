// Package mutter observes GNOME Shell sessions over the D-Bus session bus.
// The focused window comes from the FocusedWindow shell extension, idle time
// from Mutter's IdleMonitor.
package mutter

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"

	"github.com/windowlog/windowlog/pkg/window"
)

const (
	focusedWindowDest   = "org.gnome.Shell"
	focusedWindowPath   = "/org/gnome/shell/extensions/FocusedWindow"
	focusedWindowMethod = "org.gnome.shell.extensions.FocusedWindow.Get"

	idleMonitorDest   = "org.gnome.Mutter.IdleMonitor"
	idleMonitorPath   = "/org/gnome/Mutter/IdleMonitor/Core"
	idleMonitorMethod = "org.gnome.Mutter.IdleMonitor.GetIdletime"
)

// focusedWindow is the part of the extension's JSON payload we read
type focusedWindow struct {
	Title   string `json:"title"`
	WmClass string `json:"wm_class"`
	Focus   bool   `json:"focus"`
}

// busCaller is the part of a D-Bus connection the source uses
type busCaller interface {
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
	Close() error
}

// Source implements window.Source for GNOME on Wayland or X11
type Source struct {
	mu      sync.Mutex
	conn    busCaller
	connErr error
}

// NewSource connects to the session bus. A failed connection leaves the
// source unavailable.
func NewSource() *Source {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return &Source{connErr: errors.Wrap(err, "failed to connect to session bus")}
	}
	return &Source{conn: conn}
}

// Err returns the connection error, if any
func (s *Source) Err() error {
	return s.connErr
}

func (s *Source) Name() string {
	return "mutter"
}

// IsAvailable probes both D-Bus services
func (s *Source) IsAvailable() bool {
	if s.conn == nil {
		return false
	}
	if _, err := s.FocusedTitle(); err != nil && !errors.Is(err, window.ErrNoFocus) {
		return false
	}
	_, err := s.IdleDuration()
	return err == nil
}

func (s *Source) FocusedTitle() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return "", s.unavailable()
	}

	var payload string
	call := s.conn.Object(focusedWindowDest, focusedWindowPath).Call(focusedWindowMethod, 0)
	if err := call.Store(&payload); err != nil {
		return "", errors.Wrap(err, "FocusedWindow.Get failed")
	}

	return parseFocusedWindow(payload)
}

func (s *Source) IdleDuration() (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return 0, s.unavailable()
	}

	var idleMs uint64
	call := s.conn.Object(idleMonitorDest, idleMonitorPath).Call(idleMonitorMethod, 0)
	if err := call.Store(&idleMs); err != nil {
		return 0, errors.Wrap(err, "IdleMonitor.GetIdletime failed")
	}

	return time.Duration(idleMs) * time.Millisecond, nil
}

func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

func (s *Source) unavailable() error {
	if s.connErr != nil {
		return errors.Wrap(s.connErr, "mutter source unavailable")
	}
	return errors.New("session bus connection closed")
}

// parseFocusedWindow extracts the title from the extension payload. An empty
// payload, "null" or an object without a title means nothing is focused.
func parseFocusedWindow(payload string) (string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" || payload == "null" || payload == "{}" {
		return "", window.ErrNoFocus
	}

	var w focusedWindow
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		return "", errors.Wrap(err, "failed to parse FocusedWindow payload")
	}

	if title := strings.TrimSpace(w.Title); title != "" {
		return title, nil
	}
	return "", window.ErrNoFocus
}
