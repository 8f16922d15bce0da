package x11

import (
	"encoding/binary"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/screensaver"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"

	"github.com/windowlog/windowlog/pkg/window"
)

var atomNames = []string{
	"_NET_ACTIVE_WINDOW",
	"_NET_WM_NAME",
	"WM_NAME",
	"UTF8_STRING",
}

// maxTitleLen is the property length requested for titles, in 32-bit units
const maxTitleLen = 256

// Source implements window.Source over a native X11 connection
type Source struct {
	mu             sync.Mutex
	conn           *xgb.Conn
	root           xproto.Window
	atoms          map[string]xproto.Atom
	hasScreensaver bool
	connErr        error
}

// NewSource connects to the display named by $DISPLAY. A failed connection
// leaves the source unavailable; the error is kept for Err.
func NewSource() *Source {
	s := &Source{atoms: make(map[string]xproto.Atom)}
	if os.Getenv("DISPLAY") == "" {
		s.connErr = errors.New("DISPLAY is not set")
		return s
	}
	s.connErr = s.connect()
	return s
}

func (s *Source) connect() error {
	conn, err := xgb.NewConn()
	if err != nil {
		return errors.Wrap(err, "failed to connect to X server")
	}

	for _, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return errors.Wrapf(err, "failed to intern atom %s", name)
		}
		s.atoms[name] = reply.Atom
	}

	s.conn = conn
	s.root = xproto.Setup(conn).DefaultScreen(conn).Root
	s.hasScreensaver = screensaver.Init(conn) == nil
	return nil
}

// Err returns the connection error, if any
func (s *Source) Err() error {
	return s.connErr
}

func (s *Source) IsAvailable() bool {
	return s.conn != nil
}

func (s *Source) Name() string {
	return "x11"
}

// FocusedTitle reads _NET_WM_NAME (or WM_NAME) of the window named by the
// root window's _NET_ACTIVE_WINDOW, falling back to the input focus.
func (s *Source) FocusedTitle() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return "", s.unavailable()
	}

	win := s.activeWindow()
	if win == 0 {
		return "", window.ErrNoFocus
	}

	title := s.windowName(win)
	if title == "" {
		return "", window.ErrNoFocus
	}
	return title, nil
}

// IdleDuration asks the MIT-SCREEN-SAVER extension for the time since the
// last input event.
func (s *Source) IdleDuration() (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return 0, s.unavailable()
	}
	if !s.hasScreensaver {
		return 0, errors.Wrap(window.ErrUnsupported, "MIT-SCREEN-SAVER extension missing")
	}

	reply, err := screensaver.QueryInfo(s.conn, xproto.Drawable(s.root)).Reply()
	if err != nil {
		return 0, errors.Wrap(err, "screensaver QueryInfo failed")
	}
	return time.Duration(reply.MsSinceUserInput) * time.Millisecond, nil
}

func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	return nil
}

func (s *Source) unavailable() error {
	if s.connErr != nil {
		return errors.Wrap(s.connErr, "x11 source unavailable")
	}
	return errors.New("x11 connection closed")
}

func (s *Source) property(win xproto.Window, atom, atomType xproto.Atom, length uint32) []byte {
	reply, err := xproto.GetProperty(s.conn, false, win, atom, atomType, 0, length).Reply()
	if err != nil || reply == nil {
		return nil
	}
	return reply.Value
}

func (s *Source) activeWindow() xproto.Window {
	if win := decodeWindow(s.property(s.root, s.atoms["_NET_ACTIVE_WINDOW"], xproto.AtomWindow, 1)); win != 0 {
		return win
	}

	reply, err := xproto.GetInputFocus(s.conn).Reply()
	if err != nil || reply.Focus == s.root || reply.Focus <= xproto.InputFocusPointerRoot {
		return 0
	}
	return s.topLevel(reply.Focus)
}

// topLevel walks up to the child of the root window
func (s *Source) topLevel(win xproto.Window) xproto.Window {
	for {
		reply, err := xproto.QueryTree(s.conn, win).Reply()
		if err != nil || reply.Parent == s.root || reply.Parent == 0 {
			return win
		}
		win = reply.Parent
	}
}

func (s *Source) windowName(win xproto.Window) string {
	if name := decodeText(s.property(win, s.atoms["_NET_WM_NAME"], s.atoms["UTF8_STRING"], maxTitleLen)); name != "" {
		return name
	}
	return decodeText(s.property(win, s.atoms["WM_NAME"], xproto.AtomString, maxTitleLen))
}

// decodeWindow reads a WINDOW property value. X11 replies use the client's
// byte order, which xgb fixes to little endian.
func decodeWindow(data []byte) xproto.Window {
	if len(data) < 4 {
		return 0
	}
	return xproto.Window(binary.LittleEndian.Uint32(data))
}

func decodeText(data []byte) string {
	return strings.TrimSpace(strings.TrimRight(string(data), "\x00"))
}
