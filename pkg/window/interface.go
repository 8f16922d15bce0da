package window

import (
	"errors"
	"time"
)

// ErrNoFocus is returned by FocusedTitle when no window holds input focus.
var ErrNoFocus = errors.New("no focused window")

// ErrUnsupported is returned by a source for a query its backend cannot answer.
var ErrUnsupported = errors.New("query not supported by this backend")

// Source is the interface that all observation backends must satisfy
type Source interface {
	// FocusedTitle returns the raw title of the window that has input focus
	FocusedTitle() (string, error)

	// IdleDuration returns the time since the last keyboard or pointer input
	IdleDuration() (time.Duration, error)

	// IsAvailable checks if this backend can run on the current system
	IsAvailable() bool

	// Name returns the backend name ("x11", "mutter" or "wayland")
	Name() string

	// Close cleans up any resources used by the source
	Close() error
}

// Observation is one sample taken from a Source.
type Observation struct {
	Title   string
	Focused bool
	Idle    time.Duration
}

// Observe queries src once. Failed queries are not errors to the caller: a
// failed title query reads as "nothing focused" and a failed idle query as
// zero idle time. The query errors are returned for diagnostics only.
func Observe(src Source) (Observation, []error) {
	var obs Observation
	var errs []error

	idle, err := src.IdleDuration()
	if err != nil {
		errs = append(errs, err)
	} else if idle > 0 {
		obs.Idle = idle
	}

	title, err := src.FocusedTitle()
	if err != nil {
		if !errors.Is(err, ErrNoFocus) {
			errs = append(errs, err)
		}
	} else if title != "" {
		obs.Title = title
		obs.Focused = true
	}

	return obs, errs
}
