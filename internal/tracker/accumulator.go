package tracker

import (
	"sync"
	"time"

	"github.com/windowlog/windowlog/pkg/utils"
	"github.com/windowlog/windowlog/pkg/window"
)

const (
	// IdleThreshold is the continuous no-input time after which the user is idle
	IdleThreshold = 60 * time.Second

	// PollInterval is the fixed time between two samples
	PollInterval = 500 * time.Millisecond

	// LabelWidth is the column width of a bucket label on the console and in reports
	LabelWidth = 40
)

// Bucket identifies a ledger entry: a cleaned window title or the idle bucket.
type Bucket struct {
	Label string
	Idle  bool
}

// IdleBucket collects time spent idle. It cannot collide with a window bucket
// whatever the window title is.
var IdleBucket = Bucket{Idle: true}

// WindowBucket returns the bucket for a raw window title.
func WindowBucket(title string) Bucket {
	return Bucket{Label: utils.CleanLabel(title)}
}

func (b Bucket) String() string {
	if b.Idle {
		return "[idle]"
	}
	return b.Label
}

// EventKind classifies a state machine transition
type EventKind int

const (
	EventSwitch EventKind = iota
	EventIdleStart
	EventIdleEnd
	EventFlush
)

// Event describes one transition produced by a sample.
type Event struct {
	Kind     EventKind
	At       time.Time
	From     Bucket // bucket credited, if any
	To       Bucket // newly focused window for EventSwitch
	Credited time.Duration
}

// Accumulator converts samples into per-bucket durations. All tracking state
// sits behind one mutex so a sample is applied atomically with respect to
// Snapshot.
type Accumulator struct {
	mu        sync.Mutex
	threshold time.Duration
	ledger    map[Bucket]time.Duration

	current    Bucket
	hasCurrent bool
	switchRef  time.Time

	idle      bool
	idleStart time.Time
}

// NewAccumulator creates an empty accumulator whose switch reference is start
func NewAccumulator(threshold time.Duration, start time.Time) *Accumulator {
	return &Accumulator{
		threshold: threshold,
		ledger:    make(map[Bucket]time.Duration),
		switchRef: start,
	}
}

// Sample applies one observation taken at now and returns the transitions it
// caused, in order.
func (a *Accumulator) Sample(obs window.Observation, now time.Time) []Event {
	a.mu.Lock()
	defer a.mu.Unlock()

	var events []Event

	switch {
	case obs.Idle >= a.threshold && !a.idle:
		a.idle = true
		a.idleStart = now
		events = append(events, Event{Kind: EventIdleStart, At: now})

	case obs.Idle < a.threshold && a.idle:
		a.idle = false
		idleFor := now.Sub(a.idleStart)
		a.credit(IdleBucket, idleFor)
		a.switchRef = now
		events = append(events, Event{Kind: EventIdleEnd, At: now, From: IdleBucket, Credited: idleFor})
	}

	if !obs.Focused {
		return events
	}

	next := WindowBucket(obs.Title)
	if a.hasCurrent && next == a.current {
		return events
	}

	// While idle the focused window is followed but nothing is credited.
	if !a.idle {
		elapsed := now.Sub(a.switchRef)
		if a.hasCurrent {
			a.credit(a.current, elapsed)
			events = append(events, Event{Kind: EventSwitch, At: now, From: a.current, To: next, Credited: elapsed})
		}
		a.switchRef = now
	}

	a.current = next
	a.hasCurrent = true

	return events
}

// Flush credits the open interval of the active bucket up to now. It is
// called once at shutdown so the final interval is not lost.
func (a *Accumulator) Flush(now time.Time) (Event, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.idle {
		elapsed := now.Sub(a.idleStart)
		a.credit(IdleBucket, elapsed)
		a.idleStart = now
		return Event{Kind: EventFlush, At: now, From: IdleBucket, Credited: elapsed}, true
	}

	if !a.hasCurrent {
		return Event{}, false
	}

	elapsed := now.Sub(a.switchRef)
	a.credit(a.current, elapsed)
	a.switchRef = now
	return Event{Kind: EventFlush, At: now, From: a.current, Credited: elapsed}, true
}

// Snapshot returns a copy of the ledger
func (a *Accumulator) Snapshot() map[Bucket]time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[Bucket]time.Duration, len(a.ledger))
	for b, d := range a.ledger {
		out[b] = d
	}
	return out
}

// Current returns the active window bucket and whether the user is idle.
// ok is false until a focused window has been observed.
func (a *Accumulator) Current() (b Bucket, idle bool, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current, a.idle, a.hasCurrent
}

// credit must be called with a.mu held. Empty intervals leave no entry.
func (a *Accumulator) credit(b Bucket, d time.Duration) {
	if d <= 0 {
		return
	}
	a.ledger[b] += d
}
