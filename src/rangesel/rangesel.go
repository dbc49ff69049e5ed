// Package rangesel implements the click-to-select time range mode: two
// plot clicks pin the window start and end, after which the mode disarms
// itself so stray clicks do not move the range.
package rangesel

import "time"

// State is the machine's position in the two-click flow.
type State int

const (
	Idle State = iota
	StartChosen
	RangeChosen
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case StartChosen:
		return "start chosen"
	case RangeChosen:
		return "range chosen"
	default:
		return "unknown"
	}
}

// Event reports what a click or a clear did.
type Event int

const (
	// Ignored means capture mode was off or the click did not resolve to
	// a timestamp.
	Ignored Event = iota
	// StartSet means the first bound was pinned.
	StartSet
	// RangeSet means the second bound was pinned and capture disarmed.
	RangeSet
	// StartReset means a completed range was discarded and the click pinned
	// a fresh start.
	StartReset
	// Cleared means the range was dropped entirely.
	Cleared
)

// Resolver converts a plot x coordinate to the timestamp under it. A false
// return means the click missed the data area.
type Resolver func(x float64) (time.Time, bool)

// Machine tracks the two-click range selection. Not safe for concurrent
// use; the UI drives it from its event goroutine.
type Machine struct {
	resolve Resolver
	state   State
	active  bool
	start   time.Time
	end     time.Time
}

func New(resolve Resolver) *Machine {
	return &Machine{resolve: resolve}
}

func (m *Machine) State() State { return m.state }

// Active reports whether clicks are currently captured.
func (m *Machine) Active() bool { return m.active }

// ToggleMode arms or disarms click capture without touching the chosen
// bounds.
func (m *Machine) ToggleMode() bool {
	m.active = !m.active
	return m.active
}

// Range returns the chosen bounds. ok is true only once both are pinned.
func (m *Machine) Range() (start, end time.Time, ok bool) {
	return m.start, m.end, m.state == RangeChosen
}

// Start returns the pinned start while waiting for the second click.
func (m *Machine) Start() (time.Time, bool) {
	return m.start, m.state != Idle
}

// OnClick feeds one plot click through the machine. The second click
// completes the range and disarms capture; a click after completion starts
// a fresh selection.
func (m *Machine) OnClick(x float64) Event {
	if !m.active {
		return Ignored
	}
	t, ok := m.resolve(x)
	if !ok {
		return Ignored
	}
	switch m.state {
	case Idle:
		m.start = t
		m.state = StartChosen
		return StartSet
	case StartChosen:
		m.end = t
		m.state = RangeChosen
		m.active = false
		return RangeSet
	default: // RangeChosen
		m.start = t
		m.end = time.Time{}
		m.state = StartChosen
		return StartReset
	}
}

// Clear drops any chosen bounds and returns to Idle. Capture stays as it
// was.
func (m *Machine) Clear() Event {
	m.start, m.end = time.Time{}, time.Time{}
	m.state = Idle
	return Cleared
}
