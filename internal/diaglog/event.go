package diaglog

import (
	"math"
	"strconv"
	"strings"
)

// Event is anything a Logger can turn into one line of text.
// Text must not contain line breaks.
type Event interface {
	Text() string
}

// Lifecycle is a bare transition marker such as "created" or "paused".
type Lifecycle string

// Text returns the marker unchanged.
func (l Lifecycle) Text() string { return string(l) }

// Action is a discrete pointer action code as delivered by the host.
type Action int

// Known action codes. Values match the host's motion event constants.
const (
	ActionDown   Action = 0
	ActionUp     Action = 1
	ActionMove   Action = 2
	ActionCancel Action = 3
)

// Label returns the vocabulary word for a known action code.
func (a Action) Label() (string, bool) {
	switch a {
	case ActionDown:
		return "down", true
	case ActionMove:
		return "move", true
	case ActionCancel:
		return "cancel", true
	case ActionUp:
		return "up", true
	}
	return "", false
}

// ParseAction maps a vocabulary word back to its action code.
func ParseAction(s string) (Action, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "down":
		return ActionDown, true
	case "move":
		return ActionMove, true
	case "cancel":
		return ActionCancel, true
	case "up":
		return ActionUp, true
	}
	return 0, false
}

// Pointer is a single-point pointer event with raw coordinates.
type Pointer struct {
	Action Action
	X, Y   float32
}

// Text renders "<label>, <x>, <y>". Unknown action codes drop the label
// and keep the coordinates.
func (p Pointer) Text() string {
	var b strings.Builder
	if label, ok := p.Action.Label(); ok {
		b.WriteString(label)
		b.WriteString(", ")
	}
	b.WriteString(FormatFloat(p.X))
	b.WriteString(", ")
	b.WriteString(FormatFloat(p.Y))
	return b.String()
}

// FormatFloat renders v the way the host platform prints a float by default:
// at least one fractional digit, plain notation for magnitudes in [1e-3, 1e7),
// and "<mantissa>E<exp>" outside that range.
func FormatFloat(v float32) string {
	f := float64(v)
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}

	abs := math.Abs(f)
	if abs == 0 || (abs >= 1e-3 && abs < 1e7) {
		s := strconv.FormatFloat(f, 'f', -1, 32)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}

	s := strconv.FormatFloat(f, 'E', -1, 32)
	mant, exp, _ := strings.Cut(s, "E")
	if !strings.Contains(mant, ".") {
		mant += ".0"
	}
	e, err := strconv.Atoi(exp)
	if err != nil {
		return s
	}
	return mant + "E" + strconv.Itoa(e)
}
