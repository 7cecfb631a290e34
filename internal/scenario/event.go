package scenario

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tldr-it-stepankutaj/basicskit/internal/diaglog"
)

// Lifecycle notifications a scenario can send to a run.
const (
	LifecyclePause  = "pause"
	LifecycleResume = "resume"
	LifecycleFinish = "finish"
)

// PointerInput describes one pointer event. Either Action (a vocabulary word)
// or Code (a raw action code) selects the action.
type PointerInput struct {
	Action string  `yaml:"action,omitempty" json:"action,omitempty"`
	Code   *int    `yaml:"code,omitempty" json:"code,omitempty"`
	X      float32 `yaml:"x" json:"x"`
	Y      float32 `yaml:"y" json:"y"`
}

// Pointer converts p into a diaglog event.
func (p PointerInput) Pointer() (diaglog.Pointer, error) {
	if p.Code != nil {
		return diaglog.Pointer{Action: diaglog.Action(*p.Code), X: p.X, Y: p.Y}, nil
	}
	a, ok := diaglog.ParseAction(p.Action)
	if !ok {
		return diaglog.Pointer{}, fmt.Errorf("unknown pointer action %q", p.Action)
	}
	return diaglog.Pointer{Action: a, X: p.X, Y: p.Y}, nil
}

// Event is one scripted host notification: a pointer event or a lifecycle
// notification. In YAML it is either a mapping or a one-line string such as
// "down 10.5 20" or "pause".
type Event struct {
	Pointer   *PointerInput `yaml:"pointer,omitempty" json:"pointer,omitempty"`
	Lifecycle string       `yaml:"lifecycle,omitempty" json:"lifecycle,omitempty"`
}

// String renders the event in the one-line syntax.
func (e Event) String() string {
	if e.Pointer != nil {
		x := strconv.FormatFloat(float64(e.Pointer.X), 'g', -1, 32)
		y := strconv.FormatFloat(float64(e.Pointer.Y), 'g', -1, 32)
		if e.Pointer.Code != nil {
			return fmt.Sprintf("pointer %d %s %s", *e.Pointer.Code, x, y)
		}
		return fmt.Sprintf("%s %s %s", e.Pointer.Action, x, y)
	}
	return e.Lifecycle
}

// Validate checks that exactly one kind is set and that it is well formed.
func (e Event) Validate() error {
	switch {
	case e.Pointer != nil && e.Lifecycle != "":
		return fmt.Errorf("event has both pointer and lifecycle")
	case e.Pointer != nil:
		_, err := e.Pointer.Pointer()
		return err
	case e.Lifecycle != "":
		switch e.Lifecycle {
		case LifecyclePause, LifecycleResume, LifecycleFinish:
			return nil
		}
		return fmt.Errorf("unknown lifecycle notification %q", e.Lifecycle)
	}
	return fmt.Errorf("empty event")
}

// UnmarshalYAML accepts both the mapping form and the one-line form.
func (e *Event) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		parsed, err := ParseEvent(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*e = parsed
		return nil
	}

	type plain Event
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*e = Event(p)
	if err := e.Validate(); err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	return nil
}

// ParseEvent parses the one-line syntax:
//
//	down|move|cancel|up <x> <y>
//	pointer <code> <x> <y>
//	pause | resume | finish
func ParseEvent(s string) (Event, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Event{}, fmt.Errorf("empty event")
	}

	word := strings.ToLower(fields[0])
	switch word {
	case LifecyclePause, LifecycleResume, LifecycleFinish:
		if len(fields) != 1 {
			return Event{}, fmt.Errorf("%s takes no arguments", word)
		}
		return Event{Lifecycle: word}, nil

	case "pointer":
		if len(fields) != 4 {
			return Event{}, fmt.Errorf("pointer wants <code> <x> <y>, got %q", s)
		}
		code, err := strconv.Atoi(fields[1])
		if err != nil {
			return Event{}, fmt.Errorf("invalid pointer code %q: %w", fields[1], err)
		}
		x, y, err := parseXY(fields[2], fields[3])
		if err != nil {
			return Event{}, err
		}
		return Event{Pointer: &PointerInput{Code: &code, X: x, Y: y}}, nil
	}

	if _, ok := diaglog.ParseAction(word); !ok {
		return Event{}, fmt.Errorf("unknown event %q", fields[0])
	}
	if len(fields) != 3 {
		return Event{}, fmt.Errorf("%s wants <x> <y>, got %q", word, s)
	}
	x, y, err := parseXY(fields[1], fields[2])
	if err != nil {
		return Event{}, err
	}
	return Event{Pointer: &PointerInput{Action: word, X: x, Y: y}}, nil
}

func parseXY(xs, ys string) (float32, float32, error) {
	x, err := strconv.ParseFloat(xs, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid x %q: %w", xs, err)
	}
	y, err := strconv.ParseFloat(ys, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid y %q: %w", ys, err)
	}
	return float32(x), float32(y), nil
}
