package singletouch

import (
	"github.com/tldr-it-stepankutaj/basicskit/internal/diaglog"
	"github.com/tldr-it-stepankutaj/basicskit/internal/modules"
)

const (
	Name = "SingleTouchTest"
	Tag  = "TouchTest"
	hint = "Touch and drag (one finger only)!"
)

// Module shows the most recent pointer event. The trace sink still receives
// every event, so the full order is recoverable from the trace.
type Module struct {
	log *diaglog.Logger
}

func New(env modules.Env) *Module {
	return &Module{log: diaglog.New(Tag, env.Sink, env.LoggerOptions(diaglog.WithMode(diaglog.ModeLatest))...)}
}

func (*Module) Name() string        { return Name }
func (*Module) Description() string { return "Shows the latest single-pointer down/move/cancel/up event" }
func (*Module) Hint() string        { return hint }

func (m *Module) Log() *diaglog.Logger { return m.log }

// OnPointer replaces the displayed line with p.
func (m *Module) OnPointer(p diaglog.Pointer) {
	m.log.Record(p)
}

// Registration returns the catalog entry for this module.
func Registration() modules.Registration {
	return modules.Registration{
		Descriptor: modules.Descriptor{Name: Name, Description: (*Module)(nil).Description()},
		Factory:    func(env modules.Env) modules.Module { return New(env) },
	}
}

var (
	_ modules.Module         = (*Module)(nil)
	_ modules.PointerHandler = (*Module)(nil)
	_ modules.Hinter         = (*Module)(nil)
)
