package lifecycletest

import (
	"github.com/tldr-it-stepankutaj/basicskit/internal/diaglog"
	"github.com/tldr-it-stepankutaj/basicskit/internal/lifecycle"
	"github.com/tldr-it-stepankutaj/basicskit/internal/modules"
)

const (
	Name = "LifeCycleTest"
	Tag  = "LifeCycleTest"
)

// Module logs every lifecycle transition of its own run.
type Module struct {
	log *diaglog.Logger
}

func New(env modules.Env) *Module {
	return &Module{log: diaglog.New(Tag, env.Sink, env.LoggerOptions(diaglog.WithMode(diaglog.ModeHistory))...)}
}

func (*Module) Name() string        { return Name }
func (*Module) Description() string { return "Logs created/resumed/paused/finishing transitions" }

func (m *Module) Log() *diaglog.Logger { return m.log }

// OnTransition appends the bare transition name.
func (m *Module) OnTransition(t lifecycle.Transition) {
	m.log.Record(diaglog.Lifecycle(t.String()))
}

// Registration returns the catalog entry for this module.
func Registration() modules.Registration {
	return modules.Registration{
		Descriptor: modules.Descriptor{Name: Name, Description: (*Module)(nil).Description()},
		Factory:    func(env modules.Env) modules.Module { return New(env) },
	}
}

var (
	_ modules.Module            = (*Module)(nil)
	_ modules.LifecycleObserver = (*Module)(nil)
)
