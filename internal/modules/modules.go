package modules

import (
	"fmt"
	"time"

	"github.com/tldr-it-stepankutaj/basicskit/internal/diaglog"
	"github.com/tldr-it-stepankutaj/basicskit/internal/lifecycle"
)

// Module represents one launchable behavior demonstration (lifecycle, touch, etc).
type Module interface {
	// Name returns the catalog name the module was launched under.
	Name() string
	// Description returns a short human-readable description.
	Description() string
	// Log returns the diagnostic log owned by this module instance.
	Log() *diaglog.Logger
}

// LifecycleObserver is implemented by modules that log lifecycle transitions.
type LifecycleObserver interface {
	OnTransition(t lifecycle.Transition)
}

// PointerHandler is implemented by modules that consume pointer input.
type PointerHandler interface {
	OnPointer(p diaglog.Pointer)
}

// Hinter is implemented by modules that show placeholder text before the
// first entry is logged.
type Hinter interface {
	Hint() string
}

// Env is what the host hands a factory when instantiating a module.
type Env struct {
	Sink     diaglog.Sink
	Capacity int
	Clock    func() time.Time
}

// LoggerOptions translates the environment into diaglog options.
func (e Env) LoggerOptions(extra ...diaglog.Option) []diaglog.Option {
	opts := []diaglog.Option{diaglog.WithCapacity(e.Capacity), diaglog.WithClock(e.Clock)}
	return append(opts, extra...)
}

// Factory builds a fresh module instance.
type Factory func(env Env) Module

// Descriptor names a catalog entry.
type Descriptor struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Registration pairs a descriptor with the factory that implements it.
type Registration struct {
	Descriptor
	Factory Factory
}

// ActivationRequest is the handle returned by a successful lookup. It carries
// enough to instantiate the named module and nothing else.
type ActivationRequest struct {
	name    string
	factory Factory
}

// Name returns the resolved module name.
func (r ActivationRequest) Name() string { return r.name }

// Instantiate builds a new module instance. Each call returns a new instance
// with an empty log.
func (r ActivationRequest) Instantiate(env Env) Module {
	return r.factory(env)
}

// Registry is the ordered, read-only module catalog.
type Registry struct {
	order     []Descriptor
	factories map[string]Factory
}

// NewRegistry builds a catalog from registrations in display order.
// Names must be non-empty and unique; lookup is exact and case-sensitive.
func NewRegistry(regs ...Registration) (*Registry, error) {
	r := &Registry{
		order:     make([]Descriptor, 0, len(regs)),
		factories: make(map[string]Factory, len(regs)),
	}
	for _, reg := range regs {
		if reg.Name == "" {
			return nil, fmt.Errorf("modules: empty module name")
		}
		if reg.Factory == nil {
			return nil, fmt.Errorf("modules: %s has no factory", reg.Name)
		}
		if _, exists := r.factories[reg.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicate, reg.Name)
		}
		r.order = append(r.order, reg.Descriptor)
		r.factories[reg.Name] = reg.Factory
	}
	return r, nil
}

// MustNewRegistry panics on a configuration error.
func MustNewRegistry(regs ...Registration) *Registry {
	r, err := NewRegistry(regs...)
	if err != nil {
		panic(err)
	}
	return r
}

// ListModules returns the catalog in display order.
func (r *Registry) ListModules() []Descriptor {
	return append([]Descriptor(nil), r.order...)
}

// Len returns the number of catalog entries.
func (r *Registry) Len() int { return len(r.order) }

// Resolve looks up name by exact match.
func (r *Registry) Resolve(name string) (ActivationRequest, error) {
	f, ok := r.factories[name]
	if !ok {
		return ActivationRequest{}, &NotFoundError{Name: name}
	}
	return ActivationRequest{name: name, factory: f}, nil
}

// Select resolves by display position.
func (r *Registry) Select(index int) (ActivationRequest, error) {
	if index < 0 || index >= len(r.order) {
		return ActivationRequest{}, &IndexError{Index: index, Len: len(r.order)}
	}
	return r.Resolve(r.order[index].Name)
}
