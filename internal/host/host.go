// Package host is the activation boundary: it turns an ActivationRequest into
// a running module, delivers lifecycle notifications and pointer input to it,
// and exposes the module's snapshot for display.
package host

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tldr-it-stepankutaj/basicskit/internal/diaglog"
	"github.com/tldr-it-stepankutaj/basicskit/internal/lifecycle"
	"github.com/tldr-it-stepankutaj/basicskit/internal/modules"
)

// Host starts module runs with a shared environment.
type Host struct {
	env   modules.Env
	log   *slog.Logger
	newID func() string
	now   func() time.Time
}

// New returns a host. A nil logger is not allowed; pass logger.Discard().
func New(log *slog.Logger, env modules.Env) *Host {
	now := env.Clock
	if now == nil {
		now = time.Now
	}
	return &Host{env: env, log: log, newID: uuid.NewString, now: now}
}

// Launch instantiates the requested module and delivers the first
// "become active" notification.
func (h *Host) Launch(req modules.ActivationRequest) (*Run, error) {
	m := req.Instantiate(h.env)
	if m == nil {
		return nil, fmt.Errorf("host: factory for %s returned nil", req.Name())
	}

	r := &Run{
		ID:      h.newID(),
		Started: h.now(),
		module:  m,
		machine: lifecycle.New(),
		log:     h.log.With("module", req.Name()),
	}
	r.log = r.log.With("run", r.ID)
	if obs, ok := m.(modules.LifecycleObserver); ok {
		r.machine.Subscribe(obs.OnTransition)
	}

	if err := r.machine.Activate(); err != nil {
		return nil, fmt.Errorf("host: activate %s: %w", req.Name(), err)
	}
	r.log.Info("module.launched")
	return r, nil
}

// LaunchByName resolves name against reg and launches it. Lookup misses are
// logged and returned unchanged so callers can match modules.ErrNotFound.
func (h *Host) LaunchByName(reg *modules.Registry, name string) (*Run, error) {
	req, err := reg.Resolve(name)
	if err != nil {
		h.log.Warn("module.not_found", "module", name, "error", err)
		return nil, err
	}
	return h.Launch(req)
}

// Run is one activation of one module.
type Run struct {
	ID      string
	Started time.Time

	module  modules.Module
	machine *lifecycle.Machine
	log     *slog.Logger

	mu       sync.Mutex
	pressed  bool
	lastX    float32
	lastY    float32
	finished bool
}

// Module returns the running module.
func (r *Run) Module() modules.Module { return r.module }

// Name returns the module name.
func (r *Run) Name() string { return r.module.Name() }

// State returns the lifecycle state.
func (r *Run) State() lifecycle.State { return r.machine.State() }

// Snapshot returns the module's current display text. Before anything has
// been logged it falls back to the module's hint, if it has one.
func (r *Run) Snapshot() string {
	s := r.module.Log().Snapshot()
	if s == "" {
		if h, ok := r.module.(modules.Hinter); ok {
			return h.Hint()
		}
	}
	return s
}

// Entries returns the retained log entries.
func (r *Run) Entries() []diaglog.Entry { return r.module.Log().Entries() }

// Recorded returns the number of entries the module has logged.
func (r *Run) Recorded() uint64 { return r.module.Log().Recorded() }

// Evicted returns the number of entries dropped by the log's bound.
func (r *Run) Evicted() uint64 { return r.module.Log().Evicted() }

// Pause delivers "become inactive" without the destruction flag.
func (r *Run) Pause() error {
	if err := r.machine.Deactivate(false); err != nil {
		return err
	}
	r.log.Debug("module.paused")
	return nil
}

// Resume delivers "become active".
func (r *Run) Resume() error {
	if err := r.machine.Activate(); err != nil {
		return err
	}
	r.log.Debug("module.resumed")
	return nil
}

// Finish cancels a held pointer, brings a paused run back, and delivers
// "become inactive" with the destruction flag. Calling it twice is a no-op.
func (r *Run) Finish() error {
	r.mu.Lock()
	if r.finished {
		r.mu.Unlock()
		return nil
	}
	r.finished = true
	cancel := r.pressed
	x, y := r.lastX, r.lastY
	r.pressed = false
	r.mu.Unlock()

	if cancel {
		r.deliver(diaglog.Pointer{Action: diaglog.ActionCancel, X: x, Y: y})
	}
	if r.machine.State() == lifecycle.StateInactive {
		if err := r.machine.Activate(); err != nil {
			return err
		}
	}
	if err := r.machine.Deactivate(true); err != nil {
		return err
	}
	r.log.Info("module.finished", "recorded", r.Recorded(), "evicted", r.Evicted())
	return nil
}

// Pointer delivers a pointer event in arrival order. It reports whether the
// module consumes pointer input.
func (r *Run) Pointer(p diaglog.Pointer) bool {
	r.mu.Lock()
	if r.finished {
		r.mu.Unlock()
		return false
	}
	switch p.Action {
	case diaglog.ActionDown, diaglog.ActionMove:
		r.pressed = true
	case diaglog.ActionUp, diaglog.ActionCancel:
		r.pressed = false
	}
	r.lastX, r.lastY = p.X, p.Y
	r.mu.Unlock()

	return r.deliver(p)
}

func (r *Run) deliver(p diaglog.Pointer) bool {
	ph, ok := r.module.(modules.PointerHandler)
	if !ok {
		return false
	}
	ph.OnPointer(p)
	return true
}
