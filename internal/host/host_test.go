package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tldr-it-stepankutaj/basicskit/internal/catalog"
	"github.com/tldr-it-stepankutaj/basicskit/internal/diaglog"
	"github.com/tldr-it-stepankutaj/basicskit/internal/lifecycle"
	"github.com/tldr-it-stepankutaj/basicskit/internal/logger"
	"github.com/tldr-it-stepankutaj/basicskit/internal/modules"
	"github.com/tldr-it-stepankutaj/basicskit/internal/trace"
)

func newHost(t *testing.T) (*Host, *trace.Memory, *modules.Registry) {
	t.Helper()
	mem := trace.NewMemory()
	return New(logger.Discard(), modules.Env{Sink: mem}), mem, catalog.Default()
}

func TestLaunchDeliversCreatedAndResumed(t *testing.T) {
	h, mem, reg := newHost(t)

	run, err := h.LaunchByName(reg, "LifeCycleTest")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.False(t, run.Started.IsZero())
	assert.Equal(t, "LifeCycleTest", run.Name())
	assert.Equal(t, lifecycle.StateActive, run.State())
	assert.Equal(t, "created\nresumed", run.Snapshot())
	assert.Equal(t, []string{"created", "resumed"}, mem.Texts("LifeCycleTest"))
}

func TestPauseResumeFinish(t *testing.T) {
	h, _, reg := newHost(t)
	run, err := h.LaunchByName(reg, "LifeCycleTest")
	require.NoError(t, err)

	require.NoError(t, run.Pause())
	assert.Equal(t, "created\nresumed\npaused", run.Snapshot())

	require.NoError(t, run.Resume())
	require.NoError(t, run.Finish())
	assert.Equal(t, "created\nresumed\npaused\nresumed\npaused\nfinishing", run.Snapshot())
	assert.Equal(t, lifecycle.StateFinishing, run.State())

	// Second Finish is a no-op and further notifications are refused.
	require.NoError(t, run.Finish())
	assert.ErrorIs(t, run.Resume(), lifecycle.ErrFinished)
	assert.Equal(t, uint64(6), run.Recorded())
}

func TestFinishFromPausedResumesFirst(t *testing.T) {
	h, _, reg := newHost(t)
	run, err := h.LaunchByName(reg, "LifeCycleTest")
	require.NoError(t, err)

	require.NoError(t, run.Pause())
	require.NoError(t, run.Finish())
	assert.Equal(t, "created\nresumed\npaused\nresumed\npaused\nfinishing", run.Snapshot())
}

func TestIllegalNotificationsAreReported(t *testing.T) {
	h, _, reg := newHost(t)
	run, err := h.LaunchByName(reg, "LifeCycleTest")
	require.NoError(t, err)

	assert.ErrorIs(t, run.Resume(), lifecycle.ErrAlreadyActive)
	require.NoError(t, run.Pause())
	assert.ErrorIs(t, run.Pause(), lifecycle.ErrNotActive)
	assert.Equal(t, "created\nresumed\npaused", run.Snapshot())
}

func TestPointerDelivery(t *testing.T) {
	h, mem, reg := newHost(t)
	run, err := h.LaunchByName(reg, "SingleTouchTest")
	require.NoError(t, err)

	assert.Equal(t, "Touch and drag (one finger only)!", run.Snapshot())

	assert.True(t, run.Pointer(diaglog.Pointer{Action: diaglog.ActionDown, X: 10.5, Y: 20}))
	assert.True(t, run.Pointer(diaglog.Pointer{Action: diaglog.ActionMove, X: 11, Y: 21}))
	assert.Equal(t, "move, 11.0, 21.0", run.Snapshot())

	// Leaving with the pointer held cancels it at the last position.
	require.NoError(t, run.Finish())
	assert.Equal(t, "cancel, 11.0, 21.0", run.Snapshot())
	assert.Equal(t, []string{"down, 10.5, 20.0", "move, 11.0, 21.0", "cancel, 11.0, 21.0"}, mem.Texts("TouchTest"))

	assert.False(t, run.Pointer(diaglog.Pointer{Action: diaglog.ActionDown}))
}

func TestPointerIgnoredByLifecycleModule(t *testing.T) {
	h, _, reg := newHost(t)
	run, err := h.LaunchByName(reg, "LifeCycleTest")
	require.NoError(t, err)

	assert.False(t, run.Pointer(diaglog.Pointer{Action: diaglog.ActionDown, X: 1, Y: 1}))
	assert.Equal(t, "created\nresumed", run.Snapshot())
}

func TestNoCancelAfterRelease(t *testing.T) {
	h, mem, reg := newHost(t)
	run, err := h.LaunchByName(reg, "SingleTouchTest")
	require.NoError(t, err)

	run.Pointer(diaglog.Pointer{Action: diaglog.ActionDown, X: 1, Y: 1})
	run.Pointer(diaglog.Pointer{Action: diaglog.ActionUp, X: 2, Y: 2})
	require.NoError(t, run.Finish())
	assert.Equal(t, []string{"down, 1.0, 1.0", "up, 2.0, 2.0"}, mem.Texts("TouchTest"))
}

func TestLaunchByNameMiss(t *testing.T) {
	h, mem, reg := newHost(t)
	run, err := h.LaunchByName(reg, "MultiTouchTest")
	assert.Nil(t, run)
	assert.ErrorIs(t, err, modules.ErrNotFound)
	assert.Equal(t, 0, mem.Len())
}

func TestEachLaunchStartsEmpty(t *testing.T) {
	h, _, reg := newHost(t)
	first, err := h.LaunchByName(reg, "LifeCycleTest")
	require.NoError(t, err)
	require.NoError(t, first.Finish())

	second, err := h.LaunchByName(reg, "LifeCycleTest")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "created\nresumed", second.Snapshot())
}

func TestLaunchRejectsNilFactoryResult(t *testing.T) {
	reg := modules.MustNewRegistry(modules.Registration{
		Descriptor: modules.Descriptor{Name: "Broken"},
		Factory:    func(modules.Env) modules.Module { return nil },
	})
	h := New(logger.Discard(), modules.Env{})
	_, err := h.LaunchByName(reg, "Broken")
	assert.Error(t, err)
}
