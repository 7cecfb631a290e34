package lifecycletest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tldr-it-stepankutaj/basicskit/internal/diaglog"
	"github.com/tldr-it-stepankutaj/basicskit/internal/lifecycle"
	"github.com/tldr-it-stepankutaj/basicskit/internal/modules"
)

func TestTransitionsAccumulate(t *testing.T) {
	var traced []string
	sink := diaglog.SinkFunc(func(tag, text string) { traced = append(traced, tag+": "+text) })

	m := New(modules.Env{Sink: sink})
	machine := lifecycle.New()
	machine.Subscribe(m.OnTransition)

	require.NoError(t, machine.Activate())
	require.NoError(t, machine.Deactivate(false))
	require.NoError(t, machine.Activate())
	require.NoError(t, machine.Deactivate(true))

	assert.Equal(t, "created\nresumed\npaused\nresumed\npaused\nfinishing", m.Log().Snapshot())
	assert.Equal(t, []string{
		"LifeCycleTest: created",
		"LifeCycleTest: resumed",
		"LifeCycleTest: paused",
		"LifeCycleTest: resumed",
		"LifeCycleTest: paused",
		"LifeCycleTest: finishing",
	}, traced)
}

func TestPausedWithoutFinishing(t *testing.T) {
	m := New(modules.Env{})
	m.OnTransition(lifecycle.Created)
	m.OnTransition(lifecycle.Resumed)
	m.OnTransition(lifecycle.Paused)
	assert.Equal(t, "created\nresumed\npaused", m.Log().Snapshot())
}

func TestRegistration(t *testing.T) {
	reg := Registration()
	assert.Equal(t, Name, reg.Name)
	m := reg.Factory(modules.Env{Capacity: 2})
	assert.Equal(t, Name, m.Name())
	assert.Equal(t, diaglog.ModeHistory, m.Log().Mode())
	assert.Equal(t, 2, m.Log().Capacity())
	assert.Equal(t, Tag, m.Log().Tag())
}
