package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tldr-it-stepankutaj/basicskit/internal/catalog"
	"github.com/tldr-it-stepankutaj/basicskit/internal/host"
	"github.com/tldr-it-stepankutaj/basicskit/internal/lifecycle"
	"github.com/tldr-it-stepankutaj/basicskit/internal/logger"
	"github.com/tldr-it-stepankutaj/basicskit/internal/modules"
	"github.com/tldr-it-stepankutaj/basicskit/internal/scenario"
	"github.com/tldr-it-stepankutaj/basicskit/internal/trace"
	"github.com/tldr-it-stepankutaj/basicskit/internal/workspace"
)

func mustEvents(t *testing.T, lines ...string) []scenario.Event {
	t.Helper()
	out := make([]scenario.Event, 0, len(lines))
	for _, l := range lines {
		ev, err := scenario.ParseEvent(l)
		require.NoError(t, err)
		out = append(out, ev)
	}
	return out
}

func TestListModules(t *testing.T) {
	var buf bytes.Buffer
	listModules(&buf, catalog.Default())

	out := buf.String()
	assert.Contains(t, out, "  0  LifeCycleTest")
	assert.Contains(t, out, "  1  SingleTouchTest")
}

func TestRunOnce(t *testing.T) {
	idx := func(i int) *int { return &i }

	tests := []struct {
		name    string
		target  target
		events  []string
		want    string
		wantErr error
	}{
		{
			name:   "lifecycle by name",
			target: target{name: "LifeCycleTest"},
			events: []string{"pause", "resume"},
			want:   "created\nresumed\npaused\nresumed\npaused\nfinishing\n",
		},
		{
			name:   "touch by index",
			target: target{index: idx(1)},
			events: []string{"down 10.5 20", "move 11 21"},
			want:   "cancel, 11.0, 21.0\n",
		},
		{
			name:    "unknown name",
			target:  target{name: "MultiTouchTest"},
			wantErr: modules.ErrNotFound,
		},
		{
			name:    "index out of range",
			target:  target{index: idx(2)},
			wantErr: modules.ErrIndexOutOfRange,
		},
		{
			name:    "illegal notification",
			target:  target{name: "LifeCycleTest"},
			events:  []string{"resume"},
			want:    "created\nresumed\npaused\nfinishing\n",
			wantErr: lifecycle.ErrAlreadyActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := host.New(logger.Discard(), modules.Env{Sink: trace.NewMemory()})

			err := runOnce(&buf, catalog.Default(), h, tt.target, mustEvents(t, tt.events...))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			if tt.want != "" {
				assert.Contains(t, buf.String(), tt.want)
			}
		})
	}
}

func TestRunOnceReportsIgnoredPointer(t *testing.T) {
	var buf bytes.Buffer
	h := host.New(logger.Discard(), modules.Env{})

	err := runOnce(&buf, catalog.Default(), h, target{name: "LifeCycleTest"}, mustEvents(t, "down 1 1"))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "[!] down 1 1: ignored by LifeCycleTest")
}

func TestResolveScenario(t *testing.T) {
	ws, err := workspace.Ensure(t.TempDir())
	require.NoError(t, err)

	yml := "name: tap\nsteps:\n  - module: SingleTouchTest\n    events: [\"down 1 2\", \"up 1 2\"]\n"
	require.NoError(t, os.WriteFile(ws.Path("scenarios", "tap.yaml"), []byte(yml), 0o644))

	sc, err := resolveScenario(ws, "", "tap.yaml")
	require.NoError(t, err)
	assert.Equal(t, "tap", sc.Name)

	sc, err = resolveScenario(ws, "", filepath.Join(ws.Root, "scenarios", "tap.yaml"))
	require.NoError(t, err)
	assert.Len(t, sc.Steps[0].Events, 2)

	sc, err = resolveScenario(ws, "lifecycle", "")
	require.NoError(t, err)
	assert.Equal(t, "lifecycle", sc.Name)

	_, err = resolveScenario(ws, "nope", "")
	assert.ErrorContains(t, err, "available: catalog-tour, lifecycle, single-touch")

	_, err = resolveScenario(ws, "", "")
	assert.Error(t, err)
}

func TestListScenarios(t *testing.T) {
	ws, err := workspace.Ensure(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(ws.Path("scenarios", "broken.yml"), []byte("name: x\n"), 0o644))

	var buf bytes.Buffer
	listScenarios(&buf, ws)

	out := buf.String()
	assert.Contains(t, out, "  lifecycle - ")
	assert.Contains(t, out, "Workspace scenarios:")
	assert.Contains(t, out, "  broken.yml - invalid: ")
}
