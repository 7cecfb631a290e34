package trace

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tldr-it-stepankutaj/basicskit/internal/diaglog"
)

func TestSlogWritesTagAndText(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	NewSlog(log).Trace("TouchTest", "down, 1.0, 2.0")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "trace", rec["msg"])
	assert.Equal(t, "INFO", rec["level"])
	assert.Equal(t, "TouchTest", rec["tag"])
	assert.Equal(t, "down, 1.0, 2.0", rec["text"])
}

func TestMemoryKeepsOrderPerTag(t *testing.T) {
	m := NewMemory()
	m.Trace("A", "1")
	m.Trace("B", "x")
	m.Trace("A", "2")

	assert.Equal(t, 3, m.Len())
	assert.Equal(t, []string{"1", "2"}, m.Texts("A"))
	assert.Equal(t, []Record{{"A", "1"}, {"B", "x"}, {"A", "2"}}, m.Records())
}

func TestGroupFansOutInOrder(t *testing.T) {
	a, b := NewMemory(), NewMemory()
	g := NewGroup(a, nil, b)
	assert.Equal(t, 2, g.Len())

	l := diaglog.New("LifeCycleTest", g)
	l.Record(diaglog.Lifecycle("created"))
	l.Record(diaglog.Lifecycle("resumed"))

	want := []string{"created", "resumed"}
	assert.Equal(t, want, a.Texts("LifeCycleTest"))
	assert.Equal(t, want, b.Texts("LifeCycleTest"))
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard.Trace("x", "y") })
}

func TestFileAppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces", "session.log")
	f, err := OpenFile(path)
	require.NoError(t, err)
	f.now = func() time.Time { return time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC) }

	f.Trace("LifeCycleTest", "created")
	f.Trace("TouchTest", "up, 3.0, 4.0")
	require.NoError(t, f.Err())
	require.NoError(t, f.Close())
	assert.Equal(t, path, f.Path())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, []string{
		"2026-10-14T09:30:00.000Z D/LifeCycleTest: created",
		"2026-10-14T09:30:00.000Z D/TouchTest: up, 3.0, 4.0",
	}, lines)

	// Traces after Close are dropped silently.
	f.Trace("x", "y")
	assert.NoError(t, f.Close())
}
