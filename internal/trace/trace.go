// Package trace provides the always-on trace facilities diagnostic logs
// mirror into. Every sink here satisfies diaglog.Sink.
package trace

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tldr-it-stepankutaj/basicskit/internal/diaglog"
)

// Slog writes each entry as one structured record.
type Slog struct {
	log   *slog.Logger
	level slog.Level
}

// NewSlog returns a sink that logs at info level so traces survive the
// default level filter.
func NewSlog(log *slog.Logger) *Slog {
	return &Slog{log: log, level: slog.LevelInfo}
}

func (s *Slog) Trace(tag, text string) {
	s.log.LogAttrs(context.Background(), s.level, "trace",
		slog.String("tag", tag),
		slog.String("text", text),
	)
}

// Record is one captured trace line.
type Record struct {
	Tag  string `json:"tag"`
	Text string `json:"text"`
}

// Memory keeps every record in arrival order.
type Memory struct {
	mu      sync.Mutex
	records []Record
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Trace(tag, text string) {
	m.mu.Lock()
	m.records = append(m.records, Record{Tag: tag, Text: text})
	m.mu.Unlock()
}

// Records returns a copy of everything traced so far.
func (m *Memory) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Record(nil), m.records...)
}

// Texts returns the traced texts for one tag.
func (m *Memory) Texts(tag string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, r := range m.records {
		if r.Tag == tag {
			out = append(out, r.Text)
		}
	}
	return out
}

// Len returns the number of records.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// Group fans each record out to its sinks sequentially, in the order they
// were given, so every child sees the same order.
type Group struct {
	sinks []diaglog.Sink
}

// NewGroup skips nil sinks.
func NewGroup(sinks ...diaglog.Sink) *Group {
	g := &Group{sinks: make([]diaglog.Sink, 0, len(sinks))}
	for _, s := range sinks {
		if s != nil {
			g.sinks = append(g.sinks, s)
		}
	}
	return g
}

func (g *Group) Trace(tag, text string) {
	for _, s := range g.sinks {
		s.Trace(tag, text)
	}
}

// Len returns the number of child sinks.
func (g *Group) Len() int { return len(g.sinks) }

// Discard drops everything.
var Discard diaglog.Sink = diaglog.SinkFunc(func(string, string) {})

var (
	_ diaglog.Sink = (*Slog)(nil)
	_ diaglog.Sink = (*Memory)(nil)
	_ diaglog.Sink = (*Group)(nil)
	_ diaglog.Sink = (*File)(nil)
)
