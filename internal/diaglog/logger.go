package diaglog

import (
	"strings"
	"sync"
	"time"
)

// DefaultCapacity bounds a history logger when no capacity is configured.
const DefaultCapacity = 1000

// Mode selects how a Logger retains entries.
type Mode int

const (
	// ModeHistory appends every entry, evicting the oldest past capacity.
	ModeHistory Mode = iota
	// ModeLatest keeps only the most recent entry.
	ModeLatest
)

func (m Mode) String() string {
	switch m {
	case ModeHistory:
		return "history"
	case ModeLatest:
		return "latest"
	default:
		return "unknown"
	}
}

// Sink receives every formatted entry under the logger's tag.
//
// Contract:
//   - Trace is called synchronously from Record while the entry is being
//     published, so calls arrive in the same order as the log.
//   - Implementations must not call back into the Logger.
type Sink interface {
	Trace(tag, text string)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(tag, text string)

// Trace calls f(tag, text).
func (f SinkFunc) Trace(tag, text string) { f(tag, text) }

// Entry is one immutable line of a log.
type Entry struct {
	Seq  uint64    `json:"seq"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Option configures a Logger.
type Option func(*Logger)

// WithCapacity sets the history bound. Values <= 0 select DefaultCapacity.
func WithCapacity(n int) Option {
	return func(l *Logger) {
		if n <= 0 {
			n = DefaultCapacity
		}
		l.capacity = n
	}
}

// WithMode selects history or latest-state retention.
func WithMode(m Mode) Option { return func(l *Logger) { l.mode = m } }

// WithClock overrides the time source used to stamp entries.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		if now != nil {
			l.now = now
		}
	}
}

// Logger is a bounded, append-ordered diagnostic log owned by one module run.
//
// Record calls are expected to arrive serialized from the host's event
// delivery, but Snapshot and Entries may run concurrently with Record from a
// rendering context; they never observe a half-published entry.
type Logger struct {
	tag      string
	sink     Sink
	mode     Mode
	capacity int
	now      func() time.Time

	mu       sync.RWMutex
	buf      []Entry
	head     int
	seq      uint64
	recorded uint64
	evicted  uint64
}

// New creates an empty logger that mirrors entries to sink under tag.
// A nil sink disables tracing.
func New(tag string, sink Sink, opts ...Option) *Logger {
	l := &Logger{
		tag:      tag,
		sink:     sink,
		mode:     ModeHistory,
		capacity: DefaultCapacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.mode == ModeLatest {
		l.capacity = 1
	}
	l.buf = make([]Entry, 0, min(l.capacity, 64))
	return l
}

// Tag returns the trace tag.
func (l *Logger) Tag() string { return l.tag }

// Mode returns the retention mode.
func (l *Logger) Mode() Mode { return l.mode }

// Capacity returns the maximum number of retained entries.
func (l *Logger) Capacity() int { return l.capacity }

// Record formats ev, appends it and traces it. The returned entry is the one
// that was published.
func (l *Logger) Record(ev Event) Entry {
	text := sanitize(ev.Text())

	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	e := Entry{Seq: l.seq, Text: text, At: l.now()}
	if l.mode == ModeLatest {
		if len(l.buf) > 0 {
			l.evicted++
		}
		l.buf = append(l.buf[:0], e)
		l.head = 0
	} else if len(l.buf) < l.capacity {
		l.buf = append(l.buf, e)
	} else {
		l.buf[l.head] = e
		l.head = (l.head + 1) % l.capacity
		l.evicted++
	}
	l.recorded++

	if l.sink != nil {
		l.sink.Trace(l.tag, text)
	}
	return e
}

// Snapshot renders retained entries in append order, one per line.
func (l *Logger) Snapshot() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var b strings.Builder
	l.each(func(i int, e Entry) {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.Text)
	})
	return b.String()
}

// Entries returns a copy of the retained entries in append order.
func (l *Logger) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, 0, len(l.buf))
	l.each(func(_ int, e Entry) { out = append(out, e) })
	return out
}

// Len returns the number of retained entries.
func (l *Logger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.buf)
}

// Recorded returns the number of Record calls accepted since the last Clear.
func (l *Logger) Recorded() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.recorded
}

// Evicted returns how many entries the retention policy has dropped.
func (l *Logger) Evicted() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.evicted
}

// Clear empties the log. Only hosts call this, at activation boundaries.
func (l *Logger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf = l.buf[:0]
	l.head = 0
	l.recorded = 0
	l.evicted = 0
}

// each walks retained entries oldest first. Caller holds mu.
func (l *Logger) each(fn func(i int, e Entry)) {
	n := len(l.buf)
	for i := 0; i < n; i++ {
		fn(i, l.buf[(l.head+i)%n])
	}
}

// sanitize keeps one entry on one line.
func sanitize(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
