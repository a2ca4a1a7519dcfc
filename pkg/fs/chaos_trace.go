package fs

import (
	"fmt"
	"strings"
	"sync"
)

// TraceEvent is one operation seen by [Chaos].
type TraceEvent struct {
	Seq  uint64 // increases by one per recorded operation
	Op   string // "open", "create", "file.read", "file.write", "file.seek", "file.close"
	Path string
	Err  error

	// Injected is set when Chaos changed the outcome, including short reads
	// and writes that return no error.
	Injected bool

	// Kind labels the outcome: "ok", "fail", "short_read",
	// "silent_short_write", "short_write" or "partial_write".
	Kind  string
	Attrs []TraceAttr
}

// TraceAttr is an extra key/value detail on a [TraceEvent].
type TraceAttr struct {
	Key   string
	Value string
}

// String renders e on one line, e.g.
//
//	#7 [CHAOS:fail] file.write path="/tmp/x" errno=no space left on device err=...
func (e TraceEvent) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "#%d", e.Seq)

	if e.Injected {
		fmt.Fprintf(&sb, " [CHAOS:%s]", e.Kind)
	}

	sb.WriteString(" " + e.Op)

	if e.Path != "" {
		fmt.Fprintf(&sb, " path=%q", e.Path)
	}

	for _, a := range e.Attrs {
		sb.WriteString(" " + a.Key + "=" + a.Value)
	}

	if !e.Injected {
		sb.WriteString(" " + e.Kind)
	}

	if e.Err != nil {
		fmt.Fprintf(&sb, " err=%v", e.Err)
	}

	return sb.String()
}

// chaosTrace keeps the last cap(ring) events. A nil trace records nothing.
type chaosTrace struct {
	mu   sync.Mutex
	ring []TraceEvent
	head int // index of the oldest event once the ring is full
	seq  uint64
}

func newChaosTrace(capacity int) *chaosTrace {
	if capacity <= 0 {
		return nil
	}

	return &chaosTrace{ring: make([]TraceEvent, 0, capacity)}
}

func (t *chaosTrace) add(op, path, kind string, err error, injected bool, attrs ...TraceAttr) {
	if t == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++
	e := TraceEvent{Seq: t.seq, Op: op, Path: path, Err: err, Injected: injected, Kind: kind, Attrs: attrs}

	if len(t.ring) < cap(t.ring) {
		t.ring = append(t.ring, e)

		return
	}

	t.ring[t.head] = e
	t.head = (t.head + 1) % len(t.ring)
}

func (t *chaosTrace) snapshot() []TraceEvent {
	if t == nil {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]TraceEvent, 0, len(t.ring))
	out = append(out, t.ring[t.head:]...)

	return append(out, t.ring[:t.head]...)
}

func (t *chaosTrace) String() string {
	events := t.snapshot()

	lines := make([]string, len(events))
	for i, e := range events {
		lines[i] = e.String()
	}

	return strings.Join(lines, "\n")
}
