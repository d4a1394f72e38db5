package trace

import (
	"io"
	"sync"
)

// RingTracer keeps the last N events in a circular buffer. Nothing is
// written anywhere until Dump, which makes it the crash-dump tracer.
type RingTracer struct {
	mu       sync.RWMutex
	events   []Event
	capacity int
	head     int  // next write position
	full     bool // has wrapped around
	level    Level
	accept   Level
}

// NewRingTracer creates a RingTracer with the given capacity. At
// LevelError the ring still records stage-level events; the level only
// says nothing streams until a crash dump asks for the buffer.
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = 4096
	}
	accept := level
	if accept == LevelError {
		accept = LevelDetail
	}
	return &RingTracer{
		events:   make([]Event, capacity),
		capacity: capacity,
		level:    level,
		accept:   accept,
	}
}

func (t *RingTracer) Emit(ev *Event) {
	if !t.accept.ShouldEmit(ev.Scope) && ev.Kind != KindHeartbeat {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	stored := *ev
	stored.Seq = NextSeq()
	t.events[t.head] = stored
	t.head = (t.head + 1) % t.capacity
	if t.head == 0 {
		t.full = true
	}
}

// Snapshot returns a copy of the stored events in arrival order.
func (t *RingTracer) Snapshot() []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.full {
		result := make([]Event, t.head)
		copy(result, t.events[:t.head])
		return result
	}
	result := make([]Event, t.capacity)
	copy(result, t.events[t.head:])
	copy(result[t.capacity-t.head:], t.events[:t.head])
	return result
}

// Dump writes the buffered events to w in the given format.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	for _, ev := range t.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error { return nil }
func (t *RingTracer) Close() error { return nil }

// Level reports the accept level so spans still open at LevelError.
func (t *RingTracer) Level() Level  { return t.accept }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
