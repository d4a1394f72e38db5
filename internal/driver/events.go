package driver

import "time"

// Stage names one step of a library's build.
type Stage string

const (
	// StageLoad covers reading graph files, decoding them and linking
	// the declaration graph.
	StageLoad Stage = "load"
	// StageCompile is declaration compilation.
	StageCompile Stage = "compile"
	// StageEmit writes the library's artifact.
	StageEmit Stage = "emit"
)

// Status of a stage event.
type Status string

const (
	StatusStart  Status = "start"
	StatusOK     Status = "ok"
	StatusFail   Status = "fail"
	StatusCached Status = "cached"
)

// Event is one stage transition during a build. Err is only set when a
// failure was operational; diagnostic failures live in the library's bag.
type Event struct {
	Library string
	Stage   Stage
	Status  Status
	Elapsed time.Duration
	Err     error
}

// Sink receives build events. The driver emits from the compilation path,
// so implementations must not block.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

type nopSink struct{}

func (nopSink) Emit(Event) {}

// ChannelSink forwards events into a channel, dropping them when the
// receiver falls behind. Losing a progress tick beats stalling the build.
type ChannelSink struct {
	C chan Event
}

func NewChannelSink(capacity int) *ChannelSink {
	return &ChannelSink{C: make(chan Event, capacity)}
}

func (s *ChannelSink) Emit(e Event) {
	select {
	case s.C <- e:
	default:
	}
}

// Close ends the stream once the build is done emitting.
func (s *ChannelSink) Close() { close(s.C) }
