package main

import (
	"fmt"
	"io"
	"time"

	"weft/internal/driver"
)

// stageTimings accumulates wall time per build stage from driver events.
// The driver emits from one goroutine and reads happen after Compile
// returns, so no locking is needed.
type stageTimings struct {
	totals map[driver.Stage]time.Duration
	next   driver.Sink
}

func newStageTimings() *stageTimings {
	return &stageTimings{totals: make(map[driver.Stage]time.Duration)}
}

func (t *stageTimings) Emit(e driver.Event) {
	if e.Status != driver.StatusStart {
		t.totals[e.Stage] += e.Elapsed
	}
	if t.next != nil {
		t.next.Emit(e)
	}
}

func (t *stageTimings) total(stage driver.Stage) (time.Duration, bool) {
	d, ok := t.totals[stage]
	return d, ok
}

func printStageTimings(out io.Writer, timings *stageTimings) {
	if out == nil || timings == nil {
		return
	}
	if d, ok := timings.total(driver.StageLoad); ok {
		fmt.Fprintf(out, "loaded %.1f ms\n", toMillis(d))
	}
	if d, ok := timings.total(driver.StageCompile); ok {
		fmt.Fprintf(out, "compiled %.1f ms\n", toMillis(d))
	}
	if d, ok := timings.total(driver.StageEmit); ok {
		fmt.Fprintf(out, "emitted %.1f ms\n", toMillis(d))
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
