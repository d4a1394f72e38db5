package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"weft/internal/driver"
	"weft/internal/ui"
)

type compileOutcome struct {
	outcome *driver.Outcome
	err     error
}

// runCompileWithUI drives the build under the progress TUI. Events tee
// through the timing sink into the channel the model reads; closing the
// sink after Compile returns is what ends the program.
func runCompileWithUI(ctx context.Context, title string, libraries []string, req driver.Request, timings *stageTimings) (*driver.Outcome, error) {
	sink := driver.NewChannelSink(256)
	timings.next = sink
	req.Events = timings
	outcomeCh := make(chan compileOutcome, 1)

	go func() {
		outcome, err := driver.Compile(ctx, req)
		outcomeCh <- compileOutcome{outcome: outcome, err: err}
		sink.Close()
	}()

	model := ui.NewProgressModel(title, libraries, sink.C)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.outcome, uiErr
	}
	return outcome.outcome, outcome.err
}
