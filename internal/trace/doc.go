// Package trace provides a tracing subsystem for the weft driver.
//
// Tracing records span events around builds, libraries and stages so slow
// or stuck runs can be diagnosed after the fact.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	weft compile --trace=build.ndjson --trace-level=detail
//
// # Architecture
//
// The package provides several tracer implementations:
//
//   - nop tracer: zero overhead when tracing is disabled
//   - StreamTracer: immediate write to a file or stderr
//   - RingTracer: circular buffer kept for crash dumps
//   - MultiTracer: fans out to several tracers at once
//
// # Levels
//
// Verbosity is controlled by levels:
//
//   - LevelOff: no tracing
//   - LevelError: only crash dumps
//   - LevelPhase: build and library boundaries
//   - LevelDetail: per-stage events
//   - LevelDebug: everything including declaration level
//
// # Scopes
//
// Events are categorized by scope:
//
//   - ScopeDriver: one whole build
//   - ScopeLibrary: one library's pass through the pipeline
//   - ScopeStage: load, compile and emit stages
//   - ScopeDecl: one declaration's compilation
//
// # Context propagation
//
// Tracers travel through the pipeline via context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeStage, "load", parentID)
//	defer span.End("")
package trace
