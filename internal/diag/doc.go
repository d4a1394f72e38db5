// Package diag defines the diagnostic model shared by all compiler phases.
//
// # Purpose
//
//   - Provide deterministic, serialisable data structures that capture
//     findings produced by the graph loader, the reference linker, and the
//     declaration compilation pass.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//
// # Scope
//
// Package diag does not perform any formatting, IO, or CLI integration.
// Rendering responsibilities live in internal/diagfmt; orchestration lives
// in the driver layer.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the canonical source.Span pointing to the issue.
//   - Notes – optional secondary spans/messages for additional context.
//
// Notes should be used sparingly: each note must add new context (e.g.
// "previously declared here") rather than repeating the diagnostic message.
//
// # Emitting diagnostics
//
// Phases depend on a diag.Reporter to decouple emission from storage. A
// phase constructs a ReportBuilder via the helpers ReportError /
// ReportWarning / ReportInfo and chains WithNote before calling Emit. When
// no metadata is needed, phases may call Reporter.Report(...) directly.
// diag.BagReporter aggregates diagnostics into a Bag, which supports
// sorting, deduplication, and capacity limiting.
//
// Schema problems are always diagnostics, never errors or panics: the pass
// records what it found and keeps going. Panics are reserved for broken
// compiler invariants.
package diag
