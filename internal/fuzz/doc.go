// Package fuzztests houses Go fuzz harnesses that exercise the weft
// compilation pipeline (graph decode -> build -> link -> declaration
// compilation). Its goal is to smoke test robustness and guard against
// panics or allocator explosions on arbitrary inputs.
//
// It does not generate corpora, write files or run the CLI; every seed
// is an inline graph document.
package fuzztests
