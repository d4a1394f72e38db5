// Package prof wraps the runtime profilers behind start/stop pairs the
// CLI can wire to flags.
package prof

import (
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

var (
	cpuFile   *os.File
	traceFile *os.File
)

// StartCPU enables CPU profiling, writing samples to path.
func StartCPU(path string) error {
	f, err := os.Create(path) // #nosec G304 -- the caller names the profile output
	if err != nil {
		return err
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return err
	}
	cpuFile = f
	return nil
}

// StopCPU stops an active CPU profile and closes its file.
func StopCPU() {
	pprof.StopCPUProfile()
	if cpuFile != nil {
		_ = cpuFile.Close()
		cpuFile = nil
	}
}

// WriteMem captures a heap profile to path. A GC runs first so the
// profile reflects live objects, not garbage.
func WriteMem(path string) error {
	f, err := os.Create(path) // #nosec G304 -- the caller names the profile output
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	runtime.GC()
	return pprof.WriteHeapProfile(f)
}

// StartTrace writes runtime execution trace data to path.
func StartTrace(path string) error {
	f, err := os.Create(path) // #nosec G304 -- the caller names the trace output
	if err != nil {
		return err
	}
	if err := trace.Start(f); err != nil {
		_ = f.Close()
		return err
	}
	traceFile = f
	return nil
}

// StopTrace ends an active runtime trace and closes its file.
func StopTrace() {
	trace.Stop()
	if traceFile != nil {
		_ = traceFile.Close()
		traceFile = nil
	}
}
