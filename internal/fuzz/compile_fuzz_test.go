package fuzztests

import (
	"context"
	"testing"
	"time"

	"weft/internal/declfile"
	"weft/internal/diag"
	"weft/internal/sema"
	"weft/internal/source"
)

// compileTimeout is the maximum time allowed for compiling a single input.
// If compilation takes longer, it indicates a potential infinite loop.
const compileTimeout = 5 * time.Second

func FuzzDeclCompile(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(_ *testing.T, input []byte) {
		if len(input) > maxFuzzInput {
			input = append([]byte(nil), input[:maxFuzzInput]...)
		} else {
			input = append([]byte(nil), input...)
		}

		compileInput(input)
	})
}

// FuzzCompileNoHang tests that declaration compilation terminates on any
// input. Cyclic references are the risky spot: compilation must break every
// include chain it walks back into instead of chasing it forever.
func FuzzCompileNoHang(f *testing.F) {
	addCorpusSeeds(f)

	// Reference chains that previously stressed cycle detection.
	f.Add([]byte(`{"format": 1, "library": "fuzz.seed", "declarations": [
		{"kind": "struct", "name": "Self", "at": [1, 2], "members": [
			{"name": "again", "at": [3, 4], "type": {"layout": "Self", "at": [5, 6]}}]}]}`)) // self-include
	f.Add([]byte(`{"format": 1, "library": "fuzz.seed", "declarations": [
		{"kind": "alias", "name": "A", "at": [1, 2], "target": {"layout": "B", "at": [3, 4]}},
		{"kind": "alias", "name": "B", "at": [5, 6], "target": {"layout": "C", "at": [7, 8]}},
		{"kind": "alias", "name": "C", "at": [9, 10], "target": {"layout": "A", "at": [11, 12]}}]}`)) // alias ring
	f.Add([]byte(`{"format": 1, "library": "fuzz.seed", "declarations": [
		{"kind": "const", "name": "X", "at": [1, 2],
		 "type": {"layout": "uint32", "at": [3, 4]},
		 "value": {"at": [5, 6], "ref": "X"}}]}`)) // constant defined by itself

	f.Fuzz(func(t *testing.T, input []byte) {
		if len(input) > maxFuzzInput {
			input = append([]byte(nil), input[:maxFuzzInput]...)
		} else {
			input = append([]byte(nil), input...)
		}

		ctx, cancel := context.WithTimeout(context.Background(), compileTimeout)
		defer cancel()

		done := make(chan struct{})
		go func() {
			defer close(done)
			compileInput(input)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			t.Fatalf("compile hang detected: compilation took longer than %v\ninput (%d bytes): %q",
				compileTimeout, len(input), truncateForLog(input, 200))
		}
	})
}

// compileInput runs the load-and-compile pipeline the driver runs per
// library. Diagnostics land in a throwaway bag; only termination and the
// absence of panics matter here.
func compileInput(input []byte) {
	fs := source.NewFileSet()
	bag := diag.NewBag(128)
	reporter := diag.BagReporter{Bag: bag}

	res := declfile.LoadBytes(fs, "fuzz.weft.json", input, declfile.Options{Reporter: reporter})
	if res.Library == nil {
		return
	}
	_ = sema.Compile(res.Library, sema.Options{Reporter: reporter})
}

// truncateForLog truncates input for logging purposes
func truncateForLog(input []byte, maxLen int) []byte {
	if len(input) <= maxLen {
		return input
	}
	return append(input[:maxLen], []byte("...")...)
}
