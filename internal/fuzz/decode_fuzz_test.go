package fuzztests

import (
	"testing"

	"weft/internal/declfile"
	"weft/internal/diag"
	"weft/internal/source"
)

const maxFuzzInput = 1 << 16 // 64 KiB

func FuzzGraphDecode(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(_ *testing.T, input []byte) {
		if len(input) > maxFuzzInput {
			input = append([]byte(nil), input[:maxFuzzInput]...)
		} else {
			input = append([]byte(nil), input...)
		}

		fs := source.NewFileSet()
		file := fs.AddVirtual("fuzz.weft.json", input)

		bag := diag.NewBag(64)
		_ = declfile.Decode(fs, file, diag.BagReporter{Bag: bag})
	})
}
