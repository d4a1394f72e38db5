package fuzztests

import "testing"

const (
	maxSeedBytes = 64 << 10 // clamp for the seed corpus
)

func addCorpusSeeds(f *testing.F) {
	addGraphSeeds(f)
	addDegenerateSeeds(f)
}

// addGraphSeeds feeds well-formed documents so mutation starts from inputs
// that reach the builder and the compiler, not just the JSON decoder.
func addGraphSeeds(f *testing.F) {
	seeds := []string{
		`{"format": 1, "library": "fuzz.seed", "at": [0, 1], "declarations": []}`,

		`{"format": 1, "library": "fuzz.seed", "at": [0, 1], "declarations": [
			{"kind": "struct", "name": "Point", "at": [10, 15], "members": [
				{"name": "x", "at": [20, 21], "type": {"layout": "int32", "at": [23, 28]}},
				{"name": "y", "at": [30, 31], "type": {"layout": "int32", "at": [33, 38]}}]}]}`,

		`{"format": 1, "library": "fuzz.seed", "at": [0, 1], "declarations": [
			{"kind": "enum", "name": "Mode", "at": [10, 14], "strict": true,
			 "subtype": {"layout": "uint8", "at": [16, 21]},
			 "members": [
				{"name": "OFF", "at": [24, 27], "value": {"at": [29, 30], "literal": {"kind": "number", "text": "0"}}},
				{"name": "ON", "at": [32, 34], "value": {"at": [36, 37], "literal": {"kind": "number", "text": "1"}}}]},
			{"kind": "bits", "name": "Rights", "at": [40, 46],
			 "members": [
				{"name": "READ", "at": [50, 54], "value": {"at": [56, 57], "literal": {"kind": "number", "text": "1"}}}]}]}`,

		`{"format": 1, "library": "fuzz.seed", "at": [0, 1], "declarations": [
			{"kind": "table", "name": "Settings", "at": [10, 18], "members": [
				{"ordinal": 1, "name": "interval", "at": [20, 28], "type": {"layout": "uint32", "at": [30, 36]}},
				{"ordinal": 2, "reserved": true, "at": [40, 41]}]},
			{"kind": "union", "name": "Value", "at": [50, 55], "strict": true, "members": [
				{"ordinal": 1, "name": "count", "at": [60, 65], "type": {"layout": "uint64", "at": [67, 73]}}]}]}`,

		`{"format": 1, "library": "fuzz.seed", "at": [0, 1], "declarations": [
			{"kind": "protocol", "name": "Device", "at": [10, 16], "methods": [
				{"name": "Ping", "at": [20, 24], "has_request": true, "has_response": true},
				{"name": "Watch", "at": [30, 35], "has_response": true,
				 "response": {"layout": "Event", "at": [37, 42]}}]},
			{"kind": "struct", "name": "Event", "at": [50, 55]},
			{"kind": "service", "name": "Station", "at": [60, 67], "members": [
				{"name": "device", "at": [70, 76],
				 "type": {"layout": "client_end", "at": [78, 88], "constraints": [{"at": [90, 96], "ref": "Device"}]}}]}]}`,

		`{"format": 1, "library": "fuzz.seed", "at": [0, 1], "declarations": [
			{"kind": "resource", "name": "Handle", "at": [10, 16],
			 "subtype": {"layout": "uint32", "at": [18, 24]},
			 "properties": [
				{"name": "subtype", "at": [30, 37], "type": {"layout": "Kind", "at": [39, 43]}}]},
			{"kind": "enum", "name": "Kind", "at": [50, 54], "members": [
				{"name": "NONE", "at": [56, 60], "value": {"at": [62, 63], "literal": {"kind": "number", "text": "0"}}}]}]}`,

		`{"format": 1, "library": "fuzz.seed", "at": [0, 1], "declarations": [
			{"kind": "const", "name": "LIMIT", "at": [10, 15],
			 "type": {"layout": "uint32", "at": [17, 23]},
			 "value": {"at": [25, 27], "literal": {"kind": "number", "text": "64"}}},
			{"kind": "const", "name": "FLAGS", "at": [30, 35],
			 "type": {"layout": "uint32", "at": [37, 43]},
			 "value": {"at": [45, 55], "or": {
				"left": {"at": [45, 49], "ref": "LIMIT"},
				"right": {"at": [52, 55], "literal": {"kind": "number", "text": "1"}}}}},
			{"kind": "alias", "name": "Label", "at": [60, 65],
			 "target": {"layout": "string", "at": [67, 73],
			            "constraints": [{"at": [75, 77], "ref": "LIMIT"}]}},
			{"kind": "new_type", "name": "Meters", "at": [80, 86],
			 "target": {"layout": "uint32", "at": [88, 94]}}]}`,

		`{"format": 1, "library": "fuzz.seed", "at": [0, 1],
		 "attributes": [{"name": "available", "at": [2, 11], "args": [
			{"name": "added", "at": [13, 18], "value": {"at": [20, 21], "literal": {"kind": "number", "text": "1"}}}]}],
		 "declarations": [
			{"kind": "struct", "name": "Box", "at": [30, 33],
			 "attributes": [{"name": "doc", "at": [35, 38], "args": [
				{"at": [40, 47], "value": {"at": [40, 47], "literal": {"kind": "doc", "text": "boxed"}}}]}],
			 "members": [
				{"name": "items", "at": [50, 55],
				 "type": {"layout": "vector", "at": [57, 63],
				          "params": [{"at": [65, 70], "type": {"layout": "vector", "at": [65, 70],
				                      "params": [{"at": [72, 76], "type": {"layout": "bool", "at": [72, 76]}}]}}],
				          "constraints": [{"at": [78, 79], "literal": {"kind": "number", "text": "8"}}]}}]}]}`,
	}
	for _, s := range seeds {
		f.Add(clampSeed([]byte(s)))
	}
}

// addDegenerateSeeds feeds inputs that must fail cleanly: truncations,
// wrong revisions and shapes the decoder rejects.
func addDegenerateSeeds(f *testing.F) {
	seeds := []string{
		``,
		`{}`,
		`{"format": 1}`,
		`{"format": 99, "library": "fuzz.seed", "declarations": []}`,
		`{"format": 1, "library": 7, "declarations": []}`,
		`{"format": 1, "library": "fuzz.seed", "declarations": [{"kind": "galaxy", "name": "X", "at": [1, 2]}]}`,
		`{"format": 1, "library": "fuzz.seed", "declarations": [{"kind": "struct"}]}`,
		`{"format": 1, "library": "fuzz.seed", "declarations": [{"kind": "const", "name": "C", "at": [1, 2]}]}`,
		`{"format": 1, "library": "fuzz.seed", "declarations": [
			{"kind": "struct", "name": "A", "at": [1, 2], "members": [
				{"name": "a", "at": [3, 4], "type": {"layout": "B", "at": [5, 6]}}]},
			{"kind": "struct", "name": "B", "at": [7, 8], "members": [
				{"name": "b", "at": [9, 10], "type": {"layout": "A", "at": [11, 12]}}]}]}`,
		`{"format": 1, "library": "fuzz.seed", "declarations": [`,
		`not json at all`,
	}
	for _, s := range seeds {
		f.Add(clampSeed([]byte(s)))
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
