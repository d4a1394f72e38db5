package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"weft/internal/declfile"
	"weft/internal/diag"
	"weft/internal/sema"
	"weft/internal/source"
	"weft/internal/types"
)

const artifactFixture = `{
	"format": 1,
	"library": "acme.test",
	"at": [0, 1],
	"declarations": [
		{"kind": "struct", "name": "Point", "at": [10, 15], "members": [
			{"name": "x", "at": [20, 21], "type": {"layout": "int32", "at": [23, 28]}}
		]},
		{"kind": "enum", "name": "Status", "at": [40, 46], "strict": true,
		 "subtype": {"layout": "uint8", "at": [48, 53]},
		 "members": [
			{"name": "OK", "at": [60, 62], "value": {"at": [64, 65], "literal": {"kind": "number", "text": "0"}}},
			{"name": "BUSY", "at": [70, 74], "value": {"at": [76, 77], "literal": {"kind": "number", "text": "1"}}}
		 ]},
		{"kind": "bits", "name": "Caps", "at": [90, 94], "members": [
			{"name": "READ", "at": [100, 104], "value": {"at": [106, 107], "literal": {"kind": "number", "text": "1"}}},
			{"name": "WRITE", "at": [110, 115], "value": {"at": [117, 118], "literal": {"kind": "number", "text": "2"}}}
		]},
		{"kind": "table", "name": "Profile", "at": [130, 137], "members": [
			{"name": "nickname", "at": [140, 148], "ordinal": 1, "type": {"layout": "string", "at": [150, 156]}},
			{"at": [160, 161], "ordinal": 2, "reserved": true}
		]},
		{"kind": "const", "name": "GREETING", "at": [170, 178],
		 "type": {"layout": "string", "at": [180, 186]},
		 "value": {"at": [190, 194], "literal": {"kind": "string", "text": "hi"}}},
		{"kind": "protocol", "name": "Echo", "at": [200, 204], "methods": [
			{"name": "Send", "at": [210, 214], "has_request": true,
			 "request": {"layout": "Point", "at": [216, 221]},
			 "has_response": true}
		]}
	]
}`

func compileFixture(t *testing.T) (*Artifact, *types.Space) {
	t.Helper()
	fs := source.NewFileSet()
	bag := diag.NewBag(64)
	res := declfile.LoadBytes(fs, "fixture.weft.json", []byte(artifactFixture), declfile.Options{
		Reporter: diag.BagReporter{Bag: bag},
	})
	if res.Library == nil {
		t.Fatalf("fixture did not load: %v", bag.Items())
	}
	sr := sema.Compile(res.Library, sema.Options{Reporter: diag.BagReporter{Bag: bag}})
	if bag.HasErrors() {
		t.Fatalf("fixture did not compile: %v", bag.Items())
	}
	return BuildArtifact(res.Library, sr.Space), sr.Space
}

func declByName(t *testing.T, art *Artifact, name string) ArtifactDecl {
	t.Helper()
	for _, d := range art.Decls {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("artifact has no declaration %q", name)
	return ArtifactDecl{}
}

func TestBuildArtifactFlattensDecls(t *testing.T) {
	art, _ := compileFixture(t)
	if art.Schema != ArtifactSchemaVersion || art.Library != "acme.test" {
		t.Fatalf("envelope = %+v", art)
	}
	if len(art.Decls) != 6 {
		t.Fatalf("got %d decls, want 6", len(art.Decls))
	}

	point := declByName(t, art, "Point")
	if point.Kind != "struct" || point.Resourceness != "value" {
		t.Errorf("Point = %+v", point)
	}
	if point.Members[0].Type != "int32" {
		t.Errorf("Point.x type = %q", point.Members[0].Type)
	}

	status := declByName(t, art, "Status")
	if status.Kind != "enum" || status.Strictness != "strict" || status.Type != "uint8" {
		t.Errorf("Status = %+v", status)
	}
	if status.Members[1].Name != "BUSY" || status.Members[1].Value != "1" {
		t.Errorf("Status.BUSY = %+v", status.Members[1])
	}

	caps := declByName(t, art, "Caps")
	if caps.Strictness != "flexible" || caps.Mask != 3 || caps.Type != "uint32" {
		t.Errorf("Caps = %+v", caps)
	}

	profile := declByName(t, art, "Profile")
	if profile.Members[0].Ordinal != 1 || profile.Members[0].Type != "string" {
		t.Errorf("Profile.nickname = %+v", profile.Members[0])
	}
	if !profile.Members[1].Reserved || profile.Members[1].Ordinal != 2 || profile.Members[1].Name != "" {
		t.Errorf("Profile reserved slot = %+v", profile.Members[1])
	}

	greeting := declByName(t, art, "GREETING")
	if greeting.Type != "string" || greeting.Value != `"hi"` {
		t.Errorf("GREETING = %+v", greeting)
	}

	echo := declByName(t, art, "Echo")
	send := echo.Members[0]
	if send.Name != "Send" || send.Selector != "Send" || send.Ordinal == 0 {
		t.Errorf("Echo.Send = %+v", send)
	}
	if send.Type != "(acme.test/Point) -> ()" {
		t.Errorf("Echo.Send shape = %q", send.Type)
	}
}

func TestArtifactRoundTrip(t *testing.T) {
	art, _ := compileFixture(t)
	path := filepath.Join(t.TempDir(), "acme.test"+ArtifactExt)
	if err := WriteArtifact(path, art); err != nil {
		t.Fatalf("WriteArtifact: %v", err)
	}

	got, err := ReadArtifact(path)
	if err != nil {
		t.Fatalf("ReadArtifact: %v", err)
	}
	if got.Library != art.Library || len(got.Decls) != len(art.Decls) {
		t.Fatalf("round trip mangled the envelope: %+v", got)
	}
	if declByName(t, got, "Caps").Mask != 3 {
		t.Error("round trip lost the bits mask")
	}
}

func TestWriteArtifactCreatesOutDir(t *testing.T) {
	art, _ := compileFixture(t)
	path := filepath.Join(t.TempDir(), "nested", "out", "acme.test"+ArtifactExt)
	if err := WriteArtifact(path, art); err != nil {
		t.Fatalf("WriteArtifact: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
}

func TestReadArtifactRejectsSchemaDrift(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stale"+ArtifactExt)
	stale := Artifact{Schema: ArtifactSchemaVersion + 1, Library: "acme.test"}
	raw, err := msgpack.Marshal(&stale)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadArtifact(path); err == nil {
		t.Fatal("schema drift went unnoticed")
	}
}

func TestReadArtifactMissingFile(t *testing.T) {
	if _, err := ReadArtifact(filepath.Join(t.TempDir(), "nope"+ArtifactExt)); err == nil {
		t.Fatal("missing artifact read succeeded")
	}
}
