package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ManifestName, `
[library]
name = "acme.device"
graphs = ["device.weft.json", "types/types.weft.json"]

[deps]
manifests = ["../parts/weft.toml"]
`)

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "acme.device" {
		t.Errorf("name = %q", m.Name)
	}
	if len(m.Graphs) != 2 || !filepath.IsAbs(m.Graphs[0]) {
		t.Errorf("graphs = %v", m.Graphs)
	}
	if want := filepath.Join(dir, "device.weft.json"); m.Graphs[0] != want {
		t.Errorf("graph[0] = %q, want %q", m.Graphs[0], want)
	}
	if want := filepath.Clean(filepath.Join(dir, "..", "parts", ManifestName)); m.Deps[0] != want {
		t.Errorf("dep[0] = %q, want %q", m.Deps[0], want)
	}
	if want := filepath.Join(dir, DefaultOutDir); m.OutDir != want {
		t.Errorf("out dir = %q, want default %q", m.OutDir, want)
	}
}

func TestLoadManifestExplicitOutput(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ManifestName, `
[library]
name = "acme.device"
graphs = ["device.weft.json"]

[output]
dir = "build/ir"
`)
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "build", "ir"); m.OutDir != want {
		t.Errorf("out dir = %q, want %q", m.OutDir, want)
	}
}

func TestLoadManifestErrors(t *testing.T) {
	cases := []struct {
		name     string
		content  string
		sentinel error
	}{
		{"no library section", `[output]` + "\n" + `dir = "out"`, ErrLibrarySectionMissing},
		{"no name", "[library]\ngraphs = [\"a.weft.json\"]", ErrLibraryNameMissing},
		{"blank name", "[library]\nname = \"  \"\ngraphs = [\"a.weft.json\"]", ErrLibraryNameMissing},
		{"no graphs", "[library]\nname = \"acme\"", ErrNoGraphs},
		{"bad name", "[library]\nname = \"1device\"\ngraphs = [\"a.weft.json\"]", nil},
		{"absolute graph", "[library]\nname = \"acme\"\ngraphs = [\"/etc/a.weft.json\"]", nil},
		{"malformed toml", "[library\nname=", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, ManifestName, tc.content)
			_, err := LoadManifest(path)
			if err == nil {
				t.Fatal("manifest loaded despite defect")
			}
			if tc.sentinel != nil && !errors.Is(err, tc.sentinel) {
				t.Errorf("err = %v, want %v", err, tc.sentinel)
			}
		})
	}
}

func TestLoadManifestUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ManifestName, `
[library]
name = "acme.device"
graphs = ["device.weft.json"]
flavor = "vanilla"

[build]
jobs = 4
`)
	_, err := LoadManifest(path)
	var unknown *UnknownKeyError
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want UnknownKeyError", err)
	}
	if len(unknown.Keys) == 0 {
		t.Fatal("no keys listed")
	}
	msg := unknown.Error()
	if !strings.Contains(msg, "library.flavor") || !strings.Contains(msg, "build") {
		t.Errorf("error does not name the keys: %v", unknown)
	}
}

func TestIsValidLibraryName(t *testing.T) {
	valid := []string{"acme", "acme.device", "a1.b_2", "x"}
	invalid := []string{"", ".", "acme.", ".acme", "1acme", "acme.1dev", "acme..device", "acmé"}
	for _, name := range valid {
		if !IsValidLibraryName(name) {
			t.Errorf("%q rejected", name)
		}
	}
	for _, name := range invalid {
		if IsValidLibraryName(name) {
			t.Errorf("%q accepted", name)
		}
	}
}

func TestFindManifest(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ManifestName, "[library]\nname = \"acme\"\ngraphs = [\"a.weft.json\"]")
	nested := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(nested, 0o750); err != nil {
		t.Fatal(err)
	}

	path, ok, err := FindManifest(nested)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if filepath.Dir(path) != root {
		t.Errorf("found %q, want under %q", path, root)
	}

	projectRoot, ok, err := FindProjectRoot(nested)
	if err != nil || !ok || projectRoot != root {
		t.Errorf("root = %q ok=%v err=%v", projectRoot, ok, err)
	}
}

func TestFindManifestAbsent(t *testing.T) {
	_, ok, err := FindManifest(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("found a manifest in an empty tree")
	}
}

func TestContentDigest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "device.weft.json", `{"format":1,"library":"acme","declarations":[]}`)
	path := writeFile(t, dir, ManifestName, "[library]\nname = \"acme\"\ngraphs = [\"device.weft.json\"]")

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	first, err := m.ContentDigest()
	if err != nil {
		t.Fatal(err)
	}
	again, err := m.ContentDigest()
	if err != nil {
		t.Fatal(err)
	}
	if first != again {
		t.Error("digest is not deterministic")
	}

	writeFile(t, dir, "device.weft.json", `{"format":1,"library":"acme","declarations":[{"kind":"struct","name":"P","at":[1,2]}]}`)
	changed, err := m.ContentDigest()
	if err != nil {
		t.Fatal(err)
	}
	if changed == first {
		t.Error("digest ignored a graph change")
	}
	if first.Hex() == "" || len(first.Hex()) != 64 {
		t.Errorf("hex digest = %q", first.Hex())
	}
}

func TestContentDigestMissingGraph(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ManifestName, "[library]\nname = \"acme\"\ngraphs = [\"absent.weft.json\"]")
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.ContentDigest(); err == nil {
		t.Error("digest of a missing graph succeeded")
	}
}

func TestCombine(t *testing.T) {
	var a, b Digest
	a[0] = 1
	b[0] = 2
	plain := Combine(a)
	withDep := Combine(a, b)
	if plain == withDep {
		t.Error("dependency digest did not change the aggregate")
	}
	if Combine(a, b) != withDep {
		t.Error("combine is not deterministic")
	}
	if Combine(a, b) == Combine(b, a) {
		t.Error("combine ignores order")
	}
}
