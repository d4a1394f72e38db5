package project

import (
	"slices"
	"testing"
)

func mkManifest(path string, deps ...string) *Manifest {
	return &Manifest{Path: path, Dir: "/p", Name: path, Deps: deps}
}

func order(t *testing.T, idx Index, topo *Topo) []string {
	t.Helper()
	out := make([]string, 0, len(topo.Order))
	for _, id := range topo.Order {
		out = append(out, idx.IDToPath[int(id)])
	}
	return out
}

func TestToposortChain(t *testing.T) {
	manifests := []*Manifest{
		mkManifest("/p/c/weft.toml", "/p/b/weft.toml"),
		mkManifest("/p/b/weft.toml", "/p/a/weft.toml"),
		mkManifest("/p/a/weft.toml"),
	}
	idx := BuildIndex(manifests)
	topo := Toposort(BuildGraph(idx, manifests))

	if topo.Cyclic {
		t.Fatalf("chain reported cyclic: %v", topo.Cycles)
	}
	want := []string{"/p/a/weft.toml", "/p/b/weft.toml", "/p/c/weft.toml"}
	if got := order(t, idx, topo); !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	if len(topo.Batches) != 3 {
		t.Errorf("batches = %v", topo.Batches)
	}
}

func TestToposortDiamondBatches(t *testing.T) {
	manifests := []*Manifest{
		mkManifest("/p/top/weft.toml", "/p/left/weft.toml", "/p/right/weft.toml"),
		mkManifest("/p/left/weft.toml", "/p/base/weft.toml"),
		mkManifest("/p/right/weft.toml", "/p/base/weft.toml"),
		mkManifest("/p/base/weft.toml"),
	}
	idx := BuildIndex(manifests)
	topo := Toposort(BuildGraph(idx, manifests))

	if topo.Cyclic {
		t.Fatal("diamond reported cyclic")
	}
	if len(topo.Batches) != 3 {
		t.Fatalf("batches = %v", topo.Batches)
	}
	if len(topo.Batches[1]) != 2 {
		t.Errorf("middle batch = %v, want left and right together", topo.Batches[1])
	}
	last := idx.IDToPath[int(topo.Order[len(topo.Order)-1])]
	if last != "/p/top/weft.toml" {
		t.Errorf("dependent compiled before its dependencies: %v", order(t, idx, topo))
	}
}

func TestToposortCycle(t *testing.T) {
	manifests := []*Manifest{
		mkManifest("/p/a/weft.toml", "/p/b/weft.toml"),
		mkManifest("/p/b/weft.toml", "/p/a/weft.toml"),
		mkManifest("/p/c/weft.toml"),
	}
	idx := BuildIndex(manifests)
	topo := Toposort(BuildGraph(idx, manifests))

	if !topo.Cyclic {
		t.Fatal("cycle went unnoticed")
	}
	if len(topo.Cycles) != 2 {
		t.Errorf("cycles = %v", topo.Cycles)
	}
	if got := order(t, idx, topo); !slices.Equal(got, []string{"/p/c/weft.toml"}) {
		t.Errorf("independent library did not survive the cycle: %v", got)
	}
}

func TestToposortSelfDependency(t *testing.T) {
	manifests := []*Manifest{
		mkManifest("/p/a/weft.toml", "/p/a/weft.toml"),
	}
	idx := BuildIndex(manifests)
	topo := Toposort(BuildGraph(idx, manifests))

	if !topo.Cyclic || len(topo.Cycles) != 1 {
		t.Errorf("self-dependency not reported: cyclic=%v cycles=%v", topo.Cyclic, topo.Cycles)
	}
}

func TestGraphAbsentDependency(t *testing.T) {
	// b names a dependency whose manifest never loaded; the edge drops
	// and b still gets an order slot.
	manifests := []*Manifest{
		mkManifest("/p/b/weft.toml", "/p/a/weft.toml"),
	}
	idx := BuildIndex(manifests)
	g := BuildGraph(idx, manifests)
	topo := Toposort(g)

	if topo.Cyclic {
		t.Fatal("absent dependency reported as cycle")
	}
	if got := order(t, idx, topo); !slices.Equal(got, []string{"/p/b/weft.toml"}) {
		t.Errorf("order = %v", got)
	}
}

func TestGraphDuplicateDependencyEntries(t *testing.T) {
	manifests := []*Manifest{
		mkManifest("/p/b/weft.toml", "/p/a/weft.toml", "/p/a/weft.toml"),
		mkManifest("/p/a/weft.toml"),
	}
	idx := BuildIndex(manifests)
	g := BuildGraph(idx, manifests)
	if g.Indeg[int(idx.PathToID["/p/b/weft.toml"])] != 1 {
		t.Error("duplicate dependency entry counted twice")
	}
}

func TestBuildIndexDeterminism(t *testing.T) {
	a := []*Manifest{
		mkManifest("/p/z/weft.toml", "/p/a/weft.toml"),
		mkManifest("/p/a/weft.toml"),
	}
	b := []*Manifest{
		mkManifest("/p/a/weft.toml"),
		mkManifest("/p/z/weft.toml", "/p/a/weft.toml"),
	}
	if !slices.Equal(BuildIndex(a).IDToPath, BuildIndex(b).IDToPath) {
		t.Error("index depends on input order")
	}
}
