package project

import (
	"fmt"
	"slices"
	"sort"

	"fortio.org/safecast"
)

type LibraryID uint32

// Index assigns dense IDs to manifest paths. Paths are sorted first so
// IDs, and everything ordered by them, stay deterministic.
type Index struct {
	PathToID map[string]LibraryID
	IDToPath []string
}

// BuildIndex collects every manifest path and every dependency path it
// names, including dependencies that failed to load.
func BuildIndex(manifests []*Manifest) Index {
	uniq := make(map[string]struct{}, len(manifests))
	for _, m := range manifests {
		if m == nil {
			continue
		}
		uniq[m.Path] = struct{}{}
		for _, dep := range m.Deps {
			uniq[dep] = struct{}{}
		}
	}

	paths := make([]string, 0, len(uniq))
	for path := range uniq {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	pathToID := make(map[string]LibraryID, len(paths))
	for i, path := range paths {
		pathToID[path] = LibraryID(i)
	}
	return Index{PathToID: pathToID, IDToPath: paths}
}

// Graph orders libraries so dependencies compile before dependents.
// Edges[dep] lists the libraries waiting on dep; Indeg counts how many
// dependencies a library still waits for.
type Graph struct {
	Edges   [][]LibraryID
	Indeg   []int
	Present []bool
}

// BuildGraph wires dependency edges between loaded manifests. Edges into
// absent manifests are dropped: their load failure is already reported
// and the dependent fails on its own when compilation reaches it.
func BuildGraph(idx Index, manifests []*Manifest) Graph {
	nodeCount := len(idx.IDToPath)
	g := Graph{
		Edges:   make([][]LibraryID, nodeCount),
		Indeg:   make([]int, nodeCount),
		Present: make([]bool, nodeCount),
	}
	for _, m := range manifests {
		if m == nil {
			continue
		}
		if id, ok := idx.PathToID[m.Path]; ok {
			g.Present[int(id)] = true
		}
	}

	for _, m := range manifests {
		if m == nil {
			continue
		}
		from := idx.PathToID[m.Path]
		seen := make(map[LibraryID]struct{}, len(m.Deps))
		for _, dep := range m.Deps {
			depID, ok := idx.PathToID[dep]
			if !ok || !g.Present[int(depID)] {
				continue
			}
			if _, dup := seen[depID]; dup {
				continue
			}
			seen[depID] = struct{}{}
			// A self-dependency becomes a one-node cycle the toposort
			// reports like any other.
			g.Edges[int(depID)] = append(g.Edges[int(depID)], from)
			g.Indeg[int(from)]++
		}
	}

	for from := range g.Edges {
		if len(g.Edges[from]) > 1 {
			slices.Sort(g.Edges[from])
		}
	}
	return g
}

// Topo is the compilation order. Batches groups libraries whose
// dependencies are all satisfied by earlier batches, so each batch can
// compile in parallel.
type Topo struct {
	Order   []LibraryID
	Batches [][]LibraryID
	Cyclic  bool
	Cycles  []LibraryID
}

// Toposort runs Kahn's algorithm over the dependency graph. Libraries
// left with unsatisfied dependencies at the end form the cycle set.
func Toposort(g Graph) *Topo {
	nodeCount := len(g.Edges)
	indeg := make([]int, len(g.Indeg))
	copy(indeg, g.Indeg)

	topo := &Topo{
		Order:   make([]LibraryID, 0, nodeCount),
		Batches: make([][]LibraryID, 0),
	}

	active := 0
	for i := range nodeCount {
		if g.Present[i] {
			active++
		}
	}

	current := make([]LibraryID, 0, nodeCount)
	for i := range nodeCount {
		if !g.Present[i] {
			continue
		}
		if indeg[i] == 0 {
			id, err := safecast.Conv[LibraryID](i)
			if err != nil {
				panic(fmt.Errorf("library id overflow: %w", err))
			}
			current = append(current, id)
		}
	}
	slices.Sort(current)

	visited := 0
	for len(current) > 0 {
		batch := make([]LibraryID, len(current))
		copy(batch, current)
		topo.Batches = append(topo.Batches, batch)

		next := make([]LibraryID, 0)
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			visited++
			for _, to := range g.Edges[int(id)] {
				if !g.Present[int(to)] {
					continue
				}
				indeg[int(to)]--
				if indeg[int(to)] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if visited != active {
		topo.Cyclic = true
		for i := range nodeCount {
			if !g.Present[i] {
				continue
			}
			if indeg[i] > 0 {
				id, err := safecast.Conv[LibraryID](i)
				if err != nil {
					panic(fmt.Errorf("library id overflow: %w", err))
				}
				topo.Cycles = append(topo.Cycles, id)
			}
		}
		slices.Sort(topo.Cycles)
	}

	return topo
}
