// Package driver runs whole builds. It loads the manifest graph, orders
// libraries so dependencies compile before dependents, loads and compiles
// each library's declaration graphs and writes one artifact per library.
// Graph files are read and decoded in parallel; compilation itself runs
// in dependency order over shared state.
package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"weft/internal/ast"
	"weft/internal/declfile"
	"weft/internal/diag"
	"weft/internal/project"
	"weft/internal/sema"
	"weft/internal/source"
	"weft/internal/trace"
	"weft/internal/types"
)

// DefaultMaxDiagnostics caps a diagnostic bag when the request does not.
const DefaultMaxDiagnostics = 256

// Request describes one build.
type Request struct {
	// Manifest is the path of the root library's weft.toml.
	Manifest string
	// Jobs caps parallel graph reading and decoding. Zero or negative
	// uses one worker per CPU.
	Jobs int
	// NoCache rebuilds every artifact even when its digest matches.
	NoCache bool
	// OutDir overrides every manifest's output directory when set.
	OutDir string
	// MaxDiagnostics caps each bag; zero applies DefaultMaxDiagnostics.
	MaxDiagnostics int
	// Events receives stage events; nil discards them. Events are
	// emitted from one goroutine, so sinks need no locking.
	Events Sink
}

// LibraryResult is the outcome for one library.
type LibraryResult struct {
	Name     string
	Manifest string
	// Library is the compiled declaration graph, nil when no graph
	// file could be built.
	Library *ast.Library
	Bag     *diag.Bag
	// Digest identifies the inputs: manifest, graphs and dependency
	// digests. Zero when an input could not be hashed.
	Digest project.Digest
	// Artifact is the emitted (or replayed) artifact path, empty when
	// the library failed.
	Artifact string
	Cached   bool
	// Failed is set when the library's own bag has errors.
	Failed bool
}

// Outcome of a build. Results are in dependency order, dependencies
// before dependents; libraries on a manifest cycle have no result.
type Outcome struct {
	FileSet *source.FileSet
	// Bag holds project-level diagnostics: manifest loading and cycles.
	Bag     *diag.Bag
	Results []LibraryResult
	Cyclic  bool
}

// HasErrors reports whether any bag in the outcome carries an error.
func (o *Outcome) HasErrors() bool {
	if o.Bag.HasErrors() {
		return true
	}
	for i := range o.Results {
		if o.Results[i].Bag.HasErrors() {
			return true
		}
	}
	return false
}

// Diagnostics merges the project bag and every library bag, in build
// order, into one bag for rendering.
func (o *Outcome) Diagnostics() *diag.Bag {
	total := o.Bag.Len()
	for i := range o.Results {
		total += o.Results[i].Bag.Len()
	}
	merged := diag.NewBag(total)
	merged.Merge(o.Bag)
	for i := range o.Results {
		merged.Merge(o.Results[i].Bag)
	}
	return merged
}

// unit carries one library through the build phases. During the parallel
// phases each worker touches only its own unit.
type unit struct {
	manifest *project.Manifest
	bag      *diag.Bag

	graphs  [][]byte
	readErr []error
	files   []source.FileID
	decoded []declfile.Graph

	content  project.Digest
	digest   project.Digest
	digestOK bool

	library  *ast.Library
	artifact string
	cached   bool
}

// Compile runs a full build. The returned error covers operational
// failures, cancellation included; everything about the code being
// compiled is in the outcome's bags.
func Compile(ctx context.Context, req Request) (*Outcome, error) {
	maxDiags := req.MaxDiagnostics
	if maxDiags <= 0 {
		maxDiags = DefaultMaxDiagnostics
	}
	events := req.Events
	if events == nil {
		events = nopSink{}
	}
	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	out := &Outcome{
		FileSet: source.NewFileSet(),
		Bag:     diag.NewBag(maxDiags),
	}
	reporter := diag.BagReporter{Bag: out.Bag}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "compile", 0)
	span.WithExtra("manifest", req.Manifest)
	defer func() {
		span.End(fmt.Sprintf("libraries=%d", len(out.Results)))
	}()

	manifests := loadManifests(req.Manifest, reporter)
	if len(manifests) == 0 {
		return out, nil
	}
	out.FileSet.SetBaseDir(manifests[0].Dir)

	idx := project.BuildIndex(manifests)
	graph := project.BuildGraph(idx, manifests)
	topo := project.Toposort(graph)
	out.Cyclic = topo.Cyclic
	reportCycles(reporter, idx, topo)

	byID := make([]*project.Manifest, len(idx.IDToPath))
	for _, m := range manifests {
		byID[idx.PathToID[m.Path]] = m
	}
	units := make([]*unit, len(byID))
	for _, id := range topo.Order {
		units[id] = &unit{
			manifest: byID[id],
			bag:      diag.NewBag(maxDiags),
		}
	}

	readSpan := trace.Begin(tracer, trace.ScopeStage, "read_graphs", span.ID())
	err := readUnits(ctx, units, topo.Order, jobs)
	readSpan.End("")
	if err != nil {
		return out, err
	}
	decodeSpan := trace.Begin(tracer, trace.ScopeStage, "decode_graphs", span.ID())
	registerFiles(out.FileSet, units, topo.Order)
	err = decodeUnits(ctx, out.FileSet, units, topo.Order, jobs)
	decodeSpan.End("")
	if err != nil {
		return out, err
	}

	b := build{
		req:      req,
		events:   events,
		tracer:   tracer,
		parent:   span.ID(),
		fs:       out.FileSet,
		strings:  source.NewInterner(),
		space:    types.NewSpace(),
		idx:      idx,
		units:    units,
		caches:   make(map[string]*Cache),
		reporter: reporter,
	}
	b.root = ast.NewRootLibrary(b.strings)

	for _, id := range topo.Order {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		out.Results = append(out.Results, b.compileUnit(units[id]))
	}
	return out, nil
}

// readUnits pulls every graph file into memory and hashes the library's
// inputs, one worker per library.
func readUnits(ctx context.Context, units []*unit, order []project.LibraryID, jobs int) error {
	if len(order) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(order)))
	for _, id := range order {
		u := units[id]
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			m := u.manifest
			u.graphs = make([][]byte, len(m.Graphs))
			u.readErr = make([]error, len(m.Graphs))
			for i, path := range m.Graphs {
				u.graphs[i], u.readErr[i] = os.ReadFile(path) // #nosec G304 -- paths come from the manifest
			}
			if d, err := m.ContentDigest(); err == nil {
				u.content = d
				u.digestOK = true
			}
			return nil
		})
	}
	return g.Wait()
}

// registerFiles moves graph contents into the file set so spans resolve,
// and reports files that could not be read. Single-threaded: the file
// set is append-only but not safe for concurrent writers.
func registerFiles(fs *source.FileSet, units []*unit, order []project.LibraryID) {
	for _, id := range order {
		u := units[id]
		reporter := diag.BagReporter{Bag: u.bag}
		u.files = make([]source.FileID, len(u.graphs))
		for i, content := range u.graphs {
			if err := u.readErr[i]; err != nil {
				diag.ReportError(reporter, diag.LoadRead, source.Span{},
					fmt.Sprintf("cannot read '%s': %v", u.manifest.Graphs[i], err)).Emit()
				continue
			}
			u.files[i] = fs.AddVirtual(u.manifest.Graphs[i], content)
		}
		u.graphs = nil
	}
}

// decodeUnits parses graph documents, one worker per library. The file
// set is read-only here and each worker writes only its own unit.
func decodeUnits(ctx context.Context, fs *source.FileSet, units []*unit, order []project.LibraryID, jobs int) error {
	if len(order) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(order)))
	for _, id := range order {
		u := units[id]
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			reporter := diag.BagReporter{Bag: u.bag}
			u.decoded = make([]declfile.Graph, 0, len(u.files))
			for _, file := range u.files {
				if file == 0 {
					continue
				}
				u.decoded = append(u.decoded, declfile.Decode(fs, file, reporter))
			}
			return nil
		})
	}
	return g.Wait()
}

// build is the sequential tail of a run: linking, compilation and
// artifact emission in dependency order.
type build struct {
	req      Request
	events   Sink
	tracer   trace.Tracer
	parent   uint64
	fs       *source.FileSet
	strings  *source.Interner
	root     *ast.Library
	space    *types.Space
	idx      project.Index
	units    []*unit
	caches   map[string]*Cache
	reporter diag.Reporter
}

func (b *build) compileUnit(u *unit) LibraryResult {
	m := u.manifest
	reporter := diag.BagReporter{Bag: u.bag}
	libSpan := trace.Begin(b.tracer, trace.ScopeLibrary, "library:"+m.Name, b.parent)

	deps, depDigests, depsHashed, depFailed := b.dependencies(u)

	start := time.Now()
	b.events.Emit(Event{Library: m.Name, Stage: StageLoad, Status: StatusStart})
	stage := trace.Begin(b.tracer, trace.ScopeStage, string(StageLoad), libSpan.ID())
	res := declfile.Build(u.decoded, declfile.Options{
		Reporter: reporter,
		Strings:  b.strings,
		Root:     b.root,
		Deps:     deps,
	})
	u.library = res.Library
	u.decoded = nil
	if u.library != nil && u.library.Name != m.Name {
		diag.ReportError(reporter, diag.ProjectManifest, u.library.Span,
			fmt.Sprintf("manifest declares library '%s' but the graphs build '%s'", m.Name, u.library.Name)).Emit()
	}
	loadStatus := StatusOK
	if u.library == nil || u.bag.HasErrors() {
		loadStatus = StatusFail
	}
	stage.End(string(loadStatus))
	b.events.Emit(Event{Library: m.Name, Stage: StageLoad, Status: loadStatus, Elapsed: time.Since(start)})

	if u.digestOK && depsHashed {
		u.digest = project.Combine(u.content, depDigests...)
	} else {
		u.digestOK = false
	}

	if u.library != nil {
		start = time.Now()
		b.events.Emit(Event{Library: m.Name, Stage: StageCompile, Status: StatusStart})
		stage = trace.Begin(b.tracer, trace.ScopeStage, string(StageCompile), libSpan.ID())
		before := u.bag.CountBySeverity(diag.SevError)
		sema.Compile(u.library, sema.Options{Reporter: reporter, Space: b.space, Tracer: b.tracer})
		status := StatusOK
		if u.bag.CountBySeverity(diag.SevError) > before {
			status = StatusFail
		}
		stage.End(string(status))
		b.events.Emit(Event{Library: m.Name, Stage: StageCompile, Status: status, Elapsed: time.Since(start)})
	}

	b.emitUnit(u, depFailed, libSpan.ID())

	result := LibraryResult{
		Name:     m.Name,
		Manifest: m.Path,
		Library:  u.library,
		Bag:      u.bag,
		Digest:   u.digest,
		Artifact: u.artifact,
		Cached:   u.cached,
		Failed:   u.bag.HasErrors(),
	}
	switch {
	case result.Failed:
		libSpan.End("failed")
	case result.Cached:
		libSpan.End("cached")
	default:
		libSpan.End("ok")
	}
	return result
}

// dependencies collects a unit's compiled dependencies in manifest
// order. Dependencies that never produced a unit, absent manifests and
// cycle members, make the digest unusable.
func (b *build) dependencies(u *unit) (deps []*ast.Library, digests []project.Digest, hashed bool, failed bool) {
	hashed = true
	for _, depPath := range u.manifest.Deps {
		id, ok := b.idx.PathToID[depPath]
		if !ok {
			hashed = false
			continue
		}
		du := b.units[id]
		if du == nil {
			hashed = false
			continue
		}
		if du.library != nil {
			deps = append(deps, du.library)
		}
		if du.bag.HasErrors() {
			failed = true
		}
		if !du.digestOK {
			hashed = false
			continue
		}
		digests = append(digests, du.digest)
	}
	return deps, digests, hashed, failed
}

// emitUnit writes or replays the library's artifact. A library with its
// own errors emits nothing; one whose dependency failed emits nothing
// either, since its resolved view of the dependency is incomplete.
func (b *build) emitUnit(u *unit, depFailed bool, parent uint64) {
	m := u.manifest
	reporter := diag.BagReporter{Bag: u.bag}
	stage := trace.Begin(b.tracer, trace.ScopeStage, string(StageEmit), parent)

	if u.library == nil || u.bag.HasErrors() {
		stage.End(string(StatusFail))
		b.events.Emit(Event{Library: m.Name, Stage: StageEmit, Status: StatusFail})
		return
	}
	if depFailed {
		diag.ReportInfo(reporter, diag.ProjectInfo, u.library.Span,
			fmt.Sprintf("no artifact for '%s': a dependency has errors", m.Name)).Emit()
		stage.End(string(StatusFail))
		b.events.Emit(Event{Library: m.Name, Stage: StageEmit, Status: StatusFail})
		return
	}

	outDir := m.OutDir
	if b.req.OutDir != "" {
		outDir = b.req.OutDir
	}
	path := filepath.Join(outDir, m.Name+ArtifactExt)
	cache := b.cacheFor(outDir)

	start := time.Now()
	if !b.req.NoCache && u.digestOK {
		if hit, ok := cache.Fresh(m.Name, u.digest); ok {
			u.artifact = hit
			u.cached = true
			stage.End(string(StatusCached))
			b.events.Emit(Event{Library: m.Name, Stage: StageEmit, Status: StatusCached, Elapsed: time.Since(start)})
			return
		}
	}

	art := BuildArtifact(u.library, b.space)
	if err := WriteArtifact(path, art); err != nil {
		diag.ReportError(reporter, diag.IOWrite, source.Span{},
			fmt.Sprintf("cannot write artifact '%s': %v", path, err)).Emit()
		stage.End(string(StatusFail))
		b.events.Emit(Event{Library: m.Name, Stage: StageEmit, Status: StatusFail, Elapsed: time.Since(start), Err: err})
		return
	}
	u.artifact = path
	if u.digestOK {
		if err := cache.Record(m.Name, u.digest, path); err != nil {
			diag.ReportWarning(reporter, diag.IOCache, source.Span{},
				fmt.Sprintf("cannot stamp artifact '%s': %v", path, err)).Emit()
		}
	}
	stage.End(string(StatusOK))
	b.events.Emit(Event{Library: m.Name, Stage: StageEmit, Status: StatusOK, Elapsed: time.Since(start)})
}

// cacheFor opens the stamp cache for an output directory once. A cache
// that cannot open degrades to rebuilding, reported as a warning.
func (b *build) cacheFor(outDir string) *Cache {
	if c, ok := b.caches[outDir]; ok {
		return c
	}
	c, err := OpenCache(outDir)
	if err != nil {
		diag.ReportWarning(b.reporter, diag.IOCache, source.Span{},
			fmt.Sprintf("cannot open stamp cache under '%s': %v", outDir, err)).Emit()
		c = nil
	}
	b.caches[outDir] = c
	return c
}
