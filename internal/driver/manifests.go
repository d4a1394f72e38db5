package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"weft/internal/diag"
	"weft/internal/project"
	"weft/internal/source"
)

// loadManifests walks the manifest graph depth-first from the root.
// Broken manifests are reported and dropped; their dependents still
// compile and fail on the names the missing library would have provided.
// Manifest diagnostics carry no span, there is no graph file to point at.
func loadManifests(rootPath string, reporter diag.Reporter) []*project.Manifest {
	abs, err := filepath.Abs(rootPath)
	if err != nil {
		diag.ReportError(reporter, diag.ProjectManifest, source.Span{},
			fmt.Sprintf("%s: failed to resolve path: %v", rootPath, err)).Emit()
		return nil
	}

	var out []*project.Manifest
	seen := make(map[string]struct{})
	var visit func(path string)
	visit = func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		m, err := project.LoadManifest(path)
		if err != nil {
			reportManifestError(reporter, path, err)
			return
		}
		out = append(out, m)
		for _, dep := range m.Deps {
			visit(dep)
		}
	}
	visit(abs)
	return out
}

func reportManifestError(reporter diag.Reporter, path string, err error) {
	var unknown *project.UnknownKeyError
	switch {
	case errors.Is(err, os.ErrNotExist):
		diag.ReportError(reporter, diag.ProjectMissingManifest, source.Span{},
			fmt.Sprintf("cannot find manifest '%s'", path)).Emit()
	case errors.As(err, &unknown):
		diag.ReportError(reporter, diag.ProjectUnknownKey, source.Span{},
			unknown.Error()).Emit()
	default:
		diag.ReportError(reporter, diag.ProjectManifest, source.Span{},
			err.Error()).Emit()
	}
}

// reportCycles names every dependency cycle's members so the author sees
// which manifests to untangle. Cycle members never compile.
func reportCycles(reporter diag.Reporter, idx project.Index, topo *project.Topo) {
	if !topo.Cyclic {
		return
	}
	names := make([]string, 0, len(topo.Cycles))
	for _, id := range topo.Cycles {
		names = append(names, idx.IDToPath[int(id)])
	}
	diag.ReportError(reporter, diag.ProjectCycle, source.Span{},
		"dependency cycle between manifests: "+strings.Join(names, ", ")).Emit()
}
