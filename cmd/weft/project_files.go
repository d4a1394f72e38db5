package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"weft/internal/project"
)

const noWeftTomlMessage = "no weft.toml found\nplease specify the manifest explicitly, e.g.:\n  weft compile path/to/weft.toml"

// resolveManifestPath turns the compile argument into a manifest path.
// No argument searches upward from the working directory; a directory
// argument must contain weft.toml itself.
func resolveManifestPath(arg string) (string, error) {
	if arg == "" {
		path, ok, err := project.FindManifest(".")
		if err != nil {
			return "", err
		}
		if !ok {
			return "", errors.New(noWeftTomlMessage)
		}
		return path, nil
	}

	info, err := os.Stat(arg)
	if err != nil {
		return "", fmt.Errorf("cannot stat %q: %w", arg, err)
	}
	if info.IsDir() {
		candidate := filepath.Join(arg, project.ManifestName)
		if _, err := os.Stat(candidate); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return "", fmt.Errorf("no %s in %s", project.ManifestName, arg)
			}
			return "", fmt.Errorf("cannot stat %q: %w", candidate, err)
		}
		return candidate, nil
	}
	return arg, nil
}

// collectLibraryNames pre-walks the manifest graph so the progress UI can
// list every library before the build starts. Load errors are left for
// the driver to report; the walk returns whatever it could see.
func collectLibraryNames(manifestPath string) []string {
	seenPath := make(map[string]bool)
	seenName := make(map[string]bool)
	queue := []string{manifestPath}
	var libraries []string
	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]
		if seenPath[path] {
			continue
		}
		seenPath[path] = true
		m, err := project.LoadManifest(path)
		if err != nil {
			continue
		}
		if !seenName[m.Name] {
			seenName[m.Name] = true
			libraries = append(libraries, m.Name)
		}
		queue = append(queue, m.Deps...)
	}
	return libraries
}

// formatPathForOutput renders path relative to root when it sits inside,
// keeping output stable no matter where the build ran from.
func formatPathForOutput(root, path string) string {
	if root == "" || path == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	if strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
