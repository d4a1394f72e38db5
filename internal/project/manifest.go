package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"

	"weft/internal/names"
)

// ManifestName is the file every weft library carries at its root.
const ManifestName = "weft.toml"

// DefaultOutDir is where artifacts land when [output].dir is absent.
const DefaultOutDir = "weft-out"

// Manifest is one parsed weft.toml. All paths are absolute; the loader
// resolves the manifest's relative entries against its own directory.
type Manifest struct {
	Path   string
	Dir    string
	Name   string
	Graphs []string
	Deps   []string
	OutDir string
}

var (
	// ErrLibrarySectionMissing indicates that [library] is missing.
	ErrLibrarySectionMissing = errors.New("missing [library]")
	// ErrLibraryNameMissing indicates that [library].name is missing.
	ErrLibraryNameMissing = errors.New("missing [library].name")
	// ErrNoGraphs indicates that [library].graphs is missing or empty.
	ErrNoGraphs = errors.New("missing [library].graphs")
)

// UnknownKeyError lists manifest keys the format does not define.
type UnknownKeyError struct {
	Path string
	Keys []string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("%s: unknown keys: %s", e.Path, strings.Join(e.Keys, ", "))
}

type manifestFile struct {
	Library struct {
		Name   string   `toml:"name"`
		Graphs []string `toml:"graphs"`
	} `toml:"library"`
	Deps struct {
		Manifests []string `toml:"manifests"`
	} `toml:"deps"`
	Output struct {
		Dir string `toml:"dir"`
	} `toml:"output"`
}

// LoadManifest parses a weft.toml. Keys outside the format surface as an
// UnknownKeyError so typos never silently drop configuration.
func LoadManifest(path string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve path: %w", path, err)
	}

	var cfg manifestFile
	meta, err := toml.DecodeFile(abs, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, &UnknownKeyError{Path: path, Keys: keys}
	}

	if !meta.IsDefined("library") {
		return nil, fmt.Errorf("%s: %w", path, ErrLibrarySectionMissing)
	}
	name := strings.TrimSpace(cfg.Library.Name)
	if !meta.IsDefined("library", "name") || name == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrLibraryNameMissing)
	}
	if !IsValidLibraryName(name) {
		return nil, fmt.Errorf("%s: invalid library name %q", path, name)
	}
	if len(cfg.Library.Graphs) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoGraphs)
	}

	dir := filepath.Dir(abs)
	m := &Manifest{
		Path: abs,
		Dir:  dir,
		Name: name,
	}
	for _, g := range cfg.Library.Graphs {
		resolved, err := resolveEntry(dir, g, "graph")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		m.Graphs = append(m.Graphs, resolved)
	}
	for _, d := range cfg.Deps.Manifests {
		resolved, err := resolveEntry(dir, d, "dependency manifest")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		m.Deps = append(m.Deps, resolved)
	}
	if meta.IsDefined("output", "dir") {
		resolved, err := resolveEntry(dir, cfg.Output.Dir, "output dir")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		m.OutDir = resolved
	} else {
		m.OutDir = filepath.Join(dir, DefaultOutDir)
	}
	return m, nil
}

// resolveEntry turns a manifest-relative path into an absolute one.
// Absolute entries are rejected so manifests stay relocatable.
func resolveEntry(dir, entry, what string) (string, error) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return "", fmt.Errorf("empty %s path", what)
	}
	if filepath.IsAbs(entry) || strings.HasPrefix(filepath.ToSlash(entry), "/") {
		return "", fmt.Errorf("%s path %q must be relative", what, entry)
	}
	return filepath.Clean(filepath.Join(dir, filepath.FromSlash(entry))), nil
}

// IsValidLibraryName accepts dotted identifiers like "acme.device". Every
// part starts with a letter and continues with letters, digits or
// underscores, ASCII only.
func IsValidLibraryName(name string) bool {
	parts := names.LibraryParts(name)
	if len(parts) == 0 {
		return false
	}
	for _, part := range parts {
		if !isValidIdent(part) {
			return false
		}
	}
	return true
}

func isValidIdent(part string) bool {
	if part == "" {
		return false
	}
	for i, r := range part {
		if r > unicode.MaxASCII {
			return false
		}
		if i == 0 && !unicode.IsLetter(r) {
			return false
		}
		if i > 0 && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
