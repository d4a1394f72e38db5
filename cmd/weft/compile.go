package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"weft/internal/declfile"
	"weft/internal/diag"
	"weft/internal/diagfmt"
	"weft/internal/driver"
	"weft/internal/sema"
	"weft/internal/source"
	"weft/internal/trace"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] [manifest|graphs...]",
	Short: "Compile a weft project into library artifacts",
	Long: "Compile declaration graphs into .weftir artifacts using weft.toml as the project definition, " +
		"or compile loose *.weft.json graph files directly.",
	Args: cobra.ArbitraryArgs,
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().Int("jobs", 0, "max parallel workers for graph loading (0=auto)")
	compileCmd.Flags().String("out", "", "override the artifact output directory")
	compileCmd.Flags().Bool("json", false, "emit diagnostics as JSON")
	compileCmd.Flags().String("ui", "auto", "progress user interface (auto|on|off)")
	compileCmd.Flags().Bool("no-cache", false, "recompile every library even when digests match")
	compileCmd.Flags().Bool("with-notes", true, "include diagnostic notes in output")
	compileCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
}

// renderOptions carry the diagnostic output shape shared by both compile
// modes.
type renderOptions struct {
	json      bool
	withNotes bool
	fullPath  bool
	useColor  bool
}

func runCompile(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic(cmd)

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	outDir, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to get out flag: %w", err)
	}
	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to get json flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}

	uiModeValue, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	graphArgs, manifestArg, err := splitCompileArgs(args)
	if err != nil {
		return err
	}
	if maxDiagnostics <= 0 {
		maxDiagnostics = driver.DefaultMaxDiagnostics
	}

	render := renderOptions{
		json:      jsonOut,
		withNotes: withNotes,
		fullPath:  fullPath,
		useColor:  colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stderr)),
	}

	traceCleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer traceCleanup()
	profCleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer profCleanup()

	if len(graphArgs) > 0 {
		return compileLooseGraphs(cmd, graphArgs, looseOptions{
			outDir:         outDir,
			maxDiagnostics: maxDiagnostics,
			quiet:          quiet || jsonOut,
			render:         render,
		})
	}
	return compileProject(cmd, manifestArg, projectOptions{
		jobs:           jobs,
		outDir:         outDir,
		noCache:        noCache,
		maxDiagnostics: maxDiagnostics,
		quiet:          quiet || jsonOut,
		showTimings:    showTimings,
		useTUI:         shouldUseTUI(uiModeValue) && !jsonOut,
		render:         render,
	})
}

// splitCompileArgs separates loose graph files from the manifest argument.
// The two modes never mix: either everything is a *.weft.json file or a
// single manifest path names the project.
func splitCompileArgs(args []string) (graphs []string, manifest string, err error) {
	for _, arg := range args {
		if strings.HasSuffix(arg, ".weft.json") {
			graphs = append(graphs, arg)
			continue
		}
		if manifest != "" {
			return nil, "", fmt.Errorf("at most one manifest argument is allowed, got %q and %q", manifest, arg)
		}
		manifest = arg
	}
	if len(graphs) > 0 && manifest != "" {
		return nil, "", errors.New("cannot mix graph files and a manifest argument")
	}
	return graphs, manifest, nil
}

type projectOptions struct {
	jobs           int
	outDir         string
	noCache        bool
	maxDiagnostics int
	quiet          bool
	showTimings    bool
	useTUI         bool
	render         renderOptions
}

func compileProject(cmd *cobra.Command, manifestArg string, opts projectOptions) error {
	manifestPath, err := resolveManifestPath(manifestArg)
	if err != nil {
		return err
	}

	req := driver.Request{
		Manifest:       manifestPath,
		Jobs:           opts.jobs,
		NoCache:        opts.noCache,
		OutDir:         opts.outDir,
		MaxDiagnostics: opts.maxDiagnostics,
	}

	timings := newStageTimings()
	var outcome *driver.Outcome
	if opts.useTUI {
		if libraries := collectLibraryNames(manifestPath); len(libraries) > 0 {
			outcome, err = runCompileWithUI(cmd.Context(), "weft compile", libraries, req, timings)
			if err != nil {
				return err
			}
		}
	}
	if outcome == nil {
		req.Events = timings
		outcome, err = driver.Compile(cmd.Context(), req)
		if err != nil {
			return err
		}
	}

	if err := renderDiagnostics(os.Stderr, outcome.FileSet, outcome.Diagnostics(), opts.render); err != nil {
		return err
	}
	if !opts.quiet {
		printBuildSummary(os.Stdout, filepath.Dir(manifestPath), outcome)
	}
	if opts.showTimings {
		printStageTimings(os.Stdout, timings)
	}
	if outcome.HasErrors() {
		return silentExit(cmd)
	}
	return nil
}

type looseOptions struct {
	outDir         string
	maxDiagnostics int
	quiet          bool
	render         renderOptions
}

// compileLooseGraphs builds one library straight from graph files, no
// manifest involved. All files must name the same library; an artifact is
// written only when --out is set and the library is clean.
func compileLooseGraphs(cmd *cobra.Command, paths []string, opts looseOptions) error {
	fs := source.NewFileSet()
	bag := diag.NewBag(opts.maxDiagnostics)
	reporter := diag.BagReporter{Bag: bag}

	graphs := make([]declfile.Graph, 0, len(paths))
	for _, path := range paths {
		file, err := fs.Load(path)
		if err != nil {
			diag.ReportError(reporter, diag.LoadRead, source.Span{},
				fmt.Sprintf("cannot read '%s': %v", path, err)).Emit()
			continue
		}
		graphs = append(graphs, declfile.Decode(fs, file, reporter))
	}

	res := declfile.Build(graphs, declfile.Options{Reporter: reporter})
	var artifact string
	if res.Library != nil {
		compiled := sema.Compile(res.Library, sema.Options{
			Reporter: reporter,
			Tracer:   trace.FromContext(cmd.Context()),
		})
		if opts.outDir != "" && !bag.HasErrors() {
			artifact = filepath.Join(opts.outDir, res.Library.Name+driver.ArtifactExt)
			if err := driver.WriteArtifact(artifact, driver.BuildArtifact(res.Library, compiled.Space)); err != nil {
				return err
			}
		}
	}

	if err := renderDiagnostics(os.Stderr, fs, bag, opts.render); err != nil {
		return err
	}
	if artifact != "" && !opts.quiet {
		fmt.Fprintf(os.Stdout, "built %s (%s)\n", res.Library.Name, filepath.ToSlash(artifact))
	}
	if bag.HasErrors() {
		return silentExit(cmd)
	}
	return nil
}

// renderDiagnostics sorts the bag and writes it in the requested shape.
// JSON always writes an envelope so tooling sees the empty case; pretty
// output stays silent when there is nothing to say.
func renderDiagnostics(w io.Writer, fs *source.FileSet, bag *diag.Bag, opts renderOptions) error {
	bag.Sort()
	pathMode := diagfmt.PathModeAuto
	if opts.fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	if opts.json {
		return diagfmt.WriteJSON(w, fs, bag, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     opts.withNotes,
		})
	}
	if bag.Len() == 0 {
		return nil
	}
	diagfmt.WritePretty(w, fs, bag, diagfmt.PrettyOpts{
		Color:     opts.useColor,
		Context:   2,
		PathMode:  pathMode,
		ShowNotes: opts.withNotes,
	})
	return nil
}

// printBuildSummary lists every artifact the build produced or replayed.
// Failed libraries are absent: their story is in the diagnostics.
func printBuildSummary(out io.Writer, root string, outcome *driver.Outcome) {
	for i := range outcome.Results {
		r := &outcome.Results[i]
		if r.Artifact == "" {
			continue
		}
		verb := "built"
		if r.Cached {
			verb = "cached"
		}
		fmt.Fprintf(out, "%s %s (%s)\n", verb, r.Name, formatPathForOutput(root, r.Artifact))
	}
}

// silentExit turns diagnostic failure into a non-zero exit without cobra
// repeating usage or an error line: everything was already rendered.
func silentExit(cmd *cobra.Command) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return errors.New("")
}
