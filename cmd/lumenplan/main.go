// Command lumenplan is the thin front-end that wires discovery, solving,
// planning, lowering and graph emission into one pipeline invocation: read
// the root module's manifest, run every phase in order, then either print
// the resulting action graph (dry run) or log a one-line summary of it. It
// does not execute any action.
//
// The five phases themselves (src/discover, src/classify, src/solve,
// src/plan, src/layout, src/lower, src/graph) carry all of the actual
// logic; this command only resolves a UserIntent from flags, reads project
// defaults, and prints the result.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/thought-machine/go-flags"

	"github.com/lumenlang/lumenbuild/src/cli/logging"
	"github.com/lumenlang/lumenbuild/src/core"
	"github.com/lumenlang/lumenbuild/src/discover"
	"github.com/lumenlang/lumenbuild/src/graph"
	"github.com/lumenlang/lumenbuild/src/lower"
	"github.com/lumenlang/lumenbuild/src/plan"
	"github.com/lumenlang/lumenbuild/src/solve"
)

var log = logging.Log

var opts struct {
	Usage string `usage:"lumenplan discovers, solves, plans, lowers and emits the action graph for a Lumen module tree."`

	RepoRoot     string        `short:"r" long:"repo_root" description:"Root of the module tree." default:"."`
	Target       string        `short:"t" long:"target" description:"Package FQN to build, check, test, bundle or document."`
	Intent       string        `short:"i" long:"intent" description:"One of build, check, test, bundle, doc, generate-mbti." default:"build"`
	Backend      core.Backend  `short:"b" long:"backend" description:"Code-generation backend." default:"wasm-gc"`
	OptLevel     core.OptLevel `short:"O" long:"opt_level" description:"debug or release." default:"release"`
	StdlibPath   string        `long:"std_path" description:"Path to the standard library." env:"LUMEN_STD_PATH"`
	RuntimeCPath string        `long:"runtime_c" description:"Path to the native runtime's C source." env:"LUMEN_RUNTIME_C"`
	TargetDir    string        `long:"target_dir" description:"Root of the build output tree." default:"target"`
	DryRun       bool          `long:"dry_run" description:"Print the emitted action graph instead of logging a summary."`
	Verbosity    string        `short:"v" long:"verbosity" description:"Log verbosity: critical, error, warning, notice, info or debug." default:"warning"`
}

func intentKind(s string) (core.IntentKind, error) {
	switch s {
	case "build":
		return core.IntentBuild, nil
	case "check":
		return core.IntentCheck, nil
	case "test":
		return core.IntentTest, nil
	case "bundle":
		return core.IntentBundle, nil
	case "doc":
		return core.IntentDoc, nil
	case "generate-mbti":
		return core.IntentGenerateMbti, nil
	default:
		return 0, fmt.Errorf("unknown intent %q", s)
	}
}

func readRootManifest(repoRoot string) (core.ModuleManifest, error) {
	path := filepath.Join(repoRoot, discover.ModuleManifestName)
	data, err := os.ReadFile(path)
	if err != nil {
		return core.ModuleManifest{}, err
	}
	var m core.ModuleManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return core.ModuleManifest{}, &core.ManifestError{Path: path, Err: err}
	}
	return m, nil
}

func run() error {
	level, err := logging.ParseLevel(opts.Verbosity)
	if err != nil {
		return err
	}
	logging.InitVerbosity(level)

	if opts.Target == "" {
		return fmt.Errorf("--target is required")
	}

	manifest, err := readRootManifest(opts.RepoRoot)
	if err != nil {
		return fmt.Errorf("reading %s: %w", discover.ModuleManifestName, err)
	}

	base := core.BuildOptions{
		Backend:       opts.Backend,
		OptLevel:      opts.OptLevel,
		RunMode:       runModeFor(opts.Intent),
		StdlibPath:    opts.StdlibPath,
		RuntimeCPath:  opts.RuntimeCPath,
		TargetDirRoot: opts.TargetDir,
		Compilers:     core.CompilerPaths{DefaultCC: "cc"},
		OS:            goosName(),
	}
	buildOpts, err := core.ReadDefaultOptions(opts.RepoRoot, base)
	if err != nil {
		return err
	}

	if err := core.AcquireRepoLock(buildOpts.TargetDirRoot); err != nil {
		return fmt.Errorf("acquiring build lock: %w", err)
	}
	defer func() {
		if err := core.ReleaseRepoLock(buildOpts.TargetDirRoot); err != nil {
			log.Warning("releasing build lock: %s", err)
		}
	}()

	mod := core.ModuleSource{Name: core.ParseModuleName(manifest.Name), Origin: core.Origin{Kind: core.OriginLocal}}
	modules := []discover.ResolvedModule{{Source: mod, Root: opts.RepoRoot}}
	if buildOpts.StdlibPath != "" {
		stdlib := core.ModuleSource{Name: core.ParseModuleName("core"), Origin: core.Origin{Kind: core.OriginStdlib}}
		modules = append(modules, discover.ResolvedModule{Source: stdlib, Root: buildOpts.StdlibPath})
	}
	disc, err := discover.Discover(modules)
	if err != nil {
		return fmt.Errorf("discovery: %w", err)
	}

	sol, err := solve.Solve(disc)
	if err != nil {
		return fmt.Errorf("solving: %w", err)
	}

	fqn, err := resolveTargetFQN(disc, opts.Target)
	if err != nil {
		return err
	}

	kind, err := intentKind(opts.Intent)
	if err != nil {
		return err
	}

	planGraph, err := plan.Plan(disc, sol, []core.UserIntent{{Kind: kind, Target: fqn}}, buildOpts)
	if err != nil {
		return fmt.Errorf("planning: %w", err)
	}

	lowered, err := lower.Lower(disc, sol, planGraph, buildOpts)
	if err != nil {
		return fmt.Errorf("lowering: %w", err)
	}

	actionGraph, err := graph.Emit(disc, planGraph, lowered, buildOpts)
	if err != nil {
		return fmt.Errorf("emitting action graph: %w", err)
	}

	if opts.DryRun {
		for _, a := range actionGraph.Actions {
			fmt.Printf("# %s\n%s\n", a.Label, a.Command)
		}
		return nil
	}

	log.Notice("emitted %d actions for %s (%s); wire an executor to actually run them", len(actionGraph.Actions), opts.Intent, fqn)
	return nil
}

// resolveTargetFQN re-derives the PackageFQN structure for a package the
// discoverer already found, rather than asking the caller to hand-construct
// a core.PackageFQN over the command line.
func resolveTargetFQN(disc *discover.Result, fqnString string) (core.PackageFQN, error) {
	id, ok := disc.PackageByFQN(fqnString)
	if !ok {
		return core.PackageFQN{}, fmt.Errorf("unknown package %q", fqnString)
	}
	return disc.Package(id).Fqn, nil
}

func runModeFor(intent string) core.RunMode {
	switch intent {
	case "check":
		return core.RunCheck
	case "test":
		return core.RunTest
	case "bundle":
		return core.RunBundle
	case "doc":
		return core.RunDoc
	default:
		return core.RunBuild
	}
}

func goosName() string {
	if v := os.Getenv("LUMENPLAN_OS"); v != "" {
		return v
	}
	return "linux"
}

func main() {
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		os.Exit(1)
	}
	if err := run(); err != nil {
		log.Error("%s", err)
		os.Exit(1)
	}
}
