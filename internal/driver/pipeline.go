// Package driver runs the whole check pipeline: load interchange trees,
// materialize the arenas, check, schedule monomorphization, and cache
// the outcome so unchanged inputs re-report without re-checking.
package driver

import (
	"context"
	"errors"
	"fmt"

	"github.com/FuelLabs/sway-sub019/internal/ast"
	"github.com/FuelLabs/sway-sub019/internal/astio"
	"github.com/FuelLabs/sway-sub019/internal/diag"
	"github.com/FuelLabs/sway-sub019/internal/mono"
	"github.com/FuelLabs/sway-sub019/internal/project"
	"github.com/FuelLabs/sway-sub019/internal/sema"
	"github.com/FuelLabs/sway-sub019/internal/source"
)

const defaultMaxDiagnostics = 200

// ErrInternal marks a run aborted by an internal-consistency
// diagnostic: the checker caught a compiler bug. The partial results
// are neither scheduled nor cached.
var ErrInternal = errors.New("internal consistency failure")

func internalFailure(pkg string, bag *diag.Bag) error {
	if !bag.HasInternal() {
		return nil
	}
	return fmt.Errorf("%s: %w", pkg, ErrInternal)
}

// Options configure one pipeline run.
type Options struct {
	// Package names the compilation for cache keying.
	Package string
	// TreePaths are the *.ast.json inputs.
	TreePaths []string
	// MaxDiagnostics caps the bag; 0 means the default cap.
	MaxDiagnostics int
	// Jobs bounds input-loading parallelism; 0 means GOMAXPROCS.
	Jobs int
	// Cache, when set, short-circuits runs whose inputs are unchanged.
	Cache *DiskCache
	// MonoMaxDepth bounds instantiation chains; 0 means the default.
	MonoMaxDepth int
	// Progress, when set, receives stage events; Run closes it on exit.
	Progress chan<- Event
}

// FromManifest derives run options from a loaded sway.toml.
func FromManifest(m *project.Manifest) Options {
	return Options{
		Package:        m.Config.Package.Name,
		TreePaths:      m.TreePaths(),
		MaxDiagnostics: m.Config.Check.MaxDiagnostics,
		Jobs:           m.Config.Check.Jobs,
	}
}

// Result is everything one run produced.
type Result struct {
	FileSet *source.FileSet
	Builder *ast.Builder
	Bag     *diag.Bag
	Modules []ast.ModuleID

	Sema     *sema.Result
	Insts    *mono.InstantiationMap
	Schedule *mono.Program

	// FromCache marks a run answered from the disk cache; Sema and
	// Schedule are nil then, Instances carries the cached count.
	FromCache bool
	Instances int
}

// Run executes the pipeline. Diagnostics land in Result.Bag; err covers
// infrastructure failures only (unreadable inputs, malformed trees).
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = defaultMaxDiagnostics
	}
	if opts.Progress != nil {
		defer close(opts.Progress)
	}
	if len(opts.TreePaths) == 0 {
		return nil, fmt.Errorf("no inputs: [package].trees is empty")
	}

	for _, p := range opts.TreePaths {
		emit(opts.Progress, p, StageLoad, StatusQueued)
	}
	loaded, err := loadTrees(ctx, opts.TreePaths, opts.Jobs)
	if err != nil {
		return nil, err
	}
	for _, lt := range loaded {
		emit(opts.Progress, lt.Path, StageLoad, StatusDone)
	}

	kind := uint8(0)
	if len(loaded) > 0 {
		if k, err := project.ParseProgramKind(loaded[0].Tree.Kind); err == nil {
			kind = uint8(k)
		}
	}
	key := runKey(opts.Package, kind, loaded)

	res := &Result{
		FileSet: source.NewFileSet(),
		Bag:     diag.NewBag(opts.MaxDiagnostics),
	}

	if opts.Cache != nil {
		var payload DiskPayload
		hit, err := opts.Cache.Get(key, &payload)
		if err != nil {
			return nil, fmt.Errorf("disk cache: %w", err)
		}
		if hit {
			registerSources(res.FileSet, loaded)
			replayDiags(payload.Diags, res.Bag, res.FileSet)
			res.FromCache = true
			res.Instances = payload.Instances
			return res, nil
		}
	}

	res.Builder = ast.NewBuilder(ast.Hints{}, nil)
	for i := range loaded {
		emit(opts.Progress, loaded[i].Path, StageDecode, StatusWorking)
		mod, err := astio.Decode(res.Builder, res.FileSet, &loaded[i].Tree)
		if err != nil {
			emit(opts.Progress, loaded[i].Path, StageDecode, StatusError)
			return nil, fmt.Errorf("%s: %w", loaded[i].Path, err)
		}
		emit(opts.Progress, loaded[i].Path, StageDecode, StatusDone)
		res.Modules = append(res.Modules, mod)
	}

	emit(opts.Progress, "", StageCheck, StatusWorking)
	insts := mono.NewInstantiationMap()
	semaRes := sema.Check(res.Builder, res.Modules, sema.Options{
		Reporter: diag.BagReporter{Bag: res.Bag},
		Recorder: mono.NewRecorder(insts),
	})
	res.Sema = &semaRes
	res.Insts = insts
	emit(opts.Progress, "", StageCheck, StatusDone)

	if err := internalFailure(opts.Package, res.Bag); err != nil {
		res.Bag.Sort()
		return res, err
	}

	// Scheduling feeds on well-typed instantiation records; after errors
	// the argument lists may hold sentinels.
	if !res.Bag.HasErrors() {
		emit(opts.Progress, "", StageMono, StatusWorking)
		res.Schedule = mono.Schedule(res.Sema, insts, mono.Options{
			MaxDepth: opts.MonoMaxDepth,
			Reporter: diag.BagReporter{Bag: res.Bag},
		})
		res.Instances = res.Schedule.Len()
		emit(opts.Progress, "", StageMono, StatusDone)
	}
	res.Bag.Sort()

	if opts.Cache != nil {
		payload := DiskPayload{
			Schema:    diskCacheSchemaVersion,
			Package:   opts.Package,
			Kind:      kind,
			Diags:     flattenDiags(res.Bag, res.FileSet),
			HadErrors: res.Bag.HasErrors(),
			Instances: res.Instances,
		}
		for _, lt := range loaded {
			payload.InputPaths = append(payload.InputPaths, lt.Path)
			payload.InputHashes = append(payload.InputHashes, lt.Digest)
		}
		if err := opts.Cache.Put(key, &payload); err != nil {
			return nil, fmt.Errorf("disk cache: %w", err)
		}
	}
	return res, nil
}

// registerSources adds every tree's embedded source so cached spans
// resolve to real lines.
func registerSources(fs *source.FileSet, loaded []loadedTree) {
	for i := range loaded {
		t := &loaded[i].Tree
		name := t.File
		if name == "" {
			name = t.Name + ".sw"
		}
		fs.AddVirtual(name, []byte(t.Source))
	}
}
