package project

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ardnew/vibe/lang"
	"github.com/ardnew/vibe/log"
	"github.com/ardnew/vibe/pkg"
)

// Status is the outcome of one script of a build.
type Status int

const (
	StatusGenerated Status = iota
	StatusUnchanged
	StatusFailed
)

var statusNames = []string{"generated", "unchanged", "failed"}

// String returns the name of the status.
func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "status(" + strconv.Itoa(int(s)) + ")"
	}

	return statusNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// FileResult is the outcome of one script.
type FileResult struct {
	Script string `json:"script"           yaml:"script"`
	Class  string `json:"class"            yaml:"class"`
	Output string `json:"output,omitempty" yaml:"output,omitempty"`
	Status Status `json:"status"           yaml:"status"`
	Err    error  `json:"-"                yaml:"-"`
}

// Report summarizes a build.
type Report struct {
	Root       string        `json:"root"              yaml:"root"`
	Manifest   Manifest      `json:"manifest"          yaml:"manifest"`
	Descriptor Descriptor    `json:"descriptor"        yaml:"descriptor"`
	Files      []FileResult  `json:"files"             yaml:"files"`
	Removed    []string      `json:"removed,omitempty" yaml:"removed,omitempty"`
	Elapsed    time.Duration `json:"elapsed"           yaml:"elapsed"`
}

// Count returns the number of scripts with status s.
func (r Report) Count(s Status) int {
	n := 0

	for _, f := range r.Files {
		if f.Status == s {
			n++
		}
	}

	return n
}

// LogValue implements slog.LogValuer.
func (r Report) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("root", r.Root),
		slog.Int("scripts", len(r.Files)),
		slog.Int("generated", r.Count(StatusGenerated)),
		slog.Int("unchanged", r.Count(StatusUnchanged)),
		slog.Int("failed", r.Count(StatusFailed)),
		slog.Int("removed", len(r.Removed)),
		slog.Duration("elapsed", r.Elapsed),
	)
}

// builder holds the state of one build.
type builder struct {
	cfg        config
	root       string
	logger     log.Logger
	transpiler *lang.Transpiler
	cache      *Cache
	writer     Writer
	reuse      bool
}

// Build transpiles every script below root and writes one generated file
// per script.
//
// Scripts are transpiled concurrently, bounded by [WithJobs], and share one
// type cache. A failing script does not stop the others: it produces no
// output and its error joins the returned [pkg.Error] chain. Generated
// files of scripts that no longer exist are removed.
func Build(ctx context.Context, root string, opts ...Option) (Report, error) {
	start := time.Now()

	root, err := filepath.Abs(root)
	if err != nil {
		return Report{}, ErrDiscover.Wrap(err)
	}

	cfg := makeConfig(root, opts...)

	logger := cfg.logger
	if logger.Logger == nil {
		logger = log.FromContext(ctx)
	}

	logger = logger.With(slog.String("root", root))

	report := Report{Root: root}

	if report.Manifest, err = ReadManifest(root); err != nil {
		logger.DebugContext(ctx, "manifest ignored", slog.Any("error", err))
	}

	if report.Descriptor, err = LoadDescriptor(root); err != nil {
		logger.DebugContext(ctx, "descriptor ignored", slog.Any("error", err))
	}

	scripts, err := Discover(ctx, root)
	if err != nil {
		return report, err
	}

	oracleID, reuse := cfg.oracleIdentity()
	if !reuse {
		logger.DebugContext(ctx, "cache bypassed for opaque oracle",
			slog.String("oracle", fmt.Sprintf("%T", cfg.oracle)))
	}

	b := &builder{
		cfg:    cfg,
		root:   root,
		logger: logger,
		reuse:  reuse && !cfg.force,
		transpiler: lang.NewTranspiler(
			lang.WithLogger(logger),
			lang.WithOracle(cfg.typeOracle()),
			lang.WithPlatform(report.Descriptor.Platform()),
			lang.WithNamespace(cfg.namespace),
			lang.WithRuntime(cfg.runtime),
		),
		cache: OpenCache(ctx, cfg.outDir, CacheOptions{
			Namespace:     cfg.namespace,
			Entry:         report.Manifest.Main,
			Maui:          report.Descriptor.UseMaui,
			RootNamespace: report.Descriptor.RootNamespace,
			KnownTypes:    cfg.knownTypes,
			Oracle:        oracleID,
			Runtime:       [3]string{cfg.runtime.Node, cfg.runtime.Stage, cfg.runtime.Append},
		}),
		writer: Writer{Dir: cfg.outDir},
	}

	report.Files = b.run(ctx, scripts, report.Manifest)

	var errs pkg.Error

	for _, gone := range b.cache.Prune(scripts) {
		if err := b.writer.Remove(gone.Output); err != nil {
			errs = errs.Wrap(err)

			continue
		}

		report.Removed = append(report.Removed, gone.Output)
	}

	if err := b.cache.Save(ctx); err != nil {
		errs = errs.Wrap(err)
	}

	for _, f := range report.Files {
		errs = errs.Wrap(f.Err)
	}

	report.Elapsed = time.Since(start)

	logger.InfoContext(ctx, "build finished", slog.Any("report", report))

	return report, errs.Err()
}

// run transpiles scripts concurrently and returns their results in the
// order of scripts.
func (b *builder) run(ctx context.Context, scripts []string, m Manifest) []FileResult {
	results := make([]FileResult, len(scripts))
	owner := make(map[string]string, len(scripts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.jobs)

	for i, rel := range scripts {
		class := ClassName(rel, m)
		results[i] = FileResult{Script: rel, Class: class}

		if prev, ok := owner[class]; ok {
			results[i].Status = StatusFailed
			results[i].Err = fmt.Errorf("%s: %w", rel, ErrClassConflict.With(
				slog.String("class", class), slog.String("script", prev)))

			continue
		}

		owner[class] = rel
		entry := IsEntry(rel, m)

		g.Go(func() error {
			results[i] = b.file(gctx, results[i], entry)

			return nil
		})
	}

	_ = g.Wait()

	return results
}

// file transpiles and writes one script.
func (b *builder) file(ctx context.Context, res FileResult, entry bool) FileResult {
	logger := b.logger.With(slog.String("script", res.Script))

	fail := func(err error) FileResult {
		b.cache.Forget(res.Script)
		logger.WarnContext(ctx, "script failed", slog.Any("error", err))

		res.Status = StatusFailed
		res.Err = fmt.Errorf("%s: %w", res.Script, err)

		return res
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	f, err := os.Open(filepath.Join(b.root, filepath.FromSlash(res.Script)))
	if err != nil {
		return fail(ErrReadScript.Wrap(err))
	}

	key, data, err := b.cache.Key(f)
	f.Close()

	if err != nil {
		return fail(ErrReadScript.Wrap(err))
	}

	if b.reuse && b.cache.Fresh(res.Script, key) {
		res.Status = StatusUnchanged
		res.Output = b.writer.Path(res.Class)

		logger.TraceContext(ctx, "script unchanged")

		return res
	}

	unit, err := b.transpiler.Transpile(ctx, lang.Source{
		Text:    string(data),
		RelPath: res.Script,
		Class:   res.Class,
		Entry:   entry,
	})
	if err != nil {
		return fail(err)
	}

	if res.Output, err = b.writer.Write(res.Class, unit.Text); err != nil {
		return fail(err)
	}

	prev, ok := b.cache.Store(res.Script, CacheEntry{Key: key, Class: res.Class, Output: res.Output})
	if ok && prev.Output != res.Output {
		if err := b.writer.Remove(prev.Output); err != nil {
			logger.DebugContext(ctx, "stale output kept", slog.Any("error", err))
		}
	}

	res.Status = StatusGenerated

	logger.DebugContext(ctx, "script generated",
		slog.String("class", unit.Class),
		slog.String("output", res.Output),
	)

	return res
}
