package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/fittext/internal/codegen"
	"git.home.luguber.info/inful/fittext/internal/config"
	"git.home.luguber.info/inful/fittext/internal/foundation/errors"
	"git.home.luguber.info/inful/fittext/internal/fsutil"
	"git.home.luguber.info/inful/fittext/internal/logfields"
	"git.home.luguber.info/inful/fittext/internal/metrics"
	"git.home.luguber.info/inful/fittext/internal/rewrite"
	"git.home.luguber.info/inful/fittext/internal/source"
	"git.home.luguber.info/inful/fittext/internal/table"
)

// Generator runs builds for one configuration.
type Generator struct {
	cfg      *config.Config
	store    *table.Store
	recorder metrics.Recorder
	logger   *slog.Logger
	newRunID func() string
	now      func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(g *Generator) {
		if r != nil {
			g.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithStore replaces the table store, e.g. to share its lock with a watcher.
func WithStore(s *table.Store) Option {
	return func(g *Generator) {
		if s != nil {
			g.store = s
		}
	}
}

// New creates a Generator for cfg.
func New(cfg *config.Config, opts ...Option) *Generator {
	g := &Generator{
		cfg:      cfg,
		store:    table.NewStore(cfg.TablePath()),
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		newRunID: uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Rewriter returns the rewriter configured for this project. Call sites are
// emitted in the syntax of the companion source language.
func (g *Generator) Rewriter() rewrite.Rewriter {
	c := g.cfg.Container
	rw := rewrite.Rewriter{
		Container:     c.Name,
		TextAccessor:  c.TextAccessor,
		TitleAccessor: c.TitleAccessor,
		Style:         rewrite.StyleSwift,
	}
	if c.Language == config.LanguageGo {
		rw.Style = rewrite.StyleGo
		rw.Package = c.Package
	}
	return rw
}

// Store returns the table store.
func (g *Generator) Store() *table.Store { return g.store }

// Generate runs a build and writes the table, the companion source and the
// rewritten outputs.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	return g.run(ctx, false)
}

// Check runs a build without writing. It fails with a validation error when
// anything would change.
func (g *Generator) Check(ctx context.Context) (*Report, error) {
	return g.run(ctx, true)
}

// expansion is the outcome for one source file.
type expansion struct {
	file   source.File
	result source.Result
	diag   error
}

func (g *Generator) run(ctx context.Context, check bool) (report *Report, err error) {
	report = newReport(g.newRunID(), check, g.now())
	log := g.logger.With(logfields.RunID(report.RunID))
	log.Info("Starting run", slog.Bool("check", check))

	defer func() {
		report.End = g.now()
		report.Outcome = outcomeFor(report, err)
		g.recorder.ObserveRunDuration(report.Duration())
		g.recorder.IncRunOutcome(report.Outcome)
		if err != nil {
			log.Error("Run failed", logfields.Error(err), logfields.Since(report.Start))
			return
		}
		log.Info("Run complete",
			logfields.Files(report.Files),
			logfields.CallSites(report.CallSites()),
			logfields.NewKeys(len(report.NewKeys)),
			logfields.StaleKeys(len(report.StaleKeys)),
			slog.String("outcome", string(report.Outcome)),
			logfields.Since(report.Start))
	}()

	files, err := timed(g, report, StageDiscover, func() ([]source.File, error) { return g.discover(ctx) })
	if err != nil {
		return report, err
	}
	report.Files = len(files)
	g.recorder.AddFilesScanned(len(files))

	expanded, err := timed(g, report, StageExpand, func() ([]expansion, error) { return g.expand(ctx, files) })
	if err != nil {
		return report, err
	}
	var diags []error
	var discoveries []table.Discovery
	for _, e := range expanded {
		if e.diag != nil {
			diags = append(diags, e.diag)
			continue
		}
		if e.result.Changed() {
			report.RewrittenFiles++
		}
		discoveries = append(discoveries, e.result.Discoveries...)
	}
	if len(diags) > 0 {
		for _, d := range flatten(diags) {
			report.Diagnostics++
			g.recorder.IncDiagnostics(diagnosticKind(d))
		}
		return report, stderrors.Join(diags...)
	}
	for _, d := range discoveries {
		if d.Variant == table.VariantTitle {
			report.TitleCallSites++
		} else {
			report.TextCallSites++
		}
	}
	g.recorder.AddCallSites(string(table.VariantText), report.TextCallSites)
	g.recorder.AddCallSites(string(table.VariantTitle), report.TitleCallSites)

	merged, err := timed(g, report, StageSynchronize, func() (table.Table, error) {
		return g.synchronize(ctx, report, discoveries)
	})
	if err != nil {
		return report, err
	}
	report.StaleKeys = table.Stale(merged, discoveries)
	g.recorder.SetStaleKeys(len(report.StaleKeys))
	for _, d := range report.NewKeys {
		log.Info("Added content key",
			logfields.ContentKey(d.Key.Short()),
			logfields.Variant(string(d.Variant)),
			logfields.File(d.Origin.String()))
	}
	if len(report.StaleKeys) > 0 {
		log.Debug("Table has keys no call site references", logfields.StaleKeys(len(report.StaleKeys)))
	}

	if _, err := timed(g, report, StageCodegen, func() (struct{}, error) {
		return struct{}{}, g.writeContainer(report, merged)
	}); err != nil {
		return report, err
	}
	if _, err := timed(g, report, StageWrite, func() (struct{}, error) {
		return struct{}{}, g.writeOutputs(expanded, report)
	}); err != nil {
		return report, err
	}

	if check && (len(report.NewKeys) > 0 || len(report.OutOfDate) > 0) {
		return report, errors.ValidationError(fmt.Sprintf(
			"generated sources are out of date: %d new keys, %d files would change; run `fittext generate`",
			len(report.NewKeys), len(report.OutOfDate))).
			WithContext("new_keys", len(report.NewKeys)).
			WithContext("out_of_date", len(report.OutOfDate)).
			Build()
	}
	if !check {
		if err := report.Persist(g.cfg.OutputDirectory()); err != nil {
			log.Warn("Failed to persist run report", logfields.Error(err))
		}
	}
	return report, nil
}

// timed runs fn as stage st and records its duration.
func timed[T any](g *Generator, r *Report, st Stage, fn func() (T, error)) (T, error) {
	start := g.now()
	v, err := fn()
	d := g.now().Sub(start)
	r.StageDurations[st] = d
	g.recorder.ObserveStageDuration(string(st), d)
	return v, err
}

func (g *Generator) discover(ctx context.Context) ([]source.File, error) {
	filter, err := source.NewFilter(g.cfg.Sources.Include, g.cfg.Sources.Exclude)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "invalid source globs").UserAction().Build()
	}
	skip := skipSet(g.cfg.OutputDirectory(), g.cfg.ContainerOutputPath())
	files, err := source.Discover(ctx, g.cfg.SourceRoots(), filter, func(p string) bool {
		return skip[absPath(p)]
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "discover source files").Build()
	}
	return files, nil
}

// expand runs source.Expand over files with at most build.workers in flight.
// Results keep file order regardless of completion order.
func (g *Generator) expand(ctx context.Context, files []source.File) ([]expansion, error) {
	out := make([]expansion, len(files))
	rw := g.Rewriter()
	workers := max(1, g.cfg.Build.Workers)
	g.recorder.SetWorkers(workers)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, f := range files {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			// #nosec G304 - discovered under configured source roots
			src, err := os.ReadFile(f.Path)
			if err != nil {
				return errors.WrapError(err, errors.CategoryFileSystem, "read source file").
					WithContext("file", f.Path).Build()
			}
			out[i].file = f
			if !source.HasMacros(src) {
				return nil
			}
			res, err := source.Expand(f.Path, src, rw)
			if err != nil {
				out[i].diag = err
				return nil
			}
			out[i].result = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// synchronize merges discoveries into the table. Check mode merges in memory only.
func (g *Generator) synchronize(ctx context.Context, r *Report, discoveries []table.Discovery) (table.Table, error) {
	if r.Check {
		current, err := g.store.Load(ctx)
		if err != nil {
			return table.Table{}, err
		}
		merged, added := table.SynchronizeAll(current, discoveries)
		r.NewKeys = added
		if len(added) > 0 {
			r.addOutOfDate(g.store.Path())
		}
		return merged, nil
	}

	var added []table.Discovery
	merged, changed, err := g.store.Update(ctx, func(current table.Table) (table.Table, error) {
		next, a := table.SynchronizeAll(current, discoveries)
		added = a
		return next, nil
	})
	if err != nil {
		return table.Table{}, err
	}
	r.NewKeys = added
	r.TableChanged = changed
	for _, v := range []table.Variant{table.VariantText, table.VariantTitle} {
		n := 0
		for _, d := range added {
			if d.Variant == v {
				n++
			}
		}
		g.recorder.AddNewKeys(string(v), n)
	}
	return merged, nil
}

func (g *Generator) writeContainer(r *Report, merged table.Table) error {
	c := g.cfg.Container
	data, err := codegen.Generate(merged, codegen.Options{
		Language:      codegen.Language(c.Language),
		Container:     c.Name,
		TextAccessor:  c.TextAccessor,
		TitleAccessor: c.TitleAccessor,
		Package:       c.Package,
		TableName:     filepath.Base(g.cfg.Table.Path),
	})
	if err != nil {
		return err
	}
	path := g.cfg.ContainerOutputPath()
	if r.Check {
		if !fsutil.Unchanged(path, data) {
			r.addOutOfDate(path)
		}
		return nil
	}
	changed, err := fsutil.WriteIfChanged(path, data)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write companion source").
			WithContext("path", path).Build()
	}
	r.ContainerChanged = changed
	if changed {
		g.logger.Debug("Wrote companion source", logfields.Path(path), logfields.Language(string(c.Language)))
	}
	return nil
}

func (g *Generator) writeOutputs(expanded []expansion, r *Report) error {
	outDir := g.cfg.OutputDirectory()
	roots := len(g.cfg.Sources.Roots)
	keep := make(map[string]bool, len(expanded))
	for _, e := range expanded {
		if !e.result.Changed() {
			continue
		}
		path := OutputPath(outDir, e.file, roots > 1)
		keep[path] = true
		if r.Check {
			if !fsutil.Unchanged(path, e.result.Output) {
				r.addOutOfDate(path)
			}
			continue
		}
		changed, err := fsutil.WriteIfChanged(path, e.result.Output)
		if err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "write rewritten source").
				WithContext("path", path).Build()
		}
		if changed {
			r.OutputsWritten++
			g.logger.Debug("Wrote rewritten source", logfields.File(e.file.Path), logfields.Path(path))
		}
	}
	if g.cfg.Output.Clean {
		return g.pruneOutputs(outDir, keep, r)
	}
	return nil
}

// pruneOutputs removes files under outDir this run did not produce, such as
// rewritten sources whose macros were deleted. The run report is kept. In
// check mode they are reported as out of date instead.
func (g *Generator) pruneOutputs(outDir string, keep map[string]bool, r *Report) error {
	report := filepath.Join(outDir, ReportFile)
	var stale []string
	err := filepath.WalkDir(outDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == outDir && stderrors.Is(err, fs.ErrNotExist) {
				return filepath.SkipAll
			}
			return err
		}
		if !d.IsDir() && !keep[path] && path != report {
			stale = append(stale, path)
		}
		return nil
	})
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "scan output directory").
			WithContext("path", outDir).Build()
	}
	for _, path := range stale {
		if r.Check {
			r.addOutOfDate(path)
			continue
		}
		if err := os.Remove(path); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			return errors.WrapError(err, errors.CategoryFileSystem, "remove stale output").
				WithContext("path", path).Build()
		}
		r.OutputsRemoved++
		g.logger.Debug("Removed stale output", logfields.Path(path))
		removeEmptyDirs(filepath.Dir(path), outDir)
	}
	return nil
}

// removeEmptyDirs removes dir and its parents up to, but not including,
// stop while they are empty.
func removeEmptyDirs(dir, stop string) {
	for dir != stop && strings.HasPrefix(dir, stop+string(filepath.Separator)) {
		if os.Remove(dir) != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

// OutputPath maps a source file to its rewritten location. With several
// roots the root's base name keeps the trees apart.
func OutputPath(outDir string, f source.File, multiRoot bool) string {
	if multiRoot {
		return filepath.Join(outDir, filepath.Base(f.Root), filepath.FromSlash(f.Rel))
	}
	return filepath.Join(outDir, filepath.FromSlash(f.Rel))
}

func outcomeFor(r *Report, err error) metrics.OutcomeLabel {
	switch {
	case err == nil && r.Check:
		return metrics.OutcomeUpToDate
	case err == nil:
		return metrics.OutcomeSuccess
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeCanceled
	default:
		return metrics.OutcomeFailed
	}
}

func skipSet(paths ...string) map[string]bool {
	out := make(map[string]bool, len(paths))
	for _, p := range paths {
		if p != "" {
			out[absPath(p)] = true
		}
	}
	return out
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// flatten expands joined errors into their leaves.
func flatten(errs []error) []error {
	var out []error
	for _, err := range errs {
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			out = append(out, flatten(joined.Unwrap())...)
			continue
		}
		out = append(out, err)
	}
	return out
}

func diagnosticKind(err error) string {
	switch {
	case stderrors.Is(err, errors.ErrNotAStringLiteral):
		return "not_a_string_literal"
	case stderrors.Is(err, errors.ErrMissingContentArgument):
		return "missing_content_argument"
	default:
		return "macro"
	}
}
