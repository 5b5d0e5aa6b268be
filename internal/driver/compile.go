// Package driver runs the catalog pipeline: load, decode, classify,
// auto-assign and resolve. Each catalog is compiled synchronously; several
// catalogs may be compiled in parallel.
package driver

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bitcat/internal/catalog"
	"bitcat/internal/classify"
	"bitcat/internal/diag"
	"bitcat/internal/observ"
	"bitcat/internal/resolve"
	"bitcat/internal/source"
	"bitcat/internal/tablefmt"
	"bitcat/internal/word"
)

// StdinPath makes Compile read the catalog from standard input.
const StdinPath = "-"

// Options configures a compilation.
type Options struct {
	MaxDiagnostics int
	// Jobs limits parallel compilations in CompileFiles; <= 0 means GOMAXPROCS.
	Jobs int
	// Timings adds an OBS6001 info diagnostic with the phase timings.
	Timings  bool
	Cache    *TableCache
	Logger   *zap.Logger
	Observer PhaseObserver
	// Stdin is read for StdinPath; nil means os.Stdin.
	Stdin io.Reader
}

func (o *Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Result is the outcome of compiling one catalog file.
type Result struct {
	Path    string
	FileID  source.FileID
	Catalog *catalog.Catalog // nil on load failure or cache hit
	Table   *resolve.Table   // nil unless resolution succeeded
	Bag     *diag.Bag
	Timer   *observ.Timer
	Cached  bool
}

// OK reports whether the catalog resolved without errors.
func (r *Result) OK() bool { return r.Table != nil && !r.Bag.HasErrors() }

// Compile runs the pipeline for path. Problems with the catalog are
// diagnostics in Result.Bag; the returned error is only for cancellation.
func Compile(ctx context.Context, fs *source.FileSet, path string, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := opts.logger().With(zap.String("catalog", path))
	res := &Result{Path: path, Bag: diag.NewBag(opts.MaxDiagnostics), Timer: observ.NewTimer()}
	reporter := diag.BagReporter{Bag: res.Bag}
	defer res.finish(opts)

	// load
	var loadErr error
	res.phase(opts, "load", func() string {
		res.FileID, loadErr = loadFile(fs, path, opts.Stdin)
		if loadErr != nil {
			return "failed"
		}
		return fmt.Sprintf("%d bytes", len(fs.Get(res.FileID).Content))
	})
	if loadErr != nil {
		log.Debug("load failed", zap.Error(loadErr))
		diag.ReportError(reporter, diag.IOLoadFileError, source.Span{},
			fmt.Sprintf("cannot read catalog %s: %v", path, loadErr)).Emit()
		return res, nil
	}
	file := fs.Get(res.FileID)

	key := KeyFor(file)
	if opts.Cache != nil {
		if res.fromCache(opts, key, reporter, log) {
			return res, nil
		}
	}

	// decode
	res.phase(opts, "decode", func() string {
		res.Catalog = catalog.Load(fs, res.FileID, reporter)
		if res.Catalog == nil {
			return "failed"
		}
		return fmt.Sprintf("%d flags", len(res.Catalog.Flags))
	})
	if res.Catalog == nil || res.Bag.HasErrors() {
		// синтаксические ошибки выражений тоже останавливают конвейер
		log.Debug("decode failed", zap.Int("diagnostics", res.Bag.Len()))
		return res, nil
	}

	// classify + auto-assign
	var (
		repr       word.Repr
		classified bool
	)
	res.phase(opts, "classify", func() string {
		repr, classified = classify.Check(res.Catalog, reporter)
		if classified {
			classified = classify.AutoAssign(res.Catalog, repr, reporter)
		}
		if !classified {
			return "failed"
		}
		return repr.String()
	})
	if !classified {
		log.Debug("classification failed", zap.Int("diagnostics", res.Bag.Len()))
		return res, nil
	}

	// resolve
	res.phase(opts, "resolve", func() string {
		res.Table, _ = resolve.Run(res.Catalog, repr, reporter)
		if res.Table == nil {
			return "failed"
		}
		return fmt.Sprintf("%d flags", res.Table.Len())
	})
	if res.Table == nil {
		log.Debug("resolution failed", zap.Int("diagnostics", res.Bag.Len()))
		return res, nil
	}

	if opts.Cache != nil {
		payload := &TablePayload{Path: file.Path, Table: tablefmt.FromTable(res.Table)}
		if err := opts.Cache.Put(key, payload); err != nil {
			// кэш необязателен, ошибка только в лог
			log.Warn("cache store failed", zap.Error(err))
		}
	}
	log.Debug("catalog resolved", zap.Int("flags", res.Table.Len()))
	return res, nil
}

func (r *Result) fromCache(opts Options, key CacheKey, reporter diag.Reporter, log *zap.Logger) bool {
	var (
		payload *TablePayload
		hit     bool
		err     error
	)
	r.phase(opts, "cache", func() string {
		payload, hit, err = opts.Cache.Get(key)
		if err != nil || !hit {
			return "miss"
		}
		return "hit"
	})
	if err != nil {
		log.Warn("cache read failed", zap.Error(err))
		return false
	}
	if !hit {
		return false
	}
	table, err := payload.Table.Table()
	if err != nil {
		log.Warn("cache entry unusable", zap.Error(err))
		return false
	}
	table.Span = source.Span{File: r.FileID}
	r.Table = table
	r.Cached = true
	diag.NewReportBuilder(reporter, diag.SevInfo, diag.ObsCache, source.Span{},
		fmt.Sprintf("resolved table of %s loaded from cache", r.Path)).Emit()
	log.Debug("cache hit")
	return true
}

func (r *Result) phase(opts Options, name string, fn func() string) {
	if opts.Observer != nil {
		opts.Observer(PhaseEvent{Path: r.Path, Name: name, Status: PhaseStart})
	}
	var note string
	r.Timer.Measure(name, func() string {
		note = fn()
		return note
	})
	if opts.Observer != nil {
		opts.Observer(PhaseEvent{Path: r.Path, Name: name, Status: PhaseEnd, Note: note})
	}
}

func (r *Result) finish(opts Options) {
	if opts.Timings {
		appendTimingDiagnostic(r.Bag, timingPayload{Path: r.Path, Report: r.Timer.Report()})
	}
	r.Bag.Sort()
	r.Bag.Dedup()
	if opts.Observer != nil {
		status := CatalogDone
		if !r.OK() {
			status = CatalogFailed
		}
		opts.Observer(PhaseEvent{Path: r.Path, Status: status})
	}
}

func loadFile(fs *source.FileSet, path string, stdin io.Reader) (source.FileID, error) {
	if path != StdinPath {
		return fs.Load(path)
	}
	if stdin == nil {
		stdin = os.Stdin
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return source.NoFileID, err
	}
	return fs.AddVirtual("<stdin>", data), nil
}

// CompileFiles compiles every path in parallel. Results keep the order of
// paths; each goroutine writes only its own slot.
func CompileFiles(ctx context.Context, paths []string, opts Options) (*source.FileSet, []*Result, error) {
	fs := source.NewFileSet()
	if len(paths) == 0 {
		return fs, nil, nil
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]*Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			res, err := Compile(gctx, fs, path, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fs, results, err
	}
	return fs, results, nil
}
