package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"bitcat/internal/diag"
	"bitcat/internal/diagfmt"
	"bitcat/internal/driver"
	"bitcat/internal/source"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] <catalog.toml>...",
		Short: "Check bit-flag catalogs and report diagnostics",
		Long: `Run the whole pipeline (decode, classify, resolve) on every catalog and
print the diagnostics. Use - to read a catalog from standard input.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCheck,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	cmd.Flags().Bool("no-warnings", false, "ignore warnings in diagnostics")
	cmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	cmd.Flags().Bool("with-notes", true, "include diagnostic notes in output")
	cmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	cmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	cmd.Flags().String("ui", "auto", "progress view for several catalogs (auto|on|off)")
	cmd.Flags().Bool("cache", false, "reuse resolved tables from the on-disk cache")
	cmd.Flags().String("cache-dir", "", "cache directory (default $XDG_CACHE_HOME/bitcat)")
	return cmd
}

type checkOptions struct {
	format           string
	noWarnings       bool
	warningsAsErrors bool
	withNotes        bool
	pathMode         diagfmt.PathMode
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	noWarnings, err := cmd.Flags().GetBool("no-warnings")
	if err != nil {
		return fmt.Errorf("failed to get no-warnings flag: %w", err)
	}
	warningsAsErrors, err := cmd.Flags().GetBool("warnings-as-errors")
	if err != nil {
		return fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	if noWarnings && warningsAsErrors {
		return fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	switch format {
	case "pretty", "json", "short":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	g := globalsFrom(cmd)
	opts := g.driverOptions(cmd)
	opts.Jobs = jobs
	opts.Timings = g.timings
	if opts.Cache, err = openCache(cmd); err != nil {
		return err
	}
	session, err := startProfiling(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Stop(); err != nil {
			loggerFrom(cmd).Warn(err.Error())
		}
	}()
	cmd.SilenceUsage = true

	var (
		fs      *source.FileSet
		results []*driver.Result
	)
	// прогресс только для человекочитаемого вывода
	if format == "pretty" && !g.quiet && shouldUseTUI(mode, isTerminal(os.Stdout), len(args)) {
		fs, results, err = compileWithUI(cmd.Context(), cmd.OutOrStdout(), args, opts)
	} else {
		fs, results, err = driver.CompileFiles(cmd.Context(), args, opts)
	}
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	copts := checkOptions{
		format:           format,
		noWarnings:       noWarnings,
		warningsAsErrors: warningsAsErrors,
		withNotes:        withNotes,
	}
	if fullPath {
		copts.pathMode = diagfmt.PathModeAbsolute
	}

	// все диагностики в один bag, чтобы вывод был отсортирован целиком
	merged := diag.NewBag(0)
	failed := false
	for _, res := range results {
		applyWarningPolicy(res.Bag, copts)
		if res.Bag.HasErrors() || res.Table == nil {
			failed = true
		}
		merged.Merge(res.Bag)
	}
	merged.Sort()

	if err := printDiagnostics(cmd.OutOrStdout(), merged, fs, copts, g); err != nil {
		return err
	}
	if !g.quiet && copts.format == "pretty" {
		printCheckSummary(cmd.OutOrStdout(), results)
	}
	if failed {
		return errFailed
	}
	return nil
}

func openCache(cmd *cobra.Command) (*driver.TableCache, error) {
	useCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache flag: %w", err)
	}
	if !useCache {
		return nil, nil
	}
	dir, err := cmd.Flags().GetString("cache-dir")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache-dir flag: %w", err)
	}
	cache, err := driver.OpenTableCache(dir)
	if err != nil {
		// без кэша тоже работаем
		loggerFrom(cmd).Warn("cache disabled: " + err.Error())
		return nil, nil
	}
	return cache, nil
}

func applyWarningPolicy(bag *diag.Bag, opts checkOptions) {
	switch {
	case opts.noWarnings:
		bag.Filter(func(d diag.Diagnostic) bool { return d.Severity != diag.SevWarning })
	case opts.warningsAsErrors:
		bag.Transform(func(d diag.Diagnostic) diag.Diagnostic {
			d.Severity = d.Severity.Escalate()
			return d
		})
	}
}

func printDiagnostics(out io.Writer, bag *diag.Bag, fs *source.FileSet, opts checkOptions, g *globals) error {
	switch opts.format {
	case "pretty":
		diagfmt.Pretty(out, bag, fs, diagfmt.PrettyOpts{
			Color:     g.color,
			PathMode:  opts.pathMode,
			ShowNotes: opts.withNotes,
		})
	case "short":
		output := diag.FormatShortDiagnostics(bag.Items(), fs, opts.withNotes)
		if output != "" {
			fmt.Fprintln(out, output)
		}
	case "json":
		jsonOpts := diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         opts.pathMode,
			IncludeNotes:     opts.withNotes,
		}
		if err := diagfmt.JSON(out, bag, fs, jsonOpts); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	}
	return nil
}

func printCheckSummary(out io.Writer, results []*driver.Result) {
	for _, res := range results {
		switch {
		case res.OK() && res.Cached:
			fmt.Fprintf(out, "ok   %s (%d flags, cached)\n", res.Path, res.Table.Len())
		case res.OK():
			fmt.Fprintf(out, "ok   %s (%d flags)\n", res.Path, res.Table.Len())
		default:
			fmt.Fprintf(out, "FAIL %s\n", res.Path)
		}
	}
}
