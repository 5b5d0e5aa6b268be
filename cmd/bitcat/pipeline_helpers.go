package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"bitcat/internal/diag"
	"bitcat/internal/diagfmt"
	"bitcat/internal/driver"
	"bitcat/internal/source"
)

// compileOne runs the pipeline for a single catalog. Diagnostics go to
// stderr; errFailed is returned when the catalog did not resolve.
func compileOne(cmd *cobra.Command, path string) (*source.FileSet, *driver.Result, error) {
	g := globalsFrom(cmd)
	fs := source.NewFileSet()
	res, err := driver.Compile(cmd.Context(), fs, path, g.driverOptions(cmd))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compile %s: %w", path, err)
	}
	cmd.SilenceUsage = true

	errOut := cmd.ErrOrStderr()
	if !res.OK() {
		diagfmt.Pretty(errOut, res.Bag, fs, diagfmt.PrettyOpts{Color: g.color, ShowNotes: true})
		return fs, res, errFailed
	}
	if !g.quiet && res.Bag.HasWarnings() {
		res.Bag.Filter(func(d diag.Diagnostic) bool { return d.Severity >= diag.SevWarning })
		diagfmt.Pretty(errOut, res.Bag, fs, diagfmt.PrettyOpts{Color: g.color, ShowNotes: true})
	}
	if g.timings {
		fmt.Fprint(errOut, res.Timer.Summary(path))
	}
	return fs, res, nil
}

// openOutput returns stdout for "" and "-", otherwise a created file.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %q: %w", path, err)
	}
	return f, f.Close, nil
}
