package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"bitcat/internal/codegen"
	"bitcat/internal/diag"
	"bitcat/internal/diagfmt"
	"bitcat/internal/driver"
)

func newGenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen [flags] <catalog.toml>",
		Short: "Generate a typed Go flag set from a catalog",
		Long: `Generate Go source for the catalog: a flag type with one constant per
flag and a set type with the bitwise algebra. By default the file is written
next to the catalog as <name>_bitcat.go; -o - prints it to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: runGen,
	}
	cmd.Flags().StringP("output", "o", "", "output file (- for stdout)")
	cmd.Flags().String("package", "", "package name of the generated file (default from the catalog)")
	return cmd
}

func runGen(cmd *cobra.Command, args []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	pkg, err := cmd.Flags().GetString("package")
	if err != nil {
		return fmt.Errorf("failed to get package flag: %w", err)
	}

	path := args[0]
	fs, res, err := compileOne(cmd, path)
	if err != nil {
		return err
	}

	bag := diag.NewBag(globalsFrom(cmd).maxDiagnostics)
	src, err := codegen.Generate(res.Table, codegen.Options{
		SourcePath: filepath.Base(path),
		Package:    pkg,
	}, diag.BagReporter{Bag: bag})
	if err != nil {
		if errors.Is(err, codegen.ErrInvalidNames) {
			bag.Sort()
			diagfmt.Pretty(cmd.ErrOrStderr(), bag, fs, diagfmt.PrettyOpts{Color: globalsFrom(cmd).color, ShowNotes: true})
			return errFailed
		}
		return err
	}

	if output == "" {
		output = defaultGenOutput(path, res.Table.Name)
	}
	out, closeOut, err := openOutput(cmd, output)
	if err != nil {
		return err
	}
	if _, err := out.Write(src); err != nil {
		_ = closeOut()
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	if err := closeOut(); err != nil {
		return err
	}
	if output != "-" && !globalsFrom(cmd).quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
	}
	return nil
}

// defaultGenOutput places <name>_bitcat.go next to the catalog; a catalog
// read from stdin goes back to stdout.
func defaultGenOutput(catalogPath, name string) string {
	if catalogPath == driver.StdinPath {
		return "-"
	}
	return filepath.Join(filepath.Dir(catalogPath), strings.ToLower(name)+"_bitcat.go")
}
