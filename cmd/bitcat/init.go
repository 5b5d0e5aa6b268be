package main

import (
	"errors"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"bitcat/internal/catalog"
)

const defaultCatalogFile = "catalog.toml"

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a sample catalog",
		Long: `Write a sample bit-flag catalog. If [path] is omitted or names a
directory, catalog.toml is created there. Existing files are not overwritten
unless --force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
	cmd.Flags().String("name", "", "catalog name (default derived from the file name)")
	cmd.Flags().Bool("force", false, "overwrite an existing file")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	name, err := cmd.Flags().GetString("name")
	if err != nil {
		return fmt.Errorf("failed to get name flag: %w", err)
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return fmt.Errorf("failed to get force flag: %w", err)
	}

	target := defaultCatalogFile
	if len(args) == 1 && args[0] != "." {
		target = args[0]
	}
	if st, err := os.Stat(target); err == nil && st.IsDir() {
		target = filepath.Join(target, defaultCatalogFile)
	}
	if _, err := os.Stat(target); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", target)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if name == "" {
		name = catalogNameFromPath(target)
	}
	cmd.SilenceUsage = true

	out, closeOut, err := openOutput(cmd, target)
	if err != nil {
		return err
	}
	if err := catalog.WriteSample(out, name); err != nil {
		_ = closeOut()
		return err
	}
	if err := closeOut(); err != nil {
		return err
	}
	if !globalsFrom(cmd).quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", target)
	}
	return nil
}

// catalogNameFromPath turns "perms.toml" into "Perms"; names that are not Go
// identifiers fall back to "Flags".
func catalogNameFromPath(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if base == "catalog" || !token.IsIdentifier(base) {
		return "Flags"
	}
	r, size := utf8.DecodeRuneInString(base)
	return string(unicode.ToUpper(r)) + base[size:]
}
