package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bitcat/internal/tablefmt"
)

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [flags] <catalog.toml>",
		Short: "Print the resolved flag table of a catalog",
		Args:  cobra.ExactArgs(1),
		RunE:  runResolve,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json|msgpack)")
	cmd.Flags().StringP("output", "o", "", "write the table to a file instead of stdout")
	return cmd
}

func runResolve(cmd *cobra.Command, args []string) error {
	formatStr, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format, err := tablefmt.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}

	_, res, err := compileOne(cmd, args[0])
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(cmd, output)
	if err != nil {
		return err
	}
	if err := tablefmt.Write(out, res.Table, format); err != nil {
		_ = closeOut()
		return fmt.Errorf("failed to write table: %w", err)
	}
	return closeOut()
}
