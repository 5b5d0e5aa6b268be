package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"
	"go.uber.org/zap"
	"golang.org/x/term"

	"bitcat/internal/driver"
	"bitcat/internal/logx"
)

// globals holds the persistent flags after PersistentPreRunE has run.
type globals struct {
	color          bool
	quiet          bool
	timings        bool
	maxDiagnostics int
	logger         *zap.Logger
}

type globalsKey struct{}

func setupGlobals(cmd *cobra.Command, args []string) error {
	flags := cmd.Root().PersistentFlags()
	colorFlag, err := flags.GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	quiet, err := flags.GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	timings, err := flags.GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	maxDiagnostics, err := flags.GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	logLevel, err := flags.GetString("log-level")
	if err != nil {
		return fmt.Errorf("failed to get log-level flag: %w", err)
	}
	logFile, err := flags.GetString("log-file")
	if err != nil {
		return fmt.Errorf("failed to get log-file flag: %w", err)
	}

	useColor, err := resolveColor(colorFlag, isTerminal(os.Stdout))
	if err != nil {
		return err
	}
	// fatih/color глобально: version и прочие Sprint следуют флагу
	color.NoColor = !useColor

	logger, err := logx.New(logx.Options{Level: logLevel, File: logFile, Out: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}

	g := &globals{
		color:          useColor,
		quiet:          quiet,
		timings:        timings,
		maxDiagnostics: maxDiagnostics,
		logger:         logger,
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, globalsKey{}, g))
	return nil
}

func globalsFrom(cmd *cobra.Command) *globals {
	if ctx := cmd.Context(); ctx != nil {
		if g, ok := ctx.Value(globalsKey{}).(*globals); ok {
			return g
		}
	}
	return &globals{maxDiagnostics: 100, logger: logx.Nop()}
}

func loggerFrom(cmd *cobra.Command) *zap.Logger {
	return globalsFrom(cmd).logger
}

// resolveColor maps --color to a decision. NO_COLOR disables auto colouring.
func resolveColor(mode string, tty bool) (bool, error) {
	switch mode {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto":
		return tty && env.Str("NO_COLOR") == "", nil
	default:
		return false, fmt.Errorf("unknown color mode %q (must be auto, on or off)", mode)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// driverOptions builds the compile options shared by every command.
func (g *globals) driverOptions(cmd *cobra.Command) driver.Options {
	return driver.Options{
		MaxDiagnostics: g.maxDiagnostics,
		Logger:         g.logger,
		Stdin:          cmd.InOrStdin(),
	}
}
