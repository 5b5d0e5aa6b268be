package main

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"bitcat/internal/driver"
	"bitcat/internal/source"
	"bitcat/internal/ui"
)

type compileOutcome struct {
	fs      *source.FileSet
	results []*driver.Result
	err     error
}

// compileWithUI runs CompileFiles while a progress view follows its phase
// events on out.
func compileWithUI(ctx context.Context, out io.Writer, paths []string, opts driver.Options) (*source.FileSet, []*driver.Result, error) {
	events := make(chan driver.PhaseEvent, 256)
	outcomeCh := make(chan compileOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Observer = func(ev driver.PhaseEvent) { events <- ev }
		fs, results, err := driver.CompileFiles(ctx, paths, optsCopy)
		outcomeCh <- compileOutcome{fs: fs, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("checking catalogs", paths, events)
	program := tea.NewProgram(model, tea.WithOutput(out))
	_, uiErr := program.Run()
	// после ctrl+c вид закрыт, но компиляция ещё шлёт события
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.fs, outcome.results, uiErr
	}
	return outcome.fs, outcome.results, outcome.err
}
