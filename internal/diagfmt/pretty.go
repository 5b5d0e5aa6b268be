package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"bitcat/internal/diag"
	"bitcat/internal/source"
)

type palette struct {
	err, warn, info, note, path, gutter, caret *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		note:   mk(color.FgBlue, color.Bold),
		path:   mk(color.Bold),
		gutter: mk(color.FgBlue),
		caret:  mk(color.FgRed, color.Bold),
	}
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
//
//	<path>:<line>:<col>: <sev> <CODE>: <Message>
//
// затем строку файла с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	for _, d := range bag.Items() {
		loc := location(fs, d.Primary, opts.PathMode)
		sevText := pal.severity(d.Severity).Sprint(d.Severity.Label())
		if loc != "" {
			fmt.Fprintf(w, "%s: ", pal.path.Sprint(loc))
		}
		fmt.Fprintf(w, "%s %s: %s\n", sevText, d.Code.ID(), d.Message)
		writeSnippet(w, fs, d.Primary, pal)

		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			nloc := location(fs, n.Span, opts.PathMode)
			if nloc != "" {
				fmt.Fprintf(w, "  %s %s: %s\n", pal.note.Sprint("note:"), nloc, n.Msg)
			} else {
				fmt.Fprintf(w, "  %s %s\n", pal.note.Sprint("note:"), n.Msg)
			}
		}
	}
	if dropped := bag.Dropped(); dropped > 0 {
		fmt.Fprintf(w, "... %d more diagnostics not shown (raise --max-diagnostics)\n", dropped)
	}
}

func location(fs *source.FileSet, span source.Span, mode PathMode) string {
	if fs == nil {
		return ""
	}
	f := fs.Get(span.File)
	start, _, ok := fs.Resolve(span)
	if f == nil || !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", f.FormatPath(mode.mode(), fs.BaseDir()), start.Line, start.Col)
}

func writeSnippet(w io.Writer, fs *source.FileSet, span source.Span, pal palette) {
	if fs == nil {
		return
	}
	f := fs.Get(span.File)
	start, end, ok := fs.Resolve(span)
	if f == nil || !ok {
		return
	}
	line := f.GetLine(start.Line)
	if line == "" {
		return
	}
	// колонки байтовые, отступ считаем в ячейках терминала
	startByte := min(int(start.Col)-1, len(line))
	endByte := startByte + 1
	if end.Line == start.Line && end.Col > start.Col {
		endByte = int(end.Col) - 1
	}
	endByte = min(max(endByte, startByte), len(line))
	width := max(runewidth.StringWidth(line[startByte:endByte]), 1)
	gutter := fmt.Sprintf("%4d", start.Line)
	fmt.Fprintf(w, "%s %s %s\n", pal.gutter.Sprint(gutter), pal.gutter.Sprint("|"), line)
	pad := strings.Repeat(" ", runewidth.StringWidth(line[:startByte]))
	mark := "^" + strings.Repeat("~", width-1)
	fmt.Fprintf(w, "%s %s %s%s\n", strings.Repeat(" ", len(gutter)), pal.gutter.Sprint("|"), pad, pal.caret.Sprint(mark))
}
