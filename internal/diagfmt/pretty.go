package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/FuelLabs/sway-sub019/internal/diag"
	"github.com/FuelLabs/sway-sub019/internal/source"
)

const tabWidth = 4

type palette struct {
	err  *color.Color
	warn *color.Color
	info *color.Color
	code *color.Color
	gut  *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:  color.New(color.FgRed, color.Bold),
		warn: color.New(color.FgYellow, color.Bold),
		info: color.New(color.FgCyan),
		code: color.New(color.Bold),
		gut:  color.New(color.FgBlue),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.gut} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty renders the bag for humans: one header line per diagnostic in
// the form <path>:<line>:<col>: <SEV> <CODE>: <message>, followed by the
// source line with a ^~~~ underline over the span, followed by notes.
// Callers sort the bag first when they want positional order.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		prettyOne(w, d, fs, opts, p)
	}
}

func prettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	fmt.Fprintf(w, "%s: %s %s: %s\n",
		location(fs, d.Primary, opts.PathMode),
		p.severity(d.Severity).Sprint(d.Severity.String()),
		p.code.Sprint(d.Code.String()),
		d.Message)
	snippet(w, fs, d.Primary, opts, p, p.severity(d.Severity))
	if opts.ShowNotes {
		for _, n := range d.Notes {
			fmt.Fprintf(w, "%s: %s: %s\n",
				location(fs, n.Span, opts.PathMode),
				p.info.Sprint("note"),
				n.Msg)
			snippet(w, fs, n.Span, opts, p, p.info)
		}
	}
}

// snippet prints the primary line with an underline, plus Context lines
// of surrounding source.
func snippet(w io.Writer, fs *source.FileSet, sp source.Span, opts PrettyOpts, p palette, mark *color.Color) {
	if fs == nil || sp == (source.Span{}) {
		return
	}
	file := fs.Get(sp.File)
	if file == nil {
		return
	}
	start, end := fs.Resolve(sp)

	first := start.Line
	if ctx := uint32(max(opts.Context, 0)); first > ctx {
		first -= ctx
	} else {
		first = 1
	}
	last := start.Line + uint32(max(opts.Context, 0))

	gutter := len(fmt.Sprintf("%d", last))
	for ln := first; ln <= last; ln++ {
		text := file.GetLine(ln)
		if text == "" && ln != start.Line {
			continue
		}
		fmt.Fprintf(w, " %s | %s\n",
			p.gut.Sprintf("%*d", gutter, ln),
			expandTabs(text))
		if ln == start.Line {
			fmt.Fprintf(w, " %s | %s\n",
				strings.Repeat(" ", gutter),
				mark.Sprint(underline(text, start, end)))
		}
	}
}

// underline builds the ^~~~ marker for a span starting on line text.
// Columns are 1-based byte offsets; display width accounts for wide
// runes and tab expansion.
func underline(text string, start, end source.LineCol) string {
	startCol := int(start.Col)
	if startCol < 1 {
		startCol = 1
	}
	if startCol > len(text)+1 {
		startCol = len(text) + 1
	}
	pad := displayWidth(text[:startCol-1])

	endCol := len(text) + 1
	if end.Line == start.Line && int(end.Col) >= startCol && int(end.Col) <= len(text)+1 {
		endCol = int(end.Col)
	}
	width := displayWidth(text[startCol-1 : endCol-1])
	if width < 1 {
		width = 1
	}
	return strings.Repeat(" ", pad) + "^" + strings.Repeat("~", width-1)
}

func expandTabs(s string) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		if r == '\t' {
			w += tabWidth
			continue
		}
		w += runewidth.RuneWidth(r)
	}
	return w
}

func location(fs *source.FileSet, sp source.Span, mode PathMode) string {
	if fs == nil || sp == (source.Span{}) {
		return "<unknown>:0:0"
	}
	file := fs.Get(sp.File)
	if file == nil {
		return "<unknown>:0:0"
	}
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", formatPath(file, fs, mode), start.Line, start.Col)
}

func formatPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		return f.FormatPath("basename", "")
	default:
		return f.FormatPath("auto", "")
	}
}
