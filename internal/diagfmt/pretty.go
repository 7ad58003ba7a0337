package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"sable/internal/diag"
	"sable/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan, color.Bold)
	gutterColor  = color.New(color.FgBlue)
	fixColor     = color.New(color.FgGreen)
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекстную строку с подчёркиванием ^~~~ по Span, затем Notes и Fixes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyOne(w, d, fs, opts)
	}
}

func prettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	start, _ := fs.Resolve(d.Primary)
	path := formatPath(fs, d.Primary.File, opts.PathMode)

	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
		path, start.Line, start.Col,
		severityLabel(d.Severity, opts.Color),
		codeLabel(d.Code, d.Severity, opts.Color),
		d.Message)

	writeSnippet(w, d.Primary, fs, opts)

	if opts.ShowNotes {
		for _, n := range d.Notes {
			nstart, _ := fs.Resolve(n.Span)
			fmt.Fprintf(w, "%s:%d:%d: note: %s\n",
				formatPath(fs, n.Span.File, opts.PathMode), nstart.Line, nstart.Col, n.Msg)
			if !n.Span.Empty() {
				writeSnippet(w, n.Span, fs, opts)
			}
		}
	}
	if opts.ShowFixes {
		for _, f := range d.Fixes {
			title := f.Title
			if opts.Color {
				title = fixColor.Sprint(title)
			}
			fmt.Fprintf(w, "fix: %s\n", title)
			for _, e := range f.Edits {
				estart, _ := fs.Resolve(e.Span)
				switch {
				case e.Span.Empty():
					fmt.Fprintf(w, "  insert %q at %d:%d\n", e.NewText, estart.Line, estart.Col)
				case e.NewText == "":
					fmt.Fprintf(w, "  delete %q at %d:%d\n", fs.Text(e.Span), estart.Line, estart.Col)
				default:
					fmt.Fprintf(w, "  replace %q with %q at %d:%d\n", fs.Text(e.Span), e.NewText, estart.Line, estart.Col)
				}
			}
		}
	}
}

// writeSnippet печатает строку-носитель спана с gutter'ом и подчёркиванием.
func writeSnippet(w io.Writer, sp source.Span, fs *source.FileSet, opts PrettyOpts) {
	f := fs.Get(sp.File)
	start, end := fs.Resolve(sp)

	firstLine := start.Line
	if ctx := uint32(max(int(opts.Context), 0)); ctx > 0 && firstLine > ctx {
		firstLine -= ctx
	} else if ctx > 0 {
		firstLine = 1
	}
	lastLine := end.Line + uint32(max(int(opts.Context), 0))

	gutterWidth := len(fmt.Sprintf("%d", lastLine))
	for ln := firstLine; ln <= lastLine; ln++ {
		text := f.GetLine(ln)
		if text == "" && ln > end.Line {
			break
		}
		gutter := fmt.Sprintf("%*d | ", gutterWidth, ln)
		if opts.Color {
			gutter = gutterColor.Sprint(gutter)
		}
		fmt.Fprintf(w, "%s%s\n", gutter, text)

		if ln < start.Line || ln > end.Line {
			continue
		}
		// границы подчёркивания в байтах внутри строки
		from := uint32(1)
		if ln == start.Line {
			from = start.Col
		}
		to := uint32(len(text)) + 1
		if ln == end.Line {
			to = end.Col
		}
		if to <= from {
			to = from + 1
		}
		pad := runewidth.StringWidth(sliceLine(text, 1, from))
		width := runewidth.StringWidth(sliceLine(text, from, to))
		if width < 1 {
			width = 1
		}
		marker := "^" + strings.Repeat("~", width-1)
		if opts.Color {
			marker = errorColor.Sprint(marker)
		}
		fmt.Fprintf(w, "%s%s%s\n",
			strings.Repeat(" ", gutterWidth)+" | ",
			strings.Repeat(" ", pad), marker)
	}
}

// sliceLine вырезает [from, to) из строки, колонки 1-based в байтах.
func sliceLine(text string, from, to uint32) string {
	n := uint32(len(text))
	if from < 1 {
		from = 1
	}
	if to > n+1 {
		to = n + 1
	}
	if from > n || to <= from {
		return ""
	}
	return text[from-1 : to-1]
}

func severityLabel(sev diag.Severity, colored bool) string {
	var label string
	var c *color.Color
	switch sev {
	case diag.SevError:
		label, c = "error", errorColor
	case diag.SevWarning:
		label, c = "warning", warningColor
	default:
		label, c = "info", infoColor
	}
	if colored {
		return c.Sprint(label)
	}
	return label
}

func codeLabel(code diag.Code, sev diag.Severity, colored bool) string {
	s := code.String()
	if !colored {
		return s
	}
	switch sev {
	case diag.SevError:
		return errorColor.Sprint(s)
	case diag.SevWarning:
		return warningColor.Sprint(s)
	default:
		return infoColor.Sprint(s)
	}
}

func formatPath(fs *source.FileSet, id source.FileID, mode PathMode) string {
	f := fs.Get(id)
	switch mode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		return f.FormatPath("basename", "")
	default:
		return f.FormatPath("auto", fs.BaseDir())
	}
}
