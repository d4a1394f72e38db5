package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"weft/internal/diag"
	"weft/internal/source"
)

// WritePretty renders diagnostics for humans. Each diagnostic prints as
//
//	<path>:<line>:<col>: <SEVERITY> <ID>: <message>
//
// followed by the source line with a ^~~~ caret run under the span, then
// its notes. Diagnostics without a position, manifest problems for
// example, print the header alone. The bag's order is preserved; callers
// sort it first when they want deterministic output. A per-severity
// summary line closes the report.
func WritePretty(w io.Writer, fs *source.FileSet, bag *diag.Bag, opts PrettyOpts) {
	for _, d := range bag.Items() {
		writeDiagnostic(w, fs, d, opts)
	}
	writeSummary(w, bag)
}

func writeDiagnostic(w io.Writer, fs *source.FileSet, d diag.Diagnostic, opts PrettyOpts) {
	sev := severityLabel(d.Severity, opts.Color)

	if !d.Primary.IsValid() {
		fmt.Fprintf(w, "%s %s: %s\n", sev, d.Code.ID(), d.Message)
		writeNotes(w, fs, d, opts)
		return
	}

	start, _ := fs.Resolve(d.Primary)
	path := formatPath(fs, d.Primary.File, opts.PathMode)
	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n", path, start.Line, start.Col, sev, d.Code.ID(), d.Message)
	writeSource(w, fs, d.Primary, d.Severity, opts)
	writeNotes(w, fs, d, opts)
}

// writeSource prints the primary line with up to opts.Context lines around
// it and a caret run under the spanned bytes. Multi-line spans are
// underlined on their first line only.
func writeSource(w io.Writer, fs *source.FileSet, span source.Span, sev diag.Severity, opts PrettyOpts) {
	start, _ := fs.Resolve(span)
	file := fs.Get(span.File)

	lastLine := uint32(len(file.LineIdx)) + 1
	first, last := start.Line, start.Line
	if ctx := uint32(max(int(opts.Context), 0)); ctx > 0 {
		if start.Line > ctx {
			first = start.Line - ctx
		} else {
			first = 1
		}
		last = min(start.Line+ctx, lastLine)
	}

	gutter := len(fmt.Sprintf("%d", last))
	for line := first; line <= last; line++ {
		text := file.GetLine(line)
		fmt.Fprintf(w, " %*d | %s\n", gutter, line, clip(text, opts.Width))
		if line == start.Line {
			writeCaret(w, text, start.Col, span.Len(), gutter, sev, opts)
		}
	}
}

// writeCaret draws ^~~~ under text[col-1 : col-1+length]. Columns from
// Resolve count bytes, so the leading pad is rebuilt rune by rune to stay
// aligned on tabs and wide glyphs.
func writeCaret(w io.Writer, text string, col, length uint32, gutter int, sev diag.Severity, opts PrettyOpts) {
	from := min(int(col)-1, len(text))
	to := min(from+int(length), len(text))

	if opts.Width > 0 && runewidth.StringWidth(text[:from]) >= int(opts.Width) {
		return
	}

	var pad strings.Builder
	for _, r := range text[:from] {
		if r == '\t' {
			pad.WriteRune('\t')
		} else {
			pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
		}
	}

	width := max(runewidth.StringWidth(text[from:to]), 1)
	marker := "^" + strings.Repeat("~", width-1)
	if opts.Color {
		marker = severityColor(sev).Sprint(marker)
	}
	fmt.Fprintf(w, " %*s | %s%s\n", gutter, "", pad.String(), marker)
}

func writeNotes(w io.Writer, fs *source.FileSet, d diag.Diagnostic, opts PrettyOpts) {
	if !opts.ShowNotes {
		return
	}
	for _, note := range d.Notes {
		if note.Span.IsValid() {
			start, _ := fs.Resolve(note.Span)
			path := formatPath(fs, note.Span.File, opts.PathMode)
			fmt.Fprintf(w, "  note: %s:%d:%d: %s\n", path, start.Line, start.Col, note.Msg)
		} else {
			fmt.Fprintf(w, "  note: %s\n", note.Msg)
		}
	}
}

// writeSummary prints per-severity totals, "2 errors, 1 warning" style.
func writeSummary(w io.Writer, bag *diag.Bag) {
	if bag.Len() == 0 {
		return
	}
	parts := make([]string, 0, 3)
	if n := bag.CountBySeverity(diag.SevError); n > 0 {
		parts = append(parts, plural(n, "error"))
	}
	if n := bag.CountBySeverity(diag.SevWarning); n > 0 {
		parts = append(parts, plural(n, "warning"))
	}
	if n := bag.CountBySeverity(diag.SevInfo); n > 0 {
		parts = append(parts, plural(n, "note"))
	}
	line := strings.Join(parts, ", ")
	if dropped := bag.Truncated(); dropped > 0 {
		line += fmt.Sprintf(", %d more dropped", dropped)
	}
	fmt.Fprintln(w, line)
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return color.New(color.FgRed, color.Bold)
	case diag.SevWarning:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgCyan)
	}
}

func severityLabel(sev diag.Severity, colored bool) string {
	if !colored {
		return sev.String()
	}
	return severityColor(sev).Sprint(sev.String())
}
