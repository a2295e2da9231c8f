package output

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
)

// widths returns the display width of every column.
func (g *grid) widths() []int {
	w := make([]int, len(g.headers))
	for i, h := range g.headers {
		w[i] = text.RuneWidthWithoutEscSequences(h)
	}
	for _, line := range g.cells {
		for i, v := range line {
			if n := text.RuneWidthWithoutEscSequences(v); n > w[i] {
				w[i] = n
			}
		}
	}
	return w
}

func padded(line []string, widths []int) []string {
	out := make([]string, len(line))
	for i, v := range line {
		out[i] = text.Pad(v, widths[i], ' ')
	}
	return out
}

func rules(widths []int, ch string) []string {
	out := make([]string, len(widths))
	for i, w := range widths {
		out[i] = strings.Repeat(ch, w)
	}
	return out
}

// writeAligned renders the plain text formats that line columns up.
func (f *Formatter) writeAligned(g *grid) error {
	w := g.widths()
	var b strings.Builder
	line := func(s string) {
		b.WriteString(strings.TrimRight(s, " "))
		b.WriteByte('\n')
	}

	switch f.format {
	case FormatPlain:
		line(strings.Join(padded(g.headers, w), "  "))
		for _, row := range g.cells {
			line(strings.Join(padded(row, w), "  "))
		}
	case FormatSimple:
		line(strings.Join(padded(g.headers, w), "  "))
		line(strings.Join(rules(w, "-"), "  "))
		for _, row := range g.cells {
			line(strings.Join(padded(row, w), "  "))
		}
	case FormatOrgtbl:
		org := func(cells []string) string { return "| " + strings.Join(cells, " | ") + " |" }
		b.WriteString(org(padded(g.headers, w)) + "\n")
		b.WriteString("|-" + strings.Join(rules(w, "-"), "-+-") + "-|\n")
		for _, row := range g.cells {
			b.WriteString(org(padded(row, w)) + "\n")
		}
	case FormatRst:
		border := strings.Join(rules(w, "="), "  ")
		line(border)
		line(strings.Join(padded(g.headers, w), "  "))
		line(border)
		for _, row := range g.cells {
			line(strings.Join(padded(row, w), "  "))
		}
		line(border)
	}

	_, err := fmt.Fprint(f.writer, b.String())
	return err
}

// Cell separators inside values are written as an escape or an entity.
var (
	backslashPipe = strings.NewReplacer("|", `\|`)
	entityPipe    = strings.NewReplacer("|", "&#124;")
)

// escaped returns a copy of g with r applied to every header and cell.
func escaped(g *grid, r *strings.Replacer) *grid {
	apply := func(line []string) []string {
		out := make([]string, len(line))
		for i, s := range line {
			out[i] = r.Replace(s)
		}
		return out
	}
	cp := &grid{columns: g.columns, headers: apply(g.headers), cells: make([][]string, len(g.cells))}
	for i, row := range g.cells {
		cp.cells[i] = apply(row)
	}
	return cp
}

// writeMarkup renders the wiki and document markup formats.
func (f *Formatter) writeMarkup(g *grid) error {
	var b strings.Builder

	switch f.format {
	case FormatJira, FormatYoutrack:
		g = escaped(g, backslashPipe)
	case FormatMoinmoin, FormatTextile, FormatMediawiki:
		g = escaped(g, entityPipe)
	}

	switch f.format {
	case FormatJira:
		b.WriteString("|| " + strings.Join(g.headers, " || ") + " ||\n")
		for _, row := range g.cells {
			b.WriteString("| " + strings.Join(row, " | ") + " |\n")
		}
	case FormatMoinmoin:
		heads := make([]string, len(g.headers))
		for i, h := range g.headers {
			heads[i] = "''' " + h + " '''"
		}
		b.WriteString("|| " + strings.Join(heads, " || ") + " ||\n")
		for _, row := range g.cells {
			b.WriteString("|| " + strings.Join(row, " || ") + " ||\n")
		}
	case FormatYoutrack:
		b.WriteString("||  " + strings.Join(g.headers, "  ||  ") + "  ||\n")
		for _, row := range g.cells {
			b.WriteString("|  " + strings.Join(row, "  |  ") + "  |\n")
		}
	case FormatTextile:
		b.WriteString("|_. " + strings.Join(g.headers, " |_. ") + " |\n")
		for _, row := range g.cells {
			b.WriteString("| " + strings.Join(row, " | ") + " |\n")
		}
	case FormatMediawiki:
		b.WriteString("{| class=\"wikitable\" style=\"text-align: left;\"\n")
		b.WriteString("|+ <!-- caption -->\n|-\n")
		b.WriteString("! " + strings.Join(g.headers, " !! ") + "\n")
		for _, row := range g.cells {
			b.WriteString("|-\n| " + strings.Join(row, " || ") + "\n")
		}
		b.WriteString("|}\n")
	case FormatLatex, FormatLatexRaw, FormatLatexBooktabs:
		writeLatex(&b, g, f.format)
	}

	_, err := fmt.Fprint(f.writer, b.String())
	return err
}

var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	"&", `\&`,
	"%", `\%`,
	"$", `\$`,
	"#", `\#`,
	"_", `\_`,
	"{", `\{`,
	"}", `\}`,
	"~", `\textasciitilde{}`,
	"^", `\^{}`,
)

func writeLatex(b *strings.Builder, g *grid, format Format) {
	esc := func(cells []string) []string {
		if format == FormatLatexRaw {
			return cells
		}
		out := make([]string, len(cells))
		for i, c := range cells {
			out[i] = latexEscaper.Replace(c)
		}
		return out
	}

	top, mid, bottom := `\hline`, `\hline`, `\hline`
	if format == FormatLatexBooktabs {
		top, mid, bottom = `\toprule`, `\midrule`, `\bottomrule`
	}

	b.WriteString(`\begin{tabular}{` + strings.Repeat("l", len(g.headers)) + "}\n")
	b.WriteString(top + "\n")
	b.WriteString(" " + strings.Join(esc(g.headers), " & ") + ` \\` + "\n")
	b.WriteString(mid + "\n")
	for _, row := range g.cells {
		b.WriteString(" " + strings.Join(esc(row), " & ") + ` \\` + "\n")
	}
	b.WriteString(bottom + "\n")
	b.WriteString(`\end{tabular}` + "\n")
}
