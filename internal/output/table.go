package output

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// psqlStyle draws "+---+" borders with "|---+---|" under the header.
var psqlStyle = func() table.Style {
	s := table.StyleDefault
	s.Name = "psql"
	s.Box.LeftSeparator = "|"
	s.Box.RightSeparator = "|"
	return s
}()

// prestoStyle has no outer border: " a | b " over "---+---".
var prestoStyle = func() table.Style {
	s := table.StyleDefault
	s.Name = "presto"
	s.Options.DrawBorder = false
	return s
}()

// writeBox renders the formats drawn by go-pretty.
func (f *Formatter) writeBox(g *grid) error {
	t := table.NewWriter()
	t.SetOutputMirror(f.writer)

	header := make(table.Row, len(g.headers))
	for i, h := range g.headers {
		header[i] = h
	}
	t.AppendHeader(header)
	for _, line := range g.cells {
		row := make(table.Row, len(line))
		for i, v := range line {
			row[i] = v
		}
		t.AppendRow(row)
	}

	style := table.StyleDefault
	switch f.format {
	case FormatGrid:
		style.Options.SeparateRows = true
	case FormatFancyGrid:
		style = table.StyleDouble
		style.Options.SeparateRows = true
	case FormatPsql:
		style = psqlStyle
	case FormatPresto:
		style = prestoStyle
	}
	// Headers are already title-cased.
	style.Format.Header = text.FormatDefault
	t.SetStyle(style)

	switch f.format {
	case FormatGithub:
		t.RenderMarkdown()
	case FormatPipe:
		configs := make([]table.ColumnConfig, len(g.headers))
		for i := range configs {
			configs[i] = table.ColumnConfig{Number: i + 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft}
		}
		t.SetColumnConfigs(configs)
		t.RenderMarkdown()
	case FormatHTML:
		t.RenderHTML()
	default:
		t.Render()
	}
	return nil
}
