// Package output renders result rows in the supported results formats.
package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"

	skerrors "github.com/jmurray2011/sumoknife/internal/errors"
	"github.com/jmurray2011/sumoknife/pkg/textutil"
)

// Format specifies the output format type.
type Format string

const (
	FormatPlain         Format = "plain"
	FormatSimple        Format = "simple"
	FormatGithub        Format = "github"
	FormatGrid          Format = "grid"
	FormatFancyGrid     Format = "fancy_grid"
	FormatPipe          Format = "pipe"
	FormatOrgtbl        Format = "orgtbl"
	FormatJira          Format = "jira"
	FormatPresto        Format = "presto"
	FormatPsql          Format = "psql"
	FormatRst           Format = "rst"
	FormatMediawiki     Format = "mediawiki"
	FormatMoinmoin      Format = "moinmoin"
	FormatYoutrack      Format = "youtrack"
	FormatHTML          Format = "html"
	FormatLatex         Format = "latex"
	FormatLatexRaw      Format = "latex_raw"
	FormatLatexBooktabs Format = "latex_booktabs"
	FormatTextile       Format = "textile"
	FormatJSON          Format = "json"
	FormatJSONPretty    Format = "json_pretty"
	FormatCSV           Format = "csv"
)

// DefaultFormat is used when nothing else is configured.
const DefaultFormat = FormatGrid

var formats = []Format{
	FormatPlain, FormatSimple, FormatGithub, FormatGrid, FormatFancyGrid,
	FormatPipe, FormatOrgtbl, FormatJira, FormatPresto, FormatPsql,
	FormatRst, FormatMediawiki, FormatMoinmoin, FormatYoutrack, FormatHTML,
	FormatLatex, FormatLatexRaw, FormatLatexBooktabs, FormatTextile,
	FormatJSON, FormatJSONPretty, FormatCSV,
}

// Formats returns every supported format.
func Formats() []Format {
	out := make([]Format, len(formats))
	copy(out, formats)
	return out
}

// ParseFormat resolves a format name. Unknown names fail with suggestions.
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultFormat, nil
	}
	for _, f := range formats {
		if string(f) == name {
			return f, nil
		}
	}
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return "", skerrors.UnknownFormatError(name, names)
}

// Tabular reports whether f renders rows as a table.
func (f Format) Tabular() bool {
	switch f {
	case FormatJSON, FormatJSONPretty, FormatCSV:
		return false
	default:
		return true
	}
}

// Formatter handles output formatting for different formats.
type Formatter struct {
	format Format
	writer io.Writer

	root   string
	offset int
	csvDir string
	now    func() time.Time

	csvPath string
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithRoot names the top-level key of json_pretty output.
func WithRoot(root string) Option {
	return func(f *Formatter) { f.root = root }
}

// WithOffset records which result offset the rows start at. It is part
// of the CSV file name.
func WithOffset(offset int) Option {
	return func(f *Formatter) { f.offset = offset }
}

// WithCSVDir sets where CSV files are written. An empty dir disables the
// file copy.
func WithCSVDir(dir string) Option {
	return func(f *Formatter) { f.csvDir = dir }
}

// WithClock replaces the clock used to stamp CSV file names.
func WithClock(now func() time.Time) Option {
	return func(f *Formatter) { f.now = now }
}

// NewFormatter creates a new formatter with the specified format. CSV
// output is also saved in the home directory unless WithCSVDir says
// otherwise.
func NewFormatter(format Format, writer io.Writer, opts ...Option) *Formatter {
	f := &Formatter{
		format: format,
		writer: writer,
		root:   "results",
		now:    time.Now,
	}
	if home, err := os.UserHomeDir(); err == nil {
		f.csvDir = home
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CSVPath returns the file the last CSV output was saved to, if any.
func (f *Formatter) CSVPath() string { return f.csvPath }

// Format returns the formatter's format.
func (f *Formatter) Format() Format { return f.format }

// Rows writes rows in the configured format. Table and CSV output is
// empty when no row has any field.
func (f *Formatter) Rows(rows []map[string]any) error {
	rows = unwrap(rows)

	switch f.format {
	case FormatJSON:
		return f.writeJSON(rows)
	case FormatJSONPretty:
		return f.writeJSONPretty(rows)
	}

	t := newGrid(rows)
	if len(t.columns) == 0 {
		return nil
	}

	switch f.format {
	case FormatCSV:
		return f.writeCSV(t)
	case FormatGrid, FormatFancyGrid, FormatPsql, FormatPresto, FormatGithub, FormatPipe, FormatHTML:
		return f.writeBox(t)
	case FormatPlain, FormatSimple, FormatOrgtbl, FormatRst:
		return f.writeAligned(t)
	case FormatJira, FormatMoinmoin, FormatYoutrack, FormatTextile, FormatMediawiki,
		FormatLatex, FormatLatexRaw, FormatLatexBooktabs:
		return f.writeMarkup(t)
	default:
		return skerrors.UnknownFormatError(string(f.format), nil)
	}
}

func (f *Formatter) writeJSON(rows []map[string]any) error {
	if rows == nil {
		rows = []map[string]any{}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	_, err = fmt.Fprintf(f.writer, "%s\n", data)
	return err
}

func (f *Formatter) writeJSONPretty(rows []map[string]any) error {
	if rows == nil {
		rows = []map[string]any{}
	}
	data, err := json.MarshalIndent(map[string]any{f.root: rows}, "", "    ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	_, err = fmt.Fprintf(f.writer, "%s\n", data)
	return err
}

// unwrap replaces rows that consist of a single "map" object by that object.
func unwrap(rows []map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		if inner, ok := row["map"].(map[string]any); ok && len(row) == 1 {
			row = inner
		}
		out = append(out, row)
	}
	return out
}

// grid is rows flattened to strings under a shared, sorted column set.
type grid struct {
	columns []string
	headers []string
	cells   [][]string
}

func newGrid(rows []map[string]any) *grid {
	seen := make(map[string]struct{})
	var columns []string
	for _, row := range rows {
		for k := range row {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				columns = append(columns, k)
			}
		}
	}
	sort.Strings(columns)

	g := &grid{columns: columns, headers: textutil.BeautifyHeaders(columns)}
	for _, row := range rows {
		line := make([]string, len(columns))
		for i, col := range columns {
			line[i] = cell(row[col])
		}
		g.cells = append(g.cells, line)
	}
	return g
}

// cell renders a value for a table. Objects and lists become JSON.
func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case map[string]any, []any:
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(data)
	default:
		return fmt.Sprint(x)
	}
}
