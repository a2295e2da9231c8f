package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() []map[string]any {
	return []map[string]any{
		{"map": map[string]any{"_count": "12", "_sourcecategory": "prod/web"}},
		{"map": map[string]any{"_count": "3", "_sourcecategory": "prod/db"}},
	}
}

func render(t *testing.T, format Format, rows []map[string]any, opts ...Option) string {
	t.Helper()
	var buf bytes.Buffer
	opts = append([]Option{WithCSVDir("")}, opts...)
	require.NoError(t, NewFormatter(format, &buf, opts...).Rows(rows))
	return buf.String()
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"grid", FormatGrid, false},
		{"JSON_PRETTY", FormatJSONPretty, false},
		{" latex_booktabs ", FormatLatexBooktabs, false},
		{"", DefaultFormat, false},
		{"gird", "", true},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFormat("gird")
	assert.Contains(t, err.Error(), "grid")
}

func TestFormatsComplete(t *testing.T) {
	all := Formats()
	assert.Len(t, all, 22)
	for _, f := range all {
		got, err := ParseFormat(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	all[0] = "mutated"
	assert.Equal(t, FormatPlain, Formats()[0])
}

func TestEveryFormatRendersSample(t *testing.T) {
	for _, f := range Formats() {
		t.Run(string(f), func(t *testing.T) {
			out := render(t, f, sampleRows())
			assert.NotEmpty(t, out)
			assert.Contains(t, out, "prod/web")
			assert.True(t, strings.HasSuffix(out, "\n"), "output ends with a newline")
		})
	}
}

func TestHeadersAreBeautifiedAndSorted(t *testing.T) {
	out := render(t, FormatPlain, sampleRows())
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Count  Sourcecategory", lines[0])
	assert.Equal(t, "12     prod/web", lines[1])
	assert.Equal(t, "3      prod/db", lines[2])
}

func TestAlignedFormats(t *testing.T) {
	rows := []map[string]any{{"a": "x", "bb": "long value"}}

	assert.Equal(t, "A  Bb\n-  ----------\nx  long value\n", render(t, FormatSimple, rows))
	assert.Equal(t, "| A | Bb         |\n|---+------------|\n| x | long value |\n", render(t, FormatOrgtbl, rows))
	assert.Equal(t, "=  ==========\nA  Bb\n=  ==========\nx  long value\n=  ==========\n", render(t, FormatRst, rows))
}

func TestMarkupFormats(t *testing.T) {
	rows := []map[string]any{{"a": "1", "b": "2"}}

	tests := []struct {
		format Format
		want   string
	}{
		{FormatJira, "|| A || B ||\n| 1 | 2 |\n"},
		{FormatMoinmoin, "|| ''' A ''' || ''' B ''' ||\n|| 1 || 2 ||\n"},
		{FormatYoutrack, "||  A  ||  B  ||\n|  1  |  2  |\n"},
		{FormatTextile, "|_. A |_. B |\n| 1 | 2 |\n"},
		{FormatMediawiki, "{| class=\"wikitable\" style=\"text-align: left;\"\n|+ <!-- caption -->\n|-\n! A !! B\n|-\n| 1 || 2\n|}\n"},
		{FormatLatexBooktabs, "\\begin{tabular}{ll}\n\\toprule\n A & B \\\\\n\\midrule\n 1 & 2 \\\\\n\\bottomrule\n\\end{tabular}\n"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			assert.Equal(t, tt.want, render(t, tt.format, rows))
		})
	}
}

func TestLatexEscaping(t *testing.T) {
	rows := []map[string]any{{"v": "50% of $x_1"}}
	assert.Contains(t, render(t, FormatLatex, rows), `50\% of \$x\_1`)
	assert.Contains(t, render(t, FormatLatexRaw, rows), `50% of $x_1`)
}

func TestBoxFormats(t *testing.T) {
	rows := []map[string]any{{"name": "web", "count": 2}}

	grid := render(t, FormatGrid, rows)
	assert.Contains(t, grid, "+")
	assert.Contains(t, grid, "| Count | Name |")

	assert.Contains(t, render(t, FormatGithub, rows), "| Count | Name |")
	assert.Contains(t, render(t, FormatHTML, rows), "<table")
	presto := render(t, FormatPresto, rows)
	assert.False(t, strings.HasPrefix(presto, "+"), "presto has no outer border")
	assert.Contains(t, presto, "Count | Name")
}

func TestColumnsAreUnionOfKeys(t *testing.T) {
	rows := []map[string]any{{"a": "1"}, {"b": "2"}}
	out := render(t, FormatJira, rows)
	assert.Equal(t, "|| A || B ||\n| 1 |  |\n|  | 2 |\n", out)
}

func TestNestedValuesAreJSON(t *testing.T) {
	rows := []map[string]any{{"roles": []any{"Admin", "Analyst"}, "n": json.Number("7")}}
	out := render(t, FormatJira, rows)
	assert.Contains(t, out, `["Admin","Analyst"]`)
	assert.Contains(t, out, "| 7 |")
}

func TestEmptyInput(t *testing.T) {
	for _, f := range Formats() {
		t.Run(string(f), func(t *testing.T) {
			out := render(t, f, nil)
			switch f {
			case FormatJSON:
				assert.Equal(t, "[]\n", out)
			case FormatJSONPretty:
				assert.JSONEq(t, `{"results": []}`, out)
			default:
				assert.Empty(t, out)
			}
		})
	}
	assert.Empty(t, render(t, FormatGrid, []map[string]any{{}}), "first row without fields")
}

func TestLaterRowsRenderAfterEmptyFirstRow(t *testing.T) {
	rows := []map[string]any{{}, {"a": "1"}}
	assert.Equal(t, "|| A ||\n|  |\n| 1 |\n", render(t, FormatJira, rows))
}

func TestMarkupEscapesCellSeparators(t *testing.T) {
	rows := []map[string]any{{"q": "error | count"}}

	tests := []struct {
		format Format
		want   string
	}{
		{FormatJira, `| error \| count |`},
		{FormatYoutrack, `|  error \| count  |`},
		{FormatTextile, "| error &#124; count |"},
		{FormatMoinmoin, "|| error &#124; count ||"},
		{FormatMediawiki, "| error &#124; count\n"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			assert.Contains(t, render(t, tt.format, rows), tt.want)
		})
	}
}

func TestJSONFormats(t *testing.T) {
	rows := []map[string]any{{"map": map[string]any{"a": "1"}}}

	assert.Equal(t, "[{\"a\":\"1\"}]\n", render(t, FormatJSON, rows))

	out := render(t, FormatJSONPretty, rows, WithRoot("messages"))
	assert.JSONEq(t, `{"messages": [{"a": "1"}]}`, out)
	assert.Contains(t, out, "\n        {", "indented by four spaces per level")
}

func TestCSV(t *testing.T) {
	dir := t.TempDir()
	clock := func() time.Time { return time.UnixMilli(1700000000123) }

	var buf bytes.Buffer
	f := NewFormatter(FormatCSV, &buf, WithCSVDir(dir), WithClock(clock), WithOffset(250))
	require.NoError(t, f.Rows([]map[string]any{{"msg": `say "hi"`, "n": "1"}}))

	want := "\"Msg\",\"N\"\r\n\"say \"\"hi\"\"\",\"1\"\r\n"
	assert.Equal(t, want, buf.String())

	path := filepath.Join(dir, "Sumo_CSV_Results_Entries_From_250_TS_1700000000123.csv")
	assert.Equal(t, path, f.CSVPath())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, string(data))
}

func TestCSVWithoutDirectory(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(FormatCSV, &buf, WithCSVDir(""))
	require.NoError(t, f.Rows([]map[string]any{{"a": "1"}}))
	assert.Empty(t, f.CSVPath())
	assert.Equal(t, "\"A\"\r\n\"1\"\r\n", buf.String())
}

func TestTabular(t *testing.T) {
	assert.True(t, FormatGrid.Tabular())
	assert.False(t, FormatCSV.Tabular())
	assert.False(t, FormatJSONPretty.Tabular())
}
