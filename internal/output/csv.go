package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CSVFileName returns the name a CSV export of rows starting at offset
// is saved under.
func CSVFileName(offset int, ms int64) string {
	return fmt.Sprintf("Sumo_CSV_Results_Entries_From_%d_TS_%d.csv", offset, ms)
}

// quoteAll renders one CSV record with every field quoted.
func quoteAll(fields []string) string {
	quoted := make([]string, len(fields))
	for i, v := range fields {
		quoted[i] = `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",") + "\r\n"
}

// writeCSV writes the table with a beautified header row. A copy is saved
// to the CSV directory when one is set.
func (f *Formatter) writeCSV(g *grid) error {
	var b strings.Builder
	b.WriteString(quoteAll(g.headers))
	for _, row := range g.cells {
		b.WriteString(quoteAll(row))
	}
	data := b.String()

	if f.csvDir != "" {
		path := filepath.Join(f.csvDir, CSVFileName(f.offset, f.now().UnixMilli()))
		if err := os.WriteFile(path, []byte(data), 0600); err != nil {
			return fmt.Errorf("save csv: %w", err)
		}
		f.csvPath = path
	}

	_, err := fmt.Fprint(f.writer, data)
	return err
}
