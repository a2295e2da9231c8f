package metadata

import (
	"strings"

	"github.com/jmurray2011/sumoknife/internal/sumo"
)

// FERExpression renders a field extraction rule as a query, one pipeline
// stage per line: the scope followed by the parse expression.
func FERExpression(fer sumo.Row) []string {
	return pipelineLines(sumo.AsString(fer["scope"]) + "|" + sumo.AsString(fer["parseExpression"]))
}

// ViewQuery renders a scheduled view's query, one pipeline stage per line.
func ViewQuery(view sumo.Row) []string {
	return pipelineLines(sumo.AsString(view["query"]))
}

// pipelineLines splits a query on "|". Stages after the first keep their
// leading pipe; a blank first stage becomes "*".
func pipelineLines(query string) []string {
	parts := strings.Split(query, "|")
	lines := make([]string, len(parts))
	for i, part := range parts {
		if i == 0 {
			if strings.TrimSpace(part) == "" {
				part = "*"
			}
			lines[i] = part
			continue
		}
		lines[i] = "|" + part
	}
	return lines
}

// FindByName returns the first row whose key equals name.
func FindByName(rows []sumo.Row, key, name string) (sumo.Row, bool) {
	for _, r := range rows {
		if sumo.AsString(r[key]) == name {
			return r, true
		}
	}
	return nil, false
}
