package sumo

import (
	"strconv"
	"strings"
)

// Flatten collapses a decoded JSON tree into a single-level map. Object
// keys and list indices are joined with "_"; only leaves are kept.
//
//	{"panels": [{"name": "A"}]} -> {"panels_0_name": "A"}
func Flatten(tree any) map[string]any {
	out := make(map[string]any)
	flattenInto(out, tree, "")
	return out
}

func flattenInto(out map[string]any, x any, prefix string) {
	switch v := x.(type) {
	case map[string]any:
		for k, child := range v {
			flattenInto(out, child, prefix+k+"_")
		}
	case []any:
		for i, child := range v {
			flattenInto(out, child, prefix+strconv.Itoa(i)+"_")
		}
	default:
		out[strings.TrimSuffix(prefix, "_")] = v
	}
}

const (
	panelNameSuffix  = "_name"
	panelQuerySuffix = "_queryString"
	searchSuffix     = "_search_queryText"
)

// PairQueries rebuilds name -> query text from flattened exported content.
//
// Dashboard panels contribute {prefix}_name / {prefix}_queryString pairs
// where the key mentions "panels". Saved searches contribute
// {prefix}_name / {prefix}_search_queryText pairs. Pairs with an empty
// name or query are skipped. A saved search wins over a panel of the same
// name.
func PairQueries(flat map[string]any) map[string]string {
	panels := make(map[string]struct{})
	searches := make(map[string]struct{})

	for k := range flat {
		if strings.Contains(k, "panels") {
			switch {
			case strings.HasSuffix(k, panelNameSuffix):
				panels[strings.TrimSuffix(k, panelNameSuffix)] = struct{}{}
			case strings.HasSuffix(k, panelQuerySuffix):
				panels[strings.TrimSuffix(k, panelQuerySuffix)] = struct{}{}
			}
		}
		if strings.HasSuffix(k, searchSuffix) {
			searches[strings.TrimSuffix(k, searchSuffix)] = struct{}{}
		}
	}

	out := make(map[string]string)
	pair := func(prefixes map[string]struct{}, querySuffix string) {
		for prefix := range prefixes {
			query := AsString(flat[prefix+querySuffix])
			name := AsString(flat[prefix+panelNameSuffix])
			if name == "" || query == "" {
				continue
			}
			out[name] = query
		}
	}
	pair(panels, panelQuerySuffix)
	pair(searches, searchSuffix)
	return out
}
