package metadata

import (
	"strings"

	"github.com/jmurray2011/sumoknife/internal/sumo"
)

// Candidate is one completion suggestion.
type Candidate struct {
	Value string
	Type  string
}

// MetaFields are the built-in metadata fields of every message.
var MetaFields = []string{
	"_blockId", "_collector", "_collectorId", "_format", "_messageCount",
	"_messageId", "_messageTime", "_raw", "_receiptTime", "_size", "_source",
	"_sourceCategory", "_sourceHost", "_sourceId", "_sourceName",
}

// Keywords are operators and functions of the query language.
var Keywords = []string{
	"abs", "accum", "avg", "backshift", "by", "ceil", "compare", "concat",
	"contains", "count", "count_distinct", "count_frequent", "csv", "diff",
	"fields", "fillmissing", "filter", "first", "floor", "format", "formatDate",
	"if", "isBlank", "isEmpty", "isNull", "join", "json", "json auto", "keyvalue",
	"kv", "last", "length", "limit", "logcompare", "logreduce", "lookup", "max",
	"min", "now", "num", "outlier", "parse", "parse regex", "parse xml", "pct",
	"predict", "queryEndTime()", "queryStartTime()", "replace", "round", "save",
	"sessionize", "smooth", "sort", "split", "stddev", "substring", "sum",
	"timeslice", "toLowerCase", "toUpperCase", "top", "topk", "total", "trace",
	"transaction", "transpose", "trim", "urldecode", "urlencode", "where",
	"_index", "_view", "AND", "OR",
}

// CompletionIndex holds deduplicated completion values built when a sync
// pass completes.
type CompletionIndex struct {
	Collectors []string
	Sources    []string
	Categories []string
	Partitions []string
	Views      []string

	// FieldExtractions maps a rule scope to the fields it extracts.
	FieldExtractions map[string][]string
	scopes           []string
}

type uniqueList struct {
	seen  map[string]struct{}
	items []string
}

func (u *uniqueList) add(v any) {
	s := sumo.AsString(v)
	if s == "" {
		return
	}
	if u.seen == nil {
		u.seen = make(map[string]struct{})
	}
	if _, ok := u.seen[s]; ok {
		return
	}
	u.seen[s] = struct{}{}
	u.items = append(u.items, s)
}

// BuildCompletionIndex derives completion values from loaded collections.
// Categories come from both collectors and their sources.
func BuildCompletionIndex(s *State) *CompletionIndex {
	var collectors, sources, categories, partitions, views uniqueList

	for _, c := range s.Rows(KindCollectors) {
		collectors.add(c["name"])
		categories.add(c["category"])
		for _, src := range sumo.AsRows(c["sources"]) {
			sources.add(src["name"])
			categories.add(src["category"])
		}
	}
	for _, p := range s.Rows(KindPartitions) {
		partitions.add(p["name"])
	}
	for _, v := range s.Rows(KindViews) {
		views.add(v["indexName"])
	}

	idx := &CompletionIndex{
		Collectors:       collectors.items,
		Sources:          sources.items,
		Categories:       categories.items,
		Partitions:       partitions.items,
		Views:            views.items,
		FieldExtractions: make(map[string][]string),
	}

	for _, fer := range s.Rows(KindFERs) {
		scope := sumo.AsString(fer["scope"])
		if scope == "" {
			continue
		}
		var fields []string
		if list, ok := fer["fieldNames"].([]any); ok {
			for _, f := range list {
				fields = append(fields, sumo.AsString(f))
			}
		}
		if _, ok := idx.FieldExtractions[scope]; !ok {
			idx.scopes = append(idx.scopes, scope)
		}
		idx.FieldExtractions[scope] = fields
	}
	return idx
}

// Lookup returns the candidates for the value of a metadata field, e.g.
// _sourceCategory. Any other field yields meta fields and keywords.
func (c *CompletionIndex) Lookup(field, prefix string) []Candidate {
	switch field {
	case "_collector":
		return match(c.Collectors, "Collector", prefix)
	case "_sourceName":
		return match(c.Sources, "Src Nm", prefix)
	case "_sourceCategory":
		return match(c.Categories, "Src Cat", prefix)
	case "_index":
		return match(c.Partitions, "Idx", prefix)
	case "_view":
		return match(c.Views, "SV", prefix)
	default:
		out := match(MetaFields, "Meta", prefix)
		return append(out, match(Keywords, "KWD", prefix)...)
	}
}

// FieldsFor returns the fields of every extraction rule whose scope
// appears in query.
func (c *CompletionIndex) FieldsFor(query, prefix string) []Candidate {
	var fields []string
	for _, scope := range c.scopes {
		if strings.Contains(query, scope) {
			fields = append(fields, c.FieldExtractions[scope]...)
		}
	}
	return match(fields, "FER", prefix)
}

// match keeps values starting with a one-character prefix, or containing
// a longer one.
func match(values []string, typ, prefix string) []Candidate {
	var out []Candidate
	for _, v := range values {
		ok := prefix == ""
		if !ok && len(prefix) == 1 {
			ok = strings.HasPrefix(v, prefix)
		} else if !ok {
			ok = strings.Contains(v, prefix)
		}
		if ok {
			out = append(out, Candidate{Value: v, Type: typ})
		}
	}
	return out
}
