package metadata

import (
	"sort"

	"github.com/jmurray2011/sumoknife/internal/sumo"
)

// Role is the part of a role record used to annotate users.
type Role struct {
	Name         string
	Capabilities []string
}

// State is everything a connection knows about its account. It is owned by
// one connection and replaced wholesale on every activation.
type State struct {
	Collections map[Kind]*Collection
	Ready       bool
	Completion  *CompletionIndex
	RoleLookup  map[string]Role

	job *sumo.Job
}

// NewState returns an empty, not-ready state.
func NewState() *State {
	s := &State{}
	s.Reset()
	return s
}

// Reset drops all collections, the completion index and the active job.
func (s *State) Reset() {
	s.Collections = make(map[Kind]*Collection, len(Kinds))
	s.Ready = false
	s.Completion = &CompletionIndex{FieldExtractions: map[string][]string{}}
	s.RoleLookup = make(map[string]Role)
	s.job = nil
}

// Collection returns the collection of kind k, or an empty one.
func (s *State) Collection(k Kind) *Collection {
	if c, ok := s.Collections[k]; ok && c != nil {
		return c
	}
	return &Collection{Kind: k}
}

// Rows returns the rows of kind k.
func (s *State) Rows(k Kind) []sumo.Row {
	return s.Collection(k).Rows
}

// ActiveJob returns the current search job, if any.
func (s *State) ActiveJob() *sumo.Job {
	return s.job
}

// SetJob replaces the active search job. A nil job clears it.
func (s *State) SetJob(job *sumo.Job) {
	s.job = job
}

// Collectors returns the collectors without their embedded sources.
func (s *State) Collectors() []sumo.Row {
	rows := s.Rows(KindCollectors)
	out := make([]sumo.Row, 0, len(rows))
	for _, c := range rows {
		cp := make(sumo.Row, len(c))
		for k, v := range c {
			if k != "sources" {
				cp[k] = v
			}
		}
		out = append(out, cp)
	}
	return out
}

// Sources returns the sources of every collector in one list.
func (s *State) Sources() []sumo.Row {
	var out []sumo.Row
	for _, c := range s.Rows(KindCollectors) {
		out = append(out, sumo.AsRows(c["sources"])...)
	}
	return out
}

// Users returns the users annotated with their role names.
func (s *State) Users() []sumo.Row {
	return AnnotateUsers(s.Rows(KindUsers), s.RoleLookup)
}

// SavedQueries returns the personal folder queries keyed by name.
func (s *State) SavedQueries() map[string]string {
	out := make(map[string]string)
	for _, row := range s.Rows(KindQueries) {
		out[sumo.AsString(row["name"])] = sumo.AsString(row["query"])
	}
	return out
}

// buildRoleLookup indexes roles by id.
func buildRoleLookup(roles []sumo.Row) map[string]Role {
	lookup := make(map[string]Role, len(roles))
	for _, r := range roles {
		id := sumo.AsString(r["id"])
		if id == "" {
			continue
		}
		var caps []string
		if list, ok := r["capabilities"].([]any); ok {
			for _, c := range list {
				caps = append(caps, sumo.AsString(c))
			}
		}
		lookup[id] = Role{Name: sumo.AsString(r["name"]), Capabilities: caps}
	}
	return lookup
}

// queryRows turns saved queries into rows sorted by name.
func queryRows(queries map[string]string) []sumo.Row {
	names := make([]string, 0, len(queries))
	for name := range queries {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]sumo.Row, 0, len(names))
	for _, name := range names {
		rows = append(rows, sumo.Row{"name": name, "query": queries[name]})
	}
	return rows
}
