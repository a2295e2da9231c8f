package metadata

import (
	"github.com/jmurray2011/sumoknife/internal/sumo"
	"github.com/jmurray2011/sumoknife/pkg/textutil"
)

// AnnotateUsers returns copies of users with a "roles" list holding the
// title-cased names of their roleIds. Unknown role ids are skipped, and
// users are returned unchanged when lookup is empty.
func AnnotateUsers(users []sumo.Row, lookup map[string]Role) []sumo.Row {
	if len(lookup) == 0 {
		return users
	}

	out := make([]sumo.Row, 0, len(users))
	for _, u := range users {
		cp := make(sumo.Row, len(u)+1)
		for k, v := range u {
			cp[k] = v
		}

		var names []any
		if ids, ok := u["roleIds"].([]any); ok {
			for _, id := range ids {
				if role, ok := lookup[sumo.AsString(id)]; ok {
					names = append(names, textutil.Title(role.Name))
				}
			}
		}
		if len(names) > 0 {
			cp["roles"] = names
		}
		out = append(out, cp)
	}
	return out
}
