// Package metadata hydrates and caches the auxiliary collections a
// connection needs before it accepts queries: collectors and their
// sources, saved queries, field extraction rules, partitions, scheduled
// views, roles and users.
package metadata

import (
	skerrors "github.com/jmurray2011/sumoknife/internal/errors"
	"github.com/jmurray2011/sumoknife/internal/sumo"
)

// Kind names one metadata collection. The value doubles as its cache file name.
type Kind string

const (
	KindCollectors Kind = "collectors"
	KindQueries    Kind = "queries"
	KindFERs       Kind = "fers"
	KindPartitions Kind = "partitions"
	KindViews      Kind = "views"
	KindRoles      Kind = "roles"
	KindUsers      Kind = "users"
)

// Kinds lists every collection loaded on activation.
var Kinds = []Kind{
	KindCollectors,
	KindQueries,
	KindFERs,
	KindPartitions,
	KindViews,
	KindRoles,
	KindUsers,
}

// Title returns the display name of k.
func (k Kind) Title() string {
	switch k {
	case KindCollectors:
		return "Collectors"
	case KindQueries:
		return "Personal Folder Queries"
	case KindFERs:
		return "Field Extraction Rules"
	case KindPartitions:
		return "Partitions"
	case KindViews:
		return "Scheduled Views"
	case KindRoles:
		return "Roles"
	case KindUsers:
		return "Users"
	default:
		return string(k)
	}
}

// ParseKind resolves a kind name.
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == name {
			return k, nil
		}
	}
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = string(k)
	}
	return "", skerrors.UnknownKindError(name, names)
}

// resourceSpec returns the paginated request of a directly listed kind.
func resourceSpec(k Kind) (sumo.Spec, bool) {
	switch k {
	case KindCollectors:
		return sumo.Spec{Resource: "collectors", RootKey: "collectors", Params: sumo.Params{"limit": 1000}}, true
	case KindFERs:
		return sumo.Spec{Resource: "extractionRules", RootKey: "data"}, true
	case KindPartitions:
		return sumo.Spec{Resource: "partitions", RootKey: "data"}, true
	case KindViews:
		return sumo.Spec{Resource: "scheduledViews", RootKey: "data"}, true
	case KindRoles:
		return sumo.Spec{Resource: "roles", RootKey: "data", Params: sumo.Params{"sortBy": "name"}}, true
	case KindUsers:
		return sumo.Spec{Resource: "users", RootKey: "data", Params: sumo.Params{"sortBy": "firstName"}}, true
	default:
		return sumo.Spec{}, false
	}
}
