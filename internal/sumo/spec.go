// Package sumo implements the REST protocol spoken by the log-analytics
// service: resource requests, token pagination, search jobs and the
// content export sub-protocol.
package sumo

import (
	"fmt"
	"strings"

	skerrors "github.com/jmurray2011/sumoknife/internal/errors"
)

// PageSize is the service's default page length for offset/limit calls.
const PageSize = 250

// Method is the HTTP verb of a resource request.
type Method int

const (
	MethodGet Method = iota
	MethodPost
	MethodPut
	MethodDelete
)

// String returns the HTTP verb.
func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodPost:
		return "POST"
	case MethodPut:
		return "PUT"
	case MethodDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// hasBody reports whether params travel as a JSON body instead of a query string.
func (m Method) hasBody() bool {
	return m == MethodPost || m == MethodPut
}

// Row is one decoded JSON object from a response.
type Row = map[string]any

// Params are request parameters.
type Params map[string]any

// Clone returns a shallow copy of p. A nil receiver yields an empty map.
func (p Params) Clone() Params {
	out := make(Params, len(p)+2)
	for k, v := range p {
		out[k] = v
	}
	return out
}

// withPaging returns a copy of p with offset and limit filled in when absent.
func (p Params) withPaging() Params {
	out := p.Clone()
	if _, ok := out["offset"]; !ok {
		out["offset"] = 0
	}
	if _, ok := out["limit"]; !ok {
		out["limit"] = PageSize
	}
	return out
}

// Spec describes a single resource request.
type Spec struct {
	Method         Method
	APIVersion     string // defaults to v1
	Resource       string
	ResourceID     string
	ParentResource string
	ParentID       string

	// RootKey names the field that wraps the payload, e.g. "data".
	// An empty RootKey or one missing from the body leaves the body as is.
	RootKey string

	Params Params
}

// URI builds /api/{version}/[{parent}/{parentID}/]{resource}[/{id}].
func (s Spec) URI() (string, error) {
	if strings.TrimSpace(s.Resource) == "" {
		return "", &skerrors.ConfigurationError{Field: "resource", Message: "request has no resource name"}
	}

	version := s.APIVersion
	if version == "" {
		version = "v1"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "/api/%s", version)
	if s.ParentResource != "" && s.ParentID != "" {
		fmt.Fprintf(&b, "/%s/%s", s.ParentResource, s.ParentID)
	}
	b.WriteString("/")
	b.WriteString(s.Resource)
	if s.ResourceID != "" {
		b.WriteString("/")
		b.WriteString(s.ResourceID)
	}
	return b.String(), nil
}
