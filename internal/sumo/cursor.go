package sumo

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Advance computes the parameters for the next batch of a token-paginated
// fetch. A non-empty "next" in the raw body becomes the token of the next
// request. Otherwise the token is removed and done is true.
func Advance(params Params, resp *Response) (Params, bool) {
	next := params.Clone()
	if token := resp.Next(); token != "" {
		next["token"] = token
		return next, false
	}
	delete(next, "token")
	return next, true
}

// TerminalBatch reports whether rows is an error sentinel: exactly one
// element that carries an "errors" key.
func TerminalBatch(rows []Row) (*TerminalBatchError, bool) {
	if len(rows) != 1 {
		return nil, false
	}
	items, ok := rows[0]["errors"]
	if !ok {
		return nil, false
	}

	terr := &TerminalBatchError{Resource: AsString(rows[0]["resource_name"])}
	if msg := AsString(rows[0]["msg"]); msg != "" {
		terr.Message = msg
		return terr, true
	}

	var parts []string
	if list, ok := items.([]any); ok {
		for _, item := range list {
			if obj, ok := item.(map[string]any); ok {
				parts = append(parts, fmt.Sprintf("%s: %s", AsString(obj["code"]), AsString(obj["message"])))
			}
		}
	}
	terr.Message = strings.Join(parts, "; ")
	return terr, true
}

// Cursor walks a token-paginated resource and accumulates its rows.
type Cursor struct {
	Spec        Spec
	Params      Params
	Accumulated []Row
	Batches     int
	done        bool
}

// NewCursor starts a cursor for spec.
func NewCursor(spec Spec) *Cursor {
	return &Cursor{Spec: spec, Params: spec.Params.Clone()}
}

// Done reports whether the last batch ended the fetch.
func (c *Cursor) Done() bool { return c.done }

// Token returns the token the next batch will be requested with.
func (c *Cursor) Token() string { return AsString(c.Params["token"]) }

// Fetcher performs a single resource request.
type Fetcher interface {
	Fetch(ctx context.Context, spec Spec) (*Response, error)
}

// WaitFunc is called before every batch after the first.
type WaitFunc func(ctx context.Context) error

// Step fetches one batch. An API error is turned into a terminal batch.
func (c *Cursor) Step(ctx context.Context, f Fetcher) (*TerminalBatchError, error) {
	if c.done {
		return nil, nil
	}

	spec := c.Spec
	spec.Params = c.Params
	resp, err := f.Fetch(ctx, spec)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			c.done = true
			terr, _ := TerminalBatch([]Row{apiErr.Row()})
			return terr, nil
		}
		return nil, err
	}

	c.Batches++
	rows := resp.Rows()
	if terr, ok := TerminalBatch(rows); ok {
		c.done = true
		return terr, nil
	}

	c.Accumulated = append(c.Accumulated, rows...)
	c.Params, c.done = Advance(c.Params, resp)
	return nil, nil
}

// Collect runs Step until the fetch is done. wait gates every batch after
// the first and may be nil. A terminal batch ends the walk without retry.
func (c *Cursor) Collect(ctx context.Context, f Fetcher, wait WaitFunc) ([]Row, *TerminalBatchError, error) {
	first := true
	for !c.done {
		if !first && wait != nil {
			if err := wait(ctx); err != nil {
				return c.Accumulated, nil, err
			}
		}
		first = false

		terr, err := c.Step(ctx, f)
		if err != nil {
			return c.Accumulated, nil, err
		}
		if terr != nil {
			return c.Accumulated, terr, nil
		}
	}
	return c.Accumulated, nil, nil
}
