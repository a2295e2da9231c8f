package sumo

import (
	"context"
	"fmt"
	"sync"
)

// fakeFetcher answers requests from a queue of scripted responses.
type fakeFetcher struct {
	mu        sync.Mutex
	responses []fakeResponse
	calls     []Spec
}

type fakeResponse struct {
	raw any
	err error
}

func (f *fakeFetcher) push(raw any, err error) *fakeFetcher {
	f.responses = append(f.responses, fakeResponse{raw: raw, err: err})
	return f
}

func (f *fakeFetcher) Fetch(ctx context.Context, spec Spec) (*Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	spec.Params = spec.Params.Clone()
	f.calls = append(f.calls, spec)
	if len(f.responses) == 0 {
		return nil, fmt.Errorf("unexpected request %d for %s", len(f.calls), spec.Resource)
	}
	next := f.responses[0]
	f.responses = f.responses[1:]
	if next.err != nil {
		return nil, next.err
	}

	resp := &Response{StatusCode: 200, Raw: next.raw, Data: next.raw}
	if obj, ok := next.raw.(map[string]any); ok && spec.RootKey != "" {
		if inner, ok := obj[spec.RootKey]; ok {
			resp.Data = inner
		}
	}
	return resp, nil
}

func rows(ids ...string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = map[string]any{"id": id}
	}
	return out
}
