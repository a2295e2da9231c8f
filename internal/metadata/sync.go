package metadata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/jmurray2011/sumoknife/internal/logging"
	"github.com/jmurray2011/sumoknife/internal/sumo"
)

// DefaultBatchDelay separates successive paginated batches.
const DefaultBatchDelay = 600 * time.Millisecond

// LoadResult is what one loader reports when its kind is complete.
type LoadResult struct {
	Kind       Kind
	Collection *Collection
}

// Err returns the terminal error of the load, if any.
func (r LoadResult) Err() error {
	if r.Collection == nil {
		return nil
	}
	return r.Collection.Err
}

// Report summarizes one sync pass.
type Report struct {
	// Results in completion order.
	Results []LoadResult

	// Saved lists the kinds written to the cache.
	Saved []Kind

	// SaveErrors holds cache write failures by kind.
	SaveErrors map[Kind]error
}

// Failed returns the results that ended on a terminal error.
func (r *Report) Failed() []LoadResult {
	var out []LoadResult
	for _, res := range r.Results {
		if res.Err() != nil {
			out = append(out, res)
		}
	}
	return out
}

// Engine loads every metadata kind of a connection.
type Engine struct {
	fetcher        sumo.Fetcher
	cache          *Cache
	limiter        *rate.Limiter
	exportInterval time.Duration
	workers        int
	log            logging.Logger
	onResult       func(LoadResult)
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache enables reading and writing the on-disk cache.
func WithCache(c *Cache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithBatchDelay sets the minimum gap between successive batch requests
// across all loaders. Zero or less disables the delay.
func WithBatchDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d <= 0 {
			e.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		e.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithExportInterval sets the polling interval of the content export.
func WithExportInterval(d time.Duration) Option {
	return func(e *Engine) { e.exportInterval = d }
}

// WithWorkers bounds how many kinds load at once.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithResultHandler registers fn to see each kind as it completes.
// fn runs on the goroutine that drives the barrier.
func WithResultHandler(fn func(LoadResult)) Option {
	return func(e *Engine) { e.onResult = fn }
}

// NewEngine creates an Engine issuing requests through f.
func NewEngine(f sumo.Fetcher, opts ...Option) *Engine {
	e := &Engine{
		fetcher:        f,
		limiter:        rate.NewLimiter(rate.Every(DefaultBatchDelay), 1),
		exportInterval: sumo.DefaultPollInterval,
		log:            logging.NopLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Sync resets state and loads every kind into it. Loaders run
// concurrently and report on a channel; only this goroutine mutates
// state. When the last kind reports, role lookup and the completion index
// are built, network results are cached and state becomes ready. Terminal
// errors in individual kinds do not stop the pass. Sync returns an error
// only when ctx ends before the barrier opens.
func (e *Engine) Sync(ctx context.Context, state *State) (*Report, error) {
	state.Reset()

	results := make(chan LoadResult, len(Kinds))
	g := new(errgroup.Group)
	if e.workers > 0 {
		g.SetLimit(e.workers)
	}

	go func() {
		for _, k := range Kinds {
			g.Go(func() error {
				results <- e.load(ctx, k)
				return nil
			})
		}
		_ = g.Wait()
		close(results)
	}()

	report := &Report{SaveErrors: make(map[Kind]error)}
	barrier := NewBarrier(len(Kinds))

	for res := range results {
		state.Collections[res.Kind] = res.Collection
		report.Results = append(report.Results, res)
		if e.onResult != nil {
			e.onResult(res)
		}
		if barrier.Signal(res.Kind) && ctx.Err() == nil {
			e.finish(state, report)
		}
	}

	if !state.Ready {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		return report, fmt.Errorf("sync ended after %d of %d kinds", barrier.Count(), len(Kinds))
	}
	return report, nil
}

func (e *Engine) finish(state *State, report *Report) {
	state.RoleLookup = buildRoleLookup(state.Rows(KindRoles))
	state.Completion = BuildCompletionIndex(state)

	if e.cache != nil {
		for _, k := range Kinds {
			c := state.Collection(k)
			if c.Provenance != FromNetwork || c.Err != nil {
				continue
			}
			if err := e.cache.Save(k, c.Rows); err != nil {
				report.SaveErrors[k] = err
				e.log.WithField("kind", k).Warn("cache save failed: %v", err)
				continue
			}
			report.Saved = append(report.Saved, k)
		}
	}

	state.Ready = true
	e.log.Info("metadata ready: %d kinds loaded", len(report.Results))
}

// load produces the collection of kind k, preferring the cache.
func (e *Engine) load(ctx context.Context, k Kind) LoadResult {
	log := e.log.WithField("kind", k)

	if e.cache != nil {
		rows, ok, err := e.cache.Load(k)
		switch {
		case err != nil:
			log.Warn("ignoring unreadable cache: %v", err)
		case ok:
			log.Debug("loaded %d rows from cache", len(rows))
			return LoadResult{Kind: k, Collection: &Collection{Kind: k, Rows: rows, Provenance: FromCache}}
		}
	}

	rows, err := e.fetch(ctx, k)
	col := &Collection{Kind: k, Rows: rows, Provenance: FromNetwork}
	if err != nil {
		col.Rows = nil
		col.Err = err
		var terr *sumo.TerminalBatchError
		if errors.As(err, &terr) {
			log.Info("terminal error batch: %s", terr.Message)
		} else {
			log.Warn("load failed: %v", err)
		}
	} else {
		log.Debug("loaded %d rows from network", len(rows))
	}
	return LoadResult{Kind: k, Collection: col}
}

func (e *Engine) wait(ctx context.Context) error {
	return e.limiter.Wait(ctx)
}

// fetch loads kind k from the service.
func (e *Engine) fetch(ctx context.Context, k Kind) ([]sumo.Row, error) {
	switch k {
	case KindQueries:
		queries, err := sumo.NewExporter(e.fetcher, e.exportInterval, e.log).PersonalFolderQueries(ctx)
		if err != nil {
			return nil, err
		}
		return queryRows(queries), nil
	case KindCollectors:
		return e.fetchCollectors(ctx)
	default:
		return e.collect(ctx, k)
	}
}

func (e *Engine) collect(ctx context.Context, k Kind) ([]sumo.Row, error) {
	spec, ok := resourceSpec(k)
	if !ok {
		return nil, fmt.Errorf("no resource for kind %q", k)
	}
	rows, terr, err := sumo.NewCursor(spec).Collect(ctx, e.fetcher, e.wait)
	if err != nil {
		return nil, err
	}
	if terr != nil {
		return nil, terr
	}
	return rows, nil
}

// fetchCollectors lists collectors and attaches each one's sources.
// A collector whose sources cannot be read keeps none.
func (e *Engine) fetchCollectors(ctx context.Context) ([]sumo.Row, error) {
	collectors, err := e.collect(ctx, KindCollectors)
	if err != nil {
		return nil, err
	}

	for _, c := range collectors {
		if err := e.wait(ctx); err != nil {
			return nil, err
		}

		id := sumo.AsString(c["id"])
		resp, err := e.fetcher.Fetch(ctx, sumo.Spec{
			ParentResource: "collectors",
			ParentID:       id,
			Resource:       "sources",
			RootKey:        "sources",
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			e.log.WithField("collector", c["name"]).Info("sources unavailable: %v", err)
			continue
		}

		sources := resp.Rows()
		if terr, ok := sumo.TerminalBatch(sources); ok {
			e.log.WithField("collector", c["name"]).Info("sources unavailable: %s", terr.Message)
			continue
		}
		list := make([]any, len(sources))
		for i, s := range sources {
			list[i] = s
		}
		c["sources"] = list
	}
	return collectors, nil
}
