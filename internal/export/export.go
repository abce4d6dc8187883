// Package export implements the export pipeline: list every item in the
// vault, fetch each one's detail, and aggregate successes and failures into
// a single result without letting one bad item abort the run.
package export

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/nvinuesa/opexport/internal/op"
)

// Item is one successfully fetched vault item.
type Item struct {
	// ID is the identifier the item was listed and fetched under.
	ID string

	// Detail is the fetched content, kept opaque. Any syntactically valid
	// JSON is accepted; no schema is enforced.
	Detail json.RawMessage
}

// Failure records one item that could not be fetched.
type Failure struct {
	ID     string
	Reason string
}

// Result aggregates one export run. Every listed identifier appears exactly
// once, either in Items or in Failures.
type Result struct {
	// Items holds the fetched details in listing order (or sorted by id
	// when Options.SortByID is set).
	Items []Item

	// Failures holds the items that could not be fetched, with reasons.
	Failures []Failure
}

// Attempted returns the number of fetches attempted.
func (r *Result) Attempted() int {
	return len(r.Items) + len(r.Failures)
}

// Succeeded returns the number of items fetched successfully.
func (r *Result) Succeeded() int {
	return len(r.Items)
}

// Options configures an export run.
type Options struct {
	// Concurrency is the number of parallel fetch workers. Values below 1
	// mean sequential fetching, which is the reference behavior.
	Concurrency int

	// RatePerSec caps fetch invocations per second across all workers.
	// Zero means unlimited.
	RatePerSec float64

	// SortByID sorts the result by item id instead of listing order.
	SortByID bool

	// Progress, when non-nil, receives per-item completion updates.
	Progress *Progress

	// Logger receives run diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

// Run performs one export pass: a single listing, then exactly one fetch
// attempt per listed id (the client may retry internally). A listing failure
// aborts the run; a fetch failure is recorded and the run continues, so a
// bad item never affects its siblings.
//
// For a fixed listing and deterministic fetch results the returned Result is
// deterministic regardless of Concurrency: successes are slotted back by
// listing index, not by completion order.
func Run(ctx context.Context, client op.Client, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("listing items to export")
	refs, err := client.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("initiating fetch", "total", len(refs))

	if opts.Progress != nil {
		opts.Progress.Add(len(refs))
	}

	var limiter *rate.Limiter
	if opts.RatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), 1)
	}

	type outcome struct {
		detail json.RawMessage
		err    error
	}
	outcomes := make([]outcome, len(refs))

	g, ctx := errgroup.WithContext(ctx)
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	g.SetLimit(concurrency)

	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return err
				}
			}

			detail, err := client.GetItem(ctx, ref.ID)
			if err != nil && ctx.Err() != nil {
				// Interrupted, not failed: don't record a bogus reason.
				return ctx.Err()
			}
			outcomes[i] = outcome{detail: detail, err: err}

			if opts.Progress != nil {
				opts.Progress.Done()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{}
	for i, ref := range refs {
		if out := outcomes[i]; out.err != nil {
			result.Failures = append(result.Failures, Failure{ID: ref.ID, Reason: out.err.Error()})
			logger.Warn("item fetch failed", "id", ref.ID, "reason", out.err.Error())
		} else {
			result.Items = append(result.Items, Item{ID: ref.ID, Detail: out.detail})
		}
	}

	if opts.SortByID {
		sort.Slice(result.Items, func(i, j int) bool {
			return result.Items[i].ID < result.Items[j].ID
		})
		sort.Slice(result.Failures, func(i, j int) bool {
			return result.Failures[i].ID < result.Failures[j].ID
		})
	}

	return result, nil
}
