// Package executor runs search strategies against a flight provider through a
// bounded worker pool. Every provider call goes through the shared rate
// limiter; each strategy has its own timeout and its failures never affect
// the others.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/dharmasatrya/flightscout/internal/aggregator"
	"github.com/dharmasatrya/flightscout/internal/cache"
	"github.com/dharmasatrya/flightscout/internal/connection"
	"github.com/dharmasatrya/flightscout/internal/models"
	"github.com/dharmasatrya/flightscout/internal/providers"
	"github.com/dharmasatrya/flightscout/internal/ratelimit"
)

// PolicyLookup supplies the airline name and policies attached to every
// returned flight.
type PolicyLookup interface {
	AirlinePolicy(airlineCode, policyType string) map[string]any
	AirlineName(airlineCode string) string
}

type Config struct {
	Workers         int
	StrategyTimeout time.Duration
	MaxRetries      int
	RetryDelays     []time.Duration

	// Round trips searched as two one-way halves combine at most this many
	// candidates from each side.
	MaxRoundTripPairs int
	// Onward legs after a hub are searched on at most this many dates.
	MaxOnwardDates int
}

func DefaultConfig() Config {
	return Config{
		Workers:           3,
		StrategyTimeout:   60 * time.Second,
		MaxRetries:        2,
		RetryDelays:       []time.Duration{200 * time.Millisecond, 500 * time.Millisecond},
		MaxRoundTripPairs: 10,
		MaxOnwardDates:    2,
	}
}

type Executor struct {
	provider providers.Provider
	limiter  *ratelimit.ProviderLimiter
	cache    cache.Cache
	matcher  *connection.Matcher
	policies PolicyLookup
	config   Config

	inflight singleflight.Group
	mu       sync.Mutex
	calls    map[string]*sharedCall
}

func New(provider providers.Provider, limiter *ratelimit.ProviderLimiter, c cache.Cache, policies PolicyLookup, config Config) *Executor {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.StrategyTimeout <= 0 {
		config.StrategyTimeout = DefaultConfig().StrategyTimeout
	}
	if config.MaxRoundTripPairs < 1 {
		config.MaxRoundTripPairs = DefaultConfig().MaxRoundTripPairs
	}
	if config.MaxOnwardDates < 1 {
		config.MaxOnwardDates = DefaultConfig().MaxOnwardDates
	}
	if limiter == nil {
		limiter = ratelimit.NewProviderLimiterWithDefaults()
	}
	if c == nil {
		c = cache.NewNoOpCache()
	}
	return &Executor{
		provider: provider,
		limiter:  limiter,
		cache:    c,
		matcher:  connection.NewMatcher(),
		policies: policies,
		config:   config,
		calls:    make(map[string]*sharedCall),
	}
}

// WithMatcher replaces the default layover bounds.
func (e *Executor) WithMatcher(m *connection.Matcher) *Executor {
	e.matcher = m
	return e
}

// Execute runs every strategy and aggregates the outcome. It only fails when
// req itself is invalid; strategy failures are reported inside the response.
func (e *Executor) Execute(ctx context.Context, strategies []models.SearchStrategy, req models.SearchRequest) (*models.AggregatedResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	results, skipped := e.Run(ctx, strategies, req)

	var budget []models.BudgetAlternative
	primaryURL := ""
	for _, r := range results {
		budget = append(budget, r.BudgetAlternatives...)
		if primaryURL == "" && r.DeepLinkURL != "" {
			primaryURL = r.DeepLinkURL
		}
	}
	for i := range results {
		for j := range results[i].Flights {
			if results[i].Flights[j].DeepLinkURL == "" {
				results[i].Flights[j].DeepLinkURL = primaryURL
			}
		}
	}

	resp := aggregator.Aggregate(results, req, budget, primaryURL)
	resp.SearchID = uuid.NewString()
	resp.DebugInfo.SkippedStrategies = skipped
	resp.SearchTimeMs = time.Since(start).Milliseconds()

	log.Printf("Search %s %s→%s: %d strategies, %d succeeded, %d flights in %dms",
		resp.SearchID, req.Origin, req.Destination, resp.SearchSummary.TotalStrategiesAttempted,
		resp.SearchSummary.SuccessfulSearches, resp.SearchSummary.TotalFlightsFound, resp.SearchTimeMs)
	return resp, nil
}

// Run executes strategies on the worker pool and returns their results in
// strategy order. Strategies with an invalid route are not run; their
// explanations are returned separately.
func (e *Executor) Run(ctx context.Context, strategies []models.SearchStrategy, req models.SearchRequest) ([]models.SearchResult, []string) {
	slots := make([]*models.SearchResult, len(strategies))
	var skipped []string

	var g errgroup.Group
	g.SetLimit(e.config.Workers)

	for i, s := range strategies {
		i, s := i, s
		if err := s.Validate(); err != nil {
			log.Printf("Skipping strategy %q: %v", s.Explanation, err)
			skipped = append(skipped, s.Explanation)
			continue
		}
		g.Go(func() error {
			r := e.runWithTimeout(ctx, s, req)
			slots[i] = &r
			return nil
		})
	}
	g.Wait()

	results := make([]models.SearchResult, 0, len(strategies))
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}
	return results, skipped
}

// runWithTimeout stops waiting once the strategy deadline passes. The
// strategy's context is cancelled at the same moment so in-flight provider
// calls return early; whatever the strategy produces afterwards is dropped.
func (e *Executor) runWithTimeout(ctx context.Context, s models.SearchStrategy, req models.SearchRequest) models.SearchResult {
	sctx, cancel := context.WithTimeout(ctx, e.config.StrategyTimeout)
	defer cancel()

	done := make(chan models.SearchResult, 1)
	go func() {
		done <- e.safeRun(sctx, s, req)
	}()

	select {
	case r := <-done:
		return r
	case <-sctx.Done():
		if errors.Is(sctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			log.Printf("Strategy %q timed out after %s", s.Explanation, e.config.StrategyTimeout)
			return models.Failed(s, fmt.Sprintf("strategy timed out after %s", e.config.StrategyTimeout))
		}
		return models.Failed(s, fmt.Sprintf("search cancelled: %v", ctx.Err()))
	}
}

func (e *Executor) safeRun(ctx context.Context, s models.SearchStrategy, req models.SearchRequest) (result models.SearchResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Strategy %q panicked: %v\n%s", s.Explanation, r, debug.Stack())
			result = models.Failed(s, fmt.Sprintf("internal error: %v", r))
		}
	}()

	result = e.runStrategy(ctx, s, req)
	if !result.Success {
		log.Printf("Strategy %q failed: %s", s.Explanation, result.Error)
	}
	return result
}

func (e *Executor) runStrategy(ctx context.Context, s models.SearchStrategy, req models.SearchRequest) models.SearchResult {
	dep, ret := s.Dates(req)

	var (
		flights []models.Flight
		meta    routeMeta
		err     error
	)
	switch {
	case !s.IsRoundTrip():
		flights, meta, err = e.searchRoute(ctx, s.OutboundRoute, dep, req)
	case isMirror(s.OutboundRoute, s.ReturnRoute):
		flights, meta, err = e.searchRoundTripFare(ctx, s.OutboundRoute, dep, ret, req)
	default:
		flights, meta, err = e.searchRoundTripHalves(ctx, s, dep, ret, req)
	}
	if err != nil {
		return models.Failed(s, err.Error())
	}

	return models.SearchResult{
		Strategy:           s,
		Flights:            e.enrich(s, flights, dep, ret, meta.deepLink),
		Success:            true,
		BudgetAlternatives: meta.budget,
		DeepLinkURL:        meta.deepLink,
	}
}

// isMirror reports a plain two-airport round trip, which providers price as
// a single round-trip fare.
func isMirror(out, ret []string) bool {
	return len(out) == 2 && len(ret) == 2 && out[0] == ret[1] && out[1] == ret[0]
}
