// Package checker runs tracker queries against answer engines and stores
// the detection results.
package checker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/brandlens/brandlens-cli/internal/evidence"
	"github.com/brandlens/brandlens-cli/internal/mention"
	"github.com/brandlens/brandlens-cli/internal/model"
	"github.com/brandlens/brandlens-cli/internal/normalize"
	"github.com/brandlens/brandlens-cli/internal/store"
)

// Engine answers a search-style query and returns the provider's raw
// response payload for storage.
type Engine interface {
	Ask(ctx context.Context, query string) (string, error)
}

// Config tunes checker concurrency and per-engine request rates.
type Config struct {
	Concurrency    int     `yaml:"concurrency" mapstructure:"concurrency"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// Checker fans tracker checks out across answer engines and persists one
// search record per tracker.
type Checker struct {
	store      store.Store
	engines    map[model.Engine]Engine
	limiters   map[model.Engine]*rate.Limiter
	breakers   map[model.Engine]*breaker
	summarizer *evidence.Summarizer
	cfg        Config
}

// Summary reports the outcome of one checker run.
type Summary struct {
	Checked   int `json:"checked"`
	Mentioned int `json:"mentioned"`
	Failed    int `json:"failed"`
}

func New(st store.Store, engines map[model.Engine]Engine, summarizer *evidence.Summarizer, cfg Config) *Checker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 1
	}
	if summarizer == nil {
		summarizer = evidence.Default()
	}

	limiters := make(map[model.Engine]*rate.Limiter, len(engines))
	breakers := make(map[model.Engine]*breaker, len(engines))
	for name := range engines {
		limiters[name] = rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1)
		breakers[name] = newBreaker(breakerThreshold, breakerCooldown)
	}

	return &Checker{
		store:      st,
		engines:    engines,
		limiters:   limiters,
		breakers:   breakers,
		summarizer: summarizer,
		cfg:        cfg,
	}
}

// Run checks every tracker and stores one record per successful check.
// Individual tracker failures are logged and counted, not fatal.
func (c *Checker) Run(ctx context.Context, trackers []model.Tracker) (Summary, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)

	var checked, mentioned, failed atomic.Int64

	for _, tr := range trackers {
		g.Go(func() error {
			log := zap.L().With(
				zap.String("tracker_id", tr.ID),
				zap.String("brand", tr.Brand),
				zap.String("engine", string(tr.Engine)),
			)

			rec, err := c.checkOne(gctx, tr)
			if err != nil {
				failed.Add(1)
				log.Error("tracker check failed", zap.Error(err))
				return nil // don't abort the run on individual failure
			}

			checked.Add(1)
			if rec.Mentioned != nil && *rec.Mentioned {
				mentioned.Add(1)
			}
			log.Info("tracker checked",
				zap.Boolp("mentioned", rec.Mentioned),
				zap.Int("source_urls", len(rec.SourceURLs)),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Summary{}, eris.Wrap(err, "checker: run")
	}
	return Summary{
		Checked:   int(checked.Load()),
		Mentioned: int(mentioned.Load()),
		Failed:    int(failed.Load()),
	}, nil
}

// checkOne queries the tracker's engine, derives mention evidence from the
// response and persists the record.
func (c *Checker) checkOne(ctx context.Context, tr model.Tracker) (*model.SearchRecord, error) {
	engine, ok := c.engines[tr.Engine]
	if !ok {
		return nil, eris.Errorf("checker: no engine configured for %q", tr.Engine)
	}
	br := c.breakers[tr.Engine]
	if br != nil {
		if err := br.allow(); err != nil {
			return nil, eris.Wrapf(err, "checker: %s", tr.Engine)
		}
	}
	if limiter := c.limiters[tr.Engine]; limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "checker: rate limit wait")
		}
	}

	raw, err := engine.Ask(ctx, tr.Query)
	if br != nil {
		br.record(err)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "checker: ask %s", tr.Engine)
	}

	norm := normalize.Normalize(raw)
	det := mention.Detect(norm.AnswerBody, norm.Citations, mention.Target{Name: tr.Brand, Domain: tr.Domain})

	urls := make([]string, 0, len(norm.Citations))
	for _, cit := range norm.Citations {
		urls = append(urls, cit.URL)
	}
	if len(urls) == 0 {
		for _, cit := range normalize.ScanURLs(norm.AnswerBody) {
			urls = append(urls, cit.URL)
		}
	}

	rec := model.SearchRecord{
		UserID:     tr.UserID,
		TeamID:     tr.TeamID,
		TrackerID:  tr.ID,
		Brand:      tr.Brand,
		Query:      tr.Query,
		Domain:     tr.Domain,
		Engine:     tr.Engine,
		Mentioned:  &det.Mentioned,
		// Stored evidence stays empty when there is nothing to summarize;
		// the placeholder text belongs to the display layer, not the row.
		Evidence:   c.summarizer.Summarize(norm.AnswerBody),
		RawOutput:  raw,
		SourceURLs: urls,
		CreatedAt:  time.Now().UTC(),
	}

	stored, err := c.store.InsertRecord(ctx, rec)
	if err != nil {
		return nil, eris.Wrap(err, "checker: insert record")
	}
	return stored, nil
}
