package enrich

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/adrata/crm-ops/internal/checkpoint"
	"github.com/adrata/crm-ops/internal/match"
	"github.com/adrata/crm-ops/internal/model"
	"github.com/adrata/crm-ops/internal/resilience"
	"github.com/adrata/crm-ops/internal/store"
)

// Options tunes a batch run.
type Options struct {
	Concurrency int                    // worker count, min 1
	SaveEvery   int                    // checkpoint flush interval in items, min 1
	Match       match.Config           // scoring config
	Retry       resilience.RetryConfig // per-lookup retry policy
}

// Runner processes a batch of companies against one provider, resuming
// from the checkpoint and flushing it as it goes.
type Runner struct {
	store    store.CompanyStore
	provider Provider
	tracker  *checkpoint.Tracker
	opts     Options

	mu        sync.Mutex // guards tracker and sinceSave
	sinceSave int
}

// NewRunner wires a batch run. The tracker should already be loaded so
// previously processed companies are skipped.
func NewRunner(st store.CompanyStore, provider Provider, tracker *checkpoint.Tracker, opts Options) *Runner {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.SaveEvery < 1 {
		opts.SaveEvery = 25
	}
	return &Runner{store: st, provider: provider, tracker: tracker, opts: opts}
}

// Run lists companies matching the filter and enriches each one. Per-item
// failures are recorded in the checkpoint and do not halt the batch;
// checkpoint save failures do.
func (r *Runner) Run(ctx context.Context, filter store.CompanyFilter) error {
	companies, err := r.store.ListCompanies(ctx, filter)
	if err != nil {
		return eris.Wrap(err, "enrich: list companies")
	}

	done := r.tracker.Processed()
	pending := companies[:0:0]
	for _, c := range companies {
		if _, ok := done[c.ID]; ok {
			continue
		}
		pending = append(pending, c)
	}

	zap.L().Info("starting enrichment batch",
		zap.String("provider", r.provider.Name()),
		zap.Int("companies", len(companies)),
		zap.Int("already_processed", len(companies)-len(pending)),
		zap.Int("concurrency", r.opts.Concurrency),
	)

	if len(pending) == 0 {
		zap.L().Info("nothing to do")
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)

	for _, company := range pending {
		g.Go(func() error {
			return r.processOne(gctx, company)
		})
	}

	runErr := g.Wait()

	if err := r.saveLocked(); err != nil {
		return err
	}
	if runErr != nil {
		return eris.Wrap(runErr, "enrich: batch")
	}

	state := r.tracker.State()
	zap.L().Info("batch complete",
		zap.Int("total_seen", state.TotalSeen),
		zap.Int("succeeded", state.Succeeded),
		zap.Int("failed", state.Failed),
	)
	return nil
}

func (r *Runner) processOne(ctx context.Context, company model.Company) error {
	log := zap.L().With(
		zap.String("company", company.Name),
		zap.String("domain", company.Domain),
	)

	profile, err := resilience.Retry(ctx, r.opts.Retry, func(ctx context.Context) (*Profile, error) {
		return r.provider.Lookup(ctx, company)
	})
	switch {
	case err == nil:
		// fall through to matching
	case resilience.IsNotFound(err):
		log.Info("no external profile")
		return r.record(company, false, "no profile found on "+r.provider.Name())
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		log.Warn("lookup failed", zap.Error(err))
		return r.record(company, false, err.Error())
	}

	result := match.Compare(
		match.Candidate{Primary: companyPrimary(company), Secondary: company.LinkedInURL, Name: company.Name},
		match.Candidate{Primary: profile.Website, Secondary: profile.LinkedInURL, Name: profile.Name},
		r.opts.Match,
	)

	if !result.Accepted(r.opts.Match) {
		log.Info("match rejected",
			zap.Int("confidence", result.Confidence),
			zap.String("reasoning", result.Reasoning),
		)
		return r.record(company, false, result.Reasoning)
	}

	m := &model.Match{
		CompanyID:  company.ID,
		Source:     r.provider.Name(),
		ExternalID: profile.ExternalID,
		Confidence: result.Confidence,
		Reasoning:  result.Reasoning,
	}
	if err := r.store.RecordMatch(ctx, m); err != nil {
		log.Error("recording match failed", zap.Error(err))
		return r.record(company, false, err.Error())
	}
	if err := r.store.MarkEnriched(ctx, company.ID); err != nil {
		log.Warn("marking enriched failed", zap.Error(err))
	}
	r.stampCustomFields(ctx, company, log)

	if w, ok := r.provider.(MatchWriter); ok {
		if err := w.RecordExternalMatch(ctx, profile.ExternalID, company); err != nil {
			log.Warn("writing match back to provider failed", zap.Error(err))
		}
	}

	log.Info("match accepted", zap.Int("confidence", result.Confidence))
	return r.record(company, true, "")
}

// stampCustomFields records which provider enriched the company in its
// custom-fields blob, preserving whatever else the blob carries. An
// unreadable blob is left alone rather than clobbered.
func (r *Runner) stampCustomFields(ctx context.Context, company model.Company, log *zap.Logger) {
	cf, err := model.ParseCustomFields(company.Custom)
	if err != nil {
		log.Warn("custom fields unreadable, not stamping", zap.Error(err))
		return
	}
	cf.EnrichedBy = r.provider.Name()

	encoded, err := cf.Encode()
	if err != nil {
		log.Warn("encoding custom fields failed", zap.Error(err))
		return
	}
	if err := r.store.SetCustomFields(ctx, company.ID, encoded); err != nil {
		log.Warn("stamping custom fields failed", zap.Error(err))
	}
}

// record updates the checkpoint for one finished item and flushes it every
// SaveEvery items. Save failures abort the batch.
func (r *Runner) record(company model.Company, succeeded bool, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tracker.RecordProcessed(company.ID, succeeded)
	if !succeeded && message != "" {
		r.tracker.RecordError(company.Name, message)
	}

	r.sinceSave++
	if r.sinceSave < r.opts.SaveEvery {
		return nil
	}
	r.sinceSave = 0
	if err := r.tracker.Save(); err != nil {
		return eris.Wrap(err, "enrich: save checkpoint")
	}
	return nil
}

func (r *Runner) saveLocked() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.tracker.Save(); err != nil {
		return eris.Wrap(err, "enrich: save checkpoint")
	}
	return nil
}

// companyPrimary prefers the full website URL, falling back to the bare
// domain. Both normalize to the same identifier.
func companyPrimary(c model.Company) string {
	if c.Website != "" {
		return c.Website
	}
	return c.Domain
}
