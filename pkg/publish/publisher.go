// Package publish drives credentials from local drafts into the registry and
// tracks the publication status of each one.
package publish

import (
	"context"
	"maps"
	"sync"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/credentialengine/obpublisher/pkg/constants"
	"github.com/credentialengine/obpublisher/pkg/ctdl"
	"github.com/credentialengine/obpublisher/pkg/drafts"
	"github.com/credentialengine/obpublisher/pkg/errors"
	"github.com/credentialengine/obpublisher/pkg/logging"
)

// FetchFailedMessage is recorded when the registry copy of a credential
// could not be loaded during Initialize.
const FetchFailedMessage = "Error loading credential data from publisher. Can't update without loading existing data."

// RemoteStore is the registry as seen by the publisher.
type RemoteStore interface {
	FetchCredential(ctx context.Context, ctid string) (ctdl.Credential, error)
	SaveCredential(ctx context.Context, body ctdl.APICredential) (ctdl.SaveResult, error)
}

// Validator checks a save body before it is sent.
type Validator interface {
	Validate(body ctdl.APICredential) error
}

// Publisher owns the status map and coordinates fetches and saves.
type Publisher struct {
	remote      RemoteStore
	drafts      *drafts.Store
	validator   Validator
	finderURL   func(ctid string) string
	concurrency int
	logger      *zerolog.Logger
	now         func() utc.Time

	mu       sync.RWMutex
	statuses map[string]Status
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithValidator checks every save body with v before it is sent.
func WithValidator(v Validator) Option {
	return func(p *Publisher) {
		p.validator = v
	}
}

// WithFinderURL sets how a CTID maps to the credential's public page.
func WithFinderURL(fn func(ctid string) string) Option {
	return func(p *Publisher) {
		if fn != nil {
			p.finderURL = fn
		}
	}
}

// WithConcurrency bounds simultaneous detail fetches during Initialize.
func WithConcurrency(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithLogger sets the publisher's logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock overrides the time source for status timestamps.
func WithClock(now func() utc.Time) Option {
	return func(p *Publisher) {
		if now != nil {
			p.now = now
		}
	}
}

// New returns a publisher that saves drafts from store into remote.
func New(remote RemoteStore, store *drafts.Store, opts ...Option) *Publisher {
	p := &Publisher{
		remote:      remote,
		drafts:      store,
		finderURL:   func(string) string { return "" },
		concurrency: constants.MaxConcurrentFetches,
		logger:      logging.Default(),
		now:         utc.Now,
		statuses:    map[string]Status{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Statuses returns a copy of every status keyed by credential id.
func (p *Publisher) Statuses() map[string]Status {
	current := p.snapshot()
	out := make(map[string]Status, len(current))
	for id, s := range current {
		out[id] = s.Clone()
	}
	return out
}

// Status returns the status of one credential.
func (p *Publisher) Status(id string) (Status, bool) {
	s, ok := p.snapshot()[id]
	if !ok {
		return Status{}, false
	}
	return s.Clone(), true
}

// Initialize seeds a status for every draft and loads the registry copy of
// each credential that already exists there, reconciling it into the draft.
//
// Summaries come from a publisher search; a draft whose credential id
// matches one is PendingUpdate, every other draft is PendingNew. Fetches run
// concurrently. A failed fetch marks only its own credential SaveError and
// leaves the draft untouched. Initialize returns once every fetch has
// finished; the only error it reports is ctx's.
func (p *Publisher) Initialize(ctx context.Context, summaries []ctdl.CredentialSummary) error {
	ctx = logging.WithDefaultLogger(ctx, p.logger)
	byID := make(map[string]ctdl.CredentialSummary, len(summaries))
	for _, s := range summaries {
		if s.CredentialID != "" {
			byID[s.CredentialID] = s
		}
	}

	now := p.now()
	seeded := map[string]Status{}
	var existing []Status
	for _, d := range p.drafts.List() {
		id := d.ID()
		st := Status{CredentialID: id, State: StatePendingNew, UpdatedAt: now}
		if summary, ok := byID[id]; ok {
			st.State = StatePendingUpdate
			st.CTID = summary.CTID
			st.RemoteID = summary.ID
			st.Type = summary.Type
			existing = append(existing, st)
		}
		seeded[id] = st
	}

	p.mu.Lock()
	p.statuses = seeded
	p.mu.Unlock()

	logging.Ctx(ctx).Info().
		Int("drafts", len(seeded)).
		Int("existing", len(existing)).
		Msg("Initialized publication status")

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for _, st := range existing {
		g.Go(func() error {
			p.loadDetail(ctx, st)
			return nil
		})
	}
	_ = g.Wait()

	return ctx.Err()
}

// loadDetail fetches one registry record and blends it into its draft.
func (p *Publisher) loadDetail(ctx context.Context, st Status) {
	ctx = logging.WithCTID(logging.WithCredential(ctx, st.CredentialID), st.CTID)
	logger := logging.Ctx(ctx)

	if st.CTID == "" {
		p.fail(st.CredentialID, []string{FetchFailedMessage})
		logger.Warn().Msg("Registry summary has no CTID")
		return
	}

	remote, err := p.remote.FetchCredential(ctx, st.CTID)
	if err != nil {
		p.fail(st.CredentialID, append([]string{FetchFailedMessage}, errors.Messages(err)...))
		logger.Warn().Err(err).Msg("Failed to load credential from registry")
		return
	}

	p.drafts.ReconcileCredentialWithPublisher(st.CredentialID, remote, p.finderURL(st.CTID))
	p.update(st.CredentialID, func(s *Status) {
		s.RemoteData = &remote
	})
	logger.Debug().Msg("Loaded credential from registry")
}

// SaveCredential publishes the draft for id.
//
// It returns an error only when the save cannot start: the credential has
// no status, has no draft, or is not in a saveable state. Every failure
// after that, local validation included, is recorded in the credential's
// status as SaveError.
func (p *Publisher) SaveCredential(ctx context.Context, id string) error {
	d, ok := p.drafts.Get(id)
	if !ok {
		return errors.NewNotFoundError("draft", id)
	}

	var (
		prior   Status
		started bool
	)
	p.mu.Lock()
	current, ok := p.statuses[id]
	if ok && current.State.Saveable() {
		prior = current
		next := current.Clone()
		next.State = StateSaveInProgress
		next.Messages = nil
		next.UpdatedAt = p.now()
		p.swapLocked(id, next)
		started = true
	}
	p.mu.Unlock()

	switch {
	case !ok:
		return errors.NewNotFoundError("publication status", id)
	case !started:
		return errors.NewTransitionError(id, current.State.String(), StateSaveInProgress.String())
	}

	ctx = logging.WithDefaultLogger(ctx, p.logger)
	ctx = logging.WithCTID(logging.WithCredential(ctx, id), prior.CTID)
	logger := logging.Ctx(ctx)

	body := d.Finalize()
	if prior.CTID != "" && body.Credential.CTID == "" {
		body.Credential.CTID = prior.CTID
	}

	if p.validator != nil {
		if err := p.validator.Validate(body); err != nil {
			p.fail(id, errors.Messages(err))
			logger.Warn().Err(err).Msg("Credential failed validation")
			return nil
		}
	}

	result, err := p.remote.SaveCredential(ctx, body)
	if err == nil && !result.Accepted {
		err = errors.NewRejectedError(constants.ServiceName, "save", result.Messages)
	}
	if err != nil {
		p.fail(id, errors.Messages(err))
		logger.Warn().Err(err).Msg("Registry did not save credential")
		return nil
	}

	saved := body.Credential
	if result.CTID != "" {
		saved.CTID = result.CTID
	}
	p.update(id, func(s *Status) {
		s.State = StateSaveSuccess
		s.CTID = saved.CTID
		s.Messages = result.Messages
		s.RemoteData = &saved
	})
	logger.Info().Str("saved_ctid", saved.CTID).Msg("Saved credential")
	return nil
}

// SaveAllCredentials saves, one at a time and in draft order, every
// credential still waiting for its first save. Status is re-read before each
// save so that credentials saved concurrently are not sent twice. Failed
// credentials are left for an explicit retry.
func (p *Publisher) SaveAllCredentials(ctx context.Context) error {
	ctx = logging.WithDefaultLogger(ctx, p.logger)
	var saved, failed int
	for _, d := range p.drafts.List() {
		if err := ctx.Err(); err != nil {
			return errors.NewResourceError("save", "credentials", "", errors.Join(errors.ErrCanceled, err))
		}
		id := d.ID()
		st, ok := p.Status(id)
		if !ok || !st.State.Queued() {
			continue
		}
		if err := p.SaveCredential(ctx, id); err != nil {
			// Another caller started this save after the status read.
			if errors.Is(err, errors.ErrInvalidTransition) {
				continue
			}
			return err
		}
		if st, _ := p.Status(id); st.State == StateSaveSuccess {
			saved++
		} else {
			failed++
		}
	}

	logging.Ctx(ctx).Info().Int("saved", saved).Int("failed", failed).Msg("Finished saving credentials")
	return nil
}

// AlignmentExistsForCredential reports whether the credential's own finder
// page is among its draft's alignments.
func (p *Publisher) AlignmentExistsForCredential(id string) bool {
	st, ok := p.Status(id)
	if !ok {
		return false
	}
	url := p.finderURL(st.CTID)
	if url == "" {
		return false
	}
	d, ok := p.drafts.Get(id)
	return ok && d.Alignments.Has(url)
}

// fail records a SaveError with messages.
func (p *Publisher) fail(id string, messages []string) {
	p.update(id, func(s *Status) {
		s.State = StateSaveError
		s.Messages = messages
	})
}

// update applies fn to a copy of the status for id and swaps it in.
func (p *Publisher) update(id string, fn func(*Status)) {
	p.mu.Lock()
	defer p.mu.Unlock()

	current, ok := p.statuses[id]
	if !ok {
		return
	}
	next := current.Clone()
	fn(&next)
	next.UpdatedAt = p.now()
	p.swapLocked(id, next)
}

// swapLocked installs a new map with st replacing the entry for id.
func (p *Publisher) swapLocked(id string, st Status) {
	next := maps.Clone(p.statuses)
	next[id] = st
	p.statuses = next
}

// snapshot returns the current map. It is never mutated after being
// installed, so callers may read it without the lock.
func (p *Publisher) snapshot() map[string]Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.statuses
}
