// Package drafts holds the working set of credential drafts.
//
// The list is copy-on-write: every mutation builds a new slice and swaps it
// in under a lock, and readers receive deep copies, so nobody observes a
// half-applied change.
package drafts

import (
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/credentialengine/obpublisher/pkg/alignment"
	"github.com/credentialengine/obpublisher/pkg/badges"
	"github.com/credentialengine/obpublisher/pkg/ctdl"
	"github.com/credentialengine/obpublisher/pkg/errors"
	"github.com/credentialengine/obpublisher/pkg/logging"
)

// Store is an in-memory list of drafts kept sorted by credential name.
type Store struct {
	mu       sync.RWMutex
	drafts   []alignment.Draft
	collator *collate.Collator
	logger   *zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for reconciliation events.
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLanguage sets the collation used to order drafts by name.
func WithLanguage(tag language.Tag) Option {
	return func(s *Store) {
		s.collator = collate.New(tag, collate.IgnoreCase)
	}
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		collator: collate.New(language.English, collate.IgnoreCase),
		logger:   logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns copies of all drafts in name order.
func (s *Store) List() []alignment.Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]alignment.Draft, len(s.drafts))
	for i, d := range s.drafts {
		out[i] = d.Clone()
	}
	return out
}

// Len returns the number of drafts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drafts)
}

// Get returns a copy of the draft for credential id.
func (s *Store) Get(id string) (alignment.Draft, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return alignment.Draft{}, false
	}
	return s.drafts[idx].Clone(), true
}

// Set replaces the whole list.
func (s *Store) Set(list []alignment.Draft) {
	next := make([]alignment.Draft, len(list))
	for i, d := range list {
		next[i] = d.Clone()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.swap(next)
}

// ImportBadges replaces the list with drafts built from list. Nothing is
// replaced when any badge fails to convert.
func (s *Store) ImportBadges(list []badges.BadgeClass, org badges.Organization, defaults alignment.Defaults) error {
	built, err := badges.BuildDrafts(list, org, defaults)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.swap(built)

	s.logger.Info().
		Int("count", len(built)).
		Str("org_ctid", org.CTID).
		Msg("Imported badges")
	return nil
}

// UpdateCredential stores d, replacing any draft with the same credential id.
func (s *Store) UpdateCredential(d alignment.Draft) {
	d = d.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.replace(d)
}

// SetAlignment replaces the config for one alignment of a draft, for
// instance to change its placement or skip it.
func (s *Store) SetAlignment(id string, c alignment.Config) error {
	if err := c.SourceData.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return errors.NewNotFoundError("draft", id)
	}
	d := s.drafts[idx].Clone()
	d.Alignments.Set(c.URL(), c.Clone())
	s.replace(d)
	return nil
}

// ReconcileCredentialWithPublisher blends the registry copy remote into the
// draft for id. It reports false and changes nothing when no draft has that
// id. selfURL is the credential's own finder page, or "" when unknown.
func (s *Store) ReconcileCredentialWithPublisher(id string, remote ctdl.Credential, selfURL string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		s.logger.Debug().Str("credential_id", id).Msg("No draft to reconcile")
		return false
	}

	before := s.drafts[idx]
	after := Reconcile(before, remote, selfURL)
	s.replace(after)

	s.logger.Debug().
		Str("credential_id", id).
		Str("ctid", remote.CTID).
		Int("alignments_before", before.Alignments.Len()).
		Int("alignments_after", after.Alignments.Len()).
		Msg("Reconciled draft with publisher")
	return true
}

// replace swaps in a new list with d in place of the draft sharing its id.
// Callers hold the write lock.
func (s *Store) replace(d alignment.Draft) {
	next := make([]alignment.Draft, 0, len(s.drafts)+1)
	for _, existing := range s.drafts {
		if existing.ID() != d.ID() {
			next = append(next, existing)
		}
	}
	s.swap(append(next, d))
}

// swap sorts next by name and installs it. Callers hold the write lock.
func (s *Store) swap(next []alignment.Draft) {
	slices.SortStableFunc(next, func(a, b alignment.Draft) int {
		return s.collator.CompareString(a.Credential.Name, b.Credential.Name)
	})
	s.drafts = next
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.drafts, func(d alignment.Draft) bool { return d.ID() == id })
}
