// Package obpublisher publishes Open Badges badge classes to the Credential
// Registry as CTDL credentials.
//
// A Publisher imports badge classes as drafts, loads the registry copy of
// every credential the organization already published, reconciles the two
// and saves the results:
//
//	p, err := obpublisher.New(obpublisher.WithConfig(cfg))
//	if err != nil { ... }
//	if err := p.LoadBadges("badges/"); err != nil { ... }
//	if err := p.Initialize(ctx); err != nil { ... }
//	if err := p.SaveAll(ctx); err != nil { ... }
//	for id, st := range p.Statuses() { ... }
package obpublisher

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/credentialengine/obpublisher/internal/badgesource"
	"github.com/credentialengine/obpublisher/internal/registry"
	"github.com/credentialengine/obpublisher/internal/schema"
	"github.com/credentialengine/obpublisher/pkg/alignment"
	"github.com/credentialengine/obpublisher/pkg/badges"
	"github.com/credentialengine/obpublisher/pkg/ctdl"
	"github.com/credentialengine/obpublisher/pkg/drafts"
	"github.com/credentialengine/obpublisher/pkg/errors"
	"github.com/credentialengine/obpublisher/pkg/logging"
	"github.com/credentialengine/obpublisher/pkg/publish"
)

// Registry is the remote side of publishing: it finds the organization's
// existing credentials, loads their detail and accepts saves.
type Registry interface {
	publish.RemoteStore
	SearchOrganizationCredentials(ctx context.Context, orgCTID string) ([]ctdl.CredentialSummary, error)
}

// userLoader is implemented by registries that can describe the caller.
type userLoader interface {
	LoadUser(ctx context.Context) (registry.User, error)
}

// Publisher ties the draft store, the publication state machine and the
// registry together for one organization.
type Publisher struct {
	registry  Registry
	env       registry.Environment
	org       badges.Organization
	defaults  alignment.Defaults
	drafts    *drafts.Store
	publisher *publish.Publisher
	logger    *zerolog.Logger
}

// New builds a Publisher from opts. Without a registry base URL or
// WithRegistryClient the publisher works offline: drafts can be imported
// and previewed, and every registry call fails with a ConfigError.
func New(opts ...Option) (*Publisher, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errors.WrapResource("configure", "publisher", "", err)
		}
	}

	logger := o.logger
	if logger == nil {
		logger = logging.Default()
	}

	reg := o.registry
	if reg == nil && o.baseURL == "" {
		reg = offline{}
	}
	if reg == nil {
		clientOpts := []registry.Option{
			registry.WithToken(o.token),
			registry.WithTimeout(o.timeout),
			registry.WithLogger(logger),
		}
		if o.httpClient != nil {
			clientOpts = append(clientOpts, registry.WithHTTPClient(o.httpClient))
		}
		client, err := registry.New(o.baseURL, clientOpts...)
		if err != nil {
			return nil, err
		}
		reg = client
	}

	env, err := resolveEnvironment(o.environment, o.baseURL)
	if err != nil {
		return nil, err
	}

	p := &Publisher{
		registry: reg,
		env:      env,
		org:      o.org,
		defaults: o.defaults.For(o.org.CTID),
		drafts:   drafts.NewStore(drafts.WithLogger(logger)),
		logger:   logger,
	}

	var remote publish.RemoteStore = reg
	if o.cacheEnabled {
		remote = registry.NewCachedStore(reg, o.cacheTTL)
	}

	validator := o.validator
	if validator == nil && !o.noSchema {
		v, err := schema.Load(schema.SaveCredential)
		if err != nil {
			return nil, err
		}
		validator = v
	}

	pubOpts := []publish.Option{
		publish.WithFinderURL(env.FinderURL),
		publish.WithConcurrency(o.concurrency),
		publish.WithLogger(logger),
	}
	if validator != nil {
		pubOpts = append(pubOpts, publish.WithValidator(validator))
	}
	p.publisher = publish.New(remote, p.drafts, pubOpts...)

	return p, nil
}

func resolveEnvironment(name, baseURL string) (registry.Environment, error) {
	if name == "" && baseURL != "" {
		return registry.EnvironmentFromURL(baseURL), nil
	}
	return registry.ParseEnvironment(name)
}

// offline is the registry of a publisher with no base URL configured.
type offline struct{}

var errOffline = errors.NewConfigError("registry", "registry.base_url is not set", errors.ErrInvalidInput)

func (offline) FetchCredential(context.Context, string) (ctdl.Credential, error) {
	return ctdl.Credential{}, errOffline
}

func (offline) SaveCredential(context.Context, ctdl.APICredential) (ctdl.SaveResult, error) {
	return ctdl.SaveResult{}, errOffline
}

func (offline) SearchOrganizationCredentials(context.Context, string) ([]ctdl.CredentialSummary, error) {
	return nil, errOffline
}

// Offline reports whether the publisher has no registry to talk to.
func (p *Publisher) Offline() bool {
	_, ok := p.registry.(offline)
	return ok
}

// Organization returns the organization credentials are published for.
func (p *Publisher) Organization() badges.Organization {
	return p.org
}

// Environment returns the registry deployment finder URLs point into.
func (p *Publisher) Environment() registry.Environment {
	return p.env
}

// ImportBadges replaces the drafts with ones built from list.
func (p *Publisher) ImportBadges(list []badges.BadgeClass) error {
	return p.drafts.ImportBadges(list, p.org, p.defaults)
}

// LoadBadges reads badge classes from a file or directory and imports them.
func (p *Publisher) LoadBadges(path string) error {
	list, err := badgesource.Load(path)
	if err != nil {
		return err
	}
	return p.ImportBadges(list)
}

// Drafts returns the current drafts sorted by credential name.
func (p *Publisher) Drafts() []alignment.Draft {
	return p.drafts.List()
}

// Draft returns the draft for one credential id.
func (p *Publisher) Draft(id string) (alignment.Draft, bool) {
	return p.drafts.Get(id)
}

// SetAlignment changes the placement of one alignment of a draft.
func (p *Publisher) SetAlignment(id string, c alignment.Config) error {
	return p.drafts.SetAlignment(id, c)
}

// Initialize searches the registry for the organization's credentials and
// reconciles every match into its draft. Per-credential fetch failures end
// up in that credential's status, not in the returned error.
func (p *Publisher) Initialize(ctx context.Context) error {
	if p.org.CTID == "" {
		return errors.NewPreconditionError("initialize", errors.ErrNoOrganization)
	}

	ctx = logging.WithOrganization(logging.WithLogger(ctx, p.logger), p.org.CTID)
	summaries, err := p.registry.SearchOrganizationCredentials(ctx, p.org.CTID)
	if err != nil {
		return errors.WrapResource("search", "credentials", p.org.CTID, err)
	}
	return p.publisher.Initialize(ctx, summaries)
}

// Preview returns the save body each draft would be sent as, in draft
// order. Nothing is sent.
func (p *Publisher) Preview() []ctdl.APICredential {
	list := p.drafts.List()
	out := make([]ctdl.APICredential, 0, len(list))
	for _, d := range list {
		body := d.Finalize()
		if st, ok := p.publisher.Status(d.ID()); ok && st.CTID != "" {
			body.Credential.CTID = st.CTID
		}
		out = append(out, body)
	}
	return out
}

// Save publishes one credential. The outcome is recorded in its status;
// the error reports only why the save could not start.
func (p *Publisher) Save(ctx context.Context, id string) error {
	return p.publisher.SaveCredential(logging.WithLogger(ctx, p.logger), id)
}

// SaveAll publishes every credential that is waiting to be saved, one at a
// time in draft order.
func (p *Publisher) SaveAll(ctx context.Context) error {
	return p.publisher.SaveAllCredentials(logging.WithLogger(ctx, p.logger))
}

// Statuses returns the publication status of every credential.
func (p *Publisher) Statuses() map[string]publish.Status {
	return p.publisher.Statuses()
}

// Status returns the publication status of one credential.
func (p *Publisher) Status(id string) (publish.Status, bool) {
	return p.publisher.Status(id)
}

// AlignmentExists reports whether the draft for id aligns to its own
// published credential.
func (p *Publisher) AlignmentExists(id string) bool {
	return p.publisher.AlignmentExistsForCredential(id)
}

// FinderURL returns the public page for a published credential.
func (p *Publisher) FinderURL(ctid string) string {
	return p.env.FinderURL(ctid)
}

// CurrentUser describes the account behind the configured token.
func (p *Publisher) CurrentUser(ctx context.Context) (registry.User, error) {
	loader, ok := p.registry.(userLoader)
	if !ok {
		return registry.User{}, errors.NewResourceError("load", "user", "", errors.ErrUnauthorized)
	}
	return loader.LoadUser(logging.WithLogger(ctx, p.logger))
}
