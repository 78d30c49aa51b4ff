// Package registry is the HTTP client for the Credential Engine publisher
// API.
//
// Every endpoint answers with the same envelope, {Valid, Data, Messages};
// a response that arrives but is not Valid is a rejection carrying the
// registry's own messages.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/credentialengine/obpublisher/pkg/constants"
	"github.com/credentialengine/obpublisher/pkg/ctdl"
	"github.com/credentialengine/obpublisher/pkg/errors"
	"github.com/credentialengine/obpublisher/pkg/logging"
)

// Publisher API paths.
const (
	SavePath   = "/StagingApi/Credential/Save"
	LoadPath   = "/StagingApi/Load/Credential/"
	SearchPath = "/StagingApi/Resource/PublisherSearch"
	UserPath   = "/StagingApi/Load/User"
)

// RequestIDHeader carries the id used to correlate client and server logs.
const RequestIDHeader = "X-Request-ID"

// Client talks to one publisher API deployment.
type Client struct {
	http     *http.Client
	baseURL  string
	token    string
	auth     Authenticator
	pageSize int
	logger   *zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the publisher token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithAuthenticator replaces Bearer authentication.
func WithAuthenticator(auth Authenticator) Option {
	return func(c *Client) {
		if auth != nil {
			c.auth = auth
		}
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithPageSize sets how many summaries each search request asks for.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithLogger sets the fallback logger for requests whose context has none.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New returns a client for the publisher API at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.NewValidationError("registry.base_url", baseURL, "must be an absolute URL")
	}

	c := &Client{
		http:     &http.Client{Timeout: constants.DefaultHTTPTimeout},
		baseURL:  strings.TrimRight(baseURL, "/"),
		auth:     BearerAuth{},
		pageSize: constants.DefaultPageSize,
		logger:   logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root requests are sent to.
func (c *Client) BaseURL() string { return c.baseURL }

// envelope is the response wrapper shared by every endpoint.
type envelope struct {
	Valid    bool            `json:"Valid"`
	Data     json.RawMessage `json:"Data"`
	Messages []string        `json:"Messages"`
}

// FetchCredential loads the registry's copy of a credential.
func (c *Client) FetchCredential(ctx context.Context, ctid string) (ctdl.Credential, error) {
	if ctid == "" {
		return ctdl.Credential{}, errors.NewValidationError("ctid", ctid, "is required")
	}

	env, err := c.do(ctx, http.MethodGet, LoadPath+url.PathEscape(ctid), nil)
	if err != nil {
		return ctdl.Credential{}, errors.WrapResource("fetch", "credential", ctid, err)
	}
	if !env.Valid {
		return ctdl.Credential{}, errors.NewRejectedError(constants.ServiceName, LoadPath, env.Messages)
	}

	var cred ctdl.Credential
	if err := decodeData(env.Data, &cred); err != nil {
		return ctdl.Credential{}, errors.WrapResource("fetch", "credential", ctid, err)
	}
	return cred, nil
}

// saveData is the part of a save response the publisher keeps.
type saveData struct {
	CTID  string `json:"CTID"`
	RowID string `json:"RowId"`
}

// SaveCredential submits a credential for publication. A rejection is
// reported in the result, not as an error.
func (c *Client) SaveCredential(ctx context.Context, body ctdl.APICredential) (ctdl.SaveResult, error) {
	env, err := c.do(ctx, http.MethodPost, SavePath, body)
	if err != nil {
		return ctdl.SaveResult{}, errors.WrapResource("save", "credential", body.Credential.CredentialID, err)
	}

	result := ctdl.SaveResult{Accepted: env.Valid, Messages: env.Messages}
	if !env.Valid {
		return result, nil
	}

	var data saveData
	if err := decodeData(env.Data, &data); err != nil {
		// The save went through; an unexpected payload only loses the CTID.
		logging.Ctx(ctx).Warn().Err(err).Msg("Unreadable save response data")
	}
	result.CTID = data.CTID
	result.RowID = data.RowID
	return result, nil
}

type searchFilter struct {
	URI       string   `json:"URI"`
	ItemTexts []string `json:"ItemTexts"`
}

type searchRequest struct {
	Filters []searchFilter `json:"Filters"`
	Skip    int            `json:"Skip"`
	Take    int            `json:"Take"`
}

type searchPage struct {
	Results      []ctdl.CredentialSummary `json:"Results"`
	TotalResults int                      `json:"totalResults"`
}

// SearchOrganizationCredentials lists every credential the organization
// already has in the registry, following pages until the reported total is
// reached.
func (c *Client) SearchOrganizationCredentials(ctx context.Context, orgCTID string) ([]ctdl.CredentialSummary, error) {
	if orgCTID == "" {
		return nil, errors.NewPreconditionError("search credentials", errors.ErrNoOrganization)
	}

	req := searchRequest{
		Filters: []searchFilter{
			{URI: "search:recordOwnedBy", ItemTexts: []string{orgCTID}},
			{URI: "@type", ItemTexts: []string{"credential"}},
		},
		Take: c.pageSize,
	}

	var all []ctdl.CredentialSummary
	for page := 0; page < constants.MaxSearchPages; page++ {
		req.Skip = len(all)

		env, err := c.do(ctx, http.MethodPost, SearchPath, req)
		if err != nil {
			return nil, errors.WrapResource("search", "credentials", orgCTID, err)
		}
		if !env.Valid {
			return nil, errors.NewRejectedError(constants.ServiceName, SearchPath, env.Messages)
		}

		var data searchPage
		if err := decodeData(env.Data, &data); err != nil {
			return nil, errors.WrapResource("search", "credentials", orgCTID, err)
		}
		all = append(all, data.Results...)

		if len(data.Results) == 0 || len(all) >= data.TotalResults {
			return all, nil
		}
	}

	logging.Ctx(ctx).Warn().
		Str("org_ctid", orgCTID).
		Int("results", len(all)).
		Msg("Stopped paging search results")
	return all, nil
}

// Organization is an organization a publisher user may act for.
type Organization struct {
	RowID string `json:"RowId"`
	Name  string `json:"Name"`
	CTID  string `json:"CTID"`
	Type  string `json:"Type"`
}

// User is the account behind the configured token.
type User struct {
	ID            int64          `json:"Id"`
	Name          string         `json:"Name"`
	Email         string         `json:"Email"`
	IsSiteStaff   bool           `json:"IsSiteStaff"`
	Token         string         `json:"Token,omitempty"`
	Organizations []Organization `json:"Organizations"`
}

// Organization returns the user's organization with ctid.
func (u User) Organization(ctid string) (Organization, bool) {
	for _, o := range u.Organizations {
		if o.CTID == ctid {
			return o, true
		}
	}
	return Organization{}, false
}

// LoadUser returns the account the token belongs to and the organizations
// it may publish for.
func (c *Client) LoadUser(ctx context.Context) (User, error) {
	env, err := c.do(ctx, http.MethodGet, UserPath, nil)
	if err != nil {
		return User{}, errors.WrapResource("load", "user", "", err)
	}
	if !env.Valid {
		return User{}, errors.NewRejectedError(constants.ServiceName, UserPath, env.Messages)
	}

	var u User
	if err := decodeData(env.Data, &u); err != nil {
		return User{}, errors.WrapResource("load", "user", "", err)
	}
	return u, nil
}

// do sends one request and decodes the envelope.
func (c *Client) do(ctx context.Context, method, path string, payload any) (envelope, error) {
	if logging.FromContext(ctx) == logging.Default() {
		ctx = logging.WithLogger(ctx, c.logger)
	}
	requestID := logging.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
		ctx = logging.WithRequestID(ctx, requestID)
	}
	logger := logging.Ctx(ctx)

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return envelope{}, errors.WrapParse("json", "request", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return envelope{}, errors.WrapResource("create", "request", method+" "+path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(RequestIDHeader, requestID)
	c.auth.Apply(req, c.token)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return envelope{}, errors.Join(errors.ErrCanceled, ctx.Err())
		}
		return envelope{}, &errors.APIError{
			Service:  constants.ServiceName,
			Endpoint: path,
			Message:  err.Error(),
			Err:      errors.Join(errors.ErrRemoteUnavailable, err),
		}
	}

	env, err := decodeResponse(resp, path)
	logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Registry request")
	return env, err
}

// decodeResponse reads the envelope from resp and closes its body.
func decodeResponse(resp *http.Response, path string) (envelope, error) {
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxResponseBytes))
	if err != nil {
		return envelope{}, errors.WrapIO("read", "response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := errors.NewAPIError(constants.ServiceName, resp.StatusCode, strings.TrimSpace(string(raw)))
		apiErr.Endpoint = path
		return envelope{}, apiErr
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return envelope{}, errors.WrapParse("json", path, err)
	}
	return env, nil
}

// decodeData unmarshals an envelope's Data. Missing data leaves out zeroed.
func decodeData(data json.RawMessage, out any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.WrapParse("json", "Data", err)
	}
	return nil
}
