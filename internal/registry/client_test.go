package registry_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credentialengine/obpublisher/internal/registry"
	"github.com/credentialengine/obpublisher/pkg/ctdl"
	"github.com/credentialengine/obpublisher/pkg/errors"
	"github.com/credentialengine/obpublisher/pkg/logging"
)

func newClient(t *testing.T, handler http.HandlerFunc, opts ...registry.Option) *registry.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts = append([]registry.Option{
		registry.WithToken("secret-token"),
		registry.WithLogger(logging.NewNopLogger()),
	}, opts...)
	c, err := registry.New(srv.URL+"/publisher/", opts...)
	require.NoError(t, err)
	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNewRejectsRelativeURL(t *testing.T) {
	_, err := registry.New("/publisher")
	assert.True(t, errors.IsValidationError(err))
}

func TestFetchCredential(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/publisher/StagingApi/Load/Credential/ce-123", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		_, err := uuid.Parse(r.Header.Get(registry.RequestIDHeader))
		assert.NoError(t, err, "request id is a uuid")

		writeJSON(t, w, map[string]any{
			"Valid": true,
			"Data": map[string]any{
				"CredentialId": "https://example.com/b/1",
				"CTID":         "ce-123",
				"Name":         "Registry Name",
				"Requires": []map[string]any{
					{"Name": ctdl.CriteriaProfileName, "Description": "Earning criteria"},
				},
				"HasPart": []string{"ce-other"},
			},
		})
	})

	cred, err := c.FetchCredential(context.Background(), "ce-123")
	require.NoError(t, err)
	assert.Equal(t, "ce-123", cred.CTID)
	assert.Equal(t, "Registry Name", cred.Name)
	require.Len(t, cred.Profiles(ctdl.Requires), 1)
	assert.Contains(t, cred.Extra, "HasPart", "unknown fields are kept")
}

func TestFetchCredentialKeepsContextRequestID(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "req-42", r.Header.Get(registry.RequestIDHeader))
		writeJSON(t, w, map[string]any{"Valid": true, "Data": map[string]any{"CTID": "ce-1"}})
	})

	ctx := logging.WithRequestID(context.Background(), "req-42")
	_, err := c.FetchCredential(ctx, "ce-1")
	require.NoError(t, err)
}

func TestFetchCredentialFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name: "rejected envelope",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(t, w, map[string]any{"Valid": false, "Messages": []string{"Record not found"}})
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, errors.ErrSaveRejected)
				assert.Equal(t, []string{"Record not found"}, errors.Messages(err))
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "maintenance", http.StatusServiceUnavailable)
			},
			check: func(t *testing.T, err error) {
				assert.True(t, errors.IsRemoteUnavailable(err))
				assert.Contains(t, err.Error(), "maintenance")
			},
		},
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			check: func(t *testing.T, err error) {
				assert.True(t, errors.IsUnauthorized(err))
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("<html>login</html>"))
			},
			check: func(t *testing.T, err error) {
				var parseErr *errors.ParseError
				assert.ErrorAs(t, err, &parseErr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t, tt.handler)
			_, err := c.FetchCredential(context.Background(), "ce-123")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestFetchCredentialRequiresCTID(t *testing.T) {
	c := newClient(t, func(http.ResponseWriter, *http.Request) {
		t.Fatal("no request expected")
	})
	_, err := c.FetchCredential(context.Background(), "")
	assert.True(t, errors.IsValidationError(err))
}

func TestFetchCredentialCanceled(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"Valid": true})
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchCredential(ctx, "ce-1")
	assert.True(t, errors.IsCanceled(err))
}

func TestSaveCredential(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/publisher/StagingApi/Credential/Save", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body ctdl.APICredential
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ce-org", body.PublishForOrganizationIdentifier)
		assert.Equal(t, "Badge", body.Credential.Name)

		writeJSON(t, w, map[string]any{
			"Valid":    true,
			"Data":     map[string]any{"CTID": "ce-new", "RowId": "row-1"},
			"Messages": []string{"Saved"},
		})
	})

	result, err := c.SaveCredential(context.Background(), ctdl.APICredential{
		PublishForOrganizationIdentifier: "ce-org",
		Credential:                       ctdl.Credential{CredentialID: "b1", Name: "Badge"},
	})
	require.NoError(t, err)
	assert.Equal(t, ctdl.SaveResult{Accepted: true, CTID: "ce-new", RowID: "row-1", Messages: []string{"Saved"}}, result)
}

func TestSaveCredentialRejection(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"Valid": false, "Messages": []string{"Name is required", "Type is invalid"}})
	})

	result, err := c.SaveCredential(context.Background(), ctdl.APICredential{})
	require.NoError(t, err)
	assert.False(t, result.Accepted)
	assert.Equal(t, []string{"Name is required", "Type is invalid"}, result.Messages)
}

func TestSearchOrganizationCredentialsPaginates(t *testing.T) {
	all := []ctdl.CredentialSummary{
		{ID: 1, CTID: "ce-1", CredentialID: "a"},
		{ID: 2, CTID: "ce-2", CredentialID: "b"},
		{ID: 3, CTID: "ce-3", CredentialID: "c"},
		{ID: 4, CTID: "ce-4", CredentialID: "d"},
		{ID: 5, CTID: "ce-5", CredentialID: "e"},
	}

	var calls atomic.Int32
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/publisher/StagingApi/Resource/PublisherSearch", r.URL.Path)

		var req struct {
			Filters []struct {
				URI       string
				ItemTexts []string
			}
			Skip, Take int
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Filters, 2)
		assert.Equal(t, "search:recordOwnedBy", req.Filters[0].URI)
		assert.Equal(t, []string{"ce-org"}, req.Filters[0].ItemTexts)
		assert.Equal(t, "@type", req.Filters[1].URI)
		assert.Equal(t, []string{"credential"}, req.Filters[1].ItemTexts)
		assert.Equal(t, 2, req.Take)

		end := min(req.Skip+req.Take, len(all))
		writeJSON(t, w, map[string]any{
			"Valid": true,
			"Data":  map[string]any{"Results": all[req.Skip:end], "totalResults": len(all)},
		})
	}, registry.WithPageSize(2))

	got, err := c.SearchOrganizationCredentials(context.Background(), "ce-org")
	require.NoError(t, err)
	assert.Equal(t, all, got)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSearchOrganizationCredentialsStopsOnEmptyPage(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{
			"Valid": true,
			"Data":  map[string]any{"Results": []any{}, "totalResults": 40},
		})
	})

	got, err := c.SearchOrganizationCredentials(context.Background(), "ce-org")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchOrganizationCredentialsNeedsOrganization(t *testing.T) {
	c := newClient(t, func(http.ResponseWriter, *http.Request) {
		t.Fatal("no request expected")
	})
	_, err := c.SearchOrganizationCredentials(context.Background(), "")
	assert.ErrorIs(t, err, errors.ErrNoOrganization)
}

func TestLoadUser(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/publisher/StagingApi/Load/User", r.URL.Path)
		writeJSON(t, w, map[string]any{
			"Valid": true,
			"Data": map[string]any{
				"Id":    7,
				"Name":  "Pat Publisher",
				"Email": "pat@example.com",
				"Organizations": []map[string]any{
					{"Name": "Example College", "CTID": "ce-org", "Type": "ceterms:CredentialOrganization"},
				},
			},
		})
	})

	u, err := c.LoadUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)

	org, ok := u.Organization("ce-org")
	require.True(t, ok)
	assert.Equal(t, "Example College", org.Name)

	_, ok = u.Organization("ce-missing")
	assert.False(t, ok)
}

func TestNoAuthOmitsAuthorization(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(t, w, map[string]any{"Valid": true})
	}, registry.WithAuthenticator(registry.NoAuth{}))

	_, err := c.FetchCredential(context.Background(), "ce-1")
	require.NoError(t, err)
}
