package registry

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/credentialengine/obpublisher/pkg/constants"
	"github.com/credentialengine/obpublisher/pkg/ctdl"
	"github.com/credentialengine/obpublisher/pkg/logging"
)

// Store is the subset of the registry API that CachedStore wraps.
type Store interface {
	FetchCredential(ctx context.Context, ctid string) (ctdl.Credential, error)
	SaveCredential(ctx context.Context, body ctdl.APICredential) (ctdl.SaveResult, error)
}

// CachedStore keeps fetched credential detail for a while so that repeated
// initializations do not reload every record. Entries expire after the TTL,
// and a successful save evicts the saved credential.
type CachedStore struct {
	next  Store
	cache *gocache.Cache
}

// NewCachedStore wraps next with a cache whose entries live for ttl.
// A non-positive ttl uses the default.
func NewCachedStore(next Store, ttl time.Duration) *CachedStore {
	if ttl <= 0 {
		ttl = constants.CacheTTL
	}
	return &CachedStore{
		next:  next,
		cache: gocache.New(ttl, constants.CacheCleanupInterval),
	}
}

// FetchCredential returns the cached copy for ctid or loads it from next.
// Failures are not cached.
func (s *CachedStore) FetchCredential(ctx context.Context, ctid string) (ctdl.Credential, error) {
	if v, ok := s.cache.Get(ctid); ok {
		if cred, ok := v.(ctdl.Credential); ok {
			logging.Ctx(ctx).Debug().Str("ctid", ctid).Msg("Credential cache hit")
			return cred.Clone(), nil
		}
	}

	cred, err := s.next.FetchCredential(ctx, ctid)
	if err != nil {
		return ctdl.Credential{}, err
	}
	s.cache.Set(ctid, cred.Clone(), gocache.DefaultExpiration)
	return cred, nil
}

// SaveCredential forwards to next and evicts the credential once the
// registry accepts it.
func (s *CachedStore) SaveCredential(ctx context.Context, body ctdl.APICredential) (ctdl.SaveResult, error) {
	result, err := s.next.SaveCredential(ctx, body)
	if err != nil || !result.Accepted {
		return result, err
	}
	for _, ctid := range []string{body.Credential.CTID, result.CTID} {
		if ctid != "" {
			s.cache.Delete(ctid)
		}
	}
	return result, nil
}

// Len returns the number of cached credentials.
func (s *CachedStore) Len() int {
	return s.cache.ItemCount()
}
