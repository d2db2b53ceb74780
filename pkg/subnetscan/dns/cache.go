package dns

import (
	"context"
	"time"

	"github.com/projectdiscovery/gcache"
)

// DefaultCacheSize bounds the number of names kept by a CachedResolver.
const DefaultCacheSize = 1024

// CachedResolver remembers successful lookups for a limited time so repeated
// scans of the same subnet do not re-query every address. Failures are never
// cached.
type CachedResolver struct {
	next  Resolver
	names gcache.Cache[string, []string]
}

// NewCachedResolver wraps next with an LRU cache whose entries expire after ttl.
func NewCachedResolver(next Resolver, size int, ttl time.Duration) *CachedResolver {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &CachedResolver{
		next: next,
		names: gcache.New[string, []string](size).
			LRU().
			Expiration(ttl).
			Build(),
	}
}

// LookupAddr implements Resolver.
func (c *CachedResolver) LookupAddr(ctx context.Context, ip string) (*Result, error) {
	if names, err := c.names.Get(ip); err == nil && len(names) > 0 {
		debugLog("%s -> %s (cached)", ip, names[0])
		return &Result{IP: ip, Hostname: names[0], All: names, Cached: true}, nil
	}

	res, err := c.next.LookupAddr(ctx, ip)
	if err != nil {
		return res, err
	}
	if res != nil && len(res.All) > 0 {
		_ = c.names.Set(ip, res.All)
	}
	return res, nil
}

// Purge drops every cached name.
func (c *CachedResolver) Purge() {
	c.names.Purge()
}
