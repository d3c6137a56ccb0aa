package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/rpcgate/pkg/cache"
)

// Wildcard matches any resource or action in a grant.
const Wildcard = "*"

// ResourceAuthority decides whether a user may perform an action on a resource.
type ResourceAuthority interface {
	Check(ctx context.Context, userID, resource, action string) (bool, error)
}

// ResourceAuthorityFunc adapts a function to the ResourceAuthority interface.
type ResourceAuthorityFunc func(ctx context.Context, userID, resource, action string) (bool, error)

// Check calls f(ctx, userID, resource, action).
func (f ResourceAuthorityFunc) Check(ctx context.Context, userID, resource, action string) (bool, error) {
	return f(ctx, userID, resource, action)
}

// AllowAll returns an authority that grants every request.
func AllowAll() ResourceAuthority {
	return ResourceAuthorityFunc(func(context.Context, string, string, string) (bool, error) {
		return true, nil
	})
}

// StaticGrants is an in-memory authority keyed by user ID.
// Each grant is "resource:action"; either side may be "*".
type StaticGrants struct {
	grants map[string]map[string]struct{}
	mu     sync.RWMutex
}

// NewStaticGrants creates an authority from user ID -> grants.
func NewStaticGrants(grants map[string][]string) *StaticGrants {
	g := &StaticGrants{grants: make(map[string]map[string]struct{}, len(grants))}
	for userID, list := range grants {
		g.Grant(userID, list...)
	}
	return g
}

// LoadStaticGrants reads YAML of the form:
//
//	user-123:
//	  - dataSource:read
//	  - "dashboard:*"
func LoadStaticGrants(r io.Reader) (*StaticGrants, error) {
	var raw map[string][]string
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode grants: %w", err)
	}
	return NewStaticGrants(raw), nil
}

// LoadStaticGrantsFile reads grants from a YAML file.
func LoadStaticGrantsFile(path string) (*StaticGrants, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grants file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return LoadStaticGrants(f)
}

// Grant adds grants for userID.
func (g *StaticGrants) Grant(userID string, grants ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	set, ok := g.grants[userID]
	if !ok {
		set = make(map[string]struct{}, len(grants))
		g.grants[userID] = set
	}
	for _, grant := range grants {
		if grant = strings.TrimSpace(grant); grant != "" {
			set[grant] = struct{}{}
		}
	}
}

// Check implements ResourceAuthority.
func (g *StaticGrants) Check(_ context.Context, userID, resource, action string) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	set := g.grants[userID]
	if len(set) == 0 {
		return false, nil
	}
	for _, key := range []string{
		resource + ":" + action,
		resource + ":" + Wildcard,
		Wildcard + ":" + action,
		Wildcard + ":" + Wildcard,
	} {
		if _, ok := set[key]; ok {
			return true, nil
		}
	}
	return false, nil
}

// CachedAuthority remembers decisions of next for ttl, keyed by user,
// resource and action. Errors are not cached, and concurrent misses for the
// same decision share one call to next.
//
//	authority := rpcgate.CachedAuthority(grants, cache.NewMemory[bool](), 30*time.Second)
func CachedAuthority(next ResourceAuthority, c cache.Cache[bool], ttl time.Duration) ResourceAuthority {
	return ResourceAuthorityFunc(func(ctx context.Context, userID, resource, action string) (bool, error) {
		key := "access:" + userID + ":" + resource + ":" + action
		return cache.GetOrSet(ctx, c, key, func(ctx context.Context) (bool, time.Duration, error) {
			ok, err := next.Check(ctx, userID, resource, action)
			return ok, ttl, err
		})
	})
}
