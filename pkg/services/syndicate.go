package services

import (
	"context"
	"sort"

	"hugo-micropub/pkg/models"
)

// Syndicator republishes a post to one external platform and returns the URL
// of the copy.
type Syndicator interface {
	Syndicate(ctx context.Context, props models.PropertyMap, body, url string) (string, error)
}

// ContextFetcher is implemented by targets that can quote the post being
// replied to, reposted, or bookmarked. Owns reports whether the URL belongs
// to the target's platform.
type ContextFetcher interface {
	Owns(url string) bool
	FetchContext(ctx context.Context, url string) (author, text string, err error)
}

// Registry maps syndication target uids to their handlers. Targets are
// registered at startup; a lookup miss means the target is skipped, never an
// error.
type Registry struct {
	targets map[string]Syndicator
}

func NewRegistry() *Registry {
	return &Registry{targets: make(map[string]Syndicator)}
}

func (r *Registry) Register(uid string, s Syndicator) {
	r.targets[uid] = s
}

func (r *Registry) Lookup(uid string) (Syndicator, bool) {
	s, ok := r.targets[uid]
	return s, ok
}

// UIDs lists the registered targets in stable order, for config queries.
func (r *Registry) UIDs() []string {
	uids := make([]string, 0, len(r.targets))
	for uid := range r.targets {
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	return uids
}
