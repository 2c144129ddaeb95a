package services

import (
	"os"
	"strings"
	"time"

	"hugo-micropub/pkg/models"
)

// PathResolver maps public URLs to content source files and back. Historical
// content on this site used several incompatible path conventions, so
// resolution enumerates every candidate in a fixed order and takes the first
// that exists.
type PathResolver struct {
	cfg *models.SiteConfig
}

func NewPathResolver(cfg *models.SiteConfig) *PathResolver {
	return &PathResolver{cfg: cfg}
}

// Resolve returns the on-disk source path for a public URL.
func (r *PathResolver) Resolve(url string) (string, error) {
	for _, path := range r.Candidates(url) {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", notFound()
}

// Candidates enumerates every path the URL could map to, in resolution
// order. Exposed so tests can pin the order.
func (r *PathResolver) Candidates(url string) []string {
	root := r.cfg.SourcePath + "content/"

	nested := strings.TrimPrefix(url, r.cfg.BaseURL)
	// Older content is content/posts/YYYY-MM-DD-hhmmss.md.
	flat := strings.TrimRight(strings.ReplaceAll(nested, "/", "-"), "-")

	var prefixes []string
	seen := map[string]bool{}
	for _, rule := range r.cfg.ContentPaths {
		if !seen[rule.Prefix] {
			seen[rule.Prefix] = true
			prefixes = append(prefixes, rule.Prefix)
		}
	}
	// Unmapped types live directly under the content root.
	if !seen[""] {
		prefixes = append(prefixes, "")
	}

	var candidates []string
	for _, unprefixed := range []string{nested, flat} {
		for _, prefix := range prefixes {
			path := root + prefix + unprefixed
			switch {
			case strings.HasSuffix(path, "/index.html"):
				path = strings.TrimSuffix(path, "/index.html") + ".md"
			case strings.HasSuffix(path, ".html"):
				path = strings.TrimSuffix(path, ".html") + ".md"
			case strings.HasSuffix(path, "/"):
				path = strings.TrimRight(path, "/") + ".md"
			default:
				path += ".md"
			}
			candidates = append(candidates, path)
			// Some files are .html, don't hate.
			candidates = append(candidates, strings.TrimSuffix(path, "md")+"html")
		}
	}
	return candidates
}

// CreatePath computes the source path and public URL for new content. Types
// with a configured path rule get its prefix and a date segment; everything
// else lands directly under the content root.
func (r *PathResolver) CreatePath(postType, slug string, ts time.Time) (path, url string) {
	path = r.cfg.SourcePath + "content/"
	url = r.cfg.BaseURL
	if rule, ok := r.cfg.PathFor(postType); ok {
		datePart := ts.Format(rule.DateFormat)
		path += rule.Prefix + datePart
		// Permalinks are /YYYY/MM/DD/SLUG/, without the content prefix.
		url += datePart
	}
	path += slug + ".md"
	url += slug + "/"
	return path, url
}
