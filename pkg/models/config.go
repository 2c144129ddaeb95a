package models

import "time"

// SiteConfig is the site-level configuration, loaded once at startup from the
// YAML config file and treated as immutable afterwards.
type SiteConfig struct {
	// BaseURL is the public root of the site, with trailing slash.
	BaseURL string `yaml:"base_url"`
	// SourcePath is the Hugo site root, with trailing slash. Content lives
	// under SourcePath + "content/".
	SourcePath string `yaml:"source_path"`
	// BuildCommand is the external site build invocation, e.g.
	// "hugo --quiet". Empty disables the build step.
	BuildCommand string `yaml:"build_command"`

	// Me and TokenEndpoint configure IndieAuth verification. An empty
	// TokenEndpoint disables auth (useful behind a trusted proxy and in
	// tests).
	Me            string `yaml:"me"`
	TokenEndpoint string `yaml:"token_endpoint"`

	// MediaDir is where uploads land, relative to SourcePath. MediaURL is
	// the public prefix they are served from, relative to BaseURL.
	MediaDir string `yaml:"media_dir"`
	MediaURL string `yaml:"media_url"`

	// GitCheckpoint commits the content tree after each successful mutate.
	GitCheckpoint bool `yaml:"git_checkpoint"`

	// SyndicationTimeout bounds one outbound syndication call, in seconds.
	SyndicationTimeout int `yaml:"syndication_timeout"`

	// ContentPaths maps post types to their path conventions, in order.
	// At most one rule per type.
	ContentPaths []PathRule `yaml:"content_paths"`

	// ContentDefaults holds per-type default front matter. Request values
	// win on collision.
	ContentDefaults map[string]PropertyMap `yaml:"content_defaults"`

	// Syndication configures the available targets, keyed by uid.
	Syndication map[string]SyndicationTarget `yaml:"syndication"`
}

// PathRule ties a post type to a content subdirectory and the date layout
// used for its permalinks, e.g. {note, "posts/", "2006/01/02/"}.
type PathRule struct {
	Type       string `yaml:"type"`
	Prefix     string `yaml:"prefix"`
	DateFormat string `yaml:"date_format"`
}

// SyndicationTarget configures one outbound platform.
type SyndicationTarget struct {
	Kind   string `yaml:"kind"`
	Server string `yaml:"server"`
	Token  string `yaml:"token"`
	// Prefix is tacked in front of the title when announcing articles.
	Prefix string `yaml:"prefix"`
}

// PathFor returns the rule for a post type, if one is configured.
func (c *SiteConfig) PathFor(postType string) (PathRule, bool) {
	for _, r := range c.ContentPaths {
		if r.Type == postType {
			return r, true
		}
	}
	return PathRule{}, false
}

// SyndicateTimeout returns the configured timeout as a duration, with a 15s
// default.
func (c *SiteConfig) SyndicateTimeout() time.Duration {
	if c.SyndicationTimeout <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.SyndicationTimeout) * time.Second
}
