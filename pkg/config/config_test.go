package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSite(t *testing.T) {
	path := writeConfig(t, `
base_url: https://example.test
source_path: /srv/site
build_command: hugo --quiet
content_paths:
  - type: note
    prefix: posts/
    date_format: 2006/01/02/
  - type: event
    prefix: events/
    date_format: 2006/01/02/
content_defaults:
  note:
    section: micro
syndication:
  mastodon:
    kind: mastodon
    server: https://mastodon.example
    token: secret
`)

	cfg, err := LoadSite(path)
	require.NoError(t, err)

	// Roots gain their trailing slash on load.
	assert.Equal(t, "https://example.test/", cfg.BaseURL)
	assert.Equal(t, "/srv/site/", cfg.SourcePath)

	rule, ok := cfg.PathFor("note")
	require.True(t, ok)
	assert.Equal(t, "posts/", rule.Prefix)

	_, ok = cfg.PathFor("article")
	assert.False(t, ok)

	assert.Equal(t, "micro", cfg.ContentDefaults["note"]["section"])
	assert.Equal(t, "https://mastodon.example", cfg.Syndication["mastodon"].Server)
}

func TestLoadSiteRequiresRoots(t *testing.T) {
	_, err := LoadSite(writeConfig(t, "source_path: /srv/site\n"))
	assert.ErrorContains(t, err, "base_url")

	_, err = LoadSite(writeConfig(t, "base_url: https://example.test\n"))
	assert.ErrorContains(t, err, "source_path")
}

func TestLoadSiteRejectsDuplicateTypes(t *testing.T) {
	path := writeConfig(t, `
base_url: https://example.test
source_path: /srv/site
content_paths:
  - type: note
    prefix: posts/
  - type: note
    prefix: micro/
`)
	_, err := LoadSite(path)
	assert.ErrorContains(t, err, "duplicate")
}

func TestLoadSiteRejectsKindlessTarget(t *testing.T) {
	path := writeConfig(t, `
base_url: https://example.test
source_path: /srv/site
syndication:
  mystery: {}
`)
	_, err := LoadSite(path)
	assert.ErrorContains(t, err, "kind")
}

func TestLoadSiteMissingFile(t *testing.T) {
	_, err := LoadSite(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestSyndicateTimeoutDefault(t *testing.T) {
	cfg, err := LoadSite(writeConfig(t, "base_url: https://example.test\nsource_path: /srv/site\n"))
	require.NoError(t, err)
	assert.Equal(t, "15s", cfg.SyndicateTimeout().String())
}
