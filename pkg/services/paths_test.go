package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"hugo-micropub/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSiteConfig(t *testing.T) *models.SiteConfig {
	t.Helper()
	return &models.SiteConfig{
		BaseURL:    "https://example.test/",
		SourcePath: t.TempDir() + "/",
		ContentPaths: []models.PathRule{
			{Type: "note", Prefix: "posts/", DateFormat: "2006/01/02/"},
			{Type: "article", Prefix: "posts/", DateFormat: "2006/01/02/"},
			{Type: "event", Prefix: "events/", DateFormat: "2006/01/02/"},
		},
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("---\ntitle: x\n---\nbody\n"), 0o644))
}

func TestResolveNestedPath(t *testing.T) {
	cfg := testSiteConfig(t)
	r := NewPathResolver(cfg)

	// /index.html folds back onto the page's own .md source.
	want := cfg.SourcePath + "content/posts/2026/09/01/hello.md"
	touch(t, want)

	got, err := r.Resolve("https://example.test/2026/09/01/hello/index.html")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveTrailingSlash(t *testing.T) {
	cfg := testSiteConfig(t)
	r := NewPathResolver(cfg)

	want := cfg.SourcePath + "content/posts/2026/09/01/hello.md"
	touch(t, want)

	got, err := r.Resolve("https://example.test/2026/09/01/hello/")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveLegacyFlatPath(t *testing.T) {
	cfg := testSiteConfig(t)
	r := NewPathResolver(cfg)

	// Older content is a single flat file named after the whole permalink.
	want := cfg.SourcePath + "content/posts/2018-11-19-083045.md"
	touch(t, want)

	got, err := r.Resolve("https://example.test/2018/11/19/083045/")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveHTMLSibling(t *testing.T) {
	cfg := testSiteConfig(t)
	r := NewPathResolver(cfg)

	want := cfg.SourcePath + "content/events/2026/09/01/party.html"
	touch(t, want)

	got, err := r.Resolve("https://example.test/2026/09/01/party/")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveUnmappedContentRoot(t *testing.T) {
	cfg := testSiteConfig(t)
	r := NewPathResolver(cfg)

	want := cfg.SourcePath + "content/about.md"
	touch(t, want)

	got, err := r.Resolve("https://example.test/about/")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveNotFound(t *testing.T) {
	r := NewPathResolver(testSiteConfig(t))

	_, err := r.Resolve("https://example.test/2026/09/01/missing/")
	require.Error(t, err)
	assert.Equal(t, 404, AsError(err).Status)
}

func TestResolvePrefersFirstCandidate(t *testing.T) {
	cfg := testSiteConfig(t)
	r := NewPathResolver(cfg)

	posts := cfg.SourcePath + "content/posts/2026/09/01/hello.md"
	events := cfg.SourcePath + "content/events/2026/09/01/hello.md"
	touch(t, posts)
	touch(t, events)

	// posts/ is configured before events/, so it wins, every time.
	for i := 0; i < 3; i++ {
		got, err := r.Resolve("https://example.test/2026/09/01/hello/")
		require.NoError(t, err)
		assert.Equal(t, posts, got)
	}
}

func TestCandidatesOrderAndDedup(t *testing.T) {
	cfg := testSiteConfig(t)
	r := NewPathResolver(cfg)

	got := r.Candidates("https://example.test/a/b/")
	root := cfg.SourcePath + "content/"
	want := []string{
		root + "posts/a/b.md",
		root + "posts/a/b.html",
		root + "events/a/b.md",
		root + "events/a/b.html",
		root + "a/b.md",
		root + "a/b.html",
		root + "posts/a-b.md",
		root + "posts/a-b.html",
		root + "events/a-b.md",
		root + "events/a-b.html",
		root + "a-b.md",
		root + "a-b.html",
	}
	assert.Equal(t, want, got)
}

func TestCreatePathMappedType(t *testing.T) {
	cfg := testSiteConfig(t)
	r := NewPathResolver(cfg)

	ts := time.Date(2026, 9, 1, 14, 5, 9, 0, time.UTC)
	path, url := r.CreatePath("note", "140509", ts)

	assert.Equal(t, cfg.SourcePath+"content/posts/2026/09/01/140509.md", path)
	assert.Equal(t, "https://example.test/2026/09/01/140509/", url)
}

func TestCreatePathUnmappedType(t *testing.T) {
	cfg := testSiteConfig(t)
	r := NewPathResolver(cfg)

	ts := time.Date(2026, 9, 1, 14, 5, 9, 0, time.UTC)
	path, url := r.CreatePath("page", "about", ts)

	assert.Equal(t, cfg.SourcePath+"content/about.md", path)
	assert.Equal(t, "https://example.test/about/", url)
}
