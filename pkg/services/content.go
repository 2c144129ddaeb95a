package services

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"
	"time"

	"hugo-micropub/pkg/models"

	"github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02 15:04:05 -0700"

// ContentService orchestrates the four mutating operations against the
// content tree. It holds no mutable state; the file system is the source of
// truth.
type ContentService struct {
	cfg      *models.SiteConfig
	paths    *PathResolver
	builder  *Builder
	git      *Git
	registry *Registry
	log      *logrus.Logger
	now      func() time.Time
}

func NewContentService(cfg *models.SiteConfig, paths *PathResolver, builder *Builder, git *Git, registry *Registry, log *logrus.Logger) *ContentService {
	return &ContentService{
		cfg:      cfg,
		paths:    paths,
		builder:  builder,
		git:      git,
		registry: registry,
		log:      log,
		now:      time.Now,
	}
}

// CreateInput is one decoded create request. Body arrives already collapsed
// to a single string by the request boundary; Photos are the URLs of any
// sidecar uploads.
type CreateInput struct {
	Type        string
	Properties  models.PropertyMap
	Body        string
	Photos      []string
	SyndicateTo []string
}

// CreateResult carries everything the caller and the post-response
// syndication pass need about the new post.
type CreateResult struct {
	URL         string
	Path        string
	PostType    string
	Properties  models.PropertyMap
	Body        string
	SyndicateTo []string
}

// UpdateInput holds the three partial-update operation maps.
type UpdateInput struct {
	Replace map[string]any
	Add     map[string]any
	// Delete is either a list of property names or a map of property name
	// to the values to remove from it.
	Delete any
}

// Create materializes a new post on disk and triggers the site build.
// Syndication is not part of this call; the caller responds to the client
// first and then runs Syndicate.
func (s *ContentService) Create(in CreateInput) (*CreateResult, error) {
	props := NormalizeProperties(in.Properties)

	if len(in.Photos) > 0 {
		photos := props.List("photo")
		for _, p := range in.Photos {
			photos = append(photos, p)
		}
		props["photo"] = photos
	}

	h := strings.TrimPrefix(in.Type, "h-")
	props["h"] = h
	postType := h
	if in.Type == "h-entry" {
		postType = DiscoverPostType(props)
	}

	for k, v := range s.cfg.ContentDefaults[postType] {
		if _, ok := props[k]; !ok {
			props[k] = v
		}
	}

	s.fetchReplyContext(props)

	if postType == "event" {
		if start, ok := scalarString(props["start"]); ok {
			if ts, ok := parseDate(start); ok {
				props["start"] = ts.Format(dateLayout)
			}
			props["date"] = props["start"]
			if end, ok := scalarString(props["end"]); ok {
				if ts, ok := parseDate(end); ok {
					props["end"] = ts.Format(dateLayout)
				}
			}
		}
	}

	if _, ok := props["date"]; !ok {
		props["date"] = s.now().Format(dateLayout)
		// Micropub suggests "published" for the create time, but Hugo
		// treats published as a boolean. Grab it as the date before it
		// is overwritten below.
		for _, key := range []string{"published", "created"} {
			if v, ok := scalarString(props[key]); ok {
				props["date"] = v
				break
			}
		}
	}

	if status, ok := scalarString(props["post-status"]); ok {
		props["published"] = status != "draft"
		delete(props, "post-status")
	} else {
		props["published"] = true
	}

	ts := s.now()
	if date, ok := scalarString(props["date"]); ok {
		if parsed, ok := parseDate(date); ok {
			ts = parsed
		}
	}

	_, hasTitle := props["title"]
	if _, hasSlug := props["slug"]; !hasSlug {
		if hasTitle {
			props["slug"], _ = scalarString(props["title"])
		} else {
			props["slug"] = ts.Format("150405")
		}
	}
	slug, _ := scalarString(props["slug"])
	slug = Slugify(slug)
	props["slug"] = slug

	path, url := s.paths.CreatePath(postType, slug, ts)
	if err := s.writeDocument(path, props, in.Body, false); err != nil {
		return nil, err
	}

	s.builder.Build()
	s.git.Checkpoint("create", slug)
	s.log.WithFields(logrus.Fields{"type": postType, "url": url}).Info("created post")

	return &CreateResult{
		URL:         url,
		Path:        path,
		PostType:    postType,
		Properties:  props,
		Body:        in.Body,
		SyndicateTo: in.SyndicateTo,
	}, nil
}

// Syndicate pushes a freshly created post to each requested target and folds
// the resulting URLs back into the stored document. Runs after the client
// already has its 201; failures only cost the target its front-matter link.
// The rewrite deliberately skips the site build.
func (s *ContentService) Syndicate(res *CreateResult) {
	merged := false
	for _, uid := range res.SyndicateTo {
		target, ok := s.registry.Lookup(uid)
		if !ok {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.SyndicateTimeout())
		url, err := target.Syndicate(ctx, res.Properties, res.Body, res.URL)
		cancel()
		if err != nil {
			s.log.WithError(err).WithField("target", uid).Warn("syndication failed")
			continue
		}
		res.Properties[uid+"-url"] = url
		merged = true
	}
	if !merged {
		return
	}
	if err := s.writeDocument(res.Path, res.Properties, res.Body, true); err != nil {
		s.log.WithError(err).Warn("rewrite after syndication failed")
	}
}

// Update applies replace/add/delete operations to an existing post.
func (s *ContentService) Update(url string, up UpdateInput) error {
	path, err := s.paths.Resolve(url)
	if err != nil {
		return err
	}
	props, body, err := s.readDocument(path)
	if err != nil {
		return err
	}
	if err := s.applyUpdate(path, props, body, up); err != nil {
		return err
	}
	s.builder.Build()
	s.git.Checkpoint("update", url)
	s.log.WithField("url", url).Info("updated post")
	return nil
}

// Delete unlinks the source file and recreates it as an unpublished
// tombstone, so the post drops out of the built site but stays recoverable
// through Undelete.
func (s *ContentService) Delete(url string) error {
	path, err := s.paths.Resolve(url)
	if err != nil {
		return err
	}
	props, body, err := s.readDocument(path)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return badRequest("unlink_failed", "Unable to delete the source file.")
	}
	up := UpdateInput{Replace: map[string]any{"published": []any{false}}}
	if err := s.applyUpdate(path, props, body, up); err != nil {
		return err
	}
	s.builder.Build()
	s.git.Checkpoint("delete", url)
	s.log.WithField("url", url).Info("deleted post")
	return nil
}

// Undelete republishes a tombstoned post.
func (s *ContentService) Undelete(url string) error {
	return s.Update(url, UpdateInput{Replace: map[string]any{"published": []any{true}}})
}

// Source returns the post behind a URL in micropub vocabulary, optionally
// filtered to the requested property names.
func (s *ContentService) Source(url string, properties []string) (models.PropertyMap, error) {
	path, err := s.paths.Resolve(url)
	if err != nil {
		return nil, err
	}
	props, body, err := s.readDocument(path)
	if err != nil {
		return nil, err
	}
	props["content"] = []any{body}
	if len(properties) == 0 {
		return props, nil
	}
	filtered := make(models.PropertyMap, len(properties))
	for _, p := range properties {
		if v, ok := props[p]; ok {
			filtered[p] = v
		}
	}
	return filtered, nil
}

// readDocument loads and parses a source file, restoring micropub property
// names so update operations address the wire vocabulary.
func (s *ContentService) readDocument(path string) (models.PropertyMap, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", badRequest("file_error", "Unable to read the source file.")
	}
	props, body, err := ParseFrontMatter(raw)
	if err != nil {
		return nil, "", err
	}
	return UnmapProperties(props), body, nil
}

// applyUpdate merges the operation maps into the document and rewrites it.
func (s *ContentService) applyUpdate(path string, props models.PropertyMap, body string, up UpdateInput) error {
	props["content"] = []any{body}

	for k, v := range up.Replace {
		props[k] = asList(v)
	}
	for k, v := range up.Add {
		if _, ok := props[k]; !ok {
			props[k] = asList(v)
		} else {
			props[k] = append(props.List(k), asList(v)...)
		}
	}
	switch del := up.Delete.(type) {
	case []any:
		for _, name := range del {
			delete(props, fmt.Sprint(name))
		}
	case []string:
		for _, name := range del {
			delete(props, name)
		}
	case map[string]any:
		for k, v := range del {
			values, ok := v.([]any)
			if !ok {
				// A scalar value names a whole property to drop.
				delete(props, fmt.Sprint(v))
				continue
			}
			if _, ok := props[k]; !ok {
				// Deleting from a missing key stays a no-op.
				continue
			}
			props[k] = difference(props.List(k), values)
		}
	}

	body = ""
	if content := props.List("content"); len(content) > 0 {
		body, _ = scalarString(props["content"])
		if body == "" {
			body = fmt.Sprint(content[0])
		}
	}
	delete(props, "content")

	return s.writeDocument(path, NormalizeProperties(props), body, true)
}

func (s *ContentService) writeDocument(path string, props models.PropertyMap, body string, overwrite bool) error {
	contents, err := BuildPost(props, body)
	if err != nil {
		return badRequest("file_error", "Unable to serialize the document.")
	}
	return WriteFile(path, contents, overwrite)
}

// fetchReplyContext quotes the post a reply, repost, or bookmark points at
// into the front matter, when a registered target recognizes the URL. Best
// effort with a bounded fetch.
func (s *ContentService) fetchReplyContext(props models.PropertyMap) {
	if s.registry == nil {
		return
	}
	for _, kind := range []string{"in-reply-to", "repost-of", "bookmark-of"} {
		target, ok := scalarString(props[kind])
		if !ok {
			continue
		}
		for _, uid := range s.registry.UIDs() {
			syn, _ := s.registry.Lookup(uid)
			fetcher, ok := syn.(ContextFetcher)
			if !ok || !fetcher.Owns(target) {
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), s.cfg.SyndicateTimeout())
			author, text, err := fetcher.FetchContext(ctx, target)
			cancel()
			if err != nil {
				props[kind+"-name"] = "a fediverse user"
				break
			}
			props[kind+"-name"] = author
			props[kind+"-content"] = text
			break
		}
	}
}

var slugStrip = regexp.MustCompile(`[^-A-Za-z0-9_]+`)

// Slugify turns a title into a URL-safe slug: spaces become dashes,
// anything outside [A-Za-z0-9_-] is dropped, and the result is lowercased.
func Slugify(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = slugStrip.ReplaceAllString(s, "")
	return strings.ToLower(s)
}

var dateLayouts = []string{
	dateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// scalarString reads a property value as a string whether it is a scalar or
// the head of a list.
func scalarString(v any) (string, bool) {
	switch value := v.(type) {
	case string:
		return value, true
	case []any:
		if len(value) > 0 {
			if s, ok := value[0].(string); ok {
				return s, true
			}
		}
	}
	return "", false
}

func asList(v any) []any {
	if list, ok := v.([]any); ok {
		return list
	}
	return []any{v}
}

// difference removes every element of remove from values, preserving the
// order of what is left.
func difference(values, remove []any) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		removed := false
		for _, r := range remove {
			if reflect.DeepEqual(v, r) {
				removed = true
				break
			}
		}
		if !removed {
			out = append(out, v)
		}
	}
	return out
}
