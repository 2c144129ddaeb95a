package services

import (
	"testing"

	"hugo-micropub/pkg/models"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeFlattensSingletons(t *testing.T) {
	props := models.PropertyMap{
		"summary": []any{"just one"},
		"ate":     []any{"breakfast", "lunch"},
	}
	got := NormalizeProperties(props)

	assert.Equal(t, "just one", got["summary"])
	assert.Equal(t, []any{"breakfast", "lunch"}, got["ate"])
}

func TestNormalizeKeepsArrayProps(t *testing.T) {
	props := models.PropertyMap{
		"photo":       []any{"/img/one.jpg"},
		"syndication": []any{"https://mastodon.example/@me/1"},
	}
	got := NormalizeProperties(props)

	assert.Equal(t, []any{"/img/one.jpg"}, got["photo"])
	assert.Equal(t, []any{"https://mastodon.example/@me/1"}, got["syndication"])
}

func TestNormalizeNeverFlattensNestedValues(t *testing.T) {
	props := models.PropertyMap{
		"checkin": []any{map[string]any{"type": []any{"h-card"}}},
		"nested":  []any{[]any{"inner"}},
	}
	got := NormalizeProperties(props)

	assert.Equal(t, props["checkin"], got["checkin"])
	assert.Equal(t, props["nested"], got["nested"])
}

func TestNormalizeRenamesProperties(t *testing.T) {
	props := models.PropertyMap{
		"name":     []any{"A Title"},
		"category": []any{"go", "indieweb"},
	}
	got := NormalizeProperties(props)

	assert.Equal(t, "A Title", got["title"])
	assert.Equal(t, []any{"go", "indieweb"}, got["tags"])
	assert.NotContains(t, got, "name")
	assert.NotContains(t, got, "category")
}

func TestUnmapInvertsMap(t *testing.T) {
	props := models.PropertyMap{
		"title":     []any{"A Title"},
		"tags":      []any{"go"},
		"unrelated": []any{"stays"},
	}
	got := UnmapProperties(props)

	assert.Equal(t, []any{"A Title"}, got["name"])
	assert.Equal(t, []any{"go"}, got["category"])
	assert.Equal(t, []any{"stays"}, got["unrelated"])
	assert.NotContains(t, got, "title")
	assert.NotContains(t, got, "tags")

	roundTripped := MapProperties(got)
	assert.Equal(t, props, roundTripped)
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	props := models.PropertyMap{"name": []any{"A Title"}}
	NormalizeProperties(props)
	assert.Equal(t, models.PropertyMap{"name": []any{"A Title"}}, props)
}
