package handlers

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ginContext(t *testing.T, contentType, body string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/micropub", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", contentType)
	return c
}

func TestParseJSONCreate(t *testing.T) {
	c := ginContext(t, "application/json", `{
		"type": ["h-entry"],
		"properties": {
			"content": ["hi there"],
			"category": ["go", "web"],
			"mp-syndicate-to": ["mastodon"]
		}
	}`)

	req, err := ParseRequest(c)
	require.NoError(t, err)

	assert.Equal(t, "create", req.Action)
	assert.Equal(t, "h-entry", req.Type)
	assert.Equal(t, "hi there", req.Body)
	assert.Equal(t, []string{"mastodon"}, req.SyndicateTo)
	assert.Equal(t, []any{"go", "web"}, req.Properties["category"])
	assert.NotContains(t, req.Properties, "content")
	assert.NotContains(t, req.Properties, "mp-syndicate-to")
}

func TestParseJSONContentShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"plain string list", `{"properties": {"content": ["plain"]}}`, "plain"},
		{"html object", `{"properties": {"content": {"html": "<b>hi</b>"}}}`, "<b>hi</b>"},
		{"list of html objects", `{"properties": {"content": [{"html": "<i>hi</i>"}]}}`, "<i>hi</i>"},
		{"missing", `{"properties": {}}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseRequest(ginContext(t, "application/json", tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.Body)
		})
	}
}

func TestParseJSONUpdate(t *testing.T) {
	c := ginContext(t, "application/json", `{
		"action": "update",
		"url": "https://example.test/2026/09/01/hi/",
		"replace": {"content": ["new"]},
		"add": {"category": ["x"]},
		"delete": ["summary"]
	}`)

	req, err := ParseRequest(c)
	require.NoError(t, err)

	assert.Equal(t, "update", req.Action)
	assert.Equal(t, "https://example.test/2026/09/01/hi/", req.URL)
	assert.Equal(t, map[string]any{"content": []any{"new"}}, req.Update.Replace)
	assert.Equal(t, map[string]any{"category": []any{"x"}}, req.Update.Add)
	assert.Equal(t, []any{"summary"}, req.Update.Delete)
}

func TestParseFormCreate(t *testing.T) {
	form := url.Values{
		"h":               {"entry"},
		"content":         {"hello from a form"},
		"category[]":      {"go", "web"},
		"mp-syndicate-to": {"mastodon"},
		"access_token":    {"secret"},
	}
	c := ginContext(t, "application/x-www-form-urlencoded", form.Encode())

	req, err := ParseRequest(c)
	require.NoError(t, err)

	assert.Equal(t, "create", req.Action)
	assert.Equal(t, "h-entry", req.Type)
	assert.Equal(t, "hello from a form", req.Body)
	assert.Equal(t, []any{"go", "web"}, req.Properties["category"])
	assert.Equal(t, []string{"mastodon"}, req.SyndicateTo)
	// The token is transport, not content.
	assert.NotContains(t, req.Properties, "access_token")
}

func TestParseFormDelete(t *testing.T) {
	form := url.Values{
		"action": {"delete"},
		"url":    {"https://example.test/2026/09/01/hi/"},
	}
	c := ginContext(t, "application/x-www-form-urlencoded", form.Encode())

	req, err := ParseRequest(c)
	require.NoError(t, err)

	assert.Equal(t, "delete", req.Action)
	assert.Equal(t, "https://example.test/2026/09/01/hi/", req.URL)
}

func TestParseBadJSON(t *testing.T) {
	_, err := ParseRequest(ginContext(t, "application/json", "{nope"))
	require.Error(t, err)
}
