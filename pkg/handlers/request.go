package handlers

import (
	"strings"

	"hugo-micropub/pkg/models"
	"hugo-micropub/pkg/services"

	"github.com/gin-gonic/gin"
)

// Request is one decoded micropub request, whichever wire shape it arrived
// in. Body is already collapsed from the three content shapes micropub
// clients send (plain string, {html} object, singleton list of such), so
// the core only ever sees a single string.
type Request struct {
	Action      string
	URL         string
	Type        string
	Properties  models.PropertyMap
	Body        string
	SyndicateTo []string
	Update      services.UpdateInput
}

type jsonRequest struct {
	Action     string         `json:"action"`
	URL        string         `json:"url"`
	Type       []string       `json:"type"`
	Properties map[string]any `json:"properties"`
	Replace    map[string]any `json:"replace"`
	Add        map[string]any `json:"add"`
	Delete     any            `json:"delete"`
}

// ParseRequest decodes a JSON or form-encoded micropub request.
func ParseRequest(c *gin.Context) (*Request, error) {
	if strings.HasPrefix(c.ContentType(), "application/json") {
		return parseJSONRequest(c)
	}
	return parseFormRequest(c)
}

func parseJSONRequest(c *gin.Context) (*Request, error) {
	var payload jsonRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		return nil, services.NewError(400, "invalid_request", "The request body is not valid JSON.")
	}

	req := &Request{
		Action:     payload.Action,
		URL:        payload.URL,
		Type:       "h-entry",
		Properties: models.PropertyMap{},
		Update: services.UpdateInput{
			Replace: payload.Replace,
			Add:     payload.Add,
			Delete:  payload.Delete,
		},
	}
	if req.Action == "" {
		req.Action = "create"
	}
	if len(payload.Type) > 0 {
		req.Type = payload.Type[0]
	}
	for k, v := range payload.Properties {
		req.Properties[k] = v
	}
	finishCreate(req)
	return req, nil
}

func parseFormRequest(c *gin.Context) (*Request, error) {
	var err error
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		err = c.Request.ParseMultipartForm(32 << 20)
	} else {
		err = c.Request.ParseForm()
	}
	if err != nil {
		return nil, services.NewError(400, "invalid_request", "The request form could not be parsed.")
	}
	form := c.Request.PostForm

	req := &Request{
		Action:     "create",
		Type:       "h-entry",
		Properties: models.PropertyMap{},
	}
	for key, values := range form {
		name := strings.TrimSuffix(key, "[]")
		switch name {
		case "access_token":
		case "action":
			req.Action = values[0]
		case "url":
			req.URL = values[0]
		case "h":
			req.Type = "h-" + values[0]
		default:
			list := make([]any, len(values))
			for i, v := range values {
				list[i] = v
			}
			req.Properties[name] = list
		}
	}
	finishCreate(req)
	return req, nil
}

// finishCreate pulls the commands and the body out of the property map so
// only real front-matter properties remain.
func finishCreate(req *Request) {
	for key, v := range req.Properties {
		if !strings.HasPrefix(key, "mp-") {
			continue
		}
		if key == "mp-syndicate-to" {
			for _, t := range asStrings(v) {
				req.SyndicateTo = append(req.SyndicateTo, t)
			}
		}
		delete(req.Properties, key)
	}
	req.Body = extractBody(req.Properties)
	delete(req.Properties, "content")
}

// extractBody resolves the content property's three accepted shapes into one
// string.
func extractBody(props models.PropertyMap) string {
	v, ok := props["content"]
	if !ok {
		return ""
	}
	switch content := v.(type) {
	case string:
		return content
	case map[string]any:
		if html, ok := content["html"].(string); ok {
			return html
		}
	case []any:
		if len(content) == 0 {
			return ""
		}
		switch first := content[0].(type) {
		case string:
			return first
		case map[string]any:
			if html, ok := first["html"].(string); ok {
				return html
			}
		}
	}
	return ""
}

func asStrings(v any) []string {
	switch value := v.(type) {
	case string:
		return []string{value}
	case []any:
		out := make([]string, 0, len(value))
		for _, e := range value {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
