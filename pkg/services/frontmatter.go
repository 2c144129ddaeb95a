package services

import (
	"bytes"
	"regexp"
	"sort"
	"strings"

	"hugo-micropub/pkg/models"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	yamlFence = regexp.MustCompile(`\n*---\n`)
	tomlFence = regexp.MustCompile(`\n*\+\+\+\n`)
)

// ParseFrontMatter splits a source file into its front matter and body. All
// front matter values come back as lists, matching the mf2 convention that
// every property is list-shaped. The body is trimmed of surrounding
// whitespace.
//
// YAML (---) is the house format; TOML (+++) is accepted for legacy .html
// sources that predate the YAML convention.
func ParseFrontMatter(content []byte) (models.PropertyMap, string, error) {
	str := string(content)

	fence := yamlFence
	decode := func(block string, into *map[string]any) error {
		return yaml.Unmarshal([]byte(block), into)
	}
	if strings.HasPrefix(str, "+++\n") || strings.HasPrefix(str, "+++\r\n") {
		fence = tomlFence
		decode = func(block string, into *map[string]any) error {
			return toml.Unmarshal([]byte(block), into)
		}
	}

	parts := fence.Split(str, 3)
	if len(parts) < 3 {
		return nil, "", badRequest("invalid_document", "The source file has no front matter block.")
	}

	var fm map[string]any
	if err := decode(parts[1], &fm); err != nil {
		return nil, "", badRequest("invalid_document", "The source file's front matter could not be parsed.")
	}

	props := make(models.PropertyMap, len(fm))
	for k, v := range fm {
		if list, ok := v.([]any); ok {
			props[k] = list
			continue
		}
		props[k] = []any{v}
	}
	return props, strings.TrimSpace(parts[2]), nil
}

// BuildPost renders front matter and body into the on-disk document framing.
// Keys are emitted in sorted order so repeated writes of the same document
// are byte-identical.
func BuildPost(props models.PropertyMap, body string) ([]byte, error) {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteString("---\n")
	if len(keys) > 0 {
		root := &yaml.Node{Kind: yaml.MappingNode}
		for _, k := range keys {
			var key, val yaml.Node
			key.SetString(k)
			if err := val.Encode(props[k]); err != nil {
				return nil, err
			}
			root.Content = append(root.Content, &key, &val)
		}
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(root); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	}
	buf.WriteString("---\n")
	buf.WriteString(body)
	buf.WriteString("\n")
	return buf.Bytes(), nil
}
