package services

import "hugo-micropub/pkg/models"

// Properties the Hugo templates require to stay lists even when they hold a
// single element.
var arrayProps = map[string]bool{
	"audio":       true,
	"category":    true,
	"photo":       true,
	"read-status": true,
	"syndication": true,
	"video":       true,
}

// Micropub names we'd rather store under Hugo's vocabulary. The inverse map
// is applied before editing an existing document and when answering source
// queries, so the wire names round-trip exactly.
var propertyRenames = [][2]string{
	{"name", "title"},
	{"category", "tags"},
}

// NormalizeProperties flattens single-element lists into scalars, except for
// the always-list set and for lists whose element is itself a list or object,
// then applies the rename table. The input map is not modified.
func NormalizeProperties(props models.PropertyMap) models.PropertyMap {
	out := make(models.PropertyMap, len(props))
	for k, v := range props {
		if arrayProps[k] {
			out[k] = v
			continue
		}
		if list, ok := v.([]any); ok && len(list) == 1 && !isCompound(list[0]) {
			out[k] = list[0]
			continue
		}
		out[k] = v
	}
	return MapProperties(out)
}

func isCompound(v any) bool {
	switch v.(type) {
	case []any, map[string]any, models.PropertyMap:
		return true
	}
	return false
}

// MapProperties renames micropub property names to their storage names.
func MapProperties(props models.PropertyMap) models.PropertyMap {
	out := props.Clone()
	for _, r := range propertyRenames {
		if v, ok := out[r[0]]; ok {
			out[r[1]] = v
			delete(out, r[0])
		}
	}
	return out
}

// UnmapProperties is the inverse of MapProperties.
func UnmapProperties(props models.PropertyMap) models.PropertyMap {
	out := props.Clone()
	for _, r := range propertyRenames {
		if v, ok := out[r[1]]; ok {
			out[r[0]] = v
			delete(out, r[1])
		}
	}
	return out
}
