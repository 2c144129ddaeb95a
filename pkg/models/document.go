package models

// PropertyMap holds the front matter of one content item. Values are either
// scalars or lists; the micropub side of the pipeline treats every value as a
// list and the normalizer decides which ones stay that way.
type PropertyMap map[string]any

// Clone returns a shallow copy. List values are copied one level deep so a
// caller can append without mutating the source map.
func (p PropertyMap) Clone() PropertyMap {
	out := make(PropertyMap, len(p))
	for k, v := range p {
		if list, ok := v.([]any); ok {
			out[k] = append([]any(nil), list...)
			continue
		}
		out[k] = v
	}
	return out
}

// List returns the value under key coerced to a list. Scalars come back as a
// singleton list, missing keys as nil.
func (p PropertyMap) List(key string) []any {
	v, ok := p[key]
	if !ok {
		return nil
	}
	if list, ok := v.([]any); ok {
		return list
	}
	return []any{v}
}
