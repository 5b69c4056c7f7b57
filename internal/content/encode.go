package content

import "github.com/mesh-intelligence/contentdesk/pkg/types"

// WritableMetadata rewrites a metadata bag into the shape the store accepts
// on writes: object references become ids, options become their key, and
// images become their media name (taken from the URL when the read shape
// has no name, dropped when neither is known). Fields
// not in the schema pass through unchanged. The input map is not modified.
func WritableMetadata(schema types.Schema, bag map[string]any) map[string]any {
	out := make(map[string]any, len(bag))
	for k, v := range bag {
		out[k] = v
	}
	for _, f := range schema.Fields {
		v, ok := out[f.Name]
		if !ok || v == nil {
			continue
		}
		switch f.Type {
		case types.FieldRef:
			out[f.Name] = refID(v)
		case types.FieldRefList:
			items, _ := v.([]any)
			ids := make([]any, 0, len(items))
			for _, item := range items {
				if id := refID(item); id != "" {
					ids = append(ids, id)
				}
			}
			out[f.Name] = ids
		case types.FieldOption:
			out[f.Name] = stringField(v, "key")
		case types.FieldImage:
			if name := imageName(v); name != "" {
				out[f.Name] = name
			} else {
				delete(out, f.Name)
			}
		}
	}
	return out
}

// imageName is the media name of an image value. Reads from the hosted
// store carry only url and imgix_url, so the name falls back to the URL's
// file segment.
func imageName(v any) string {
	if name := stringField(v, "name"); name != "" {
		return name
	}
	m, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"url", "imgix_url"} {
		if s, _ := m[key].(string); s != "" {
			if name := types.MediaName(s); name != "" {
				return name
			}
		}
	}
	return ""
}

func refID(v any) string {
	return stringField(v, "id")
}

// stringField returns v itself when it is a string, or v[key] when v is an
// object.
func stringField(v any, key string) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		s, _ := t[key].(string)
		return s
	}
	return ""
}
