package form

import (
	"fmt"
	"strconv"
)

// Apply overwrites draft fields from a decoded JSON body. A nil title
// leaves the title alone; metadata keys not in the schema are rejected.
func (f *Form[M]) Apply(title *string, metadata map[string]any) error {
	if title != nil {
		f.SetTitle(*title)
	}
	for name, raw := range metadata {
		fd, err := f.field(name)
		if err != nil {
			return err
		}
		if fd.Type.Repeated() {
			list, ok := raw.([]any)
			if raw != nil && !ok {
				return fmt.Errorf("%s: expected a list", name)
			}
			items := make([]string, 0, len(list))
			for _, item := range list {
				items = append(items, stringOf(item, "id"))
			}
			if err := f.SetItems(name, items); err != nil {
				return err
			}
			continue
		}
		if err := f.Set(name, scalarText(raw)); err != nil {
			return err
		}
	}
	return nil
}

func scalarText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case map[string]any:
		for _, key := range []string{"id", "key", "name"} {
			if s, ok := t[key].(string); ok {
				return s
			}
		}
	}
	return fmt.Sprint(v)
}
