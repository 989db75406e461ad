package types

import "strings"

// RawResource is one provider-native resource object, kept opaque. Only the
// handful of fields the pipeline itself needs have accessors; everything
// else rides along untouched into the inventory record.
type RawResource map[string]any

// ID returns the fully qualified resource path, or "" if absent.
func (r RawResource) ID() string {
	id, _ := r["id"].(string)
	return id
}

// Location returns the raw location field, or "" if absent.
func (r RawResource) Location() string {
	loc, _ := r["location"].(string)
	return loc
}

// Name returns the last path segment of the resource id.
func (r RawResource) Name() string {
	id := r.ID()
	if id == "" {
		return ""
	}
	parts := strings.Split(id, "/")
	return parts[len(parts)-1]
}

// ResourceGroup returns the resource group segment of the resource id
// (/subscriptions/<sub>/resourceGroups/<rg>/...), or "" if the id is not
// deep enough.
func (r RawResource) ResourceGroup() string {
	parts := strings.Split(r.ID(), "/")
	if len(parts) < 5 {
		return ""
	}
	return parts[4]
}

// Property walks a dotted path through nested objects and returns the
// string value at the leaf. The second return is false when any segment is
// missing or not an object.
func (r RawResource) Property(path string) (string, bool) {
	var cur any = map[string]any(r)
	for _, seg := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return "", false
		}
		cur, ok = obj[seg]
		if !ok {
			return "", false
		}
	}
	s, ok := cur.(string)
	return s, ok
}
