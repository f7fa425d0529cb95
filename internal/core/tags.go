package core

import "strings"

// NoCategory is returned by ExtractCategory when no category tag is present.
const NoCategory = ""

const categoryKey = "category"

// Tags is the parsed form of a comma separated tag string.
type Tags struct {
	// Labels are plain segments without a ':' separator, in input order.
	Labels []string
	// Values maps lower-cased keys of "key:value" segments to their trimmed
	// value. The first occurrence of a key wins.
	Values map[string]string
}

// ParseTags splits raw on commas. Empty segments and "key:value" segments
// with an empty key or value are dropped; they never make the whole string
// invalid.
func ParseTags(raw string) Tags {
	t := Tags{Values: map[string]string{}}
	for _, seg := range strings.Split(raw, ",") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		key, value, found := strings.Cut(seg, ":")
		if !found {
			t.Labels = append(t.Labels, seg)
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		if _, dup := t.Values[key]; !dup {
			t.Values[key] = value
		}
	}
	return t
}

// Get returns the value stored under key, case-insensitively.
func (t Tags) Get(key string) (string, bool) {
	v, ok := t.Values[strings.ToLower(key)]
	return v, ok
}

// NormalizeTags trims every segment and drops the malformed ones, keeping
// input order. The result is what gets persisted.
func NormalizeTags(raw string) string {
	var out []string
	for _, seg := range strings.Split(raw, ",") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		if key, value, found := strings.Cut(seg, ":"); found {
			key, value = strings.TrimSpace(key), strings.TrimSpace(value)
			if key == "" || value == "" {
				continue
			}
			seg = key + ":" + value
		}
		out = append(out, seg)
	}
	return strings.Join(out, ",")
}

// ExtractCategory returns the value of the first "category:<value>" tag. The
// "category:" prefix matches in any case. Missing or malformed input yields
// NoCategory and false, never an error.
func ExtractCategory(raw string) (string, bool) {
	if strings.TrimSpace(raw) == "" {
		return NoCategory, false
	}
	v, ok := ParseTags(raw).Get(categoryKey)
	if !ok {
		return NoCategory, false
	}
	return v, true
}
