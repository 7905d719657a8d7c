package siteconfig

import "strings"

const (
	// inlineDataPrefix marks a string as inline-encoded media rather than
	// a URL reference.
	inlineDataPrefix = "data:"

	// maxInlineFieldLen is the per-field ceiling for inline-encoded values.
	// The remote store enforces a per-item size limit and encoded media is
	// what routinely blows it; URLs cost nothing and are never touched.
	maxInlineFieldLen = 5000

	// maxInlineAvatarLen is the larger allowance for the primary avatar,
	// which is worth keeping server-side as a small encoded thumbnail.
	maxInlineAvatarLen = 50000

	avatarField = "avatar"
)

// IsInlineData reports whether the value embeds binary content as text
// instead of referencing it by URL.
func IsInlineData(value string) bool {
	return strings.HasPrefix(value, inlineDataPrefix)
}

// StripOversizedMedia returns a copy of the document in which every string
// field carrying inline-encoded media beyond the size threshold is replaced
// with an empty string. The avatar field survives up to its own larger
// threshold. URLs pass through untouched regardless of length, as do
// non-string values and unrecognized fields. The transform is pure and
// idempotent.
func StripOversizedMedia(doc map[string]any) map[string]any {
	if doc == nil {
		return nil
	}
	out := make(map[string]any, len(doc))
	for key, value := range doc {
		str, ok := value.(string)
		if !ok || !IsInlineData(str) {
			out[key] = value
			continue
		}
		limit := maxInlineFieldLen
		if key == avatarField {
			limit = maxInlineAvatarLen
		}
		if len(str) > limit {
			out[key] = ""
			continue
		}
		out[key] = str
	}
	return out
}
