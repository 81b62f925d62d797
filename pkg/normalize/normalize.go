// Package normalize reduces a raw upstream message payload to a MessageDetail. Normalization is
// pure: it performs no I/O and never fails on malformed markup.
package normalize

import (
	"encoding/json"
	"strings"

	"github.com/tempbucket/tempbucket/pkg/tempmail"
)

// Normalize extracts sender, subject, timestamp and readable text from raw, which may be HTML
// markup or a JSON envelope. Fields the payload does not carry get the tempmail defaults. Empty or
// whitespace-only input returns tempmail.ErrEmptyContent.
func Normalize(raw string) (*tempmail.MessageDetail, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, tempmail.NewError(tempmail.KindEmptyContent, "normalize", 0, nil)
	}

	var detail *tempmail.MessageDetail
	if isJSONObject(trimmed) {
		detail = fromJSON(trimmed)
	} else {
		detail = fromMarkup(raw)
	}
	detail.RawPayload = raw
	return detail, nil
}

// CollapseWhitespace replaces every run of whitespace in s with a single space and trims the ends.
// It is idempotent.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// isJSONObject reports whether s, already trimmed, is a JSON object.
func isJSONObject(s string) bool {
	return strings.HasPrefix(s, "{") && json.Valid([]byte(s))
}

// orDefault returns value trimmed, or def when that leaves nothing.
func orDefault(value, def string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return def
}
