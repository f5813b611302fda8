package utils

import "strings"

const defaultImageMime = "image/png"

// EnsureDataURL wraps bare base64 in a data URL with mimeType (png when empty).
func EnsureDataURL(value, mimeType string) string {
	if strings.HasPrefix(value, "data:") {
		return value
	}
	if strings.TrimSpace(mimeType) == "" {
		mimeType = defaultImageMime
	}
	return "data:" + mimeType + ";base64," + value
}

// SplitDataURL returns the mime type and base64 payload of a data URL. Bare
// base64 is returned unchanged with an empty mime type.
func SplitDataURL(value string) (string, string) {
	if !strings.HasPrefix(value, "data:") {
		return "", value
	}

	value = strings.TrimPrefix(value, "data:")
	parts := strings.SplitN(value, ";base64,", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return parts[0], parts[1]
}
