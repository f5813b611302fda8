package storage

import (
	"errors"
	"mime"
	"path"
	"strings"
)

func sanitizePathSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	builder := strings.Builder{}
	builder.Grow(len(value))
	for i := 0; i < len(value); i++ {
		ch := value[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9':
			builder.WriteByte(ch)
		case ch >= 'A' && ch <= 'Z':
			builder.WriteByte(ch + 32)
		case ch == '-', ch == '_':
			builder.WriteByte(ch)
		}
	}
	return builder.String()
}

func sanitizeFileBase(value string) string {
	replaced := strings.ReplaceAll(strings.TrimSpace(value), " ", "-")
	sanitized := sanitizePathSegment(replaced)
	return strings.Trim(sanitized, "-_")
}

// ObjectKey 返回 SaveOptions 对应的存储键。BaseName 为空时返回错误。
func ObjectKey(opts SaveOptions) (string, error) {
	base := sanitizeFileBase(opts.BaseName)
	if base == "" {
		return "", errors.New("storage: missing object name")
	}
	category := sanitizePathSegment(opts.Category)
	if category == "" {
		category = "misc"
	}
	filename := base
	if ext := sanitizePathSegment(strings.TrimPrefix(strings.TrimSpace(opts.Extension), ".")); ext != "" {
		filename = base + "." + ext
	}
	return path.Join(category, filename), nil
}

func contentTypeFor(opts SaveOptions) string {
	if ct := strings.TrimSpace(opts.ContentType); ct != "" {
		return ct
	}
	ext := sanitizePathSegment(strings.TrimPrefix(strings.TrimSpace(opts.Extension), "."))
	if ext == "" {
		return "application/octet-stream"
	}
	if typeName := mime.TypeByExtension("." + ext); typeName != "" {
		return typeName
	}
	return "application/octet-stream"
}

// validateKey rejects keys that could escape the storage root.
func validateKey(key string) (string, error) {
	cleaned := path.Clean("/" + strings.TrimSpace(key))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", errors.New("storage: empty key")
	}
	if cleaned != strings.Trim(strings.TrimSpace(key), "/") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}

func joinPrefix(prefix, key string) string {
	cleanPrefix := trimPrefix(prefix)
	if cleanPrefix == "" {
		return strings.TrimLeft(key, "/")
	}
	return path.Join(cleanPrefix, strings.TrimLeft(key, "/"))
}

func trimPrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}
