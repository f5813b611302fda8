package llm

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

const logSnippetLimit = 120

func requestLogger(ctx context.Context, model string, req ImageRequest) *logrus.Entry {
	fields := logrus.Fields{
		"provider":      "gemini",
		"prompt_length": utf8.RuneCountInString(req.Prompt),
		"aspect_ratio":  req.AspectRatio,
		"quality":       req.Quality,
	}
	if trimmedModel := strings.TrimSpace(model); trimmedModel != "" {
		fields["model"] = trimmedModel
	}

	entry := logrus.WithFields(fields)
	if ctx != nil {
		entry = entry.WithContext(ctx)
	}
	return entry
}

// logSnippet trims value to logSnippetLimit runes.
func logSnippet(value string) string {
	value = strings.TrimSpace(value)
	if utf8.RuneCountInString(value) <= logSnippetLimit {
		return value
	}
	return string([]rune(value)[:logSnippetLimit]) + "..."
}
