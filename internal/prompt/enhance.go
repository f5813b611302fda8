// Package prompt turns a user prompt into the text sent to the image model.
package prompt

import (
	"errors"
	"strings"
)

const qualitySuffix = "high quality, detailed, masterpiece"

// ErrUnsafePrompt is returned when the original prompt matches a harmful pattern.
var ErrUnsafePrompt = errors.New("Prompt contains content that violates safety guidelines")

// harmfulPatterns is narrower than the moderation blocklist; both run.
var harmfulPatterns = []string{"violence", "gore", "adult", "nsfw", "explicit", "blood", "weapon"}

// Enhance prefixes the style descriptor and appends the quality suffix. The
// harmful-pattern check runs against the unenhanced prompt.
func Enhance(userPrompt, styleID string) (string, error) {
	lowered := strings.ToLower(userPrompt)
	for _, pattern := range harmfulPatterns {
		if strings.Contains(lowered, pattern) {
			return "", ErrUnsafePrompt
		}
	}

	descriptor := StyleDescriptor(styleID)
	if descriptor == "" {
		return userPrompt + ", " + qualitySuffix, nil
	}
	return descriptor + ", " + userPrompt + ", " + qualitySuffix, nil
}
