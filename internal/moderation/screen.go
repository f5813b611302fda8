// Package moderation screens prompts before they reach the image model.
package moderation

import "strings"

// BlockedMessage is the user-facing reason for a screened prompt.
const BlockedMessage = "Prompt contains inappropriate content that violates our safety guidelines."

var blockedKeywords = []string{
	"violence",
	"gore",
	"adult",
	"nsfw",
	"explicit",
	"blood",
	"weapon",
	"kill",
	"death",
	"terror",
}

// ScreenResult reports whether a prompt is blocked and by which keyword.
type ScreenResult struct {
	Blocked        bool   `json:"blocked"`
	MatchedKeyword string `json:"matched_keyword,omitempty"`
}

// Screen does a case-insensitive substring match against the blocklist. The
// first keyword found wins.
func Screen(prompt string) ScreenResult {
	lowered := strings.ToLower(prompt)
	for _, keyword := range blockedKeywords {
		if strings.Contains(lowered, keyword) {
			return ScreenResult{Blocked: true, MatchedKeyword: keyword}
		}
	}
	return ScreenResult{}
}

// BlockedKeywords returns a copy of the blocklist.
func BlockedKeywords() []string {
	out := make([]string, len(blockedKeywords))
	copy(out, blockedKeywords)
	return out
}
