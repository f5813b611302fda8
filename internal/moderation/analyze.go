package moderation

import (
	"regexp"
	"unicode/utf8"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

const (
	minPromptLength = 5
	maxPromptLength = 500
)

// Analysis is advisory output for the UI. It never blocks a request.
type Analysis struct {
	IsSafe    bool      `json:"is_safe"`
	RiskLevel RiskLevel `json:"risk_level"`
	Warnings  []string  `json:"warnings"`
}

type riskPattern struct {
	re      *regexp.Regexp
	level   RiskLevel
	warning string
}

var riskPatterns = []riskPattern{
	{re: regexp.MustCompile(`(?i)weapon|gun|knife|sword`), level: RiskMedium, warning: "Contains weapons"},
	{re: regexp.MustCompile(`(?i)violence|fight|war`), level: RiskMedium, warning: "Contains violence"},
	{re: regexp.MustCompile(`(?i)blood|gore|killing`), level: RiskHigh, warning: "Contains graphic content"},
	{re: regexp.MustCompile(`(?i)adult|nude|explicit`), level: RiskHigh, warning: "Contains adult content"},
	{re: regexp.MustCompile(`(?i)hate|racist|discrimination`), level: RiskHigh, warning: "Contains hate content"},
	{re: regexp.MustCompile(`(?i)drug|alcohol|smoking`), level: RiskMedium, warning: "Contains substance use"},
}

// Analyze classifies a prompt. Any high pattern forces high, otherwise any
// medium pattern forces medium. Length warnings do not change the level.
func Analyze(prompt string) Analysis {
	warnings := []string{}
	level := RiskLow

	for _, pattern := range riskPatterns {
		if !pattern.re.MatchString(prompt) {
			continue
		}
		warnings = append(warnings, pattern.warning)
		switch {
		case pattern.level == RiskHigh:
			level = RiskHigh
		case pattern.level == RiskMedium && level == RiskLow:
			level = RiskMedium
		}
	}

	length := utf8.RuneCountInString(prompt)
	if length < minPromptLength {
		warnings = append(warnings, "Prompt is too short")
	}
	if length > maxPromptLength {
		warnings = append(warnings, "Prompt is very long and may take longer to process")
	}

	return Analysis{
		IsSafe:    level != RiskHigh,
		RiskLevel: level,
		Warnings:  warnings,
	}
}
