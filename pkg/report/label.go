package report

import (
	"regexp"
	"strings"
)

// LabelDescription splits a combined score label such as
// "Likely - the documents support the claim. More text" into its parts.
type LabelDescription struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Longer alternatives come first: Go's regexp prefers the leftmost alternative.
var labelPattern = regexp.MustCompile(
	`(?is)^\s*(?:(highly likely|unlikely|likely|moderate|possible|improbable|rare|low|high|certain|uncertain|unknown)\b|([\p{L}\p{N}]+))\s*[-–—:,.]?\s*(.*)$`,
)

var (
	firstSentence = regexp.MustCompile(`(?s)^[^.]*\.`)
	bulletStart   = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])`)
)

var canonicalLabels = map[string]string{
	"highly likely": "Highly Likely",
	"unlikely":      "Unlikely",
	"likely":        "Likely",
	"moderate":      "Moderate",
	"possible":      "Possible",
	"improbable":    "Improbable",
	"rare":          "Rare",
	"low":           "Low",
	"high":          "High",
	"certain":       "Certain",
	"uncertain":     "Uncertain",
	"unknown":       "Unknown",
}

// ExtractLabelAndDescription returns a short categorical label and an optional
// one-sentence description. Unrecognized input yields its first word as the label.
func ExtractLabelAndDescription(scoreLabel string) LabelDescription {
	m := labelPattern.FindStringSubmatch(scoreLabel)
	if m == nil {
		return LabelDescription{}
	}

	label := m[1]
	if label == "" {
		label = m[2]
	}
	if canonical, ok := canonicalLabels[strings.ToLower(label)]; ok {
		label = canonical
	}

	rest := strings.TrimSpace(m[3])
	if rest == "" || bulletStart.MatchString(rest) {
		return LabelDescription{Label: label}
	}

	description := rest
	if sentence := firstSentence.FindString(rest); sentence != "" {
		description = sentence
	}

	return LabelDescription{
		Label:       label,
		Description: strings.TrimSpace(description),
	}
}
