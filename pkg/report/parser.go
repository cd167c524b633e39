package report

import (
	"regexp"
	"strings"
)

// Sections is the structured form of a case assessment report.
// Every field is empty when its heading is missing from the text.
type Sections struct {
	Summary          string   `json:"summary"`
	Issues           []string `json:"issues"`
	Score            string   `json:"score"`
	ScoreLabel       string   `json:"score_label"`
	ScoreExplanation string   `json:"score_explanation"`
	Steps            []string `json:"steps"`
	Sources          []string `json:"sources"`
	Disclaimer       string   `json:"disclaimer"`
}

// IsEmpty is true when no section could be extracted
func (s Sections) IsEmpty() bool {
	return s.Summary == "" && len(s.Issues) == 0 && s.Score == "" && s.ScoreLabel == "" &&
		s.ScoreExplanation == "" && len(s.Steps) == 0 && len(s.Sources) == 0 && s.Disclaimer == ""
}

// HasScore is true when a numeric score was recognized
func (s Sections) HasScore() bool {
	return s.Score != ""
}

type section string

const (
	sectionSummary section = "summary"
	sectionIssues  section = "issues"
	sectionScore   section = "score"
	sectionSteps   section = "steps"
	sectionSources section = "sources"
)

// headingPrefix tolerates markdown decoration such as "## " or "**" before the label
const headingPrefix = `(?im)^[ \t]*(?:#{1,6}[ \t]*)?(?:\*\*|__)?[ \t]*`

// headingSuffix tolerates a closing emphasis marker after the colon
const headingSuffix = `[ \t]*(?:\*\*|__)?`

type heading struct {
	section section
	pattern *regexp.Regexp
}

// Order only matters for readability: each heading is located independently.
var headings = []heading{
	{sectionSummary, regexp.MustCompile(headingPrefix + `case summary(?:\*\*|__)?:` + headingSuffix)},
	{sectionIssues, regexp.MustCompile(headingPrefix + `legal issues(?: or concerns)?(?:\*\*|__)?:` + headingSuffix)},
	{sectionScore, regexp.MustCompile(headingPrefix + `plausibility score(?:\*\*|__)?:` + headingSuffix)},
	{sectionSteps, regexp.MustCompile(headingPrefix + `suggested next steps(?:\*\*|__)?:` + headingSuffix)},
	{sectionSources, regexp.MustCompile(headingPrefix + `sources(?:\*\*|__)?:` + headingSuffix)},
}

var (
	disclaimerPattern = regexp.MustCompile(`(?is)this is a legal pre-assessment.*$`)
	blankLinePattern  = regexp.MustCompile(`\n[ \t]*\n`)
	leadingBullet     = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)
	itemDelimiter     = regexp.MustCompile(`\n\s*(?:[-*•]|\d+[.)])\s+`)

	// "72% - Likely - because of ..." / "72 % (Likely) ..." / "72%"
	scorePattern  = regexp.MustCompile(`^\s*(\d{1,3})\s*%`)
	scoreLabelRun = regexp.MustCompile(`^[A-Za-z][A-Za-z ]*`)
	scoreLine     = regexp.MustCompile(`(?im)^.*plausibility score.*$`)
)

// Parse extracts the report sections from free-form AI output. It never fails:
// a section whose heading cannot be found is left at its zero value.
func Parse(text string) Sections {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	out := Sections{
		Issues:  []string{},
		Steps:   []string{},
		Sources: []string{},
	}

	for _, h := range headings {
		span, ok := capture(text, h.pattern)
		if !ok {
			continue
		}
		switch h.section {
		case sectionSummary:
			out.Summary = span
		case sectionIssues:
			out.Issues = splitItems(span)
		case sectionSteps:
			out.Steps = splitItems(span)
		case sectionSources:
			out.Sources = splitItems(span)
		case sectionScore:
			out.Score, out.ScoreLabel, out.ScoreExplanation = parseScore(span)
		}
	}

	if out.Score == "" && out.ScoreLabel == "" && out.ScoreExplanation == "" {
		// Heading variants we do not know about still usually keep the phrase on one line
		if line := scoreLine.FindString(text); line != "" {
			out.ScoreExplanation = strings.TrimSpace(line)
		}
	}

	if m := disclaimerPattern.FindString(text); m != "" {
		out.Disclaimer = strings.TrimSpace(m)
	}

	return out
}

// capture returns the text between the heading and the next heading, blank line or end of text
func capture(text string, pattern *regexp.Regexp) (string, bool) {
	loc := pattern.FindStringIndex(text)
	if loc == nil {
		return "", false
	}

	rest := text[loc[1]:]
	// Content may start on the line after the heading
	trimmed := strings.TrimLeft(rest, " \t\n")

	end := len(trimmed)
	for _, h := range headings {
		if next := h.pattern.FindStringIndex(trimmed); next != nil && next[0] < end {
			end = next[0]
		}
	}
	if next := disclaimerPattern.FindStringIndex(trimmed); next != nil && next[0] < end {
		end = next[0]
	}
	if next := blankLinePattern.FindStringIndex(trimmed); next != nil && next[0] < end {
		end = next[0]
	}

	return strings.TrimSpace(trimmed[:end]), true
}

// splitItems turns a bullet list into its items, keeping source order
func splitItems(span string) []string {
	items := []string{}
	if span == "" {
		return items
	}

	for _, part := range itemDelimiter.Split("\n"+span, -1) {
		item := strings.TrimSpace(leadingBullet.ReplaceAllString(part, ""))
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

const scoreSeparators = " \t\n-–—:,"

func parseScore(span string) (score, label, explanation string) {
	m := scorePattern.FindStringSubmatchIndex(span)
	if m == nil {
		return "", "", ""
	}
	score = span[m[2]:m[3]]

	rest := strings.TrimLeft(span[m[1]:], scoreSeparators+"(")
	if run := scoreLabelRun.FindString(rest); run != "" {
		label = strings.TrimSpace(run)
		rest = rest[len(run):]
	}

	rest = strings.TrimLeft(rest, scoreSeparators+"().")
	// Drop the closing paren of "(moderate confidence)" but keep balanced ones
	if strings.HasSuffix(rest, ")") && strings.Count(rest, ")") > strings.Count(rest, "(") {
		rest = rest[:len(rest)-1]
	}
	return score, label, strings.TrimSpace(rest)
}
