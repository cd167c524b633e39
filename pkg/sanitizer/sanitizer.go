package sanitizer

import (
	"regexp"
	"strings"

	"legal-assistant-be/pkg/store"
)

const (
	generalModeName = `general (?:legal )?information`
	caseModeName    = `case (?:plausibility )?assessment`
	anyModeName     = `(?:` + generalModeName + `|` + caseModeName + `)`
)

// Canned acknowledgements the model produces when it is told which mode is active
var echoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\[\s*system note:[^\]]*\]`),
	regexp.MustCompile(`(?i)(?:understood|got it|okay|ok|sure|of course)[,.!]?[ \t]*(?:i(?:'ll| will)|let's|we(?:'ll| will)) (?:continue|stay|remain|proceed) in (?:the )?` + anyModeName + ` mode[.!]?`),
	regexp.MustCompile(`(?i)(?:i(?:'ll| will)|let's|we(?:'ll| will)) (?:continue|stay|remain|proceed) in (?:the )?` + anyModeName + ` mode[.!]?`),
	regexp.MustCompile(`(?i)(?:you are|you're|we are|we're) (?:currently |now |still )?in (?:the )?` + anyModeName + ` mode[.!]?`),
	regexp.MustCompile(`(?i)continuing (?:in|with) (?:the )?` + anyModeName + ` mode[.!]?`),
}

// A whole sentence (up to and including its terminator) that offers to switch into the named mode
func switchOffer(modeName string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)[^.!?\n]*\bswitch(?:ing)?\b[^.!?\n]*\b` + modeName + `\b[^.!?\n]*[.!?]*`)
}

var (
	offerGeneral = switchOffer(generalModeName)
	offerCase    = switchOffer(caseModeName)

	leadingQuote  = regexp.MustCompile(`^\s*(?:>[^\n]*(?:\n|$)\s*)+`)
	systemMarker  = regexp.MustCompile(`(?i)system|instruction|directive|\bmode\b`)
	extraNewlines = regexp.MustCompile(`\n[ \t]*\n(?:[ \t]*\n)+`)
	trailingSpace = regexp.MustCompile(`[ \t]+\n`)
)

// Sanitize strips system echoes and mode-switch invitations that contradict the locked-in mode.
// Applying it twice gives the same result as applying it once.
func Sanitize(text string, mode store.Mode) string {
	out := strings.ReplaceAll(text, "\r\n", "\n")

	for _, re := range echoPatterns {
		out = re.ReplaceAllString(out, "")
	}

	switch mode {
	case store.ModeCaseAssessment:
		out = offerGeneral.ReplaceAllString(out, "")
	case store.ModeGeneralInformation:
		out = offerCase.ReplaceAllString(out, "")
	}

	if block := leadingQuote.FindString(out); block != "" && systemMarker.MatchString(block) {
		out = out[len(block):]
	}

	out = trailingSpace.ReplaceAllString(out, "\n")
	out = extraNewlines.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
