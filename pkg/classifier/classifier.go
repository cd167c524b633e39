package classifier

import (
	"regexp"
	"strings"
)

// Vocabulary is the data behind the heuristics. The default lists are
// illustrative; deployments can replace them without touching the code.
type Vocabulary struct {
	// Phrases suggesting the user is describing their own situation
	CaseAssessment []string
	// Phrases suggesting the user wants general explanations of the law
	GeneralInformation []string
	// Whole-message patterns that carry too little detail to act on
	Vague []string
	// Exactly what is offered when the input is vague; one group is shown at a time
	SuggestionGroups [][]string
}

func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		CaseAssessment: []string{
			"my case", "my situation", "happened to me", "i was ", "i am being", "i got ",
			"my employer", "my boss", "my landlord", "my tenant", "my neighbor", "my neighbour",
			"my husband", "my wife", "my ex", "my contract", "i signed",
			"fired", "dismissed", "evicted", "sued", "suing", "arrested", "accident", "injured",
			"can i sue", "should i sue", "do i have a case", "what are my chances", "will i win",
		},
		GeneralInformation: []string{
			"what is", "what are", "what does", "how does", "how do", "explain", "definition",
			"meaning of", "difference between", "in general", "generally", "is it legal",
			"what does the law say", "how long does", "who can", "what happens if",
		},
		Vague: []string{
			`^\s*(?:hi|hello|hey|help|question|legal advice|advice)\s*[.!?]*\s*$`,
			`^\s*(?:i )?(?:need|want) (?:some )?(?:help|advice|information)\s*[.!?]*\s*$`,
			`^\s*i have a (?:legal )?(?:question|problem|issue)\s*[.!?]*\s*$`,
			`^\s*(?:what can you do|can you help(?: me)?)\s*[.!?]*\s*$`,
			`^\s*\S+\s*$`,
		},
		SuggestionGroups: [][]string{
			{
				"What happened, and when did it happen?",
				"Who else was involved?",
				"Do you have any documents or messages about it?",
			},
			{
				"Is this about work, housing, family, or a contract?",
				"Which country or state are you in?",
				"What outcome are you hoping for?",
			},
			{
				"Explain how small claims court works",
				"What are my rights if my landlord keeps my deposit?",
				"Can I be fired without notice?",
			},
		},
	}
}

type Classifier struct {
	caseAssessment     []string
	generalInformation []string
	vague              []*regexp.Regexp
	suggestionGroups   [][]string
}

// New compiles the vocabulary. Patterns that do not compile are skipped.
func New(vocab Vocabulary) *Classifier {
	c := &Classifier{
		caseAssessment:     lowerAll(vocab.CaseAssessment),
		generalInformation: lowerAll(vocab.GeneralInformation),
		suggestionGroups:   vocab.SuggestionGroups,
	}
	for _, p := range vocab.Vague {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			continue
		}
		c.vague = append(c.vague, re)
	}
	return c
}

func NewDefault() *Classifier {
	return New(DefaultVocabulary())
}

// FitsCaseAssessment reports whether text reads like a description of the user's own situation
func (c *Classifier) FitsCaseAssessment(text string) bool {
	return containsAny(normalize(text), c.caseAssessment)
}

// FitsGeneralInformation reports whether text reads like a general question about the law
func (c *Classifier) FitsGeneralInformation(text string) bool {
	return containsAny(normalize(text), c.generalInformation)
}

// IsVague reports whether text is too thin to answer without follow-up
func (c *Classifier) IsVague(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	for _, re := range c.vague {
		if re.MatchString(trimmed) {
			return true
		}
	}
	return false
}

// Suggestions picks one group uniformly; pick(n) must return a value in [0, n)
func (c *Classifier) Suggestions(pick func(n int) int) []string {
	if len(c.suggestionGroups) == 0 {
		return nil
	}
	i := pick(len(c.suggestionGroups))
	if i < 0 || i >= len(c.suggestionGroups) {
		i = 0
	}
	group := c.suggestionGroups[i]
	out := make([]string, len(group))
	copy(out, group)
	return out
}

// normalize lower-cases and pads the text so phrases with trailing spaces match at the end
func normalize(text string) string {
	return " " + strings.Join(strings.Fields(strings.ToLower(text)), " ") + " "
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if p != "" && strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(s))
	}
	return out
}
