package sanitizer

import (
	"testing"

	"legal-assistant-be/pkg/store"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeRemovesSwitchOfferInCaseMode(t *testing.T) {
	in := "Based on what you describe, the dismissal looks retaliatory. Would you like to switch to general information mode?"
	got := Sanitize(in, store.ModeCaseAssessment)

	assert.Equal(t, "Based on what you describe, the dismissal looks retaliatory.", got)
	assert.NotContains(t, got, "switch")
}

func TestSanitizeRemovesSwitchOfferInGeneralMode(t *testing.T) {
	in := "A lease is a contract. If you want, we can switch to Case Plausibility Assessment mode. Anything else?"
	got := Sanitize(in, store.ModeGeneralInformation)

	assert.Equal(t, "A lease is a contract. Anything else?", got)
}

func TestSanitizeKeepsOfferForOtherMode(t *testing.T) {
	// Only the offer that contradicts the active mode is removed
	in := "A lease is a contract. We can switch to general information mode later."
	assert.Equal(t, in, Sanitize(in, store.ModeGeneralInformation))
	assert.Equal(t, in, Sanitize(in, store.ModeUnselected))
}

func TestSanitizeRemovesModeEchoes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "acknowledgement",
			in:   "Understood. I'll continue in case assessment mode. Tell me what happened.",
			want: "Tell me what happened.",
		},
		{
			name: "status echo",
			in:   "You're currently in general legal information mode.\n\nA will must be signed by two witnesses.",
			want: "A will must be signed by two witnesses.",
		},
		{
			name: "directive echo",
			in:   "[SYSTEM NOTE: The input fits the active mode.] Here is the answer.",
			want: "Here is the answer.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in, store.ModeCaseAssessment))
		})
	}
}

func TestSanitizeRemovesLeadingSystemQuote(t *testing.T) {
	in := "> System: answer in case assessment mode\n> Do not offer a mode switch\n\nYour claim has merit."
	assert.Equal(t, "Your claim has merit.", Sanitize(in, store.ModeCaseAssessment))

	quoted := "> Article 12: every worker is entitled to paid leave.\n\nThis applies to you."
	assert.Equal(t, quoted, Sanitize(quoted, store.ModeCaseAssessment))
}

func TestSanitizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"Understood. I'll continue in case assessment mode. Would you like to switch to general information mode?\n\n\n\nDetails here.",
		"> System note echo\n\n> more system text\n\nAnswer.  ",
		"Plain answer with no artifacts.",
		"",
		"Switch to general information? Switching to general information mode now! Done.",
	}

	for _, mode := range []store.Mode{store.ModeCaseAssessment, store.ModeGeneralInformation, store.ModeUnselected} {
		for _, in := range inputs {
			once := Sanitize(in, mode)
			assert.Equal(t, once, Sanitize(once, mode), "mode=%s input=%q", mode, in)
		}
	}
}
