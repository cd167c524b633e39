package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFitsCaseAssessment(t *testing.T) {
	c := NewDefault()

	tests := []struct {
		text string
		want bool
	}{
		{"My landlord kept my deposit after I moved out", true},
		{"I was FIRED yesterday without any warning", true},
		{"Do I have a case against the hospital?", true},
		{"What is a statute of limitations?", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, c.FitsCaseAssessment(tt.text))
		})
	}
}

func TestFitsGeneralInformation(t *testing.T) {
	c := NewDefault()

	tests := []struct {
		text string
		want bool
	}{
		{"What is a statute of limitations?", true},
		{"Explain   the difference between  theft and robbery", true},
		{"Is it legal to record a phone call?", true},
		{"My boss owes me three months of salary", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, c.FitsGeneralInformation(tt.text))
		})
	}
}

func TestIsVague(t *testing.T) {
	c := NewDefault()

	assert.True(t, c.IsVague("hello"))
	assert.True(t, c.IsVague("  Help!  "))
	assert.True(t, c.IsVague("I need help"))
	assert.True(t, c.IsVague("I have a legal problem."))
	assert.True(t, c.IsVague("divorce"))
	assert.False(t, c.IsVague("My employer has not paid my overtime for six months"))
	assert.False(t, c.IsVague("   "))
}

func TestSuggestionsUsesPicker(t *testing.T) {
	c := NewDefault()
	vocab := DefaultVocabulary()

	for i := range vocab.SuggestionGroups {
		got := c.Suggestions(func(n int) int {
			assert.Equal(t, 3, n)
			return i
		})
		assert.Equal(t, vocab.SuggestionGroups[i], got)
	}

	// Out of range picks fall back to the first group rather than panicking
	assert.Equal(t, vocab.SuggestionGroups[0], c.Suggestions(func(int) int { return 7 }))
}

func TestCustomVocabulary(t *testing.T) {
	c := New(Vocabulary{
		CaseAssessment: []string{"Mi Caso"},
		Vague:          []string{`(`, `^\?+$`},
	})

	assert.True(t, c.FitsCaseAssessment("sobre mi caso"))
	assert.False(t, c.FitsGeneralInformation("what is"))
	assert.True(t, c.IsVague("???"))
	assert.Nil(t, c.Suggestions(func(int) int { return 0 }))
}
