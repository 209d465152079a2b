package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseClassification(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     Classification
	}{
		{
			name:     "spam with reason",
			response: "this looks like spam. reason: fake lottery prize",
			want:     Classification{IsSpam: true, SpamReason: "fake lottery prize"},
		},
		{
			name:     "spam reason marker is case insensitive",
			response: "SPAM.\nReason:   Phishing link  \n",
			want:     Classification{IsSpam: true, SpamReason: "phishing link"},
		},
		{
			name:     "spam without reason marker",
			response: "Definitely spam.",
			want:     Classification{IsSpam: true, SpamReason: DefaultSpamReason},
		},
		{
			name:     "reason stops at the next marker",
			response: "spam. reason: prize scam. second reason: urgency",
			want:     Classification{IsSpam: true, SpamReason: "prize scam. second"},
		},
		{
			name:     "not spam request",
			response: "not spam, this is a request for a refund",
			want:     Classification{Category: "request"},
		},
		{
			name:     "legitimate without category",
			response: "This is a personal note from a friend.",
			want:     Classification{Category: UncategorizedCategory},
		},
		{
			name:     "first category in list order wins",
			response: "Not spam. It is information about a complaint.",
			want:     Classification{Category: "complaint"},
		},
		{
			name:     "thank you category",
			response: "NOT SPAM - a Thank You note",
			want:     Classification{Category: "thank you"},
		},
		{
			name:     "bare mention of spam is read as spam",
			response: "The sender says they hate spam emails; this is an inquiry.",
			want:     Classification{IsSpam: true, SpamReason: DefaultSpamReason},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseClassification(tt.response))
		})
	}
}

func TestParseClassificationIsIdempotent(t *testing.T) {
	for _, response := range []string{
		"this looks like spam. reason: fake lottery prize",
		"not spam, this is a request for a refund",
		"nothing to see",
	} {
		assert.Equal(t, ParseClassification(response), ParseClassification(response))
	}
}

func TestParseClassificationSetsExactlyOneOutcome(t *testing.T) {
	for _, response := range []string{"spam", "not spam", "inquiry", "", "reason: x spam"} {
		c := ParseClassification(response)
		if c.IsSpam {
			assert.NotEmpty(t, c.SpamReason, response)
			assert.Empty(t, c.Category, response)
		} else {
			assert.NotEmpty(t, c.Category, response)
			assert.Empty(t, c.SpamReason, response)
		}
	}
}
