package workflow

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Classification fallbacks
const (
	DefaultSpamReason     = "No specific reason provided by LLM."
	UncategorizedCategory = "uncategorized legitimate"
	DefaultDraftCategory  = "general"
	spamKeyword           = "spam"
	notSpamKeyword        = "not spam"
	reasonMarker          = "reason:"
)

// Categories in match order. The first one found in the response wins.
var Categories = []string{"inquiry", "complaint", "thank you", "request", "information"}

// Classification is the parsed outcome of a classification response
type Classification struct {
	IsSpam     bool
	SpamReason string
	Category   string
}

// ParseClassification interprets a model response with substring matching on the
// lowercased text. A response mentioning "spam" counts as spam unless it also says
// "not spam" anywhere; a legitimate response quoting the word in another sense is
// misread, and several category words resolve by list order, not relevance.
func ParseClassification(response string) Classification {
	text := cases.Lower(language.Und).String(response)

	isSpam := strings.Contains(text, spamKeyword) && !strings.Contains(text, notSpamKeyword)
	if isSpam {
		return Classification{IsSpam: true, SpamReason: extractReason(text)}
	}

	category := UncategorizedCategory
	for _, c := range Categories {
		if strings.Contains(text, c) {
			category = c
			break
		}
	}
	return Classification{Category: category}
}

// extractReason returns the segment between the first reason marker and the next one
func extractReason(text string) string {
	parts := strings.Split(text, reasonMarker)
	if len(parts) < 2 {
		return DefaultSpamReason
	}
	return strings.TrimSpace(parts[1])
}
