package workflow

import (
	"fmt"

	"github.com/mikey/llm-email-assistant/internal/core"
)

// Persona settings embedded in prompts
type Persona struct {
	// Name is the role the model plays, e.g. "Alfred the butler"
	Name string
	// Principal is the person the replies are drafted for
	Principal string
}

// DefaultPersona is used when no persona is configured
var DefaultPersona = Persona{Name: "Alfred the butler", Principal: "the recipient"}

const classifyPromptFormat = `As %s, analyze this email and determine if it is spam or legitimate.

Email:
From: %s
Subject: %s
Body: %s

First, determine if this email is spam. If it is spam, explain why and start your explanation with "Reason:".
If it is legitimate, categorize it (inquiry, complaint, thank you, request, information).
`

const draftPromptFormat = `As %s, draft a polite preliminary response to this email.

Email:
From: %s
Subject: %s
Body: %s

This email has been categorized as: %s

Draft a brief, professional response that %s can review and personalize before sending.
`

// ClassifyPrompt builds the classification prompt
func ClassifyPrompt(p Persona, email core.Email, body string) string {
	return fmt.Sprintf(classifyPromptFormat, p.Name, email.Sender, email.Subject, body)
}

// DraftPrompt builds the reply-drafting prompt
func DraftPrompt(p Persona, email core.Email, body, category string) string {
	return fmt.Sprintf(draftPromptFormat, p.Name, email.Sender, email.Subject, body, category, p.Principal)
}
