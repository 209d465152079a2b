package core

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Transcript roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var emailValidator = validator.New(validator.WithRequiredStructEnabled())

// Email represents an email message as supplied by the presentation layer
type Email struct {
	Sender  string `validate:"required"`
	Subject string `validate:"required"`
	Body    string `validate:"required"`
}

// Validate checks that every field of the email is present
func (e Email) Validate() error {
	if err := emailValidator.Struct(e); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEmail, err)
	}
	return nil
}

// Message is a single transcript entry
type Message struct {
	Role    string
	Content string
}

// Route is the branch selected after classification
type Route int

const (
	// RouteSpam sends the run to the spam handler
	RouteSpam Route = iota + 1
	// RouteLegitimate sends the run to the drafting branch
	RouteLegitimate
)

func (r Route) String() string {
	switch r {
	case RouteSpam:
		return "spam"
	case RouteLegitimate:
		return "legitimate"
	default:
		return "unknown"
	}
}

// WorkflowState is the state threaded through one workflow run.
// Optional fields stay nil until the step that owns them runs.
type WorkflowState struct {
	RunID         string
	Email         Email
	IsSpam        *bool
	SpamReason    *string
	EmailCategory *string
	EmailDraft    *string
	Transcript    []Message
}

// NewWorkflowState creates a fresh state for a single email
func NewWorkflowState(email Email) *WorkflowState {
	return &WorkflowState{
		Email:      email,
		Transcript: []Message{},
	}
}

// StateUpdate is a partial update produced by a step. Nil fields are left untouched
// when the update is applied; Transcript replaces the whole log when non-nil.
type StateUpdate struct {
	IsSpam        *bool
	SpamReason    *string
	EmailCategory *string
	EmailDraft    *string
	Transcript    []Message
}

// IsEmpty reports whether the update changes nothing
func (u StateUpdate) IsEmpty() bool {
	return u.IsSpam == nil && u.SpamReason == nil && u.EmailCategory == nil &&
		u.EmailDraft == nil && u.Transcript == nil
}

// Apply merges the update into the state key by key
func (s *WorkflowState) Apply(u StateUpdate) {
	if u.IsSpam != nil {
		s.IsSpam = u.IsSpam
	}
	if u.SpamReason != nil {
		s.SpamReason = u.SpamReason
	}
	if u.EmailCategory != nil {
		s.EmailCategory = u.EmailCategory
	}
	if u.EmailDraft != nil {
		s.EmailDraft = u.EmailDraft
	}
	if u.Transcript != nil {
		s.Transcript = u.Transcript
	}
}

// Clone returns a copy of the state that shares no mutable memory with the original
func (s *WorkflowState) Clone() *WorkflowState {
	c := *s
	c.IsSpam = clonePtr(s.IsSpam)
	c.SpamReason = clonePtr(s.SpamReason)
	c.EmailCategory = clonePtr(s.EmailCategory)
	c.EmailDraft = clonePtr(s.EmailDraft)
	c.Transcript = append([]Message{}, s.Transcript...)
	return &c
}

// AppendExchange returns a new transcript holding the current entries followed by one
// user/assistant pair. The receiver's transcript is not modified.
func (s *WorkflowState) AppendExchange(prompt, response string) []Message {
	transcript := make([]Message, 0, len(s.Transcript)+2)
	transcript = append(transcript, s.Transcript...)
	return append(transcript,
		Message{Role: RoleUser, Content: prompt},
		Message{Role: RoleAssistant, Content: response},
	)
}

// Spam reports the classification outcome; ok is false before classification
func (s *WorkflowState) Spam() (isSpam bool, ok bool) {
	if s.IsSpam == nil {
		return false, false
	}
	return *s.IsSpam, true
}

// Category returns the email category or the given fallback when unset
func (s *WorkflowState) Category(fallback string) string {
	if s.EmailCategory == nil {
		return fallback
	}
	return *s.EmailCategory
}

// Reason returns the spam reason or an empty string when unset
func (s *WorkflowState) Reason() string {
	if s.SpamReason == nil {
		return ""
	}
	return *s.SpamReason
}

// Draft returns the drafted reply or an empty string when unset
func (s *WorkflowState) Draft() string {
	if s.EmailDraft == nil {
		return ""
	}
	return *s.EmailDraft
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// CacheEntry is a cached model completion
type CacheEntry struct {
	Key        string
	Completion string
	CreatedAt  time.Time
	ExpiresAt  time.Time
}
