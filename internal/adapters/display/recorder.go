package display

import "sync"

// Kind is the kind of a display event
type Kind int

const (
	KindInfo Kind = iota
	KindWarning
	KindError
	KindSuccess
	KindField
)

func (k Kind) String() string {
	switch k {
	case KindInfo:
		return "info"
	case KindWarning:
		return "warning"
	case KindError:
		return "error"
	case KindSuccess:
		return "success"
	case KindField:
		return "field"
	default:
		return "unknown"
	}
}

// Event is a recorded display event. Label is set for fields only.
type Event struct {
	Kind  Kind
	Label string
	Text  string
}

// Recorder keeps display events in emission order
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Info(text string)    { r.add(Event{Kind: KindInfo, Text: text}) }
func (r *Recorder) Warning(text string) { r.add(Event{Kind: KindWarning, Text: text}) }
func (r *Recorder) Error(text string)   { r.add(Event{Kind: KindError, Text: text}) }
func (r *Recorder) Success(text string) { r.add(Event{Kind: KindSuccess, Text: text}) }

func (r *Recorder) Field(label, value string) {
	r.add(Event{Kind: KindField, Label: label, Text: value})
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Kinds returns the kinds of the recorded events in order
func (r *Recorder) Kinds() []Kind {
	events := r.Events()
	kinds := make([]Kind, len(events))
	for i, e := range events {
		kinds[i] = e.Kind
	}
	return kinds
}

// FieldValue returns the value of the first field with the given label
func (r *Recorder) FieldValue(label string) (string, bool) {
	for _, e := range r.Events() {
		if e.Kind == KindField && e.Label == label {
			return e.Text, true
		}
	}
	return "", false
}

func (r *Recorder) add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}
