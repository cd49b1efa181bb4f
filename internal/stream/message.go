package stream

import "fmt"

// Kind classifies a message. Progress messages keep a stream going; completed
// and error messages are terminal and end the job run that produced them.
type Kind string

const (
	KindProgress  Kind = "progress"
	KindCompleted Kind = "completed"
	KindError     Kind = "error"
)

// Wire event names observed by stream consumers. Terminal messages are sent
// without an event name so generic consumers treat them as default messages.
const (
	EventProgressUpdate = "progress_update"
	EventPing           = "ping"
)

// Well-known status values pushed by job implementations.
const (
	StatusStarted      = "started"
	StatusInitializing = "initializing"
	StatusSearching    = "searching"
	StatusTaskDone     = "task_done"
	StatusCompleted    = "completed"
	StatusError        = "error"
)

// Message is one unit of job-reported state pushed into a Queue and encoded
// onto the wire. Payload is open job-specific data; terminal messages carry
// the job's final output or failure reason there.
type Message struct {
	Kind    Kind
	Event   string
	Status  string
	Payload map[string]any
}

// Terminal reports whether the message ends a job run.
func (m *Message) Terminal() bool {
	return m.Kind == KindCompleted || m.Kind == KindError
}

// Progress creates a progress_update message with the given status.
func Progress(status string) *Message {
	return &Message{Kind: KindProgress, Event: EventProgressUpdate, Status: status}
}

// ProgressWith creates a progress_update message carrying job-specific payload.
func ProgressWith(status string, payload map[string]any) *Message {
	return &Message{Kind: KindProgress, Event: EventProgressUpdate, Status: status, Payload: payload}
}

// Completed creates the successful terminal message for a job run.
func Completed(payload map[string]any) *Message {
	return &Message{Kind: KindCompleted, Status: StatusCompleted, Payload: payload}
}

// Errorf creates the failing terminal message for a job run. The reason is
// carried in the payload under "message", matching what stream consumers
// expect alongside status "error".
func Errorf(format string, args ...any) *Message {
	return &Message{
		Kind:    KindError,
		Status:  StatusError,
		Payload: map[string]any{"message": fmt.Sprintf(format, args...)},
	}
}

// Failed creates a failing terminal message carrying job-specific payload.
// Callers should include a "message" key describing the failure; Errorf is the
// shorthand when the reason is all there is to say.
func Failed(payload map[string]any) *Message {
	return &Message{Kind: KindError, Status: StatusError, Payload: payload}
}

// Ping creates a heartbeat message. It carries no job semantics and encodes
// as "event: ping" with an empty payload.
func Ping() *Message {
	return &Message{Kind: KindProgress, Event: EventPing}
}
