// Package mailbox abstracts the inbox the reconciliation pipeline reads.
// Labels are the external, eventually-consistent disposition indicator;
// all label mutation goes through this adapter so the state machine logic
// stays testable without a real mailbox.
package mailbox

import (
	"context"
	"fmt"
	"time"
)

// Message is an immutable inbound message. It is only ever read.
type Message struct {
	ID        string
	ThreadID  string
	Sender    string
	Subject   string
	Body      string
	Timestamp time.Time
	LabelIDs  []string
}

// HasLabel reports whether the message carries the given label id.
func (m *Message) HasLabel(labelID string) bool {
	for _, id := range m.LabelIDs {
		if id == labelID {
			return true
		}
	}
	return false
}

// LabelError wraps a failed label mutation. Label moves are transient
// failures for the pipeline: logged and retried implicitly on the next run.
type LabelError struct {
	Op       string
	ThreadID string
	Label    string
	Err      error
}

func (e *LabelError) Error() string {
	return fmt.Sprintf("label %s failed for thread %s (label %s): %v", e.Op, e.ThreadID, e.Label, e.Err)
}

func (e *LabelError) Unwrap() error { return e.Err }

// Mailbox is the inbox capability contract.
type Mailbox interface {
	// LabelID resolves a label name to its id, erroring if absent.
	LabelID(ctx context.Context, name string) (string, error)

	// ThreadsWithLabel enumerates thread ids carrying the label.
	ThreadsWithLabel(ctx context.Context, labelID string) ([]string, error)

	// Messages enumerates a thread's messages in message order.
	Messages(ctx context.Context, threadID string) ([]Message, error)

	// AddLabel / RemoveLabel mutate a thread's labels. Failures are
	// returned as *LabelError.
	AddLabel(ctx context.Context, threadID, labelID string) error
	RemoveLabel(ctx context.Context, threadID, labelID string) error

	// Search returns messages matching a free-form query string.
	Search(ctx context.Context, query string) ([]Message, error)
}
