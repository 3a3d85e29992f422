package mailbox

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Fake is an in-memory Mailbox for testing. Threads, messages and labels
// live in maps; label-move failures can be injected per thread.
type Fake struct {
	// Labels maps label name to label id.
	Labels map[string]string
	// messages holds every message keyed by thread id, in message order.
	messages map[string][]Message
	// threadLabels maps thread id to the set of label ids on the thread.
	threadLabels map[string]map[string]bool

	// AddLabelErr / RemoveLabelErr inject failures for the given thread ids.
	AddLabelErr    map[string]error
	RemoveLabelErr map[string]error

	// Call capture
	AddLabelCalls    []string
	RemoveLabelCalls []string
}

// Compile-time check that Fake implements Mailbox
var _ Mailbox = (*Fake)(nil)

// NewFake creates an empty fake mailbox with the given label names registered.
func NewFake(labelNames ...string) *Fake {
	f := &Fake{
		Labels:         make(map[string]string),
		messages:       make(map[string][]Message),
		threadLabels:   make(map[string]map[string]bool),
		AddLabelErr:    make(map[string]error),
		RemoveLabelErr: make(map[string]error),
	}
	for i, name := range labelNames {
		f.Labels[name] = fmt.Sprintf("LBL_%d", i+1)
	}
	return f
}

// AddThread registers a thread with its messages and initial label ids.
// Message LabelIDs inherit the thread labels unless already set.
func (f *Fake) AddThread(threadID string, labelIDs []string, msgs ...Message) {
	labels := make(map[string]bool, len(labelIDs))
	for _, id := range labelIDs {
		labels[id] = true
	}
	f.threadLabels[threadID] = labels

	for i := range msgs {
		msgs[i].ThreadID = threadID
		if msgs[i].LabelIDs == nil {
			msgs[i].LabelIDs = append([]string(nil), labelIDs...)
		}
	}
	f.messages[threadID] = msgs
}

// LabelMessage adds a label id to a single message (test helper).
func (f *Fake) LabelMessage(threadID, messageID, labelID string) {
	msgs := f.messages[threadID]
	for i := range msgs {
		if msgs[i].ID == messageID {
			msgs[i].LabelIDs = append(msgs[i].LabelIDs, labelID)
		}
	}
}

// ThreadLabelIDs returns the label ids currently on a thread (test helper).
func (f *Fake) ThreadLabelIDs(threadID string) []string {
	var ids []string
	for id, ok := range f.threadLabels[threadID] {
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// LabelID resolves a label name to its id
func (f *Fake) LabelID(ctx context.Context, name string) (string, error) {
	for n, id := range f.Labels {
		if strings.EqualFold(n, name) {
			return id, nil
		}
	}
	return "", fmt.Errorf("label %q not found", name)
}

// ThreadsWithLabel enumerates thread ids carrying the label, sorted for
// deterministic iteration
func (f *Fake) ThreadsWithLabel(ctx context.Context, labelID string) ([]string, error) {
	var ids []string
	for threadID, labels := range f.threadLabels {
		if labels[labelID] {
			ids = append(ids, threadID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Messages enumerates a thread's messages in message order
func (f *Fake) Messages(ctx context.Context, threadID string) ([]Message, error) {
	msgs, ok := f.messages[threadID]
	if !ok {
		return nil, fmt.Errorf("thread %q not found", threadID)
	}
	return msgs, nil
}

// AddLabel adds a label to a thread
func (f *Fake) AddLabel(ctx context.Context, threadID, labelID string) error {
	f.AddLabelCalls = append(f.AddLabelCalls, threadID+":"+labelID)
	if err := f.AddLabelErr[threadID]; err != nil {
		return &LabelError{Op: "add", ThreadID: threadID, Label: labelID, Err: err}
	}
	labels, ok := f.threadLabels[threadID]
	if !ok {
		return &LabelError{Op: "add", ThreadID: threadID, Label: labelID, Err: fmt.Errorf("thread not found")}
	}
	labels[labelID] = true
	return nil
}

// RemoveLabel removes a label from a thread
func (f *Fake) RemoveLabel(ctx context.Context, threadID, labelID string) error {
	f.RemoveLabelCalls = append(f.RemoveLabelCalls, threadID+":"+labelID)
	if err := f.RemoveLabelErr[threadID]; err != nil {
		return &LabelError{Op: "remove", ThreadID: threadID, Label: labelID, Err: err}
	}
	labels, ok := f.threadLabels[threadID]
	if !ok {
		return &LabelError{Op: "remove", ThreadID: threadID, Label: labelID, Err: fmt.Errorf("thread not found")}
	}
	delete(labels, labelID)
	return nil
}

// Search returns messages whose sender, subject or body contains the query
func (f *Fake) Search(ctx context.Context, query string) ([]Message, error) {
	needle := strings.ToLower(query)
	var out []Message
	for _, threadID := range f.sortedThreadIDs() {
		for _, m := range f.messages[threadID] {
			haystack := strings.ToLower(m.Sender + " " + m.Subject + " " + m.Body)
			if strings.Contains(haystack, needle) {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

func (f *Fake) sortedThreadIDs() []string {
	ids := make([]string, 0, len(f.messages))
	for id := range f.messages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
