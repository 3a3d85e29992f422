package mailbox

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailConfig holds OAuth2 configuration paths.
type GmailConfig struct {
	CredentialsPath string // Path to credentials.json from Google Cloud Console
	TokenPath       string // Path to a previously stored OAuth2 token
}

// GmailMailbox implements Mailbox on the Gmail API.
type GmailMailbox struct {
	service *gmail.Service
	userID  string
}

// Compile-time check that GmailMailbox implements Mailbox
var _ Mailbox = (*GmailMailbox)(nil)

// NewGmailMailbox creates a Gmail-backed mailbox with OAuth2 authentication.
// The token must already exist at TokenPath; the interactive consent flow is
// out of scope for a headless reconciliation run.
func NewGmailMailbox(ctx context.Context, cfg GmailConfig) (*GmailMailbox, error) {
	credBytes, err := os.ReadFile(cfg.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(credBytes, gmail.GmailModifyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	token, err := loadToken(cfg.TokenPath)
	if err != nil {
		return nil, fmt.Errorf("unable to load token (run token setup first): %w", err)
	}

	client := oauthConfig.Client(ctx, token)
	service, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}

	return &GmailMailbox{service: service, userID: "me"}, nil
}

// loadToken loads an OAuth2 token from file.
func loadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, err
	}
	return token, nil
}

// SaveToken persists an OAuth2 token for later use. Exposed for token
// setup tooling.
func SaveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// LabelID resolves a label name to its id
func (g *GmailMailbox) LabelID(ctx context.Context, name string) (string, error) {
	resp, err := g.service.Users.Labels.List(g.userID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to list labels: %w", err)
	}
	for _, label := range resp.Labels {
		if strings.EqualFold(label.Name, name) {
			return label.Id, nil
		}
	}
	return "", fmt.Errorf("label %q not found", name)
}

// ThreadsWithLabel enumerates thread ids carrying the label
func (g *GmailMailbox) ThreadsWithLabel(ctx context.Context, labelID string) ([]string, error) {
	var ids []string
	pageToken := ""
	for {
		call := g.service.Users.Threads.List(g.userID).LabelIds(labelID).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list threads: %w", err)
		}
		for _, thread := range resp.Threads {
			ids = append(ids, thread.Id)
		}
		if resp.NextPageToken == "" {
			return ids, nil
		}
		pageToken = resp.NextPageToken
	}
}

// Messages enumerates a thread's messages in message order
func (g *GmailMailbox) Messages(ctx context.Context, threadID string) ([]Message, error) {
	thread, err := g.service.Users.Threads.Get(g.userID, threadID).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get thread %s: %w", threadID, err)
	}

	messages := make([]Message, 0, len(thread.Messages))
	for _, m := range thread.Messages {
		messages = append(messages, fromGmailMessage(m))
	}
	return messages, nil
}

// AddLabel adds a label to a thread
func (g *GmailMailbox) AddLabel(ctx context.Context, threadID, labelID string) error {
	req := &gmail.ModifyThreadRequest{AddLabelIds: []string{labelID}}
	if _, err := g.service.Users.Threads.Modify(g.userID, threadID, req).Context(ctx).Do(); err != nil {
		return &LabelError{Op: "add", ThreadID: threadID, Label: labelID, Err: err}
	}
	return nil
}

// RemoveLabel removes a label from a thread
func (g *GmailMailbox) RemoveLabel(ctx context.Context, threadID, labelID string) error {
	req := &gmail.ModifyThreadRequest{RemoveLabelIds: []string{labelID}}
	if _, err := g.service.Users.Threads.Modify(g.userID, threadID, req).Context(ctx).Do(); err != nil {
		return &LabelError{Op: "remove", ThreadID: threadID, Label: labelID, Err: err}
	}
	return nil
}

// Search returns messages matching a Gmail query string
func (g *GmailMailbox) Search(ctx context.Context, query string) ([]Message, error) {
	resp, err := g.service.Users.Messages.List(g.userID).Q(query).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var messages []Message
	for _, ref := range resp.Messages {
		m, err := g.service.Users.Messages.Get(g.userID, ref.Id).Format("full").Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to get message %s: %w", ref.Id, err)
		}
		messages = append(messages, fromGmailMessage(m))
	}
	return messages, nil
}

// fromGmailMessage normalizes a Gmail API message into a Message
func fromGmailMessage(m *gmail.Message) Message {
	msg := Message{
		ID:        m.Id,
		ThreadID:  m.ThreadId,
		Timestamp: time.UnixMilli(m.InternalDate),
		LabelIDs:  m.LabelIds,
	}
	if m.Payload == nil {
		return msg
	}
	for _, h := range m.Payload.Headers {
		switch h.Name {
		case "From":
			msg.Sender = h.Value
		case "Subject":
			msg.Subject = h.Value
		}
	}
	msg.Body = extractBody(m.Payload)
	if msg.Body == "" {
		msg.Body = m.Snippet
	}
	return msg
}

// extractBody walks the MIME tree and returns the first text/plain part
func extractBody(part *gmail.MessagePart) string {
	if part == nil {
		return ""
	}
	if part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
		decoded, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(part.Body.Data)
		if err == nil {
			return string(decoded)
		}
	}
	for _, child := range part.Parts {
		if body := extractBody(child); body != "" {
			return body
		}
	}
	return ""
}
