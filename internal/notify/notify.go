// Package notify delivers user-facing notices (the portal's toasts) to a
// browser session.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"proptech/portal/internal/apiclient"
)

type Severity string

const (
	Info    Severity = "info"
	Success Severity = "success"
	Warning Severity = "warning"
	Error   Severity = "error"
)

// Notification is one notice addressed to a browser session. Class is
// "transient" or "terminal" for failures and empty otherwise.
type Notification struct {
	ID        string    `json:"id"`
	SessionID string    `json:"-"`
	Severity  Severity  `json:"severity"`
	Class     string    `json:"class,omitempty"`
	Message   string    `json:"message"`
	Time      time.Time `json:"time"`
}

// Notifier delivers notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Inbox is a Notifier that can hand back what it received for a session.
type Inbox interface {
	Notifier
	// Drain returns pending notifications oldest first and forgets them.
	Drain(ctx context.Context, sessionID string) ([]Notification, error)
}

// New builds a notification stamped with an id and the current time.
func New(sessionID string, sev Severity, message string) Notification {
	return Notification{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Severity:  sev,
		Message:   message,
		Time:      time.Now(),
	}
}

// FromError builds an error notification classified by apiclient.Classify.
// Transient failures are downgraded to warnings since a retry may succeed.
func FromError(sessionID, message string, err error) Notification {
	class := apiclient.Classify(err)
	sev := Error
	if class == apiclient.Transient {
		sev = Warning
	}
	n := New(sessionID, sev, message)
	n.Class = class.String()
	return n
}
