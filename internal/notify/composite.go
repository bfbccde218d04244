package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (l *LogNotifier) Notify(ctx context.Context, n Notification) error {
	level := slog.LevelInfo
	switch n.Severity {
	case Warning:
		level = slog.LevelWarn
	case Error:
		level = slog.LevelError
	}
	l.log.Log(ctx, level, n.Message, "session", n.SessionID, "severity", n.Severity, "class", n.Class)
	return nil
}

// Composite delivers every notification to all of its notifiers.
type Composite struct {
	notifiers []Notifier
}

func NewComposite(notifiers ...Notifier) *Composite {
	return &Composite{notifiers: notifiers}
}

// Add appends n unless it is nil.
func (c *Composite) Add(n Notifier) {
	if n != nil {
		c.notifiers = append(c.notifiers, n)
	}
}

func (c *Composite) Notify(ctx context.Context, n Notification) error {
	if len(c.notifiers) == 0 {
		return errors.New("no notifiers configured")
	}
	var errs []error
	for _, target := range c.notifiers {
		if err := target.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("notify failed: %w", errors.Join(errs...))
	}
	return nil
}
