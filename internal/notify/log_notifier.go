package notify

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/nhle/followup/internal/logging"
	"github.com/nhle/followup/internal/model"
)

// Fallback text when a reminder has no title or note.
const (
	fallbackTitle = "Follow-up Reminder"
	fallbackBody  = "You have a follow-up due now"
)

// LogNotifier "delivers" notifications by logging them at info level.
type LogNotifier struct {
	log logrus.FieldLogger
}

// NewLogNotifier returns a notifier writing to l.
func NewLogNotifier(l logrus.FieldLogger) *LogNotifier {
	return &LogNotifier{log: logging.Component(l, "notify")}
}

// Notify logs p.
func (n *LogNotifier) Notify(_ context.Context, p model.DuePayload) error {
	title, body := p.Title, p.Note
	if title == "" {
		title = fallbackTitle
	}
	if body == "" {
		body = fallbackBody
	}
	n.log.WithFields(logrus.Fields{
		"id":  p.ID,
		"due": p.Due.Format("2006-01-02 15:04"),
	}).Infof("%s: %s", title, body)
	return nil
}
