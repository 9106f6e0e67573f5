package watch

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/followup/internal/model"
	"github.com/nhle/followup/internal/share"
)

// ErrBusy is returned by Notifier when the view has fallen behind.
var ErrBusy = errors.New("watch view is not keeping up")

// Events carries messages from background goroutines into the program.
type Events chan tea.Msg

// NewEvents returns a buffered event channel.
func NewEvents() Events {
	return make(Events, 32)
}

// Notifier delivers due reminders to the watch view as DueMsg values.
type Notifier struct {
	events Events
}

// NewNotifier returns a notifier feeding events.
func NewNotifier(events Events) *Notifier {
	return &Notifier{events: events}
}

// Notify queues p for the view without blocking the scheduler.
func (n *Notifier) Notify(_ context.Context, p model.DuePayload) error {
	select {
	case n.events <- DueMsg(p):
		return nil
	default:
		return ErrBusy
	}
}

// ForwardResults copies share intake results into events until ctx is
// done.
func ForwardResults(ctx context.Context, results <-chan share.Result, events Events) {
	for {
		select {
		case <-ctx.Done():
			return
		case res, ok := <-results:
			if !ok {
				return
			}
			select {
			case events <- IntakeMsg(res):
			case <-ctx.Done():
				return
			}
		}
	}
}
