package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Kind of notice.
type Kind string

const (
	KindRideRequest Kind = "ride_request"
	KindMatch       Kind = "match"
)

// Notice is a rendered message for one recipient.
type Notice struct {
	RecipientID string
	Kind        Kind
	EventID     string
	RequestID   string
	Text        string
}

// Notifier delivers notices.
type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}

// LogNotifier writes notices to the log instead of delivering them.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (l *LogNotifier) Notify(_ context.Context, n Notice) error {
	l.log.Info().
		Str("recipient_id", n.RecipientID).
		Str("kind", string(n.Kind)).
		Str("event_id", n.EventID).
		Str("request_id", n.RequestID).
		Msg(n.Text)
	return nil
}
