package notifier

import (
	"context"

	"github.com/riskibarqy/bloodbowl-league/internal/domain/notification"
	"github.com/riskibarqy/bloodbowl-league/internal/platform/logging"
)

// LogSink writes each event as a structured log line.
type LogSink struct {
	logger *logging.Logger
}

func NewLogSink(logger *logging.Logger) *LogSink {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Send(ctx context.Context, ev notification.Event) error {
	s.logger.InfoContext(ctx, "notification delivered",
		"event_id", ev.ID,
		"recipient_user_id", ev.RecipientUserID,
		"kind", ev.Kind,
		"entity_type", ev.EntityType,
		"entity_id", ev.EntityID,
		"title", ev.Title,
	)
	return nil
}
