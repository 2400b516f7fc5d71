package notifications

import (
	"context"

	"github.com/angelmondragon/shopdesk-backend/pkg/db/models"
	"github.com/angelmondragon/shopdesk-backend/pkg/logger"
)

// Sender delivers a recorded notification to its recipient.
type Sender interface {
	Send(ctx context.Context, notification models.Notification) error
}

// LogSender writes notifications to the structured log instead of a mailbox.
type LogSender struct {
	logg *logger.Logger
}

func NewLogSender(logg *logger.Logger) *LogSender {
	return &LogSender{logg: logg}
}

func (s *LogSender) Send(ctx context.Context, notification models.Notification) error {
	if s == nil || s.logg == nil {
		return nil
	}
	fields := map[string]any{
		"notification_id": notification.ID,
		"recipient_id":    notification.UserID,
		"type":            notification.Type,
		"title":           notification.Title,
	}
	if notification.ShopID != nil {
		fields["shop_id"] = *notification.ShopID
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), notification.Message)
	return nil
}
