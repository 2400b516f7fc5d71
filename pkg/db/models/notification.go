package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/shopdesk-backend/pkg/enums"
)

// Notification is the delivery log of a domain event for one recipient.
type Notification struct {
	ID        uint64                 `gorm:"column:id;primaryKey;autoIncrement"`
	EventID   uuid.UUID              `gorm:"column:event_id;type:uuid;not null;uniqueIndex:idx_notifications_event_recipient"`
	UserID    uint64                 `gorm:"column:user_id;not null;uniqueIndex:idx_notifications_event_recipient;index"`
	ShopID    *uint64                `gorm:"column:shop_id"`
	Type      enums.NotificationType `gorm:"column:type;type:text;not null"`
	Title     string                 `gorm:"column:title;type:text;not null"`
	Message   string                 `gorm:"column:message;type:text;not null"`
	ReadAt    *time.Time             `gorm:"column:read_at"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}
