package outbox

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/shopdesk-backend/pkg/db/models"
)

// DLQRepository writes outbox_dlq rows. Entries are only ever inserted inside
// the publisher's claim transaction.
type DLQRepository struct {
	db *gorm.DB
}

func NewDLQRepository(db *gorm.DB) *DLQRepository {
	return &DLQRepository{db: db}
}

func (r *DLQRepository) InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error {
	if tx == nil {
		return errors.New("dlq insert: transaction required")
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.ErrorMessage = clip(entry.ErrorMessage)
	return tx.Create(&entry).Error
}
