package contacts

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/shopdesk-backend/pkg/db/models"
)

// Repository persists delivery contacts.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListByUser(ctx context.Context, userID uint64) ([]models.Contact, error) {
	var rows []models.Contact
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Create(ctx context.Context, contact *models.Contact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

// FindForUser loads a contact only when it belongs to userID.
func (r *Repository) FindForUser(ctx context.Context, userID, contactID uint64) (*models.Contact, error) {
	var contact models.Contact
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", contactID, userID).First(&contact).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *Repository) Update(ctx context.Context, contact *models.Contact) error {
	return r.db.WithContext(ctx).
		Model(&models.Contact{}).
		Where("id = ? AND user_id = ?", contact.ID, contact.UserID).
		Updates(map[string]any{
			"city":      contact.City,
			"street":    contact.Street,
			"house":     contact.House,
			"structure": contact.Structure,
			"building":  contact.Building,
			"apartment": contact.Apartment,
			"phone":     contact.Phone,
		}).Error
}

// DeleteForUser removes the listed contacts owned by userID and reports how many went.
func (r *Repository) DeleteForUser(ctx context.Context, userID uint64, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Where("user_id = ? AND id IN ?", userID, ids).Delete(&models.Contact{})
	return result.RowsAffected, result.Error
}
