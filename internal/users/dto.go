package users

import (
	"strings"
	"time"

	"github.com/angelmondragon/shopdesk-backend/pkg/db/models"
	"github.com/angelmondragon/shopdesk-backend/pkg/enums"
)

// UserDTO is what the API returns for a user. The password hash never
// leaves the repository layer.
type UserDTO struct {
	ID          uint64            `json:"id"`
	Email       string            `json:"email"`
	FirstName   string            `json:"first_name"`
	LastName    string            `json:"last_name"`
	Company     string            `json:"company"`
	Position    string            `json:"position"`
	Type        enums.AccountType `json:"type"`
	IsStaff     bool              `json:"is_staff"`
	IsActive    bool              `json:"is_active"`
	LastLoginAt *time.Time        `json:"last_login_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// CreateUserDTO is a registration that already passed validation and hashing.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Company      string
	Position     string
	Type         enums.AccountType
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	dto := UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		Type:      u.Type,
		IsStaff:   u.IsStaff,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
	dto.FirstName, dto.LastName = u.FirstName, u.LastName
	dto.Company, dto.Position = u.Company, u.Position
	dto.LastLoginAt = u.LastLoginAt
	return &dto
}

// ToModel produces an active account with a lowercased email. An empty type
// registers a buyer.
func (c CreateUserDTO) ToModel() *models.User {
	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(c.Email)),
		PasswordHash: c.PasswordHash,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Company:      c.Company,
		Position:     c.Position,
		Type:         c.Type,
		IsActive:     true,
	}
	if user.Type == "" {
		user.Type = enums.AccountTypeBuyer
	}
	return user
}
