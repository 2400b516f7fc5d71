package models

import (
	"time"

	"github.com/angelmondragon/shopdesk-backend/pkg/enums"
)

// User is the account identity for both customers and suppliers.
type User struct {
	ID           uint64            `gorm:"column:id;primaryKey;autoIncrement"`
	Email        string            `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string            `gorm:"column:password_hash;not null"`
	FirstName    string            `gorm:"column:first_name;size:150;not null"`
	LastName     string            `gorm:"column:last_name;size:150;not null"`
	Company      string            `gorm:"column:company;size:40;not null"`
	Position     string            `gorm:"column:position;size:40;not null"`
	Type         enums.AccountType `gorm:"column:type;type:text;not null;default:'buyer'"`
	IsStaff      bool              `gorm:"column:is_staff;not null;default:false"`
	IsActive     bool              `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time        `gorm:"column:last_login_at"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
