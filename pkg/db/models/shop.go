package models

import "time"

// Shop is a supplier storefront. A shop is owned by at most one user.
type Shop struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;size:50;not null;uniqueIndex"`
	URL       *string   `gorm:"column:url;size:200;uniqueIndex"`
	UserID    *uint64   `gorm:"column:user_id;uniqueIndex"`
	State     bool      `gorm:"column:state;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// ShopCategory is the join row between shops and categories.
type ShopCategory struct {
	ShopID     uint64 `gorm:"column:shop_id;primaryKey;autoIncrement:false"`
	CategoryID uint64 `gorm:"column:category_id;primaryKey;autoIncrement:false"`
}

func (ShopCategory) TableName() string {
	return "shop_categories"
}
