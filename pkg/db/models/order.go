package models

import (
	"time"

	"github.com/angelmondragon/shopdesk-backend/pkg/enums"
)

// Order doubles as the basket while in state basket. A user holds at most
// one basket at a time (partial unique index).
type Order struct {
	ID        uint64           `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    uint64           `gorm:"column:user_id;not null;index;uniqueIndex:idx_orders_user_basket,where:state = 'basket'"`
	ContactID *uint64          `gorm:"column:contact_id"`
	State     enums.OrderState `gorm:"column:state;type:text;not null;default:'basket'"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
	Items     []OrderItem      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Contact   *Contact         `gorm:"foreignKey:ContactID;constraint:OnDelete:SET NULL"`
}

type OrderItem struct {
	ID            uint64       `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID       uint64       `gorm:"column:order_id;not null;uniqueIndex:idx_order_items_order_product_info"`
	ProductInfoID uint64       `gorm:"column:product_info_id;not null;uniqueIndex:idx_order_items_order_product_info;index"`
	Quantity      int64        `gorm:"column:quantity;not null;check:chk_order_items_quantity,quantity >= 1"`
	ProductInfo   *ProductInfo `gorm:"foreignKey:ProductInfoID;constraint:OnDelete:CASCADE"`
}
