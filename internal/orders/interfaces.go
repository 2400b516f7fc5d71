package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/shopdesk-backend/pkg/db/models"
)

// Repository defines persistence operations for baskets and orders. Methods
// taking a userID only touch that user's rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindBasket(ctx context.Context, userID uint64) (*models.Order, error)
	GetOrCreateBasket(ctx context.Context, userID uint64) (*models.Order, bool, error)
	ExistingListingIDs(ctx context.Context, ids []uint64) ([]uint64, error)
	BasketListingIDs(ctx context.Context, orderID uint64) ([]uint64, error)
	CreateItems(ctx context.Context, items []models.OrderItem) error
	DeleteBasketItems(ctx context.Context, userID uint64, itemIDs []uint64) (int64, error)
	UpdateBasketItemQuantity(ctx context.Context, userID, itemID uint64, quantity int64) (int64, error)
	ListUserOrders(ctx context.Context, userID uint64) ([]models.Order, error)
	ListSupplierOrders(ctx context.Context, ownerID uint64) ([]models.Order, error)
	FindContactForUser(ctx context.Context, userID, contactID uint64) (*models.Contact, error)
	FindOrder(ctx context.Context, orderID uint64) (*models.Order, error)
	SubmitBasket(ctx context.Context, orderID, userID, contactID uint64) (int64, error)
	ConfirmOrder(ctx context.Context, orderID uint64) (int64, error)
	OrderShopIDs(ctx context.Context, orderID uint64) ([]uint64, error)
}
