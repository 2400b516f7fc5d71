package orders

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/shopdesk-backend/pkg/db"
	"github.com/angelmondragon/shopdesk-backend/pkg/db/models"
	"github.com/angelmondragon/shopdesk-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// withListing preloads everything needed to render basket lines. An optional
// scope narrows the preloaded items.
func withListing(query *gorm.DB, itemScope func(*gorm.DB) *gorm.DB) *gorm.DB {
	return query.
		Preload("Items", func(tx *gorm.DB) *gorm.DB {
			if itemScope != nil {
				tx = itemScope(tx)
			}
			return tx.Order("order_items.id")
		}).
		Preload("Items.ProductInfo.Product.Category").
		Preload("Items.ProductInfo.Shop").
		Preload("Items.ProductInfo.Parameters", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("product_parameters.id")
		}).
		Preload("Items.ProductInfo.Parameters.Parameter")
}

func (r *repository) FindBasket(ctx context.Context, userID uint64) (*models.Order, error) {
	var order models.Order
	err := withListing(r.db.WithContext(ctx), nil).
		Where("user_id = ? AND state = ?", userID, enums.OrderStateBasket).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrCreateBasket reports whether the basket was created by this call.
func (r *repository) GetOrCreateBasket(ctx context.Context, userID uint64) (*models.Order, bool, error) {
	find := func() (*models.Order, error) {
		var order models.Order
		err := r.db.WithContext(ctx).
			Where("user_id = ? AND state = ?", userID, enums.OrderStateBasket).
			First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return &order, err
	}

	existing, err := find()
	if err != nil || existing != nil {
		return existing, false, err
	}

	order := models.Order{UserID: userID, State: enums.OrderStateBasket}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&order).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			existing, findErr := find()
			if findErr == nil && existing != nil {
				return existing, false, nil
			}
		}
		return nil, false, err
	}
	return &order, true, nil
}

func (r *repository) ExistingListingIDs(ctx context.Context, ids []uint64) ([]uint64, error) {
	var found []uint64
	if len(ids) == 0 {
		return found, nil
	}
	err := r.db.WithContext(ctx).
		Model(&models.ProductInfo{}).
		Where("id IN ?", ids).
		Pluck("id", &found).Error
	return found, err
}

func (r *repository) BasketListingIDs(ctx context.Context, orderID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("order_id = ?", orderID).
		Pluck("product_info_id", &ids).Error
	return ids, err
}

func (r *repository) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&items).Error
}

func (r *repository) basketIDs(ctx context.Context, userID uint64) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("id").
		Where("user_id = ? AND state = ?", userID, enums.OrderStateBasket)
}

func (r *repository) DeleteBasketItems(ctx context.Context, userID uint64, itemIDs []uint64) (int64, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("id IN ? AND order_id IN (?)", itemIDs, r.basketIDs(ctx, userID)).
		Delete(&models.OrderItem{})
	return result.RowsAffected, result.Error
}

func (r *repository) UpdateBasketItemQuantity(ctx context.Context, userID, itemID uint64, quantity int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("id = ? AND order_id IN (?)", itemID, r.basketIDs(ctx, userID)).
		Update("quantity", quantity)
	return result.RowsAffected, result.Error
}

func (r *repository) ListUserOrders(ctx context.Context, userID uint64) ([]models.Order, error) {
	var orders []models.Order
	err := withListing(r.db.WithContext(ctx), nil).
		Preload("Contact").
		Where("user_id = ? AND state <> ?", userID, enums.OrderStateBasket).
		Order("created_at DESC").
		Order("id DESC").
		Find(&orders).Error
	return orders, err
}

// ListSupplierOrders returns placed orders holding at least one listing of a
// shop owned by ownerID. Only those listings are preloaded as items.
func (r *repository) ListSupplierOrders(ctx context.Context, ownerID uint64) ([]models.Order, error) {
	ownedListings := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Model(&models.ProductInfo{}).
			Select("product_infos.id").
			Joins("JOIN shops ON shops.id = product_infos.shop_id").
			Where("shops.user_id = ?", ownerID)
	}
	supplierOrders := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Select("order_items.order_id").
		Where("order_items.product_info_id IN (?)", ownedListings())

	var orders []models.Order
	err := withListing(r.db.WithContext(ctx), func(tx *gorm.DB) *gorm.DB {
		return tx.Where("order_items.product_info_id IN (?)", ownedListings())
	}).
		Preload("Contact").
		Where("state <> ? AND id IN (?)", enums.OrderStateBasket, supplierOrders).
		Order("created_at DESC").
		Order("id DESC").
		Find(&orders).Error
	return orders, err
}

func (r *repository) FindContactForUser(ctx context.Context, userID, contactID uint64) (*models.Contact, error) {
	var contact models.Contact
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", contactID, userID).First(&contact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *repository) FindOrder(ctx context.Context, orderID uint64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// SubmitBasket moves the user's basket to new. Zero rows means the order is
// missing, someone else's, or no longer a basket.
func (r *repository) SubmitBasket(ctx context.Context, orderID, userID, contactID uint64) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND user_id = ? AND state = ?", orderID, userID, enums.OrderStateBasket).
		Updates(map[string]any{"state": enums.OrderStateNew, "contact_id": contactID})
	return result.RowsAffected, result.Error
}

func (r *repository) ConfirmOrder(ctx context.Context, orderID uint64) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND state = ?", orderID, enums.OrderStateNew).
		Update("state", enums.OrderStateConfirmed)
	return result.RowsAffected, result.Error
}

func (r *repository) OrderShopIDs(ctx context.Context, orderID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Distinct("product_infos.shop_id").
		Joins("JOIN product_infos ON product_infos.id = order_items.product_info_id").
		Where("order_items.order_id = ?", orderID).
		Order("product_infos.shop_id").
		Pluck("product_infos.shop_id", &ids).Error
	return ids, err
}
