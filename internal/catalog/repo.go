package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/shopdesk-backend/pkg/db/models"
)

// Repository holds catalog persistence. Import steps run on a transaction
// handle obtained through WithTx.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindShopByName returns nil when no shop carries the name.
func (r *Repository) FindShopByName(ctx context.Context, name string) (*models.Shop, error) {
	var shop models.Shop
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&shop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

// FindShopByOwner returns nil when the user owns no shop.
func (r *Repository) FindShopByOwner(ctx context.Context, userID uint64) (*models.Shop, error) {
	var shop models.Shop
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&shop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *Repository) UpdateShopState(ctx context.Context, shopID uint64, open bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Shop{}).
		Where("id = ?", shopID).
		Update("state", open).Error
}

func (r *Repository) CreateShop(ctx context.Context, shop *models.Shop) error {
	return r.db.WithContext(ctx).Create(shop).Error
}

// UpdateShopOwnership writes the owner and url columns.
func (r *Repository) UpdateShopOwnership(ctx context.Context, shop *models.Shop) error {
	return r.db.WithContext(ctx).
		Model(&models.Shop{}).
		Where("id = ?", shop.ID).
		Updates(map[string]any{"user_id": shop.UserID, "url": shop.URL}).Error
}

func (r *Repository) FindCategory(ctx context.Context, id uint64) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *Repository) FindCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *Repository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// AttachShopCategory links a shop to a category; an existing link is left alone.
func (r *Repository) AttachShopCategory(ctx context.Context, shopID, categoryID uint64) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.ShopCategory{ShopID: shopID, CategoryID: categoryID}).Error
}

// DeleteShopListings removes every listing of the shop together with its
// parameters and any basket or order lines pointing at it.
func (r *Repository) DeleteShopListings(ctx context.Context, shopID uint64) (int64, error) {
	conn := r.db.WithContext(ctx)
	listings := func() *gorm.DB {
		return conn.Model(&models.ProductInfo{}).Select("id").Where("shop_id = ?", shopID)
	}

	if err := conn.Where("product_info_id IN (?)", listings()).Delete(&models.ProductParameter{}).Error; err != nil {
		return 0, err
	}
	if err := conn.Where("product_info_id IN (?)", listings()).Delete(&models.OrderItem{}).Error; err != nil {
		return 0, err
	}
	result := conn.Where("shop_id = ?", shopID).Delete(&models.ProductInfo{})
	return result.RowsAffected, result.Error
}

// FirstOrCreateProduct upserts a product by (name, category).
func (r *Repository) FirstOrCreateProduct(ctx context.Context, name string, categoryID uint64) (*models.Product, error) {
	product := models.Product{Name: name, CategoryID: categoryID}
	err := r.db.WithContext(ctx).
		Where("name = ? AND category_id = ?", name, categoryID).
		FirstOrCreate(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *Repository) CreateListing(ctx context.Context, listing *models.ProductInfo) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(listing).Error
}

// FirstOrCreateParameter upserts a parameter by name.
func (r *Repository) FirstOrCreateParameter(ctx context.Context, name string) (*models.Parameter, error) {
	parameter := models.Parameter{Name: name}
	if err := r.db.WithContext(ctx).Where("name = ?", name).FirstOrCreate(&parameter).Error; err != nil {
		return nil, err
	}
	return &parameter, nil
}

func (r *Repository) CreateListingParameters(ctx context.Context, rows []models.ProductParameter) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&rows).Error
}

// Filter narrows a catalog query. Nil fields are not applied.
type Filter struct {
	ID         *uint64
	ShopID     *uint64
	CategoryID *uint64
}

// ListListings returns listings of open shops with product, category, shop
// and parameters loaded, ordered by listing id.
func (r *Repository) ListListings(ctx context.Context, filter Filter) ([]models.ProductInfo, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ProductInfo{}).
		Joins("JOIN shops ON shops.id = product_infos.shop_id").
		Joins("JOIN products ON products.id = product_infos.product_id").
		Where("shops.state = ?", true)
	if filter.ID != nil {
		query = query.Where("product_infos.id = ?", *filter.ID)
	}
	if filter.ShopID != nil {
		query = query.Where("product_infos.shop_id = ?", *filter.ShopID)
	}
	if filter.CategoryID != nil {
		query = query.Where("products.category_id = ?", *filter.CategoryID)
	}

	var rows []models.ProductInfo
	err := query.
		Preload("Product.Category").
		Preload("Shop").
		Preload("Parameters", func(db *gorm.DB) *gorm.DB { return db.Order("product_parameters.id") }).
		Preload("Parameters.Parameter").
		Order("product_infos.id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) ListShops(ctx context.Context) ([]models.Shop, error) {
	var shops []models.Shop
	if err := r.db.WithContext(ctx).Order("name").Find(&shops).Error; err != nil {
		return nil, err
	}
	return shops, nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}
