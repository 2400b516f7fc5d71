package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/shopdesk-backend/pkg/auth"
	"github.com/angelmondragon/shopdesk-backend/pkg/db"
	"github.com/angelmondragon/shopdesk-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shopdesk-backend/pkg/errors"
	"github.com/angelmondragon/shopdesk-backend/pkg/logger"
	"github.com/angelmondragon/shopdesk-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type feedFetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// Service imports supplier feeds and serves the public catalog.
type Service interface {
	Import(ctx context.Context, p auth.Principal, raw []byte, sourceURL string) (*ImportResult, error)
	ImportFromURL(ctx context.Context, p auth.Principal, rawURL string) (*ImportResult, error)
	Query(ctx context.Context, filter Filter) ([]ListingDTO, error)
	ListShops(ctx context.Context) ([]ShopDTO, error)
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	ShopState(ctx context.Context, p auth.Principal) (*ShopDTO, error)
	SetShopState(ctx context.Context, p auth.Principal, open bool) (*ShopDTO, error)
}

type ServiceParams struct {
	TxRunner     txRunner
	Repository   *Repository
	Fetcher      feedFetcher
	MaxFeedBytes int64
	Metrics      *metrics.CatalogMetrics
	Logger       *logger.Logger
}

type service struct {
	tx       txRunner
	repo     *Repository
	fetcher  feedFetcher
	maxBytes int64
	metrics  *metrics.CatalogMetrics
	logg     *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	maxBytes := params.MaxFeedBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxFeedBytes
	}
	fetcher := params.Fetcher
	if fetcher == nil {
		fetcher = NewFetcher(0, maxBytes)
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		tx:       params.TxRunner,
		repo:     params.Repository,
		fetcher:  fetcher,
		maxBytes: maxBytes,
		metrics:  params.Metrics,
		logg:     logg,
	}, nil
}

func (s *service) ImportFromURL(ctx context.Context, p auth.Principal, rawURL string) (*ImportResult, error) {
	if err := authorizeShop(p, "upload a catalog"); err != nil {
		return nil, err
	}
	rawURL = strings.TrimSpace(rawURL)
	data, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		s.metrics.ImportFailed()
		return nil, err
	}
	return s.Import(ctx, p, data, rawURL)
}

// Import replaces the uploading shop's listings with the feed contents. The
// whole import runs in one transaction.
func (s *service) Import(ctx context.Context, p auth.Principal, raw []byte, sourceURL string) (*ImportResult, error) {
	if err := authorizeShop(p, "upload a catalog"); err != nil {
		return nil, err
	}
	result, err := s.importFeed(ctx, p, raw, strings.TrimSpace(sourceURL))
	if err != nil {
		s.metrics.ImportFailed()
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"user_id": p.UserID,
			"error":   err.Error(),
		}), "catalog.import_failed")
		return nil, err
	}

	s.metrics.ImportSucceeded(result.Goods, result.CategoryNameConflicts)
	logCtx := s.logg.WithShopID(ctx, result.ShopID)
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"categories":      result.Categories,
		"goods":           result.Goods,
		"parameters":      result.Parameters,
		"parameter_names": result.ParameterNames,
	})
	s.logg.Info(logCtx, "catalog.imported")
	return result, nil
}

func (s *service) importFeed(ctx context.Context, p auth.Principal, raw []byte, sourceURL string) (*ImportResult, error) {
	if int64(len(raw)) > s.maxBytes {
		return nil, feedTooLarge(s.maxBytes)
	}
	feed, err := ParseFeed(raw)
	if err != nil {
		return nil, err
	}

	var result ImportResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		shop, err := s.claimShop(ctx, repo, p, feed.Shop, sourceURL)
		if err != nil {
			return err
		}
		result.ShopID = shop.ID

		conflicts, err := s.upsertCategories(ctx, repo, shop.ID, feed.Categories)
		if err != nil {
			return err
		}
		result.Categories = len(feed.Categories)
		result.CategoryNameConflicts = conflicts

		if _, err := repo.DeleteShopListings(ctx, shop.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete shop listings")
		}

		params, err := s.writeGoods(ctx, repo, shop.ID, feed.Goods)
		if err != nil {
			return err
		}
		result.Goods = len(feed.Goods)
		result.Parameters = params
		result.ParameterNames = feed.ParameterNames()
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "import catalog")
	}
	return &result, nil
}

func (s *service) claimShop(ctx context.Context, repo *Repository, p auth.Principal, name, sourceURL string) (*models.Shop, error) {
	shop, err := repo.FindShopByName(ctx, name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup shop")
	}

	owner := p.UserID
	if shop == nil {
		shop = &models.Shop{Name: name, UserID: &owner, State: true}
		if sourceURL != "" {
			shop.URL = &sourceURL
		}
		if err := repo.CreateShop(ctx, shop); err != nil {
			return nil, shopWriteError(err)
		}
		return shop, nil
	}

	if shop.UserID != nil && *shop.UserID != p.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "shop belongs to another user")
	}
	changed := false
	if shop.UserID == nil {
		shop.UserID = &owner
		changed = true
	}
	if (shop.URL == nil || *shop.URL == "") && sourceURL != "" {
		shop.URL = &sourceURL
		changed = true
	}
	if changed {
		if err := repo.UpdateShopOwnership(ctx, shop); err != nil {
			return nil, shopWriteError(err)
		}
	}
	return shop, nil
}

func shopWriteError(err error) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "shop conflicts with an existing shop").
			WithDetails(map[string]any{"shop": []string{"user already owns a shop or the url is taken."}})
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save shop")
}

// upsertCategories matches categories on id. A stored name that differs from
// the feed wins and is reported as a name conflict.
func (s *service) upsertCategories(ctx context.Context, repo *Repository, shopID uint64, categories []FeedCategory) (int, error) {
	conflicts := 0
	for _, fc := range categories {
		stored, err := repo.FindCategory(ctx, fc.ID)
		if err != nil {
			return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup category")
		}

		switch {
		case stored == nil:
			holder, err := repo.FindCategoryByName(ctx, fc.Name)
			if err != nil {
				return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup category by name")
			}
			if holder != nil {
				return 0, categoryNameTaken(fc, holder.ID)
			}
			if err := repo.CreateCategory(ctx, &models.Category{ID: fc.ID, Name: fc.Name}); err != nil {
				if db.IsUniqueViolation(err, "") {
					return 0, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "category already exists")
				}
				return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create category")
			}
		case stored.Name != fc.Name:
			conflicts++
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"category_id": fc.ID,
				"stored_name": stored.Name,
				"feed_name":   fc.Name,
			}), "catalog.category_name_conflict")
		}

		if err := repo.AttachShopCategory(ctx, shopID, fc.ID); err != nil {
			return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "attach shop category")
		}
	}
	return conflicts, nil
}

func categoryNameTaken(fc FeedCategory, holderID uint64) error {
	msg := fmt.Sprintf("category name %q is already used by category %d.", fc.Name, holderID)
	return pkgerrors.New(pkgerrors.CodeConflict, "category name already in use").
		WithDetails(map[string]any{"categories": []string{msg}})
}

func (s *service) writeGoods(ctx context.Context, repo *Repository, shopID uint64, goods []FeedGood) (int, error) {
	parameterIDs := make(map[string]uint64)
	for _, good := range goods {
		product, err := repo.FirstOrCreateProduct(ctx, good.Name, good.CategoryID)
		if err != nil {
			return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert product")
		}

		listing := models.ProductInfo{
			ID:        good.ID,
			ProductID: product.ID,
			ShopID:    shopID,
			Quantity:  good.Quantity,
			Price:     good.Price,
			PriceRRC:  good.PriceRRC,
		}
		if err := repo.CreateListing(ctx, &listing); err != nil {
			if db.IsUniqueViolation(err, "") {
				return 0, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "duplicate listing").
					WithDetails(map[string]any{"goods": []uint64{good.ID}})
			}
			return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create listing")
		}

		rows := make([]models.ProductParameter, 0, len(good.Parameters))
		for _, param := range good.Parameters {
			id, ok := parameterIDs[param.Name]
			if !ok {
				parameter, err := repo.FirstOrCreateParameter(ctx, param.Name)
				if err != nil {
					return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert parameter")
				}
				id = parameter.ID
				parameterIDs[param.Name] = id
			}
			rows = append(rows, models.ProductParameter{
				ProductInfoID: listing.ID,
				ParameterID:   id,
				Value:         param.Value,
			})
		}
		if err := repo.CreateListingParameters(ctx, rows); err != nil {
			return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create listing parameters")
		}
	}
	return len(parameterIDs), nil
}

func (s *service) Query(ctx context.Context, filter Filter) ([]ListingDTO, error) {
	rows, err := s.repo.ListListings(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "query catalog")
	}
	out := make([]ListingDTO, 0, len(rows))
	seen := make(map[uint64]struct{}, len(rows))
	for _, row := range rows {
		if _, dup := seen[row.ID]; dup {
			continue
		}
		seen[row.ID] = struct{}{}
		out = append(out, ListingFromModel(row))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *service) ListShops(ctx context.Context) ([]ShopDTO, error) {
	shops, err := s.repo.ListShops(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list shops")
	}
	out := make([]ShopDTO, 0, len(shops))
	for _, shop := range shops {
		out = append(out, ShopFromModel(shop))
	}
	return out, nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(categories))
	for _, category := range categories {
		out = append(out, CategoryDTO{ID: category.ID, Name: category.Name})
	}
	return out, nil
}

// ShopState returns the caller's own shop.
func (s *service) ShopState(ctx context.Context, p auth.Principal) (*ShopDTO, error) {
	if err := authorizeShop(p, "view shop state"); err != nil {
		return nil, err
	}
	shop, err := s.ownShop(ctx, p)
	if err != nil {
		return nil, err
	}
	dto := ShopFromModel(*shop)
	return &dto, nil
}

// SetShopState opens or closes the caller's shop. Listings of a closed shop
// drop out of catalog queries.
func (s *service) SetShopState(ctx context.Context, p auth.Principal, open bool) (*ShopDTO, error) {
	if err := authorizeShop(p, "change shop state"); err != nil {
		return nil, err
	}
	shop, err := s.ownShop(ctx, p)
	if err != nil {
		return nil, err
	}
	if shop.State != open {
		if err := s.repo.UpdateShopState(ctx, shop.ID, open); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update shop state")
		}
		shop.State = open
	}
	s.logg.Info(s.logg.WithField(s.logg.WithShopID(ctx, shop.ID), "state", open), "catalog.shop_state")
	dto := ShopFromModel(*shop)
	return &dto, nil
}

func (s *service) ownShop(ctx context.Context, p auth.Principal) (*models.Shop, error) {
	shop, err := s.repo.FindShopByOwner(ctx, p.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup shop")
	}
	if shop == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no shop is registered for this account")
	}
	return shop, nil
}

func authorizeShop(p auth.Principal, action string) error {
	if !p.Authenticated() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !p.IsShop() {
		return pkgerrors.Newf(pkgerrors.CodeForbidden, "only shop accounts can %s", action)
	}
	return nil
}
