package orders

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/angelmondragon/shopdesk-backend/internal/notifications"
	"github.com/angelmondragon/shopdesk-backend/pkg/auth"
	"github.com/angelmondragon/shopdesk-backend/pkg/db"
	"github.com/angelmondragon/shopdesk-backend/pkg/db/models"
	"github.com/angelmondragon/shopdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shopdesk-backend/pkg/errors"
	"github.com/angelmondragon/shopdesk-backend/pkg/logger"
	"github.com/angelmondragon/shopdesk-backend/pkg/metrics"
	"github.com/angelmondragon/shopdesk-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventDispatcher interface {
	Dispatch(ctx context.Context, events ...notifications.Event)
}

// Service drives the basket and order workflow for an explicit principal.
type Service interface {
	GetBasket(ctx context.Context, p auth.Principal) (*OrderDTO, error)
	AddItems(ctx context.Context, p auth.Principal, items []AddItem) (int64, error)
	RemoveItems(ctx context.Context, p auth.Principal, items string) (int64, error)
	UpdateItems(ctx context.Context, p auth.Principal, items []UpdateItem) (int64, error)
	ListOrders(ctx context.Context, p auth.Principal) ([]OrderDTO, error)
	Submit(ctx context.Context, p auth.Principal, req SubmitRequest) error
	SupplierOrders(ctx context.Context, p auth.Principal) ([]OrderDTO, error)
	Confirm(ctx context.Context, p auth.Principal, req ConfirmRequest) error
}

type ServiceParams struct {
	Repository Repository
	TxRunner   txRunner
	Dispatcher eventDispatcher
	Metrics    *metrics.OrderMetrics
	Logger     *logger.Logger
}

type service struct {
	repo       Repository
	tx         txRunner
	dispatcher eventDispatcher
	metrics    *metrics.OrderMetrics
	logg       *logger.Logger
}

// NewService builds the order workflow service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:       params.Repository,
		tx:         params.TxRunner,
		dispatcher: params.Dispatcher,
		metrics:    params.Metrics,
		logg:       logg,
	}, nil
}

func (s *service) GetBasket(ctx context.Context, p auth.Principal) (*OrderDTO, error) {
	if !p.Authenticated() {
		return nil, unauthorized()
	}
	basket, err := s.repo.FindBasket(ctx, p.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load basket")
	}
	if basket == nil {
		return nil, nil
	}
	dto := FromModel(*basket)
	return &dto, nil
}

type parsedItem struct {
	listingID uint64
	quantity  int64
}

func parseAddItems(items []AddItem) ([]parsedItem, error) {
	parsed := make([]parsedItem, 0, len(items))
	var problems []string
	seen := map[uint64]struct{}{}
	var duplicates []uint64

	for i, item := range items {
		listingID, ok := item.ProductInfo.Uint64()
		if !ok {
			problems = append(problems, fmt.Sprintf("items[%d].product_info must be a positive integer", i))
		}
		quantity, qok := parseQuantity(item.Quantity)
		if !qok {
			problems = append(problems, fmt.Sprintf("items[%d].quantity must be an integer between 1 and %d", i, MaxQuantity))
		}
		if !ok || !qok {
			continue
		}
		if _, dup := seen[listingID]; dup {
			duplicates = append(duplicates, listingID)
			continue
		}
		seen[listingID] = struct{}{}
		parsed = append(parsed, parsedItem{listingID: listingID, quantity: quantity})
	}

	if len(problems) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid basket items").
			WithDetails(map[string]any{"items": problems})
	}
	if len(duplicates) > 0 {
		return nil, duplicateItems(duplicates)
	}
	return parsed, nil
}

// MaxQuantity is the largest quantity a single basket line accepts.
const MaxQuantity = 1_000_000

func parseQuantity(raw types.LooseID) (int64, bool) {
	n, ok := raw.Uint64()
	if !ok || n > MaxQuantity {
		return 0, false
	}
	return int64(n), true
}

func quantityTooLarge(raw types.LooseID) bool {
	n, ok := raw.Uint64()
	return ok && n > MaxQuantity
}

func duplicateItems(ids []uint64) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "items already in basket").
		WithDetails(map[string]any{"items": ids})
}

// AddItems inserts the batch into the caller's basket, creating the basket
// when needed. Any failure leaves the basket untouched.
func (s *service) AddItems(ctx context.Context, p auth.Principal, items []AddItem) (int64, error) {
	if !p.Authenticated() {
		return 0, unauthorized()
	}
	if len(items) == 0 {
		return 0, missingArguments("items")
	}
	parsed, err := parseAddItems(items)
	if err != nil {
		return 0, err
	}

	created := false
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		ids := make([]uint64, 0, len(parsed))
		for _, item := range parsed {
			ids = append(ids, item.listingID)
		}
		existing, err := repo.ExistingListingIDs(ctx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup listings")
		}
		if missing := difference(ids, existing); len(missing) > 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product info not found").
				WithDetails(map[string]any{"items": missing})
		}

		basket, isNew, err := repo.GetOrCreateBasket(ctx, p.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get basket")
		}
		created = isNew

		inBasket, err := repo.BasketListingIDs(ctx, basket.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load basket items")
		}
		if dups := intersection(ids, inBasket); len(dups) > 0 {
			return duplicateItems(dups)
		}

		rows := make([]models.OrderItem, 0, len(parsed))
		for _, item := range parsed {
			rows = append(rows, models.OrderItem{OrderID: basket.ID, ProductInfoID: item.listingID, Quantity: item.quantity})
		}
		if err := repo.CreateItems(ctx, rows); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "items already in basket").
					WithDetails(map[string]any{"items": ids})
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add basket items")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if created {
		s.metrics.Transitioned(string(enums.OrderStateBasket))
	}
	return int64(len(parsed)), nil
}

func (s *service) RemoveItems(ctx context.Context, p auth.Principal, items string) (int64, error) {
	if !p.Authenticated() {
		return 0, unauthorized()
	}
	ids := types.ParseIDList(items)
	if len(ids) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "missing arguments").
			WithDetails(map[string]any{"items": []string{"no numeric item id given"}})
	}
	deleted, err := s.repo.DeleteBasketItems(ctx, p.UserID, ids)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove basket items")
	}
	return deleted, nil
}

// UpdateItems skips entries whose id or quantity is not a usable integer.
// A quantity above MaxQuantity rejects the whole batch.
func (s *service) UpdateItems(ctx context.Context, p auth.Principal, items []UpdateItem) (int64, error) {
	if !p.Authenticated() {
		return 0, unauthorized()
	}
	if len(items) == 0 {
		return 0, missingArguments("items")
	}
	var problems []string
	for i, item := range items {
		if quantityTooLarge(item.Quantity) {
			problems = append(problems, fmt.Sprintf("items[%d].quantity must be at most %d", i, MaxQuantity))
		}
	}
	if len(problems) > 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid basket items").
			WithDetails(map[string]any{"items": problems})
	}

	var updated int64
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for _, item := range items {
			id, ok := item.ID.Uint64()
			if !ok {
				continue
			}
			quantity, ok := parseQuantity(item.Quantity)
			if !ok {
				continue
			}
			n, err := repo.UpdateBasketItemQuantity(ctx, p.UserID, id, quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update basket item")
			}
			updated += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

func (s *service) ListOrders(ctx context.Context, p auth.Principal) ([]OrderDTO, error) {
	if !p.Authenticated() {
		return nil, unauthorized()
	}
	rows, err := s.repo.ListUserOrders(ctx, p.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return toDTOs(rows), nil
}

// Submit places the caller's basket using one of their contacts.
func (s *service) Submit(ctx context.Context, p auth.Principal, req SubmitRequest) error {
	if !p.Authenticated() {
		return unauthorized()
	}
	var missing []string
	if req.ID == "" {
		missing = append(missing, "id")
	}
	if req.Contact == "" {
		missing = append(missing, "contact")
	}
	if len(missing) > 0 {
		return missingArguments(missing...)
	}
	orderID, ok := req.ID.Uint64()
	if !ok {
		return invalidID("id")
	}
	contactID, ok := req.Contact.Uint64()
	if !ok {
		return invalidID("contact")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		contact, err := repo.FindContactForUser(ctx, p.UserID, contactID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup contact")
		}
		if contact == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "contact not found")
		}

		rows, err := repo.SubmitBasket(ctx, orderID, p.UserID, contactID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "submit basket")
		}
		if rows > 0 {
			return nil
		}

		order, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup order")
		}
		if order == nil || order.UserID != p.UserID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "basket not found")
		}
		return stateConflict(order.State)
	})
	if err != nil {
		return err
	}

	s.metrics.Transitioned(string(enums.OrderStateNew))
	s.logg.Info(s.logg.WithOrderID(s.logg.WithUserID(ctx, p.UserID), orderID), "order.placed")
	s.dispatch(ctx, notifications.OrderPlaced(p.UserID, orderID))
	return nil
}

func (s *service) SupplierOrders(ctx context.Context, p auth.Principal) ([]OrderDTO, error) {
	if !p.Authenticated() {
		return nil, unauthorized()
	}
	if !p.IsShop() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only shop accounts can view partner orders")
	}
	rows, err := s.repo.ListSupplierOrders(ctx, p.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list partner orders")
	}
	return toDTOs(rows), nil
}

// Confirm moves a placed order to confirmed and notifies every shop with a
// line in it.
func (s *service) Confirm(ctx context.Context, p auth.Principal, req ConfirmRequest) error {
	if !p.Authenticated() {
		return unauthorized()
	}
	if !p.IsStaff {
		return pkgerrors.New(pkgerrors.CodeForbidden, "staff only")
	}
	if req.ID == "" {
		return missingArguments("id")
	}
	orderID, ok := req.ID.Uint64()
	if !ok {
		return invalidID("id")
	}

	var shopIDs []uint64
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		rows, err := repo.ConfirmOrder(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "confirm order")
		}
		if rows == 0 {
			order, err := repo.FindOrder(ctx, orderID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup order")
			}
			if order == nil {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return stateConflict(order.State)
		}

		shopIDs, err = repo.OrderShopIDs(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup order shops")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.Transitioned(string(enums.OrderStateConfirmed))
	s.logg.Info(s.logg.WithOrderID(ctx, orderID), "order.confirmed")

	events := make([]notifications.Event, 0, len(shopIDs))
	for _, shopID := range shopIDs {
		events = append(events, notifications.OrderConfirmed(p.UserID, shopID, orderID))
	}
	s.dispatch(ctx, events...)
	return nil
}

func (s *service) dispatch(ctx context.Context, events ...notifications.Event) {
	if s.dispatcher == nil || len(events) == 0 {
		return
	}
	s.dispatcher.Dispatch(ctx, events...)
}

func toDTOs(rows []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out
}

func unauthorized() error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
}

func missingArguments(fields ...string) error {
	return pkgerrors.New(pkgerrors.CodeMissingArguments, "missing required arguments").
		WithDetails(map[string]any{"fields": fields})
}

func invalidID(field string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid id").
		WithDetails(map[string]any{field: []string{"must be a positive integer"}})
}

func stateConflict(state enums.OrderState) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not in the expected state").
		WithDetails(map[string]any{"state": state})
}

// difference returns ids absent from found, sorted.
func difference(ids, found []uint64) []uint64 {
	present := make(map[uint64]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}
	var out []uint64
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func intersection(ids, other []uint64) []uint64 {
	set := make(map[uint64]struct{}, len(other))
	for _, id := range other {
		set[id] = struct{}{}
	}
	var out []uint64
	for _, id := range ids {
		if _, ok := set[id]; ok {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
