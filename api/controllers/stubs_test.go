package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/shopdesk-backend/api/middleware"
	"github.com/angelmondragon/shopdesk-backend/internal/auth"
	"github.com/angelmondragon/shopdesk-backend/internal/catalog"
	"github.com/angelmondragon/shopdesk-backend/internal/notifications"
	"github.com/angelmondragon/shopdesk-backend/internal/orders"
	"github.com/angelmondragon/shopdesk-backend/internal/users"
	pkgAuth "github.com/angelmondragon/shopdesk-backend/pkg/auth"
	"github.com/angelmondragon/shopdesk-backend/pkg/types"
)

type envelope struct {
	Status bool            `json:"Status"`
	Data   json.RawMessage `json:"data"`
	Errors types.APIError  `json:"Errors"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return env
}

func asPrincipal(req *http.Request, p pkgAuth.Principal) *http.Request {
	return req.WithContext(middleware.WithPrincipal(req.Context(), p))
}

type stubAuthService struct {
	loginFn   func(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error)
	refreshFn func(ctx context.Context, req auth.RefreshRequest) (*auth.LoginResponse, error)
	logoutFn  func(ctx context.Context, accessID string) error
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return s.loginFn(ctx, req)
}

func (s *stubAuthService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.LoginResponse, error) {
	return s.refreshFn(ctx, req)
}

func (s *stubAuthService) Logout(ctx context.Context, accessID string) error {
	return s.logoutFn(ctx, accessID)
}

type stubRegisterService struct {
	registerFn func(ctx context.Context, req auth.RegisterRequest) (*users.UserDTO, error)
}

func (s *stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) (*users.UserDTO, error) {
	return s.registerFn(ctx, req)
}

type stubOrdersService struct {
	getBasketFn      func(ctx context.Context, p pkgAuth.Principal) (*orders.OrderDTO, error)
	addItemsFn       func(ctx context.Context, p pkgAuth.Principal, items []orders.AddItem) (int64, error)
	removeItemsFn    func(ctx context.Context, p pkgAuth.Principal, items string) (int64, error)
	updateItemsFn    func(ctx context.Context, p pkgAuth.Principal, items []orders.UpdateItem) (int64, error)
	listOrdersFn     func(ctx context.Context, p pkgAuth.Principal) ([]orders.OrderDTO, error)
	submitFn         func(ctx context.Context, p pkgAuth.Principal, req orders.SubmitRequest) error
	supplierOrdersFn func(ctx context.Context, p pkgAuth.Principal) ([]orders.OrderDTO, error)
	confirmFn        func(ctx context.Context, p pkgAuth.Principal, req orders.ConfirmRequest) error
}

func (s *stubOrdersService) GetBasket(ctx context.Context, p pkgAuth.Principal) (*orders.OrderDTO, error) {
	return s.getBasketFn(ctx, p)
}

func (s *stubOrdersService) AddItems(ctx context.Context, p pkgAuth.Principal, items []orders.AddItem) (int64, error) {
	return s.addItemsFn(ctx, p, items)
}

func (s *stubOrdersService) RemoveItems(ctx context.Context, p pkgAuth.Principal, items string) (int64, error) {
	return s.removeItemsFn(ctx, p, items)
}

func (s *stubOrdersService) UpdateItems(ctx context.Context, p pkgAuth.Principal, items []orders.UpdateItem) (int64, error) {
	return s.updateItemsFn(ctx, p, items)
}

func (s *stubOrdersService) ListOrders(ctx context.Context, p pkgAuth.Principal) ([]orders.OrderDTO, error) {
	return s.listOrdersFn(ctx, p)
}

func (s *stubOrdersService) Submit(ctx context.Context, p pkgAuth.Principal, req orders.SubmitRequest) error {
	return s.submitFn(ctx, p, req)
}

func (s *stubOrdersService) SupplierOrders(ctx context.Context, p pkgAuth.Principal) ([]orders.OrderDTO, error) {
	return s.supplierOrdersFn(ctx, p)
}

func (s *stubOrdersService) Confirm(ctx context.Context, p pkgAuth.Principal, req orders.ConfirmRequest) error {
	return s.confirmFn(ctx, p, req)
}

type stubCatalogService struct {
	importFn        func(ctx context.Context, p pkgAuth.Principal, raw []byte, sourceURL string) (*catalog.ImportResult, error)
	importFromURLFn func(ctx context.Context, p pkgAuth.Principal, rawURL string) (*catalog.ImportResult, error)
	queryFn         func(ctx context.Context, filter catalog.Filter) ([]catalog.ListingDTO, error)
	shopStateFn     func(ctx context.Context, p pkgAuth.Principal) (*catalog.ShopDTO, error)
	setShopStateFn  func(ctx context.Context, p pkgAuth.Principal, open bool) (*catalog.ShopDTO, error)
}

func (s *stubCatalogService) Import(ctx context.Context, p pkgAuth.Principal, raw []byte, sourceURL string) (*catalog.ImportResult, error) {
	return s.importFn(ctx, p, raw, sourceURL)
}

func (s *stubCatalogService) ImportFromURL(ctx context.Context, p pkgAuth.Principal, rawURL string) (*catalog.ImportResult, error) {
	return s.importFromURLFn(ctx, p, rawURL)
}

func (s *stubCatalogService) Query(ctx context.Context, filter catalog.Filter) ([]catalog.ListingDTO, error) {
	return s.queryFn(ctx, filter)
}

func (s *stubCatalogService) ListShops(ctx context.Context) ([]catalog.ShopDTO, error) {
	return []catalog.ShopDTO{}, nil
}

func (s *stubCatalogService) ListCategories(ctx context.Context) ([]catalog.CategoryDTO, error) {
	return []catalog.CategoryDTO{}, nil
}

func (s *stubCatalogService) ShopState(ctx context.Context, p pkgAuth.Principal) (*catalog.ShopDTO, error) {
	return s.shopStateFn(ctx, p)
}

func (s *stubCatalogService) SetShopState(ctx context.Context, p pkgAuth.Principal, open bool) (*catalog.ShopDTO, error) {
	return s.setShopStateFn(ctx, p, open)
}

type stubNotificationsService struct {
	listFn        func(ctx context.Context, p pkgAuth.Principal, params notifications.ListParams) (*notifications.ListResult, error)
	markReadFn    func(ctx context.Context, p pkgAuth.Principal, notificationID uint64) error
	markAllReadFn func(ctx context.Context, p pkgAuth.Principal) (int64, error)
}

func (s *stubNotificationsService) List(ctx context.Context, p pkgAuth.Principal, params notifications.ListParams) (*notifications.ListResult, error) {
	return s.listFn(ctx, p, params)
}

func (s *stubNotificationsService) MarkRead(ctx context.Context, p pkgAuth.Principal, notificationID uint64) error {
	return s.markReadFn(ctx, p, notificationID)
}

func (s *stubNotificationsService) MarkAllRead(ctx context.Context, p pkgAuth.Principal) (int64, error) {
	return s.markAllReadFn(ctx, p)
}
