package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/shopdesk-backend/internal/contacts"
	pkgAuth "github.com/angelmondragon/shopdesk-backend/pkg/auth"
	pkgerrors "github.com/angelmondragon/shopdesk-backend/pkg/errors"
	"github.com/angelmondragon/shopdesk-backend/pkg/types"
)

type stubContactsService struct {
	listFn   func(ctx context.Context, p pkgAuth.Principal) ([]contacts.ContactDTO, error)
	createFn func(ctx context.Context, p pkgAuth.Principal, req contacts.CreateContactRequest) (*contacts.ContactDTO, error)
	updateFn func(ctx context.Context, p pkgAuth.Principal, req contacts.UpdateContactRequest) (*contacts.ContactDTO, error)
	deleteFn func(ctx context.Context, p pkgAuth.Principal, items string) (int64, error)
}

func (s *stubContactsService) List(ctx context.Context, p pkgAuth.Principal) ([]contacts.ContactDTO, error) {
	return s.listFn(ctx, p)
}

func (s *stubContactsService) Create(ctx context.Context, p pkgAuth.Principal, req contacts.CreateContactRequest) (*contacts.ContactDTO, error) {
	return s.createFn(ctx, p, req)
}

func (s *stubContactsService) Update(ctx context.Context, p pkgAuth.Principal, req contacts.UpdateContactRequest) (*contacts.ContactDTO, error) {
	return s.updateFn(ctx, p, req)
}

func (s *stubContactsService) Delete(ctx context.Context, p pkgAuth.Principal, items string) (int64, error) {
	return s.deleteFn(ctx, p, items)
}

func TestContactCreate(t *testing.T) {
	svc := &stubContactsService{createFn: func(ctx context.Context, p pkgAuth.Principal, req contacts.CreateContactRequest) (*contacts.ContactDTO, error) {
		require.Equal(t, buyer, p)
		require.Equal(t, "Moscow", req.City)
		return &contacts.ContactDTO{ID: 3, City: req.City, Street: req.Street, Phone: req.Phone}, nil
	}}

	body := `{"city":"Moscow","street":"Tverskaya","phone":"+79990000000"}`
	req := asPrincipal(httptest.NewRequest(http.MethodPost, "/api/v1/user/contact", strings.NewReader(body)), buyer)
	rec := httptest.NewRecorder()
	ContactCreate(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var contact contacts.ContactDTO
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &contact))
	require.EqualValues(t, 3, contact.ID)
}

func TestContactCreateMissingFields(t *testing.T) {
	svc := &stubContactsService{createFn: func(context.Context, pkgAuth.Principal, contacts.CreateContactRequest) (*contacts.ContactDTO, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}}

	req := asPrincipal(httptest.NewRequest(http.MethodPost, "/api/v1/user/contact", strings.NewReader(`{"city":"Moscow"}`)), buyer)
	rec := httptest.NewRecorder()
	ContactCreate(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, string(pkgerrors.CodeMissingArguments), env.Errors.Code)
}

func TestContactUpdateNotFound(t *testing.T) {
	svc := &stubContactsService{updateFn: func(context.Context, pkgAuth.Principal, contacts.UpdateContactRequest) (*contacts.ContactDTO, error) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contact not found")
	}}

	req := asPrincipal(httptest.NewRequest(http.MethodPut, "/api/v1/user/contact", strings.NewReader(`{"id":"12","city":"Kazan"}`)), buyer)
	rec := httptest.NewRecorder()
	ContactUpdate(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContactDeleteReturnsCount(t *testing.T) {
	svc := &stubContactsService{deleteFn: func(ctx context.Context, p pkgAuth.Principal, items string) (int64, error) {
		require.Equal(t, "1,2", items)
		return 2, nil
	}}

	req := asPrincipal(httptest.NewRequest(http.MethodDelete, "/api/v1/user/contact", strings.NewReader(`{"items":"1,2"}`)), buyer)
	rec := httptest.NewRecorder()
	ContactDelete(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var count types.CountResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &count))
	require.EqualValues(t, 2, count.Count)
}

func TestContactListRequiresService(t *testing.T) {
	req := asPrincipal(httptest.NewRequest(http.MethodGet, "/api/v1/user/contact", nil), buyer)
	rec := httptest.NewRecorder()
	ContactList(nil, nil).ServeHTTP(rec, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
