package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/shopdesk-backend/internal/catalog"
)

func TestProductsQueryFilters(t *testing.T) {
	var got catalog.Filter
	svc := &stubCatalogService{queryFn: func(ctx context.Context, filter catalog.Filter) ([]catalog.ListingDTO, error) {
		got = filter
		return []catalog.ListingDTO{}, nil
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?shop_id=3&category_id=abc", nil)
	rec := httptest.NewRecorder()
	ProductsQuery(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Nil(t, got.ID)
	require.NotNil(t, got.ShopID)
	require.EqualValues(t, 3, *got.ShopID)
	require.Nil(t, got.CategoryID)
	require.Equal(t, "[]", string(decodeEnvelope(t, rec).Data))
}
