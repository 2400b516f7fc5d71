package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/shopdesk-backend/internal/catalog"
	"github.com/angelmondragon/shopdesk-backend/pkg/auth"
	"github.com/angelmondragon/shopdesk-backend/pkg/db/models"
	"github.com/angelmondragon/shopdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shopdesk-backend/pkg/errors"
)

type stubImporter struct {
	importFn  func(ctx context.Context, p auth.Principal, raw []byte, sourceURL string) (*catalog.ImportResult, error)
	fromURLFn func(ctx context.Context, p auth.Principal, rawURL string) (*catalog.ImportResult, error)
}

func (s stubImporter) Import(ctx context.Context, p auth.Principal, raw []byte, sourceURL string) (*catalog.ImportResult, error) {
	return s.importFn(ctx, p, raw, sourceURL)
}

func (s stubImporter) ImportFromURL(ctx context.Context, p auth.Principal, rawURL string) (*catalog.ImportResult, error) {
	return s.fromURLFn(ctx, p, rawURL)
}

var supplier = auth.Principal{UserID: 4, Type: enums.AccountTypeShop}

func TestImportOptionsValidate(t *testing.T) {
	require.Error(t, importOptions{file: "shop1.yaml"}.validate())
	require.Error(t, importOptions{userID: 4}.validate())
	require.NoError(t, importOptions{userID: 4, url: "https://example.com/feed.yaml"}.validate())
}

func TestResolveFeedPath(t *testing.T) {
	path, err := resolveFeedPath("data", "shop1.yaml")
	require.NoError(t, err)
	require.Equal(t, filepath.Join("data", "shop1.yaml"), path)

	_, err = resolveFeedPath("data", "../secrets.yaml")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestRunImportReadsFeedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shop1.yaml"), []byte("shop: Связной\n"), 0o600))

	var got []byte
	importer := stubImporter{
		importFn: func(_ context.Context, p auth.Principal, raw []byte, sourceURL string) (*catalog.ImportResult, error) {
			require.Equal(t, supplier, p)
			require.Empty(t, sourceURL)
			got = raw
			return &catalog.ImportResult{ShopID: 1, Goods: 3}, nil
		},
	}

	result, err := runImport(context.Background(), importer, supplier, importOptions{file: "shop1.yaml", userID: 4}, dir, 1024)
	require.NoError(t, err)
	require.Equal(t, 3, result.Goods)
	require.Equal(t, "shop: Связной\n", string(got))
}

func TestRunImportMissingFile(t *testing.T) {
	importer := stubImporter{}
	_, err := runImport(context.Background(), importer, supplier, importOptions{file: "missing.yaml", userID: 4}, t.TempDir(), 1024)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestRunImportPrefersURL(t *testing.T) {
	importer := stubImporter{
		fromURLFn: func(_ context.Context, _ auth.Principal, rawURL string) (*catalog.ImportResult, error) {
			require.Equal(t, "https://example.com/feed.yaml", rawURL)
			return &catalog.ImportResult{ShopID: 2}, nil
		},
	}
	result, err := runImport(context.Background(), importer, supplier, importOptions{url: "https://example.com/feed.yaml", userID: 4}, "data", 0)
	require.NoError(t, err)
	require.EqualValues(t, 2, result.ShopID)
}

func TestPrincipalForCopiesRole(t *testing.T) {
	p := principalFor(&models.User{ID: 9, Type: enums.AccountTypeShop, IsStaff: true})
	require.Equal(t, auth.Principal{UserID: 9, Type: enums.AccountTypeShop, IsStaff: true}, p)
}

func TestImportCommandRejectsMissingFlags(t *testing.T) {
	cmd := newImportCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--file", "shop1.yaml"})
	err := cmd.Execute()
	require.ErrorContains(t, err, "--user is required")
}
