package contacts

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/shopdesk-backend/pkg/auth"
	"github.com/angelmondragon/shopdesk-backend/pkg/db/dbtest"
	"github.com/angelmondragon/shopdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shopdesk-backend/pkg/errors"
	"github.com/angelmondragon/shopdesk-backend/pkg/types"
)

var (
	alice = auth.Principal{UserID: 1, Type: enums.AccountTypeBuyer}
	bob   = auth.Principal{UserID: 2, Type: enums.AccountTypeBuyer}
)

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(NewRepository(dbtest.Open(t).DB()))
	require.NoError(t, err)
	return svc
}

func strPtr(s string) *string { return &s }

func TestCreateAndListScopedToCaller(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, alice, CreateContactRequest{City: "Moscow", Street: "Tverskaya", House: "1", Phone: "+70000000000"})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	_, err = svc.Create(ctx, bob, CreateContactRequest{City: "Kazan", Street: "Bauman", Phone: "+71111111111"})
	require.NoError(t, err)

	list, err := svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Moscow", list[0].City)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, alice, CreateContactRequest{City: "Moscow"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeMissingArguments, typed.Code())
	require.Equal(t, map[string]any{"fields": []string{"street", "phone"}}, typed.Details())

	_, err = svc.Create(ctx, alice, CreateContactRequest{City: "Moscow", Street: "Arbat", Phone: strings.Repeat("9", 21)})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Create(ctx, auth.Principal{}, CreateContactRequest{})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestUpdateIsPartialAndOwned(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, alice, CreateContactRequest{City: "Moscow", Street: "Arbat", Apartment: "12", Phone: "+7000"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, alice, UpdateContactRequest{ID: types.LooseID("1"), City: strPtr("Tver")})
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, "Tver", updated.City)
	require.Equal(t, "Arbat", updated.Street)
	require.Equal(t, "12", updated.Apartment)

	_, err = svc.Update(ctx, bob, UpdateContactRequest{ID: types.LooseID("1"), City: strPtr("Stolen")})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Update(ctx, alice, UpdateContactRequest{ID: types.LooseID("one")})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDeleteSkipsNonNumericAndForeignRows(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Create(ctx, alice, CreateContactRequest{City: "Moscow", Street: "Arbat", Phone: "+7000"})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, bob, CreateContactRequest{City: "Kazan", Street: "Bauman", Phone: "+7111"})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, alice, "1,abc,3")
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	_, err = svc.Delete(ctx, alice, "x,y")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	require.Equal(t, "missing arguments", typed.Message())

	remaining, err := svc.List(ctx, bob)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
}
