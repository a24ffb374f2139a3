package users

import (
	"context"
	"testing"

	"github.com/angelmondragon/studio-backend/pkg/db"
	"github.com/angelmondragon/studio-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/studio-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	conn, err := db.OpenSQLite("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}))
	return NewRepository(conn)
}

func TestRepositoryFindByEmail(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, r.Insert(ctx, &models.User{Email: "buyer@example.com", DisplayName: "Dana"}))

	user, err := r.FindByEmail(ctx, " buyer@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "Dana", user.DisplayName)
	assert.NotEmpty(t, user.ID)

	byID, err := r.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)
}

func TestRepositoryFindByEmailIsExact(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, r.Insert(ctx, &models.User{Email: "buyer@example.com"}))

	_, err := r.FindByEmail(ctx, "other@example.com")
	assert.ErrorIs(t, err, pkgerrors.ErrNotFound)
}

func TestRepositoryRejectsDuplicateEmail(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, r.Insert(ctx, &models.User{Email: "buyer@example.com"}))
	assert.ErrorIs(t, r.Insert(ctx, &models.User{Email: "buyer@example.com"}), pkgerrors.ErrDuplicate)
}

func TestFindByEmailTrimsButMatchesCaseExactly(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, r.Insert(ctx, &models.User{Email: "buyer@example.com"}))

	found, err := r.FindByEmail(ctx, "  buyer@example.com\n")
	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", found.Email)

	_, err = r.FindByEmail(ctx, "Buyer@Example.com")
	assert.ErrorIs(t, err, pkgerrors.ErrNotFound)
}
