package admin

import (
	"context"
	"testing"

	"udm-portal/internal/auth"
	"udm-portal/internal/httpx"
	"udm-portal/internal/models"
	"udm-portal/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetActive(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewUserService(db)
	ctx := context.Background()
	admin := testutil.CreateUser(t, db, "root")
	bob := testutil.CreateUser(t, db, "bob")
	actor := auth.Principal{UserID: admin.ID, Role: models.RoleAdmin}

	user, err := svc.SetActive(ctx, actor, bob.ID, false)
	require.NoError(t, err)
	assert.False(t, user.IsActive)

	var stored models.User
	require.NoError(t, db.First(&stored, bob.ID).Error)
	assert.False(t, stored.IsActive)

	user, err = svc.SetActive(ctx, actor, bob.ID, true)
	require.NoError(t, err)
	assert.True(t, user.IsActive)

	_, err = svc.SetActive(ctx, actor, admin.ID, false)
	assert.True(t, httpx.IsKind(err, httpx.KindValidation))

	_, err = svc.SetActive(ctx, actor, 4242, false)
	assert.True(t, httpx.IsKind(err, httpx.KindNotFound))
}

func TestListUsers(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewUserService(db)
	testutil.CreateUser(t, db, "root")
	testutil.CreateUser(t, db, "bob")

	users, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "root", users[0].Username)
}
