package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/dronemart-backend/internal/users"
	"github.com/angelmondragon/dronemart-backend/pkg/config"
	"github.com/angelmondragon/dronemart-backend/pkg/db"
	"github.com/angelmondragon/dronemart-backend/pkg/db/dbtest"
	"github.com/angelmondragon/dronemart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dronemart-backend/pkg/errors"
	"github.com/angelmondragon/dronemart-backend/pkg/security"
)

func TestRegisterCreatesCustomer(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewRegisterService(RegisterServiceParams{DB: db.NewFromGorm(conn), PasswordConfig: config.PasswordConfig{}})
	require.NoError(t, err)

	user, err := svc.Register(context.Background(), RegisterRequest{
		FullName: "  Ada Pilot ",
		Email:    "Ada@Example.com",
		Password: "hover-high-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "Ada Pilot", user.FullName)
	assert.Equal(t, enums.UserRoleCustomer, user.Role)

	stored, err := users.NewRepository(conn).FindByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	ok, err := security.VerifyPassword("hover-high-1", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	conn := dbtest.Open(t)
	dbtest.SeedUser(t, conn, "ada@example.com")
	svc, err := NewRegisterService(RegisterServiceParams{DB: db.NewFromGorm(conn)})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{
		FullName: "Ada",
		Email:    "ADA@example.com",
		Password: "hover-high-1",
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestRegisterValidatesInput(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewRegisterService(RegisterServiceParams{DB: db.NewFromGorm(conn)})
	require.NoError(t, err)

	cases := map[string]RegisterRequest{
		"short password": {FullName: "Ada", Email: "ada@example.com", Password: "short"},
		"long password":  {FullName: "Ada", Email: "ada@example.com", Password: strings.Repeat("x", security.MaxPasswordLength+1)},
		"blank name":     {FullName: " ", Email: "ada@example.com", Password: "hover-high-1"},
		"blank email":    {FullName: "Ada", Email: " ", Password: "hover-high-1"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), req)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}

	var count int64
	require.NoError(t, conn.Table("users").Count(&count).Error)
	assert.Zero(t, count)
}

func TestNewRegisterServiceRequiresDB(t *testing.T) {
	_, err := NewRegisterService(RegisterServiceParams{})
	assert.Error(t, err)
}
