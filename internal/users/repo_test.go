package users

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealtracker-backend/pkg/db"
	"github.com/angelmondragon/dealtracker-backend/pkg/db/dbtest"
)

func TestRepositoryCreateAndFind(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	user, err := repo.Create(ctx, CreateUserDTO{
		Name:         "Ada Lovelace",
		Username:     "ada_l",
		Email:        "  Ada@Example.com ",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, user.ID)
	require.Equal(t, "ada@example.com", user.Email)

	byEmail, err := repo.FindByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, byEmail.ID)


	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.False(t, byID.IsSubscriber)

	_, err = repo.FindByID(ctx, uuid.New())
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepositoryUniqueEmail(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, CreateUserDTO{Name: "One", Username: "one", Email: "dup@example.com", PasswordHash: "x"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, CreateUserDTO{Name: "Two", Username: "two", Email: "DUP@example.com", PasswordHash: "x"})
	require.Error(t, err)
	require.True(t, db.IsUniqueViolation(err, ""))
}

func TestRepositorySetSubscriber(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	user, err := repo.Create(ctx, CreateUserDTO{Name: "Sub", Username: "sub", Email: "sub@example.com", PasswordHash: "x"})
	require.NoError(t, err)

	require.NoError(t, repo.SetSubscriber(ctx, user.ID, true))
	reloaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, reloaded.IsSubscriber)

	err = repo.SetSubscriber(ctx, uuid.New(), true)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryAvailability(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, CreateUserDTO{Name: "Ada", Username: "ada_l", Email: "ada@example.com", PasswordHash: "x"})
	require.NoError(t, err)

	cases := []struct {
		email, username string
		want            Availability
	}{
		{"new@example.com", "newbie", Availability{}},
		{" ADA@example.com", "newbie", Availability{EmailTaken: true}},
		{"new@example.com", "ada_l", Availability{UsernameTaken: true}},
		{"ada@example.com", " ada_l ", Availability{EmailTaken: true, UsernameTaken: true}},
		{"new@example.com", "ADA_L", Availability{}},
	}
	for _, tc := range cases {
		got, err := repo.Availability(ctx, tc.email, tc.username)
		require.NoError(t, err)
		require.Equal(t, tc.want, got, "%s / %s", tc.email, tc.username)
	}
}

func TestFromModelOmitsPassword(t *testing.T) {
	require.Nil(t, FromModel(nil))
}
