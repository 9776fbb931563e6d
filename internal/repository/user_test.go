package repository

import (
	"context"
	"testing"

	"foodgram/internal/models"
	"foodgram/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndLookup(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Email: "chef@example.com", Username: "chef", Password: "hash"}
	require.NoError(t, repo.Create(ctx, user))

	dup := &models.User{Email: "chef@example.com", Username: "chef2", Password: "hash"}
	err := repo.Create(ctx, dup)
	assert.True(t, models.HasCode(err, models.CodeConflict))

	got, err := repo.GetByEmail(ctx, "chef@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = repo.GetByID(ctx, 999)
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	require.NoError(t, repo.UpdatePassword(ctx, user.ID, "newhash"))
	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "newhash", got.Password)
}

func TestUserRepository_ListOrderedByUsername(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)

	testutil.CreateUser(t, db, "zoe")
	testutil.CreateUser(t, db, "adam")
	testutil.CreateUser(t, db, "mia")

	users, total, err := repo.List(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, users, 2)
	assert.Equal(t, "adam", users[0].Username)
	assert.Equal(t, "mia", users[1].Username)
}

func TestUserRepository_ListSubscribedAuthors(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	subs := NewSubscriptionSet(db)

	reader := testutil.CreateUser(t, db, "reader")
	first := testutil.CreateUser(t, db, "first")
	second := testutil.CreateUser(t, db, "second")
	testutil.CreateUser(t, db, "stranger")

	require.NoError(t, subs.Add(ctx, reader.ID, first.ID))
	require.NoError(t, subs.Add(ctx, reader.ID, second.ID))

	authors, total, err := repo.ListSubscribedAuthors(ctx, reader.ID, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, authors, 2)
	assert.Equal(t, "second", authors[0].Username)
	assert.Equal(t, "first", authors[1].Username)
}
