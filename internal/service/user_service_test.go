package service

import (
	"context"
	"testing"

	"foodgram/internal/models"
	"foodgram/internal/repository"
	"foodgram/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newUserService(t *testing.T) (*UserService, *gorm.DB) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	svc := NewUserService(repository.NewUserRepository(db), repository.NewSubscriptionSet(db)).
		WithHashCost(bcrypt.MinCost)
	return svc, db
}

func signupInput() SignupInput {
	return SignupInput{
		Email:     "cook@example.com",
		Username:  "cook",
		FirstName: "Ada",
		LastName:  "Cook",
		Password:  "SecurePass12",
	}
}

func TestUserService_Signup(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	view, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)
	assert.NotZero(t, view.ID)
	assert.Equal(t, "cook", view.Username)
	assert.False(t, view.IsSubscribed)

	_, err = svc.Signup(ctx, signupInput())
	assert.True(t, models.HasCode(err, models.CodeConflict))

	user, err := svc.Authenticate(ctx, "cook@example.com", "SecurePass12")
	require.NoError(t, err)
	assert.Equal(t, view.ID, user.ID)
}

func TestUserService_SignupValidation(t *testing.T) {
	svc, _ := newUserService(t)

	tests := []struct {
		name   string
		mutate func(in *SignupInput)
		field  string
	}{
		{name: "reserved username", mutate: func(in *SignupInput) { in.Username = "me" }, field: "username"},
		{name: "bad username", mutate: func(in *SignupInput) { in.Username = "has space" }, field: "username"},
		{name: "weak password", mutate: func(in *SignupInput) { in.Password = "short" }, field: "password"},
		{name: "bad email", mutate: func(in *SignupInput) { in.Email = "nope" }, field: "email"},
		{name: "missing first name", mutate: func(in *SignupInput) { in.FirstName = "" }, field: "first_name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := signupInput()
			tt.mutate(&in)
			_, err := svc.Signup(context.Background(), in)
			require.Error(t, err)
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, models.CodeValidation, appErr.Code)
			assert.Contains(t, appErr.Fields, tt.field)
		})
	}
}

func TestUserService_Authenticate(t *testing.T) {
	svc, db := newUserService(t)
	testutil.CreateUser(t, db, "cook")

	_, err := svc.Authenticate(context.Background(), "cook@example.com", "WrongPass99")
	assert.True(t, models.HasCode(err, models.CodeUnauthorized))

	_, err = svc.Authenticate(context.Background(), "ghost@example.com", testutil.TestPassword)
	assert.True(t, models.HasCode(err, models.CodeUnauthorized))
}

func TestUserService_SetPassword(t *testing.T) {
	svc, db := newUserService(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "cook")

	err := svc.SetPassword(ctx, SetPasswordInput{UserID: user.ID, CurrentPassword: "NotMine123", NewPassword: "BrandNew456"})
	assertFieldError(t, err, models.ReasonInvalidField, "current_password")

	err = svc.SetPassword(ctx, SetPasswordInput{UserID: user.ID, CurrentPassword: testutil.TestPassword, NewPassword: "weak"})
	assert.True(t, models.HasCode(err, models.CodeValidation))

	require.NoError(t, svc.SetPassword(ctx, SetPasswordInput{
		UserID:          user.ID,
		CurrentPassword: testutil.TestPassword,
		NewPassword:     "BrandNew456",
	}))
	_, err = svc.Authenticate(ctx, user.Email, "BrandNew456")
	require.NoError(t, err)
}

func TestUserService_ListAndGetMarkSubscriptions(t *testing.T) {
	svc, db := newUserService(t)
	ctx := context.Background()
	reader := testutil.CreateUser(t, db, "reader")
	chef := testutil.CreateUser(t, db, "chef")
	require.NoError(t, repository.NewSubscriptionSet(db).Add(ctx, reader.ID, chef.ID))

	page, err := svc.List(ctx, reader.ID, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Count)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "chef", page.Results[0].Username)
	assert.True(t, page.Results[0].IsSubscribed)
	assert.False(t, page.Results[1].IsSubscribed)

	view, err := svc.Get(ctx, chef.ID, reader.ID)
	require.NoError(t, err)
	assert.True(t, view.IsSubscribed)

	view, err = svc.Get(ctx, chef.ID, 0)
	require.NoError(t, err)
	assert.False(t, view.IsSubscribed)

	_, err = svc.Get(ctx, 999, 0)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}
