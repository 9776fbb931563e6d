package service

import (
	"context"
	"strings"

	"foodgram/internal/models"
	"foodgram/internal/repository"
	"foodgram/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	users         repository.UserRepository
	subscriptions repository.MembershipStore
	hashCost      int
}

type SignupInput struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,password"`
}

type SetPasswordInput struct {
	UserID          uint   `json:"-"`
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,password"`
}

func NewUserService(users repository.UserRepository, subscriptions repository.MembershipStore) *UserService {
	return &UserService{users: users, subscriptions: subscriptions, hashCost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.hashCost = cost
	return s
}

func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.UserView, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:     in.Email,
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Password:  string(hashed),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	view := models.NewUserView(*user, false)
	return &view, nil
}

// Authenticate returns the user owning email when password matches.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, models.NewUnauthorizedError("Invalid credentials")
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

func (s *UserService) SetPassword(ctx context.Context, in SetPasswordInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)) != nil {
		return models.NewFieldError("current_password", models.ReasonInvalidField, "Current password is incorrect.")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), s.hashCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.users.UpdatePassword(ctx, in.UserID, string(hashed))
}

func (s *UserService) Get(ctx context.Context, id, viewerID uint) (*models.UserView, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	subscribed, err := s.subscriptions.Contains(ctx, viewerID, id)
	if err != nil {
		return nil, err
	}
	view := models.NewUserView(*user, subscribed)
	return &view, nil
}

func (s *UserService) List(ctx context.Context, viewerID uint, limit, offset int) (*models.Page[models.UserView], error) {
	users, total, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	subscribed, err := s.subscriptions.TargetsAmong(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, models.NewUserView(u, subscribed[u.ID]))
	}
	return &models.Page[models.UserView]{Count: total, Results: views}, nil
}
