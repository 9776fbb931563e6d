package repository

import (
	"context"
	"errors"

	"foodgram/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, int64, error)
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
	ListSubscribedAuthors(ctx context.Context, subscriberID uint, limit, offset int) ([]models.User, int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewConflictError("A user with this email or username already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := session(ctx, r.db).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := session(ctx, r.db).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "User", email)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, int64, error) {
	var total int64
	if err := session(ctx, r.db).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	users := make([]models.User, 0)
	if err := session(ctx, r.db).
		Order("username ASC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return users, total, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", passwordHash)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}

// ListSubscribedAuthors returns the authors subscriberID follows, most recent
// subscription first.
func (r *userRepository) ListSubscribedAuthors(ctx context.Context, subscriberID uint, limit, offset int) ([]models.User, int64, error) {
	var total int64
	if err := session(ctx, r.db).Model(&models.Subscription{}).
		Where("user_id = ?", subscriberID).
		Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	authors := make([]models.User, 0)
	if err := session(ctx, r.db).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ?", subscriberID).
		Order("subscriptions.created_at DESC, subscriptions.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&authors).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return authors, total, nil
}
