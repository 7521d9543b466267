package repository

import (
	"context"
	"errors"

	"github.com/buran83/makechat/internal/domain"
	"github.com/buran83/makechat/internal/observability"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	ListPage(ctx context.Context, req PageRequest, defaultLimit int) (PageResult[domain.User], error)
}

type GormUserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &GormUserRepository{db: db} }

func (r *GormUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "users", "find_by_id", "not_found")
			return nil, ErrUserNotFound
		}
		observability.RecordRepositoryOperation(ctx, "users", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "users", "find_by_id", "success")
	return &u, nil
}

func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "users", "find_by_username", "not_found")
			return nil, ErrUserNotFound
		}
		observability.RecordRepositoryOperation(ctx, "users", "find_by_username", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "users", "find_by_username", "success")
	return &u, nil
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "users", "find_by_email", "not_found")
			return nil, ErrUserNotFound
		}
		observability.RecordRepositoryOperation(ctx, "users", "find_by_email", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "users", "find_by_email", "success")
	return &u, nil
}

func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "users", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "users", "create", "success")
	return nil
}

func (r *GormUserRepository) Update(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "users", "update", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "users", "update", "success")
	return nil
}

func (r *GormUserRepository) ListPage(ctx context.Context, req PageRequest, defaultLimit int) (PageResult[domain.User], error) {
	normalized := normalizePageRequest(req, defaultLimit)
	result := PageResult[domain.User]{Offset: normalized.Offset, Limit: normalized.Limit}

	base := r.db.WithContext(ctx).Model(&domain.User{})
	if err := base.Count(&result.Total).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "users", "list_page", "error")
		return PageResult[domain.User]{}, err
	}
	err := base.Order("id").Offset(normalized.Offset).Limit(normalized.Limit).Find(&result.Items).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "users", "list_page", "error")
		return PageResult[domain.User]{}, err
	}
	if result.Items == nil {
		result.Items = []domain.User{}
	}
	observability.RecordRepositoryOperation(ctx, "users", "list_page", "success")
	return result, nil
}
