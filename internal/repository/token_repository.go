package repository

import (
	"context"
	"errors"

	"github.com/buran83/makechat/internal/domain"
	"github.com/buran83/makechat/internal/observability"

	"gorm.io/gorm"
)

var ErrTokenNotFound = errors.New("token not found")

type TokenRepository interface {
	Create(ctx context.Context, token *domain.Token) error
	FindByValue(ctx context.Context, value string) (*domain.Token, error)
	ExistsByValue(ctx context.Context, value string) (bool, error)
	ListPageByUser(ctx context.Context, userID uint, req PageRequest, defaultLimit int) (PageResult[domain.Token], error)
	DeleteByIDForUser(ctx context.Context, userID, tokenID uint) error
}

type GormTokenRepository struct{ db *gorm.DB }

func NewTokenRepository(db *gorm.DB) TokenRepository { return &GormTokenRepository{db: db} }

func (r *GormTokenRepository) Create(ctx context.Context, token *domain.Token) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "tokens", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "tokens", "create", "success")
	return nil
}

func (r *GormTokenRepository) FindByValue(ctx context.Context, value string) (*domain.Token, error) {
	var t domain.Token
	err := r.db.WithContext(ctx).Where("value = ?", value).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "tokens", "find_by_value", "not_found")
			return nil, ErrTokenNotFound
		}
		observability.RecordRepositoryOperation(ctx, "tokens", "find_by_value", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "tokens", "find_by_value", "success")
	return &t, nil
}

func (r *GormTokenRepository) ExistsByValue(ctx context.Context, value string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Token{}).Where("value = ?", value).Count(&count).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "tokens", "exists_by_value", "error")
		return false, err
	}
	observability.RecordRepositoryOperation(ctx, "tokens", "exists_by_value", "success")
	return count > 0, nil
}

func (r *GormTokenRepository) ListPageByUser(ctx context.Context, userID uint, req PageRequest, defaultLimit int) (PageResult[domain.Token], error) {
	normalized := normalizePageRequest(req, defaultLimit)
	result := PageResult[domain.Token]{Offset: normalized.Offset, Limit: normalized.Limit}

	base := r.db.WithContext(ctx).Model(&domain.Token{}).Where("user_id = ?", userID)
	if err := base.Count(&result.Total).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "tokens", "list_page_by_user", "error")
		return PageResult[domain.Token]{}, err
	}
	err := base.Order("id").Offset(normalized.Offset).Limit(normalized.Limit).Find(&result.Items).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "tokens", "list_page_by_user", "error")
		return PageResult[domain.Token]{}, err
	}
	if result.Items == nil {
		result.Items = []domain.Token{}
	}
	observability.RecordRepositoryOperation(ctx, "tokens", "list_page_by_user", "success")
	return result, nil
}

func (r *GormTokenRepository) DeleteByIDForUser(ctx context.Context, userID, tokenID uint) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, tokenID).Delete(&domain.Token{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "tokens", "delete_by_id_for_user", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "tokens", "delete_by_id_for_user", "not_found")
		return ErrTokenNotFound
	}
	observability.RecordRepositoryOperation(ctx, "tokens", "delete_by_id_for_user", "success")
	return nil
}
