package repository

import (
	"context"
	"errors"

	"github.com/buran83/makechat/internal/domain"
	"github.com/buran83/makechat/internal/observability"

	"gorm.io/gorm"
)

var ErrRoomNotFound = errors.New("room not found")

type RoomRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Room, error)
	Create(ctx context.Context, room *domain.Room) error
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	DeleteByID(ctx context.Context, id uint) error
	ListPage(ctx context.Context, visibleOnly bool, req PageRequest, defaultLimit int) (PageResult[domain.Room], error)
}

type GormRoomRepository struct{ db *gorm.DB }

func NewRoomRepository(db *gorm.DB) RoomRepository { return &GormRoomRepository{db: db} }

func (r *GormRoomRepository) FindByID(ctx context.Context, id uint) (*domain.Room, error) {
	var room domain.Room
	err := r.db.WithContext(ctx).Preload("Members").First(&room, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "rooms", "find_by_id", "not_found")
			return nil, ErrRoomNotFound
		}
		observability.RecordRepositoryOperation(ctx, "rooms", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "rooms", "find_by_id", "success")
	return &room, nil
}

// Create persists the room together with its member list in one transaction.
// Name uniqueness is enforced by the store's unique index; the resulting
// error is relayed to callers unmodified.
func (r *GormRoomRepository) Create(ctx context.Context, room *domain.Room) error {
	if err := r.db.WithContext(ctx).Create(room).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "rooms", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "rooms", "create", "success")
	return nil
}

func (r *GormRoomRepository) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&domain.Room{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "rooms", "update_fields", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "rooms", "update_fields", "not_found")
		return ErrRoomNotFound
	}
	observability.RecordRepositoryOperation(ctx, "rooms", "update_fields", "success")
	return nil
}

func (r *GormRoomRepository) DeleteByID(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", id).Delete(&domain.Member{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Room{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRoomNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			observability.RecordRepositoryOperation(ctx, "rooms", "delete_by_id", "not_found")
		} else {
			observability.RecordRepositoryOperation(ctx, "rooms", "delete_by_id", "error")
		}
		return err
	}
	observability.RecordRepositoryOperation(ctx, "rooms", "delete_by_id", "success")
	return nil
}

func (r *GormRoomRepository) ListPage(ctx context.Context, visibleOnly bool, req PageRequest, defaultLimit int) (PageResult[domain.Room], error) {
	normalized := normalizePageRequest(req, defaultLimit)
	result := PageResult[domain.Room]{Offset: normalized.Offset, Limit: normalized.Limit}

	base := r.db.WithContext(ctx).Model(&domain.Room{})
	if visibleOnly {
		base = base.Where("is_visible = ?", true)
	}
	if err := base.Count(&result.Total).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "rooms", "list_page", "error")
		return PageResult[domain.Room]{}, err
	}
	err := base.Preload("Members").Order("id").
		Offset(normalized.Offset).Limit(normalized.Limit).
		Find(&result.Items).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "rooms", "list_page", "error")
		return PageResult[domain.Room]{}, err
	}
	if result.Items == nil {
		result.Items = []domain.Room{}
	}
	observability.RecordRepositoryOperation(ctx, "rooms", "list_page", "success")
	return result, nil
}
