package service

import (
	"context"
	"errors"

	"github.com/buran83/makechat/internal/domain"
	"github.com/buran83/makechat/internal/repository"
)

var (
	ErrNotOwner        = errors.New("not owner of this room")
	ErrNothingToUpdate = errors.New("nothing to update")
)

type RoomUpdate struct {
	Name      *string
	IsVisible *bool
	IsOpen    *bool
}

type RoomService struct {
	rooms repository.RoomRepository
}

func NewRoomService(rooms repository.RoomRepository) *RoomService {
	return &RoomService{rooms: rooms}
}

// ListRooms pages the room collection. Admins see every room; everyone else
// sees only visible ones.
func (s *RoomService) ListRooms(ctx context.Context, user *domain.User, req repository.PageRequest, defaultLimit int) (repository.PageResult[domain.Room], error) {
	return s.rooms.ListPage(ctx, !user.IsSuperuser, req, defaultLimit)
}

// CreateRoom persists a room owned by the creator. Duplicate-name errors
// from the store are relayed unmodified.
func (s *RoomService) CreateRoom(ctx context.Context, creator *domain.User, name string, isOpen, isVisible bool) (*domain.Room, error) {
	room := &domain.Room{
		Name:      name,
		IsOpen:    isOpen,
		IsVisible: isVisible,
		Members:   []domain.Member{{UserID: creator.ID, Role: domain.RoleOwner}},
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// UpdateRoom applies a partial update on behalf of the user, who must be a
// superuser or hold the owner role in the room.
func (s *RoomService) UpdateRoom(ctx context.Context, user *domain.User, roomID uint, update RoomUpdate) (*domain.Room, error) {
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !user.IsSuperuser && !room.OwnedBy(user.ID) {
		return nil, ErrNotOwner
	}

	fields := map[string]any{}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.IsVisible != nil {
		fields["is_visible"] = *update.IsVisible
	}
	if update.IsOpen != nil {
		fields["is_open"] = *update.IsOpen
	}
	if len(fields) == 0 {
		return nil, ErrNothingToUpdate
	}
	if err := s.rooms.UpdateFields(ctx, roomID, fields); err != nil {
		return nil, err
	}
	return s.rooms.FindByID(ctx, roomID)
}

// DeleteRoom removes the room; only superusers and owners may do so.
func (s *RoomService) DeleteRoom(ctx context.Context, user *domain.User, roomID uint) error {
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return err
	}
	if !user.IsSuperuser && !room.OwnedBy(user.ID) {
		return ErrNotOwner
	}
	return s.rooms.DeleteByID(ctx, roomID)
}
