package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"hostelportal/internal/auth"
	apperrors "hostelportal/internal/errors"
	"hostelportal/internal/model"
	"hostelportal/internal/repository"
)

// RoomService lists rooms as seen by the caller.
type RoomService interface {
	ListRooms(ctx context.Context, claims *auth.Claims) ([]model.Room, error)
}

type roomService struct {
	rooms repository.RoomRepository
	users repository.UserRepository
}

// NewRoomService builds a RoomService.
func NewRoomService(rooms repository.RoomRepository, users repository.UserRepository) RoomService {
	return &roomService{rooms: rooms, users: users}
}

// ListRooms returns every room to staff and only the assigned room to a
// student.
func (s *roomService) ListRooms(ctx context.Context, claims *auth.Claims) ([]model.Room, error) {
	switch claims.Role {
	case model.RoleAdmin, model.RoleWarden:
		return s.rooms.List(ctx)
	case model.RoleStudent:
		user, err := s.users.FindByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrUserNotFound
			}
			return nil, fmt.Errorf("find user: %w", err)
		}
		if user.RoomID == nil {
			return []model.Room{}, nil
		}
		room, err := s.rooms.FindByID(ctx, *user.RoomID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return []model.Room{}, nil
			}
			return nil, fmt.Errorf("find room: %w", err)
		}
		return []model.Room{*room}, nil
	default:
		return nil, apperrors.ErrForbidden
	}
}
