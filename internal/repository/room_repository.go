package repository

import (
	"context"

	"gorm.io/gorm"

	"hostelportal/internal/model"
)

// RoomRepository defines persistence operations for rooms.
type RoomRepository interface {
	FindByNumberOrCreate(ctx context.Context, room *model.Room) (*model.Room, error)
	FindByID(ctx context.Context, id uint) (*model.Room, error)
	List(ctx context.Context) ([]model.Room, error)
}

type roomRepository struct {
	db *gorm.DB
}

// NewRoomRepository builds a GORM-backed room repository.
func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepository{db: db}
}

// FindByNumberOrCreate returns the room with room.Number, creating it from
// room when it does not exist yet.
func (r *roomRepository) FindByNumberOrCreate(ctx context.Context, room *model.Room) (*model.Room, error) {
	var existing model.Room
	err := r.db.WithContext(ctx).
		Where(model.Room{Number: room.Number}).
		Attrs(model.Room{Block: room.Block, Capacity: room.Capacity, Occupied: room.Occupied, WardenID: room.WardenID}).
		FirstOrCreate(&existing).Error
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *roomRepository) FindByID(ctx context.Context, id uint) (*model.Room, error) {
	var room model.Room
	if err := r.db.WithContext(ctx).First(&room, id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepository) List(ctx context.Context) ([]model.Room, error) {
	var rooms []model.Room
	if err := r.db.WithContext(ctx).Order("block, number").Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}
