package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"hostelportal/internal/config"
	"hostelportal/internal/logging"
	"hostelportal/internal/model"
	"hostelportal/internal/repository"
)

type seedUser struct {
	Name  string
	Email string
	Role  model.Role
	Room  string
}

var seedRooms = []model.Room{
	{Number: "A-101", Block: "A", Capacity: 2, Occupied: 1},
	{Number: "A-102", Block: "A", Capacity: 2},
	{Number: "B-201", Block: "B", Capacity: 3},
}

var seedUsers = []seedUser{
	{Name: "Administrator", Email: "admin@hostel.local", Role: model.RoleAdmin},
	{Name: "Warden", Email: "warden@hostel.local", Role: model.RoleWarden},
	{Name: "Student", Email: "student@hostel.local", Role: model.RoleStudent, Room: "A-101"},
}

func newSeedCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the default rooms and one user per role",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return fmt.Errorf("logger init: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			gormDB, err := openDB(cfg, logger, false)
			if err != nil {
				return err
			}
			return seed(cmd.Context(), gormDB, password, logger)
		},
	}
	cmd.Flags().StringVar(&password, "password", "password123", "password given to every seeded user")
	return cmd
}

// seed creates missing rooms and users. Existing records are left untouched.
func seed(ctx context.Context, gormDB *gorm.DB, password string, logger *zap.Logger) error {
	roomRepo := repository.NewRoomRepository(gormDB)
	userRepo := repository.NewUserRepository(gormDB)
	feedbackRepo := repository.NewFeedbackRepository(gormDB)

	roomIDs := make(map[string]uint, len(seedRooms))
	for i := range seedRooms {
		room, err := roomRepo.FindByNumberOrCreate(ctx, &seedRooms[i])
		if err != nil {
			return fmt.Errorf("seed room %s: %w", seedRooms[i].Number, err)
		}
		roomIDs[room.Number] = room.ID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	created := 0
	for _, su := range seedUsers {
		_, err := userRepo.FindByEmail(ctx, su.Email)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check user %s: %w", su.Email, err)
		}

		user := &model.User{Name: su.Name, Email: su.Email, Role: su.Role, PasswordHash: string(hash)}
		if id, ok := roomIDs[su.Room]; ok {
			user.RoomID = &id
		}
		if err := userRepo.Create(ctx, user); err != nil {
			return fmt.Errorf("create user %s: %w", su.Email, err)
		}
		created++

		if user.Role == model.RoleStudent {
			welcome := &model.Feedback{
				StudentID: user.ID,
				Subject:   "Wi-Fi in block A",
				Message:   "The connection drops every evening.",
				Status:    model.FeedbackOpen,
			}
			if err := feedbackRepo.Create(ctx, welcome); err != nil {
				return fmt.Errorf("create feedback for %s: %w", su.Email, err)
			}
		}
	}

	logger.Info("seed completed", zap.Int("rooms", len(roomIDs)), zap.Int("users_created", created))
	return nil
}
