package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"hostelportal/internal/auth"
	apperrors "hostelportal/internal/errors"
	"hostelportal/internal/model"
	"hostelportal/internal/repository"
)

const bcryptCost = 10

// AuthService handles authentication operations.
type AuthService interface {
	Login(ctx context.Context, email, password string) (accessToken string, user *model.User, err error)
	Logout(ctx context.Context, claims *auth.Claims) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, otp, password string) error
	Me(ctx context.Context, claims *auth.Claims) (*model.User, error)
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	logger     *zap.Logger
	newOTP     func() (string, error)
	now        func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface, logger *zap.Logger) AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
		logger:     logger,
		newOTP:     generateOTP,
		now:        time.Now,
	}
}

// Login checks the password and issues an access token.
func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, fmt.Errorf("find user: %w", err)
		}
		return "", nil, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperrors.ErrInvalidCredentials
	}

	_, token, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("generate access token: %w", err)
	}
	return token, user, nil
}

// Logout revokes the access token for the rest of its lifetime.
func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if err := s.tokenStore.BlacklistAccessToken(ctx, claims.ID, claims.Remaining(s.now())); err != nil {
		return err
	}
	return nil
}

// ForgotPassword issues a reset code. Unknown addresses succeed silently so
// the endpoint cannot be used to probe for accounts.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if _, err := s.userRepo.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Info("password reset requested for unknown email", zap.String("email", email))
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}

	otp, err := s.newOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	if err := s.tokenStore.StoreOTP(ctx, email, otp, auth.OTPExpiry); err != nil {
		return err
	}

	// No mail transport; the code is delivered through the log.
	s.logger.Info("password reset code issued",
		zap.String("email", email),
		zap.String("otp", otp),
		zap.Duration("expires_in", auth.OTPExpiry))
	return nil
}

// ResetPassword replaces the password when otp matches the issued code.
func (s *authService) ResetPassword(ctx context.Context, email, otp, password string) error {
	email = normalizeEmail(email)
	if err := s.tokenStore.ConsumeOTP(ctx, email, otp); err != nil {
		if errors.Is(err, auth.ErrInvalidOTP) {
			return apperrors.ErrInvalidOTP
		}
		return err
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvalidOTP
		}
		return fmt.Errorf("find user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// Me loads the user a token was issued to.
func (s *authService) Me(ctx context.Context, claims *auth.Claims) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
