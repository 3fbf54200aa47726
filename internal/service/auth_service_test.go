package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"hostelportal/internal/auth"
	apperrors "hostelportal/internal/errors"
	"hostelportal/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenStore) StoreOTP(ctx context.Context, email, otp string, ttl time.Duration) error {
	args := m.Called(ctx, email, otp, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) ConsumeOTP(ctx context.Context, email, otp string) error {
	args := m.Called(ctx, email, otp)
	return args.Error(0)
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "Warden@Example.com ",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "warden@example.com").Return(&model.User{
					ID:           3,
					Email:        "warden@example.com",
					Role:         model.RoleWarden,
					PasswordHash: hashed(t, "password123"),
				}, nil)
			},
		},
		{
			name:     "wrong password",
			email:    "warden@example.com",
			password: "nope",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "warden@example.com").Return(&model.User{
					Email:        "warden@example.com",
					PasswordHash: hashed(t, "password123"),
				}, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "user not found",
			email:    "notfound@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)
			jwtService := auth.NewJWTService("test-secret")

			svc := NewAuthService(mockRepo, jwtService, new(MockTokenStore), nil)
			token, user, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Empty(t, token)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				claims, err := jwtService.ValidateToken(token)
				require.NoError(t, err)
				assert.Equal(t, user.ID, claims.UserID)
				assert.Equal(t, model.RoleWarden, claims.Role)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_LoginDatabaseError(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, errors.New("connection refused"))

	svc := NewAuthService(mockRepo, auth.NewJWTService("s"), new(MockTokenStore), nil)
	_, _, err := svc.Login(context.Background(), "a@x.com", "pw")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthService_Logout(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	_, token, err := jwtService.GenerateAccessToken(&model.User{ID: 1, Role: model.RoleAdmin})
	require.NoError(t, err)
	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)

	mockStore := new(MockTokenStore)
	mockStore.On("BlacklistAccessToken", mock.Anything, claims.ID, mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 0 && ttl <= auth.AccessTokenExpiry
	})).Return(nil)

	svc := NewAuthService(new(MockUserRepository), jwtService, mockStore, nil)
	require.NoError(t, svc.Logout(context.Background(), claims))

	mockStore.AssertExpectations(t)
}

func TestAuthService_ForgotPassword(t *testing.T) {
	t.Run("known email stores otp", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockStore := new(MockTokenStore)
		mockRepo.On("FindByEmail", mock.Anything, "s@x.com").Return(&model.User{ID: 5, Email: "s@x.com"}, nil)
		mockStore.On("StoreOTP", mock.Anything, "s@x.com", "042042", auth.OTPExpiry).Return(nil)

		svc := NewAuthService(mockRepo, auth.NewJWTService("s"), mockStore, nil).(*authService)
		svc.newOTP = func() (string, error) { return "042042", nil }

		require.NoError(t, svc.ForgotPassword(context.Background(), "s@x.com"))
		mockStore.AssertExpectations(t)
	})

	t.Run("unknown email succeeds without otp", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockStore := new(MockTokenStore)
		mockRepo.On("FindByEmail", mock.Anything, "ghost@x.com").Return(nil, gorm.ErrRecordNotFound)

		svc := NewAuthService(mockRepo, auth.NewJWTService("s"), mockStore, nil)

		require.NoError(t, svc.ForgotPassword(context.Background(), "ghost@x.com"))
		mockStore.AssertNotCalled(t, "StoreOTP", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 50; i++ {
		otp, err := generateOTP()
		require.NoError(t, err)
		assert.Len(t, otp, 6)
		assert.Regexp(t, `^[0-9]{6}$`, otp)
	}
}

func TestAuthService_ResetPassword(t *testing.T) {
	t.Run("valid otp updates hash", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockStore := new(MockTokenStore)
		mockStore.On("ConsumeOTP", mock.Anything, "s@x.com", "123456").Return(nil)
		mockRepo.On("FindByEmail", mock.Anything, "s@x.com").Return(&model.User{ID: 5, Email: "s@x.com", PasswordHash: "old"}, nil)
		mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("newpass1")) == nil
		})).Return(nil)

		svc := NewAuthService(mockRepo, auth.NewJWTService("s"), mockStore, nil)

		require.NoError(t, svc.ResetPassword(context.Background(), "s@x.com", "123456", "newpass1"))
		mockRepo.AssertExpectations(t)
	})

	t.Run("bad otp", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockStore := new(MockTokenStore)
		mockStore.On("ConsumeOTP", mock.Anything, "s@x.com", "000000").Return(auth.ErrInvalidOTP)

		svc := NewAuthService(mockRepo, auth.NewJWTService("s"), mockStore, nil)

		err := svc.ResetPassword(context.Background(), "s@x.com", "000000", "newpass1")
		assert.ErrorIs(t, err, apperrors.ErrInvalidOTP)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestAuthService_Me(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, uint(9)).Return(nil, gorm.ErrRecordNotFound)

	svc := NewAuthService(mockRepo, auth.NewJWTService("s"), new(MockTokenStore), nil)
	_, err := svc.Me(context.Background(), &auth.Claims{UserID: 9})

	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
