package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	accessTokenKeyPrefix = "blacklist:access_token:"
	otpKeyPrefix         = "otp:"
	otpAttemptsKeyPrefix = "otp_attempts:"

	// OTPExpiry is how long a password reset code stays usable.
	OTPExpiry = 10 * time.Minute
	// MaxOTPAttempts is how many wrong guesses burn the outstanding reset code.
	MaxOTPAttempts = 5
)

// ErrInvalidOTP is returned when a reset code is missing, expired or wrong.
var ErrInvalidOTP = errors.New("invalid or expired otp")

// TokenStoreInterface defines the interface for token storage operations.
type TokenStoreInterface interface {
	BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error)
	StoreOTP(ctx context.Context, email, otp string, ttl time.Duration) error
	ConsumeOTP(ctx context.Context, email, otp string) error
}

// TokenStore keeps revoked token IDs and reset codes in Redis. Unlike the
// response cache it does not fail safe: an unreachable redis is an error.
type TokenStore struct {
	client *redis.Client
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client}
}

// BlacklistAccessToken adds an access token to the blacklist until it expires.
func (s *TokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, accessTokenKeyPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

// IsAccessTokenBlacklisted checks if an access token is blacklisted.
func (s *TokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, accessTokenKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}
	return n > 0, nil
}

// StoreOTP saves a reset code for email, replacing any earlier one and its
// failed attempt count.
func (s *TokenStore) StoreOTP(ctx context.Context, email, otp string, ttl time.Duration) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, otpKeyPrefix+email, otp, ttl)
		pipe.Del(ctx, otpAttemptsKeyPrefix+email)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	return nil
}

// ConsumeOTP checks the reset code for email and deletes it on a match.
// After MaxOTPAttempts wrong guesses the code is deleted and a new one has
// to be requested.
func (s *TokenStore) ConsumeOTP(ctx context.Context, email, otp string) error {
	key := otpKeyPrefix + email
	stored, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return ErrInvalidOTP
	}
	if err != nil {
		return fmt.Errorf("load otp: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(otp)) != 1 {
		if err := s.recordFailedOTP(ctx, email); err != nil {
			return err
		}
		return ErrInvalidOTP
	}
	n, err := s.client.Del(ctx, key, otpAttemptsKeyPrefix+email).Result()
	if err != nil {
		return fmt.Errorf("delete otp: %w", err)
	}
	if n == 0 {
		// consumed concurrently
		return ErrInvalidOTP
	}
	return nil
}

func (s *TokenStore) recordFailedOTP(ctx context.Context, email string) error {
	attemptsKey := otpAttemptsKeyPrefix + email
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, attemptsKey)
		pipe.Expire(ctx, attemptsKey, OTPExpiry)
		return nil
	})
	if err != nil {
		return fmt.Errorf("count otp attempt: %w", err)
	}
	if incr.Val() < MaxOTPAttempts {
		return nil
	}
	if err := s.client.Del(ctx, otpKeyPrefix+email, attemptsKey).Err(); err != nil {
		return fmt.Errorf("burn otp: %w", err)
	}
	return nil
}
