// Package shared_utils holds the OTP store: an explicit keyed store with
// insert-with-TTL, lookup and delete-on-use semantics backed by Redis, in
// place of any process-wide map.
package shared_utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	redisclient "github.com/gamio/venue-booking/config/redis"
	"github.com/gamio/venue-booking/logger"
	"github.com/gamio/venue-booking/utils"
)

const (
	OTP_EXPIRATION_MINUTES = 10

	LOGIN_OTP_PREFIX = "login_otp:"
)

// ErrOTPNotFound is returned when an OTP is missing, expired or already used.
var ErrOTPNotFound = errors.New("otp not found or expired")

func loginOTPKey(email string) string {
	return LOGIN_OTP_PREFIX + email
}

// StoreLoginOTP stores the argon2 hash of otp for email with a TTL.
func StoreLoginOTP(ctx context.Context, email, otp string) error {
	rdb, err := redisclient.GetRedisClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to init redis client: %w", err)
	}

	hashed := utils.HashOTP(otp, email)
	if err := rdb.Set(ctx, loginOTPKey(email), hashed, OTP_EXPIRATION_MINUTES*time.Minute).Err(); err != nil {
		logger.ErrorLogger.Errorf("Failed to store OTP for %s: %v", email, err)
		return fmt.Errorf("failed to store OTP: %w", err)
	}
	return nil
}

// ConsumeLoginOTP verifies otp for email and deletes it in the same call,
// so a code can never be used twice.
func ConsumeLoginOTP(ctx context.Context, email, otp string) error {
	rdb, err := redisclient.GetRedisClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to init redis client: %w", err)
	}

	stored, err := rdb.GetDel(ctx, loginOTPKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return ErrOTPNotFound
	}
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to read OTP for %s: %v", email, err)
		return fmt.Errorf("failed to read OTP: %w", err)
	}

	if stored != utils.HashOTP(otp, email) {
		return ErrOTPNotFound
	}
	return nil
}
