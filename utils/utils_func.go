package utils

import (
	"crypto/rand"
	"fmt"
	"os"

	"golang.org/x/crypto/argon2"

	"github.com/gamio/venue-booking/logger"
)

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Println("WARNING: JWT_SECRET environment variable not set.")
		return []byte("default-insecure-secret-only-for-development")
	}
	return []byte(secret)
}

// GenerateSecureOTP returns a 6-digit OTP using crypto/rand.
func GenerateSecureOTP() string {
	const otpChars = "0123456789"
	bytes := make([]byte, 6)
	if _, err := rand.Read(bytes); err != nil {
		logger.ErrorLogger.Errorf("Error generating secure OTP: %v", err)
		return "000000"
	}
	for i := range bytes {
		bytes[i] = otpChars[bytes[i]%byte(len(otpChars))]
	}
	return string(bytes)
}

// HashOTP hashes an OTP with argon2id, salted with the owning email so two
// users never share a stored hash for the same code.
func HashOTP(otp, email string) string {
	hashed := argon2.IDKey([]byte(otp), []byte(email), 1, 64*1024, 4, 32)
	return fmt.Sprintf("%x", hashed)
}
