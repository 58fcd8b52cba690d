package auth_controller

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/gamio/venue-booking/logger"
	"github.com/gamio/venue-booking/utils"
	"github.com/gamio/venue-booking/utils/mail"
	"github.com/gamio/venue-booking/utils/shared_utils"
)

const tokenTTL = 24 * time.Hour

// AuthController handles passwordless login: a one-time code mailed to the
// user, exchanged for a signed token.
type AuthController struct {
	mailer mail.Mailer
}

// NewAuthController creates an auth controller.
func NewAuthController(mailer mail.Mailer) *AuthController {
	return &AuthController{mailer: mailer}
}

// RequestOTPRequest is the payload for requesting a login code.
type RequestOTPRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username"`
}

// RequestOTP generates a one-time code, stores its hash with a short TTL
// and mails the code to the address. The response never reveals whether
// delivery succeeded beyond accepting the request.
func (ac *AuthController) RequestOTP(c *gin.Context) {
	var req RequestOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	otp := utils.GenerateSecureOTP()
	if err := shared_utils.StoreLoginOTP(c.Request.Context(), email, otp); err != nil {
		logger.ErrorLogger.Errorf("Failed to store login OTP for %s: %v", email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate login code"})
		return
	}

	go func() {
		body := fmt.Sprintf("Your login code is %s. It expires in %d minutes.", otp, shared_utils.OTP_EXPIRATION_MINUTES)
		if err := ac.mailer.Send(email, "Your login code", body); err != nil {
			logger.WarnLogger.Warnf("Failed to mail login OTP to %s: %v", email, err)
		}
	}()

	logger.InfoLogger.Infof("Login OTP issued for %s", email)
	c.JSON(http.StatusOK, gin.H{"message": "Login code sent"})
}

// VerifyOTPRequest is the payload for exchanging a login code for a token.
type VerifyOTPRequest struct {
	Email    string `json:"email" binding:"required,email"`
	OTP      string `json:"otp" binding:"required"`
	Username string `json:"username"`
}

// VerifyOTP checks the one-time code and issues a signed token carrying the
// identity claims. Codes are single use.
func (ac *AuthController) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if err := shared_utils.ConsumeLoginOTP(c.Request.Context(), email, req.OTP); err != nil {
		if errors.Is(err, shared_utils.ErrOTPNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired login code"})
			return
		}
		logger.ErrorLogger.Errorf("Failed to verify login OTP for %s: %v", email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify login code"})
		return
	}

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":      email,
		"email":    email,
		"username": req.Username,
		"is_admin": isAdminEmail(email),
		"iat":      now.Unix(),
		"exp":      now.Add(tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(utils.GetJWTSecret())
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to sign token for %s: %v", email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	logger.InfoLogger.Infof("Login succeeded for %s", email)
	c.JSON(http.StatusOK, gin.H{"token": token, "expires_in": int(tokenTTL.Seconds())})
}

// isAdminEmail checks the address against the comma-separated ADMIN_EMAILS
// allow list.
func isAdminEmail(email string) bool {
	for _, admin := range strings.Split(os.Getenv("ADMIN_EMAILS"), ",") {
		if admin != "" && strings.EqualFold(strings.TrimSpace(admin), email) {
			return true
		}
	}
	return false
}
