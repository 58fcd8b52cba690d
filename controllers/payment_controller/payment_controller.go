package payment_controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gamio/venue-booking/clients"
	"github.com/gamio/venue-booking/logger"
	"github.com/gamio/venue-booking/services/payments"
	"github.com/gamio/venue-booking/storage"
	"github.com/gamio/venue-booking/utils"
)

// PaymentController handles HTTP requests for the payment lifecycle of
// bookings. The capture flow lives at the gateway; these endpoints only
// record its outcome.
type PaymentController struct {
	tracker  *payments.Tracker
	verifier clients.PaymentVerifier
}

// NewPaymentController creates a payment controller.
func NewPaymentController(tracker *payments.Tracker, verifier clients.PaymentVerifier) *PaymentController {
	return &PaymentController{tracker: tracker, verifier: verifier}
}

// ConfirmPaymentRequest is the payload for recording a capture outcome.
// OrderID and Signature are optional gateway verification fields; when both
// are present the signature is checked before the booking is touched.
type ConfirmPaymentRequest struct {
	BookingID     uuid.UUID `json:"booking_id" binding:"required"`
	TransactionID string    `json:"transaction_id"`
	Amount        float64   `json:"amount"`
	OrderID       string    `json:"order_id"`
	Signature     string    `json:"signature"`
	Failed        bool      `json:"failed"`
}

// ConfirmPayment records a capture result for the requester's booking:
// Pending moves to Paid on success, or to Failed when the body flags the
// capture as failed. Any other starting state is a conflict.
func (pc *PaymentController) ConfirmPayment(c *gin.Context) {
	email, err := utils.GetEmailFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnLogger.Warnf("Invalid payment confirmation from %s: %v", email, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	if req.Failed {
		booking, err := pc.tracker.Fail(c.Request.Context(), req.BookingID, email)
		if err != nil {
			pc.renderError(c, req.BookingID, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"booking": booking})
		return
	}

	if req.TransactionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transaction_id is required"})
		return
	}
	if req.OrderID != "" || req.Signature != "" {
		if !pc.verifier.VerifyPaymentSignature(req.OrderID, req.TransactionID, req.Signature) {
			logger.WarnLogger.Warnf("Payment signature verification failed for booking %s", req.BookingID)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Payment signature verification failed"})
			return
		}
	}

	booking, err := pc.tracker.Confirm(c.Request.Context(), req.BookingID, req.TransactionID, req.Amount, email)
	if err != nil {
		pc.renderError(c, req.BookingID, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// RefundPaymentRequest is the payload for refunding a paid booking.
type RefundPaymentRequest struct {
	BookingID uuid.UUID `json:"booking_id" binding:"required"`
}

// RefundPayment moves a Paid booking to Refunded. Admin only; the booking
// keeps its slot regardless.
func (pc *PaymentController) RefundPayment(c *gin.Context) {
	var req RefundPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	booking, err := pc.tracker.Refund(c.Request.Context(), req.BookingID)
	if err != nil {
		pc.renderError(c, req.BookingID, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

func (pc *PaymentController) renderError(c *gin.Context, bookingID uuid.UUID, err error) {
	switch {
	case errors.Is(err, storage.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
	case errors.Is(err, payments.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only manage payments for your own bookings"})
	case errors.Is(err, storage.ErrInvalidPaymentState):
		c.JSON(http.StatusConflict, gin.H{"error": "Payment is not in a state that allows this transition"})
	default:
		logger.ErrorLogger.Errorf("Payment update for booking %s failed: %v", bookingID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update payment"})
	}
}
