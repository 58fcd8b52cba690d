package clients

import (
	"github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
)

// PaymentVerifier checks that a capture result presented by a client really
// came from the gateway. The capture flow itself lives entirely outside
// this service; only its signed outcome is ever inspected here.
type PaymentVerifier interface {
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
}

// RazorpayClient implements PaymentVerifier using the Razorpay SDK.
type RazorpayClient struct {
	Client    *razorpay.Client
	keySecret string
}

// NewRazorpayClient creates a RazorpayClient for the given key pair.
func NewRazorpayClient(keyID, keySecret string) *RazorpayClient {
	return &RazorpayClient{
		Client:    razorpay.NewClient(keyID, keySecret),
		keySecret: keySecret,
	}
}

// VerifyPaymentSignature checks the HMAC signature Razorpay attaches to a
// completed payment (order_id|payment_id signed with the key secret).
func (r *RazorpayClient) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	params := map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}
	return utils.VerifyPaymentSignature(params, signature, r.keySecret)
}

// NoopVerifier accepts every signature; used when no gateway credentials
// are configured (e.g. local development and tests).
type NoopVerifier struct{}

func (NoopVerifier) VerifyPaymentSignature(_, _, _ string) bool { return true }
