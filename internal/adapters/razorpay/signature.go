package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/HysterChat/pinco-clone/internal/domain"
)

// Sign считает hex(HMAC-SHA256("order_id|payment_id", secret)).
func Sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPaymentSignature сравнивает подпись из виджета с ожидаемой.
func (c *Client) VerifyPaymentSignature(orderID, paymentID, signature string) error {
	if c.cfg.KeySecret == "" {
		return ErrNotConfigured
	}
	expected := Sign(orderID, paymentID, c.cfg.KeySecret)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return domain.ErrInvalidSignature
	}
	return nil
}
