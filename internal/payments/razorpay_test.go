package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	const secret = "test_key_secret"

	t.Run("valid signature accepted", func(t *testing.T) {
		sig := sign(secret, "order_ABC123", "pay_XYZ789")
		if !VerifySignature(secret, "order_ABC123", "pay_XYZ789", sig) {
			t.Error("valid signature rejected")
		}
	})

	t.Run("tampered payment id rejected", func(t *testing.T) {
		sig := sign(secret, "order_ABC123", "pay_XYZ789")
		if VerifySignature(secret, "order_ABC123", "pay_FORGED", sig) {
			t.Error("forged payment id accepted")
		}
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		sig := sign("other_secret", "order_ABC123", "pay_XYZ789")
		if VerifySignature(secret, "order_ABC123", "pay_XYZ789", sig) {
			t.Error("signature from wrong secret accepted")
		}
	})

	t.Run("empty signature rejected", func(t *testing.T) {
		if VerifySignature(secret, "order_ABC123", "pay_XYZ789", "") {
			t.Error("empty signature accepted")
		}
	})
}
