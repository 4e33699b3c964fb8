// Package payments bridges the Razorpay gateway: creating gateway orders
// for checkout, verifying the checkout callback signature, and issuing
// refunds when a return reaches the refunded state.
package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/go-faster/errors"
	razorpay "github.com/razorpay/razorpay-go"
)

// Gateway is what the handlers depend on, so tests can stub the network.
type Gateway interface {
	CreateOrder(amountRupees float64, receipt string) (gatewayOrderID string, err error)
	VerifySignature(gatewayOrderID, paymentID, signature string) bool
	Refund(paymentID string, amountRupees float64, note string) (refundID string, err error)
}

// Client is the live Razorpay-backed Gateway.
type Client struct {
	rz     *razorpay.Client
	secret string
}

func NewClient(keyID, keySecret string) *Client {
	return &Client{
		rz:     razorpay.NewClient(keyID, keySecret),
		secret: keySecret,
	}
}

// CreateOrder registers a gateway order. Razorpay amounts are in paise.
func (c *Client) CreateOrder(amountRupees float64, receipt string) (string, error) {
	data := map[string]interface{}{
		"amount":   int64(amountRupees * 100),
		"currency": "INR",
		"receipt":  receipt,
	}
	body, err := c.rz.Order.Create(data, nil)
	if err != nil {
		return "", errors.Wrap(err, "razorpay order create")
	}
	id, ok := body["id"].(string)
	if !ok {
		return "", errors.New("razorpay response missing order id")
	}
	return id, nil
}

// VerifySignature checks the checkout callback per the gateway contract:
// the signature is HMAC-SHA256 over "<orderID>|<paymentID>" keyed with the
// API secret.
func (c *Client) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	return VerifySignature(c.secret, gatewayOrderID, paymentID, signature)
}

// VerifySignature is the pure form of the callback check.
func VerifySignature(secret, gatewayOrderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s|%s", gatewayOrderID, paymentID)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Refund issues a (full or partial) refund against a captured payment.
func (c *Client) Refund(paymentID string, amountRupees float64, note string) (string, error) {
	data := map[string]interface{}{
		"notes": map[string]interface{}{"reason": note},
	}
	body, err := c.rz.Payment.Refund(paymentID, int(amountRupees*100), data, nil)
	if err != nil {
		return "", errors.Wrap(err, "razorpay refund")
	}
	id, ok := body["id"].(string)
	if !ok {
		return "", errors.New("razorpay response missing refund id")
	}
	return id, nil
}
