// Package shipping is a thin JSON-over-HTTP client for the Shiprocket
// carrier API. The carrier publishes no Go SDK, so this speaks its REST
// endpoints directly: login for a bearer token, then create an adhoc
// shipment to get an AWB code, courier and label.
package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-faster/errors"
)

// Carrier is what the handlers depend on, so tests can stub the network.
type Carrier interface {
	CreateShipment(ctx context.Context, req ShipmentRequest) (*Shipment, error)
}

// ShipmentRequest carries the order fields the carrier needs.
type ShipmentRequest struct {
	OrderNumber   string  `json:"order_id"`
	PickupName    string  `json:"pickup_location"`
	Name          string  `json:"billing_customer_name"`
	Phone         string  `json:"billing_phone"`
	Address       string  `json:"billing_address"`
	City          string  `json:"billing_city"`
	State         string  `json:"billing_state"`
	Pincode       string  `json:"billing_pincode"`
	PaymentMethod string  `json:"payment_method"` // "Prepaid" or "COD"
	SubTotal      float64 `json:"sub_total"`
	WeightKg      float64 `json:"weight"`
}

// Shipment is the carrier's answer: the AWB code doubles as tracking id.
type Shipment struct {
	AWBCode     string    `json:"awb_code"`
	CourierName string    `json:"courier_name"`
	LabelURL    string    `json:"label_url"`
	PickupDate  time.Time `json:"pickup_scheduled_date"`
}

// Client talks to the live carrier. The auth token is cached and renewed
// ahead of its 10-day expiry.
type Client struct {
	baseURL  string
	email    string
	password string
	http     *http.Client

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

func NewClient(baseURL, email, password string) *Client {
	return &Client{
		baseURL:  baseURL,
		email:    email,
		password: password,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) authToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExp) {
		return c.token, nil
	}

	payload, _ := json.Marshal(map[string]string{
		"email":    c.email,
		"password": c.password,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "shiprocket login")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("shiprocket login: status %d", resp.StatusCode)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", errors.Wrap(err, "shiprocket login decode")
	}
	if body.Token == "" {
		return "", errors.New("shiprocket login: empty token")
	}

	c.token = body.Token
	c.tokenExp = time.Now().Add(9 * 24 * time.Hour)
	return c.token, nil
}

// CreateShipment books a shipment and AWB for one order.
func (c *Client) CreateShipment(ctx context.Context, shipReq ShipmentRequest) (*Shipment, error) {
	token, err := c.authToken(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(shipReq)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/shipments/create/forward-shipment", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "shiprocket create shipment")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, errors.Errorf("shiprocket create shipment: status %d", resp.StatusCode)
	}

	var body struct {
		Payload struct {
			AWBCode      string `json:"awb_code"`
			CourierName  string `json:"courier_name"`
			LabelURL     string `json:"label_url"`
			PickupedDate string `json:"pickup_scheduled_date"`
		} `json:"payload"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "shiprocket create shipment decode")
	}
	if body.Payload.AWBCode == "" {
		return nil, errors.New("shiprocket create shipment: no AWB assigned")
	}

	out := &Shipment{
		AWBCode:     body.Payload.AWBCode,
		CourierName: body.Payload.CourierName,
		LabelURL:    body.Payload.LabelURL,
	}
	if t, err := time.Parse("2006-01-02 15:04:05", body.Payload.PickupedDate); err == nil {
		out.PickupDate = t
	}
	return out, nil
}

// PaymentMethodFor maps our payment method vocabulary to the carrier's.
func PaymentMethodFor(method string) string {
	if method == "cod" {
		return "COD"
	}
	return "Prepaid"
}
