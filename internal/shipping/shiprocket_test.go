package shipping

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func carrierStub(t *testing.T, loginCalls *int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			*loginCalls++
			var creds map[string]string
			if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
				t.Errorf("bad login body: %v", err)
			}
			if creds["email"] != "ops@example.in" {
				t.Errorf("email = %q", creds["email"])
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-123"})
		case "/shipments/create/forward-shipment":
			if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
				t.Errorf("Authorization = %q", got)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"payload": map[string]any{
					"awb_code":              "AWB42",
					"courier_name":          "Delhivery",
					"label_url":             "https://labels/l.pdf",
					"pickup_scheduled_date": "2026-03-16 10:00:00",
				},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestCreateShipment(t *testing.T) {
	var loginCalls int
	srv := carrierStub(t, &loginCalls)
	defer srv.Close()

	client := NewClient(srv.URL, "ops@example.in", "secret")

	ship, err := client.CreateShipment(context.Background(), ShipmentRequest{
		OrderNumber:   "ORD-TEST1",
		Name:          "Asha",
		PaymentMethod: "Prepaid",
	})
	if err != nil {
		t.Fatalf("CreateShipment: %v", err)
	}
	if ship.AWBCode != "AWB42" || ship.CourierName != "Delhivery" {
		t.Errorf("unexpected shipment: %+v", ship)
	}
	if ship.PickupDate.IsZero() {
		t.Error("pickup date not parsed")
	}

	// Second shipment reuses the cached token.
	if _, err := client.CreateShipment(context.Background(), ShipmentRequest{OrderNumber: "ORD-TEST2"}); err != nil {
		t.Fatalf("second CreateShipment: %v", err)
	}
	if loginCalls != 1 {
		t.Errorf("loginCalls = %d, want 1 (token should be cached)", loginCalls)
	}
}

func TestCreateShipment_NoAWB(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"payload": map[string]any{}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "ops@example.in", "secret")
	if _, err := client.CreateShipment(context.Background(), ShipmentRequest{OrderNumber: "ORD-1"}); err == nil {
		t.Error("expected error when carrier assigns no AWB")
	}
}

func TestPaymentMethodFor(t *testing.T) {
	if got := PaymentMethodFor("cod"); got != "COD" {
		t.Errorf("cod -> %q", got)
	}
	if got := PaymentMethodFor("razorpay"); got != "Prepaid" {
		t.Errorf("razorpay -> %q", got)
	}
}
