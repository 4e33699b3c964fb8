package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bazario/bazario-golang/internal/status"
	"github.com/gin-gonic/gin"
)

func TestNewOrderNumber(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		n := newOrderNumber()
		if !strings.HasPrefix(n, "ORD-") {
			t.Fatalf("order number %q missing prefix", n)
		}
		if len(n) != len("ORD-")+8 {
			t.Fatalf("order number %q has wrong length", n)
		}
		if n != strings.ToUpper(n) {
			t.Fatalf("order number %q not uppercase", n)
		}
		if seen[n] {
			t.Fatalf("order number %q repeated", n)
		}
		seen[n] = true
	}
}

func TestStatusLinesCoverNonInitialStatuses(t *testing.T) {
	for _, s := range status.OrderStatuses {
		if s == status.OrderPending {
			continue
		}
		if statusLines[s] == "" {
			t.Errorf("no customer-facing line for status %q", s)
		}
	}
}

func TestRespondTransitionError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing order", sql.ErrNoRows, http.StatusNotFound},
		{"illegal transition", status.ErrIllegalTransition, http.StatusUnprocessableEntity},
		{"missing shipment data", status.ErrShipmentDataNeeded, http.StatusUnprocessableEntity},
		{"unknown status", status.ErrUnknownStatus, http.StatusBadRequest},
		{"database failure", sql.ErrConnDone, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondTransitionError(c, tt.err)

			if w.Code != tt.want {
				t.Errorf("got status %d, want %d", w.Code, tt.want)
			}
		})
	}
}
