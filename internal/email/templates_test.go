package email

import (
	"strings"
	"testing"
)

func TestRenderOrderMail(t *testing.T) {
	t.Run("shipped order includes tracking", func(t *testing.T) {
		subject, body, err := RenderOrderMail(OrderMail{
			CustomerName: "Asha",
			OrderNumber:  "ORD-AB12CD34",
			Status:       "shipped",
			TrackingID:   "AWB998877",
			Carrier:      "Delhivery",
			Total:        1220,
		})
		if err != nil {
			t.Fatalf("RenderOrderMail: %v", err)
		}
		if !strings.Contains(subject, "ORD-AB12CD34") {
			t.Errorf("subject missing order number: %q", subject)
		}
		for _, want := range []string{"Asha", "shipped", "AWB998877", "Delhivery", "1220"} {
			if !strings.Contains(body, want) {
				t.Errorf("body missing %q", want)
			}
		}
	})

	t.Run("no tracking row when unshipped", func(t *testing.T) {
		_, body, err := RenderOrderMail(OrderMail{
			CustomerName: "Asha",
			OrderNumber:  "ORD-AB12CD34",
			Status:       "confirmed",
		})
		if err != nil {
			t.Fatalf("RenderOrderMail: %v", err)
		}
		if strings.Contains(body, "Tracking") {
			t.Error("tracking row should be omitted when empty")
		}
	})
}

func TestRenderReturnMail(t *testing.T) {
	_, body, err := RenderReturnMail(ReturnMail{
		CustomerName: "Ravi",
		OrderNumber:  "ORD-XY99ZZ11",
		Status:       "refunded",
		RefundAmount: 860,
	})
	if err != nil {
		t.Fatalf("RenderReturnMail: %v", err)
	}
	for _, want := range []string{"Ravi", "ORD-XY99ZZ11", "refunded", "860"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestRenderVerificationMail(t *testing.T) {
	subject, body, err := RenderVerificationMail("482913")
	if err != nil {
		t.Fatalf("RenderVerificationMail: %v", err)
	}
	if subject == "" {
		t.Error("empty subject")
	}
	if !strings.Contains(body, "482913") {
		t.Error("body missing verification code")
	}
}

func TestRenderEscapesHTML(t *testing.T) {
	_, body, err := RenderReturnMail(ReturnMail{
		CustomerName: "<script>alert(1)</script>",
		OrderNumber:  "ORD-1",
		Status:       "approved",
	})
	if err != nil {
		t.Fatalf("RenderReturnMail: %v", err)
	}
	if strings.Contains(body, "<script>") {
		t.Error("customer-controlled fields must be escaped")
	}
}
