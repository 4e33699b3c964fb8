package config

import "testing"

func TestTryRead(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := TryRead()
		if err != nil {
			t.Fatalf("TryRead: %v", err)
		}
		if cfg.HTTPAddr != ":8080" {
			t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
		}
		if cfg.PlatformFee != 20 {
			t.Errorf("PlatformFee = %v, want 20", cfg.PlatformFee)
		}
		if cfg.FreeShippingThreshold != 500 {
			t.Errorf("FreeShippingThreshold = %v, want 500", cfg.FreeShippingThreshold)
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("HTTP_ADDR", ":9090")
		t.Setenv("SHIPPING_FEE", "60")
		cfg, err := TryRead()
		if err != nil {
			t.Fatalf("TryRead: %v", err)
		}
		if cfg.HTTPAddr != ":9090" {
			t.Errorf("HTTPAddr = %q, want :9090", cfg.HTTPAddr)
		}
		if cfg.ShippingFee != 60 {
			t.Errorf("ShippingFee = %v, want 60", cfg.ShippingFee)
		}
	})
}
