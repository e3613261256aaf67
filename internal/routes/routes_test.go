package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Soniti94/paseoslugo/internal/config"
	"github.com/gofiber/fiber/v2"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:        "test-secret",
		SessionTTL:       time.Hour,
		AppEnv:           "test",
		GoogleMapsAPIKey: "maps-key",
	}
	app := fiber.New()
	if err := RegisterRoutes(app, cfg, Deps{}); err != nil {
		t.Fatalf("RegisterRoutes: %v", err)
	}
	return app
}

func TestPublicConfigExposesMapsKey(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/config", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body["google_maps_api_key"] != "maps-key" {
		t.Fatalf("unexpected config: %v", body)
	}
}

func TestPackagesArePublic(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/packages", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	app := newTestApp(t)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodGet, "/api/bookings"},
		{http.MethodPost, "/api/bookings"},
		{http.MethodPatch, "/api/bookings/b-1/cancel"},
		{http.MethodPost, "/api/walks/b-1/start"},
		{http.MethodGet, "/api/messages/unread-count"},
		{http.MethodGet, "/api/dogs"},
		{http.MethodGet, "/api/walkers/recommended"},
		{http.MethodPost, "/api/payments/checkout/session"},
		{http.MethodGet, "/api/payments/checkout/status/cs_1"},
	}

	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(tc.method, tc.path, nil))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", resp.StatusCode)
			}
		})
	}
}

func TestWebhookWithoutProviderRejectsSignature(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/webhook/stripe", strings.NewReader(`{"type":"checkout.session.completed"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=forged")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
