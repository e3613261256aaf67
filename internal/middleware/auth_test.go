package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Soniti94/paseoslugo/internal/services"
	"github.com/gofiber/fiber/v2"
)

type stubResolver struct {
	tokens    map[string]services.Identity
	lastToken string
}

func (s *stubResolver) ResolveSession(_ context.Context, token string) (*services.Identity, error) {
	s.lastToken = token
	identity, ok := s.tokens[token]
	if !ok {
		return nil, services.ErrUnauthorized
	}
	return &identity, nil
}

func newAuthApp(resolver *stubResolver) *fiber.App {
	app := fiber.New()
	app.Get("/private", AuthRequired(resolver), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": c.Locals("user_id"), "role": c.Locals("role")})
	})
	return app
}

func TestAuthRequiredRejectsMissingToken(t *testing.T) {
	app := newAuthApp(&stubResolver{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/private", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAuthRequiredAcceptsBearerToken(t *testing.T) {
	resolver := &stubResolver{tokens: map[string]services.Identity{"good": {UserID: "u-1", Role: "owner"}}}
	app := newAuthApp(resolver)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer good")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAuthRequiredPrefersCookie(t *testing.T) {
	resolver := &stubResolver{tokens: map[string]services.Identity{"from-cookie": {UserID: "u-1", Role: "walker"}}}
	app := newAuthApp(resolver)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer from-header")
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "from-cookie"})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resolver.lastToken != "from-cookie" {
		t.Fatalf("expected cookie token to be used, got %q", resolver.lastToken)
	}
}

func TestAuthRequiredRejectsUnknownSession(t *testing.T) {
	app := newAuthApp(&stubResolver{})

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer revoked")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}
