package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/Soniti94/paseoslugo/internal/middleware"
	"github.com/Soniti94/paseoslugo/internal/models"
	"github.com/Soniti94/paseoslugo/internal/repository"
	"github.com/Soniti94/paseoslugo/internal/services"
	"github.com/gofiber/fiber/v2"
)

type identityService interface {
	Register(ctx context.Context, email, password, name, role string) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	ExchangeExternalSession(ctx context.Context, sessionID string) (*services.AuthResult, error)
	Logout(ctx context.Context, token string) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, input repository.UpdateUserInput) (*models.User, error)
}

type AuthHandler struct {
	service      identityService
	sessionTTL   time.Duration
	secureCookie bool
}

func NewAuthHandler(service identityService, sessionTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		service:      service,
		sessionTTL:   sessionTTL,
		secureCookie: secureCookie,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateMeRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	result, err := h.service.Register(c.Context(), req.Email, req.Password, req.Name, strings.TrimSpace(req.Role))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"token": result.Token, "user": result.User})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	result, err := h.service.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"token": result.Token, "user": result.User})
}

// Session exchanges the hosted-login session id for a local session cookie.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	sessionID := strings.TrimSpace(c.Get("X-Session-ID"))
	if sessionID == "" {
		return badRequest(c, "X-Session-ID header required")
	}

	result, err := h.service.ExchangeExternalSession(c.Context(), sessionID)
	if err != nil {
		return mapServiceError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    result.Token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
	return c.JSON(fiber.Map{"token": result.Token, "user": result.User})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	user, err := h.service.GetUser(c.Context(), actor.UserID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(user)
}

func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	var req updateMeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.service.UpdateProfile(c.Context(), actor.UserID, repository.UpdateUserInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(user)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if token := middleware.SessionToken(c); token != "" {
		if err := h.service.Logout(c.Context(), token); err != nil {
			return mapServiceError(c, err)
		}
	}
	c.ClearCookie(middleware.SessionCookie)
	return c.JSON(fiber.Map{"message": "Logged out"})
}
