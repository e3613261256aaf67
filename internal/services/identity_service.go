package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/Soniti94/paseoslugo/internal/models"
	"github.com/Soniti94/paseoslugo/internal/repository"
	"github.com/Soniti94/paseoslugo/pkg/utils"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const minPasswordLength = 6

type identityUserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdatePartial(ctx context.Context, id string, input repository.UpdateUserInput) (*models.User, error)
}

type identitySessionStore interface {
	Create(ctx context.Context, token string, userID string, expiresAt time.Time) error
	GetByToken(ctx context.Context, token string) (*models.UserSession, error)
	Delete(ctx context.Context, token string) error
}

type Identity struct {
	UserID string
	Role   string
}

type AuthResult struct {
	User  *models.User
	Token string
}

type IdentityService struct {
	users           identityUserStore
	sessions        identitySessionStore
	jwtSecret       string
	sessionTTL      time.Duration
	externalAuthURL string
	httpClient      *http.Client
	logger          *slog.Logger
	now             func() time.Time
}

func NewIdentityService(
	users identityUserStore,
	sessions identitySessionStore,
	jwtSecret string,
	sessionTTL time.Duration,
	externalAuthURL string,
	logger *slog.Logger,
) *IdentityService {
	if sessionTTL <= 0 {
		sessionTTL = utils.DefaultTokenTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &IdentityService{
		users:           users,
		sessions:        sessions,
		jwtSecret:       jwtSecret,
		sessionTTL:      sessionTTL,
		externalAuthURL: externalAuthURL,
		httpClient:      &http.Client{Timeout: 10 * time.Second},
		logger:          logger,
		now:             time.Now,
	}
}

func (s *IdentityService) Register(ctx context.Context, email, password, name, role string) (*AuthResult, error) {
	normalizedEmail, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	switch role {
	case "":
		role = models.RoleOwner
	case models.RoleOwner, models.RoleWalker:
	default:
		return nil, fmt.Errorf("%w: role must be owner or walker", ErrInvalidInput)
	}

	if existing, err := s.users.GetByEmail(ctx, normalizedEmail); err == nil && existing != nil {
		return nil, ErrConflict
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        normalizedEmail,
		Name:         name,
		Role:         role,
		PasswordHash: &hashed,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}

	return s.issueSession(ctx, user)
}

func (s *IdentityService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	normalizedEmail, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrUnauthorized
	}
	user, err := s.users.GetByEmail(ctx, normalizedEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if user.PasswordHash == nil || !utils.CheckPassword(password, *user.PasswordHash) {
		return nil, ErrUnauthorized
	}
	return s.issueSession(ctx, user)
}

type externalSessionData struct {
	Email        string  `json:"email"`
	Name         string  `json:"name"`
	Picture      *string `json:"picture"`
	SessionToken string  `json:"session_token"`
}

// ExchangeExternalSession trades an OAuth session id from the hosted login
// page for a local session, creating the user on first sign-in.
func (s *IdentityService) ExchangeExternalSession(ctx context.Context, sessionID string) (*AuthResult, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrInvalidInput)
	}
	if s.externalAuthURL == "" {
		return nil, fmt.Errorf("%w: external auth is not configured", ErrUpstream)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.externalAuthURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build session request: %w", err)
	}
	req.Header.Set("X-Session-ID", sessionID)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		s.logger.Warn("external session exchange rejected", "status", resp.StatusCode, "body", strings.TrimSpace(string(body)))
		return nil, ErrUnauthorized
	}

	var data externalSessionData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: decode session data: %v", ErrUpstream, err)
	}
	email, err := normalizeEmail(data.Email)
	if err != nil || data.SessionToken == "" {
		return nil, fmt.Errorf("%w: incomplete session data", ErrUpstream)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		user, err = s.createExternalUser(ctx, email, data)
	}
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Create(ctx, data.SessionToken, user.ID, s.now().UTC().Add(s.sessionTTL)); err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: data.SessionToken}, nil
}

// createExternalUser inserts the user for a first sign-in. A concurrent
// sign-in with the same email may win the insert; the loser reads that row.
func (s *IdentityService) createExternalUser(ctx context.Context, email string, data externalSessionData) (*models.User, error) {
	name := strings.TrimSpace(data.Name)
	if name == "" {
		name = email
	}
	user := &models.User{Email: email, Name: name, Picture: data.Picture, Role: models.RoleOwner}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if !isUniqueViolation(err) {
			return nil, err
		}
		return s.users.GetByEmail(ctx, email)
	}
	return user, nil
}

// ResolveSession maps a token to the user behind it. The stored session row
// is authoritative; the role is read from the user record so it reflects
// changes made after login.
func (s *IdentityService) ResolveSession(ctx context.Context, token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrUnauthorized
	}
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if !session.ExpiresAt.After(s.now()) {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return &Identity{UserID: user.ID, Role: user.Role}, nil
}

func (s *IdentityService) Logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

func (s *IdentityService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return user, nil
}

func (s *IdentityService) UpdateProfile(ctx context.Context, userID string, input repository.UpdateUserInput) (*models.User, error) {
	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
		}
		input.Name = &trimmed
	}
	user, err := s.users.UpdatePartial(ctx, userID, input)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return user, nil
}

func (s *IdentityService) issueSession(ctx context.Context, user *models.User) (*AuthResult, error) {
	token, err := utils.GenerateTokenWithTTL(user.ID, user.Role, s.jwtSecret, s.sessionTTL)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Create(ctx, token, user.ID, s.now().UTC().Add(s.sessionTTL)); err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

func normalizeEmail(raw string) (string, error) {
	parsed, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: invalid email format", ErrInvalidInput)
	}
	return strings.ToLower(parsed.Address), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
