package repository

import (
	"context"
	"time"

	"github.com/Soniti94/paseoslugo/internal/models"
)

type UserSessionRepository struct {
	db DBTX
}

func NewUserSessionRepository(db DBTX) *UserSessionRepository {
	return &UserSessionRepository{db: db}
}

func (r *UserSessionRepository) Create(ctx context.Context, token string, userID string, expiresAt time.Time) error {
	query := `
		INSERT INTO user_sessions (session_token, user_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_token) DO UPDATE SET user_id = EXCLUDED.user_id, expires_at = EXCLUDED.expires_at
	`
	_, err := r.db.Exec(ctx, query, token, userID, expiresAt)
	return err
}

func (r *UserSessionRepository) GetByToken(ctx context.Context, token string) (*models.UserSession, error) {
	query := `
		SELECT session_token, user_id, expires_at, created_at
		FROM user_sessions
		WHERE session_token = $1
	`
	var session models.UserSession
	err := r.db.QueryRow(ctx, query, token).Scan(
		&session.SessionToken,
		&session.UserID,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *UserSessionRepository) Delete(ctx context.Context, token string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM user_sessions WHERE session_token = $1`, token)
	return err
}
