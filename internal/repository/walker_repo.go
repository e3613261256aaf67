package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Soniti94/paseoslugo/internal/models"
	"github.com/google/uuid"
)

const walkerSelect = `
	SELECT w.id, w.user_id, w.bio, w.specialties, w.experience_years, w.rating, w.reviews_count,
		   w.availability, w.location, w.price_from, w.is_verified, w.profile_image, w.created_at,
		   u.name, u.email, u.picture
	FROM walkers w
	LEFT JOIN users u ON u.id = w.user_id
`

type CreateWalkerInput struct {
	UserID          string
	Bio             string
	Specialties     []string
	ExperienceYears int
	Location        string
	PriceFrom       float64
}

type WalkerListFilter struct {
	Location  string
	Specialty string
	Limit     int
	Offset    int
}

type WalkerRepository struct {
	db DBTX
}

func NewWalkerRepository(db DBTX) *WalkerRepository {
	return &WalkerRepository{db: db}
}

func (r *WalkerRepository) Create(ctx context.Context, input CreateWalkerInput) (*models.Walker, error) {
	specialties := input.Specialties
	if specialties == nil {
		specialties = []string{}
	}
	query := `
		INSERT INTO walkers (id, user_id, bio, specialties, experience_years, location, price_from)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	var id string
	if err := r.db.QueryRow(
		ctx,
		query,
		uuid.NewString(),
		input.UserID,
		input.Bio,
		specialties,
		input.ExperienceYears,
		input.Location,
		input.PriceFrom,
	).Scan(&id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *WalkerRepository) GetByID(ctx context.Context, walkerID string) (*models.Walker, error) {
	return scanWalker(r.db.QueryRow(ctx, walkerSelect+` WHERE w.id = $1`, walkerID))
}

func (r *WalkerRepository) GetByUserID(ctx context.Context, userID string) (*models.Walker, error) {
	return scanWalker(r.db.QueryRow(ctx, walkerSelect+` WHERE w.user_id = $1`, userID))
}

func (r *WalkerRepository) List(ctx context.Context, filter WalkerListFilter) ([]models.Walker, int, error) {
	args := make([]any, 0, 4)
	whereParts := []string{"TRUE"}

	if location := strings.TrimSpace(filter.Location); location != "" {
		args = append(args, "%"+location+"%")
		whereParts = append(whereParts, fmt.Sprintf("w.location ILIKE $%d", len(args)))
	}
	if specialty := strings.TrimSpace(filter.Specialty); specialty != "" {
		args = append(args, specialty)
		whereParts = append(whereParts, fmt.Sprintf("$%d = ANY(w.specialties)", len(args)))
	}
	where := strings.Join(whereParts, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM walkers w WHERE ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit, filter.Offset)
	query := walkerSelect + ` WHERE ` + where + fmt.Sprintf(
		` ORDER BY w.rating DESC, w.created_at ASC LIMIT $%d OFFSET $%d`,
		len(args)-1,
		len(args),
	)

	walkers, err := r.queryWalkers(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return walkers, total, nil
}

func (r *WalkerRepository) ListAll(ctx context.Context) ([]models.Walker, error) {
	return r.queryWalkers(ctx, walkerSelect+` ORDER BY w.rating DESC LIMIT 200`)
}

func (r *WalkerRepository) queryWalkers(ctx context.Context, query string, args ...any) ([]models.Walker, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	walkers := make([]models.Walker, 0)
	for rows.Next() {
		walker, err := scanWalker(rows)
		if err != nil {
			return nil, err
		}
		walkers = append(walkers, *walker)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return walkers, nil
}

func scanWalker(row rowScanner) (*models.Walker, error) {
	var walker models.Walker
	err := row.Scan(
		&walker.ID,
		&walker.UserID,
		&walker.Bio,
		&walker.Specialties,
		&walker.ExperienceYears,
		&walker.Rating,
		&walker.ReviewsCount,
		&walker.Availability,
		&walker.Location,
		&walker.PriceFrom,
		&walker.IsVerified,
		&walker.ProfileImage,
		&walker.CreatedAt,
		&walker.Name,
		&walker.Email,
		&walker.Picture,
	)
	if err != nil {
		return nil, err
	}
	if walker.Specialties == nil {
		walker.Specialties = []string{}
	}
	return &walker, nil
}
