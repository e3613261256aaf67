package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Soniti94/paseoslugo/internal/models"
	"github.com/Soniti94/paseoslugo/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var allowedDogSizes = map[string]struct{}{
	"Pequeño": {},
	"Mediano": {},
	"Grande":  {},
}

type walkerDirectory interface {
	List(ctx context.Context, filter repository.WalkerListFilter) ([]models.Walker, int, error)
	GetByID(ctx context.Context, walkerID string) (*models.Walker, error)
}

type dogStore interface {
	Create(ctx context.Context, input repository.CreateDogInput) (*models.Dog, error)
	GetByID(ctx context.Context, dogID string) (*models.Dog, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Dog, error)
}

type walkerMatchmaker interface {
	GetMatchedWalkers(ctx context.Context, dog *models.Dog, ownerArea string, limit int) ([]models.WalkerWithScore, error)
}

type ProfileService struct {
	db          *pgxpool.Pool
	walkers     walkerDirectory
	dogs        dogStore
	users       userReader
	matchmaking walkerMatchmaker
}

type userReader interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

func NewProfileService(
	db *pgxpool.Pool,
	walkers walkerDirectory,
	dogs dogStore,
	users userReader,
	matchmaking walkerMatchmaker,
) *ProfileService {
	return &ProfileService{
		db:          db,
		walkers:     walkers,
		dogs:        dogs,
		users:       users,
		matchmaking: matchmaking,
	}
}

func (s *ProfileService) ListWalkers(ctx context.Context, filter repository.WalkerListFilter) ([]models.Walker, int, error) {
	return s.walkers.List(ctx, filter)
}

func (s *ProfileService) GetWalker(ctx context.Context, walkerID string) (*models.Walker, error) {
	walker, err := s.walkers.GetByID(ctx, walkerID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return walker, nil
}

// CreateWalker registers the walker profile and promotes the user's role in
// one transaction. A user can hold a single walker profile.
func (s *ProfileService) CreateWalker(ctx context.Context, userID string, input repository.CreateWalkerInput) (*models.Walker, error) {
	input.UserID = userID
	input.Bio = strings.TrimSpace(input.Bio)
	input.Location = strings.TrimSpace(input.Location)
	if input.Bio == "" || input.Location == "" {
		return nil, fmt.Errorf("%w: bio and location are required", ErrInvalidInput)
	}
	if input.ExperienceYears < 0 || input.PriceFrom < 0 {
		return nil, fmt.Errorf("%w: experience_years and price_from must not be negative", ErrInvalidInput)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txWalkerRepo := repository.NewWalkerRepository(tx)
	txUserRepo := repository.NewUserRepository(tx)

	if _, err := txWalkerRepo.GetByUserID(ctx, userID); err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	walker, err := txWalkerRepo.Create(ctx, input)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	if err := txUserRepo.UpdateRole(ctx, userID, models.RoleWalker); err != nil {
		return nil, notFoundOr(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return walker, nil
}

func (s *ProfileService) ListDogs(ctx context.Context, ownerID string) ([]models.Dog, error) {
	return s.dogs.ListByOwner(ctx, ownerID)
}

func (s *ProfileService) CreateDog(ctx context.Context, ownerID string, input repository.CreateDogInput) (*models.Dog, error) {
	input.OwnerID = ownerID
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if input.Size == "" {
		input.Size = "Mediano"
	}
	if _, ok := allowedDogSizes[input.Size]; !ok {
		return nil, fmt.Errorf("%w: size must be Pequeño, Mediano or Grande", ErrInvalidInput)
	}
	if input.Age != nil && *input.Age < 0 {
		return nil, fmt.Errorf("%w: age must not be negative", ErrInvalidInput)
	}
	return s.dogs.Create(ctx, input)
}

// RecommendWalkers ranks walkers for one of the owner's dogs.
func (s *ProfileService) RecommendWalkers(ctx context.Context, ownerID string, dogID string, limit int) ([]models.WalkerWithScore, error) {
	var dog *models.Dog
	if dogID != "" {
		found, err := s.dogs.GetByID(ctx, dogID)
		if err != nil {
			return nil, notFoundOr(err)
		}
		if found.OwnerID != ownerID {
			return nil, ErrForbidden
		}
		dog = found
	}

	area := ""
	if s.users != nil {
		owner, err := s.users.GetByID(ctx, ownerID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		if owner != nil && owner.Address != nil {
			area = *owner.Address
		}
	}
	return s.matchmaking.GetMatchedWalkers(ctx, dog, area, limit)
}
