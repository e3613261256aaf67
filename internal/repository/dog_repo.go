package repository

import (
	"context"

	"github.com/Soniti94/paseoslugo/internal/models"
	"github.com/google/uuid"
)

const dogColumns = `id, owner_id, name, breed, size, age, special_needs, photo_url, created_at`

type CreateDogInput struct {
	OwnerID      string
	Name         string
	Breed        *string
	Size         string
	Age          *int
	SpecialNeeds []string
}

type DogRepository struct {
	db DBTX
}

func NewDogRepository(db DBTX) *DogRepository {
	return &DogRepository{db: db}
}

func (r *DogRepository) Create(ctx context.Context, input CreateDogInput) (*models.Dog, error) {
	needs := input.SpecialNeeds
	if needs == nil {
		needs = []string{}
	}
	query := `
		INSERT INTO dogs (id, owner_id, name, breed, size, age, special_needs)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + dogColumns
	return scanDog(r.db.QueryRow(ctx, query, uuid.NewString(), input.OwnerID, input.Name, input.Breed, input.Size, input.Age, needs))
}

func (r *DogRepository) GetByID(ctx context.Context, dogID string) (*models.Dog, error) {
	return scanDog(r.db.QueryRow(ctx, `SELECT `+dogColumns+` FROM dogs WHERE id = $1`, dogID))
}

func (r *DogRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Dog, error) {
	rows, err := r.db.Query(ctx, `SELECT `+dogColumns+` FROM dogs WHERE owner_id = $1 ORDER BY created_at ASC LIMIT 100`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dogs := make([]models.Dog, 0)
	for rows.Next() {
		dog, err := scanDog(rows)
		if err != nil {
			return nil, err
		}
		dogs = append(dogs, *dog)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return dogs, nil
}

func scanDog(row rowScanner) (*models.Dog, error) {
	var dog models.Dog
	err := row.Scan(
		&dog.ID,
		&dog.OwnerID,
		&dog.Name,
		&dog.Breed,
		&dog.Size,
		&dog.Age,
		&dog.SpecialNeeds,
		&dog.PhotoURL,
		&dog.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if dog.SpecialNeeds == nil {
		dog.SpecialNeeds = []string{}
	}
	return &dog, nil
}
