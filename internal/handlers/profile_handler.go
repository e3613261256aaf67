package handlers

import (
	"context"
	"strings"

	"github.com/Soniti94/paseoslugo/internal/models"
	"github.com/Soniti94/paseoslugo/internal/repository"
	"github.com/gofiber/fiber/v2"
)

type profileService interface {
	ListWalkers(ctx context.Context, filter repository.WalkerListFilter) ([]models.Walker, int, error)
	GetWalker(ctx context.Context, walkerID string) (*models.Walker, error)
	CreateWalker(ctx context.Context, userID string, input repository.CreateWalkerInput) (*models.Walker, error)
	ListDogs(ctx context.Context, ownerID string) ([]models.Dog, error)
	CreateDog(ctx context.Context, ownerID string, input repository.CreateDogInput) (*models.Dog, error)
	RecommendWalkers(ctx context.Context, ownerID string, dogID string, limit int) ([]models.WalkerWithScore, error)
}

type ProfileHandler struct {
	profiles profileService
}

func NewProfileHandler(profiles profileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

type createWalkerRequest struct {
	Bio             string   `json:"bio"`
	Specialties     []string `json:"specialties"`
	ExperienceYears int      `json:"experience_years"`
	Location        string   `json:"location"`
	PriceFrom       float64  `json:"price_from"`
}

type createDogRequest struct {
	Name         string   `json:"name"`
	Breed        *string  `json:"breed"`
	Size         string   `json:"size"`
	Age          *int     `json:"age"`
	SpecialNeeds []string `json:"special_needs"`
}

func (h *ProfileHandler) ListWalkers(c *fiber.Ctx) error {
	page := parsePositiveInt(c.Query("page"), 1)
	limit := parsePositiveInt(c.Query("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	walkers, total, err := h.profiles.ListWalkers(c.Context(), repository.WalkerListFilter{
		Location:  strings.TrimSpace(c.Query("location")),
		Specialty: strings.TrimSpace(c.Query("specialty")),
		Offset:    (page - 1) * limit,
		Limit:     limit,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"walkers":    walkers,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *ProfileHandler) GetWalker(c *fiber.Ctx) error {
	walker, err := h.profiles.GetWalker(c.Context(), c.Params("id"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(walker)
}

func (h *ProfileHandler) RecommendedWalkers(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	limit := parsePositiveInt(c.Query("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	walkers, err := h.profiles.RecommendWalkers(c.Context(), actor.UserID, strings.TrimSpace(c.Query("dog_id")), limit)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"walkers": walkers})
}

func (h *ProfileHandler) CreateWalker(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	var req createWalkerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	walker, err := h.profiles.CreateWalker(c.Context(), actor.UserID, repository.CreateWalkerInput{
		Bio:             req.Bio,
		Specialties:     req.Specialties,
		ExperienceYears: req.ExperienceYears,
		Location:        req.Location,
		PriceFrom:       req.PriceFrom,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(walker)
}

func (h *ProfileHandler) ListDogs(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	dogs, err := h.profiles.ListDogs(c.Context(), actor.UserID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(dogs)
}

func (h *ProfileHandler) CreateDog(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	var req createDogRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	dog, err := h.profiles.CreateDog(c.Context(), actor.UserID, repository.CreateDogInput{
		Name:         req.Name,
		Breed:        req.Breed,
		Size:         strings.TrimSpace(req.Size),
		Age:          req.Age,
		SpecialNeeds: req.SpecialNeeds,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dog)
}
