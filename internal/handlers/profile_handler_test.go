package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Soniti94/paseoslugo/internal/models"
	"github.com/Soniti94/paseoslugo/internal/repository"
	"github.com/Soniti94/paseoslugo/internal/services"
	"github.com/gofiber/fiber/v2"
)

type stubProfileService struct {
	walkers     []models.Walker
	total       int
	err         error
	lastFilter  repository.WalkerListFilter
	lastDogID   string
	lastLimit   int
	lastDog     repository.CreateDogInput
	recommended []models.WalkerWithScore
}

func (s *stubProfileService) ListWalkers(_ context.Context, filter repository.WalkerListFilter) ([]models.Walker, int, error) {
	s.lastFilter = filter
	return s.walkers, s.total, s.err
}

func (s *stubProfileService) GetWalker(_ context.Context, walkerID string) (*models.Walker, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Walker{ID: walkerID}, nil
}

func (s *stubProfileService) CreateWalker(_ context.Context, userID string, _ repository.CreateWalkerInput) (*models.Walker, error) {
	return &models.Walker{ID: "w-new", UserID: userID}, s.err
}

func (s *stubProfileService) ListDogs(_ context.Context, _ string) ([]models.Dog, error) {
	return nil, s.err
}

func (s *stubProfileService) CreateDog(_ context.Context, ownerID string, input repository.CreateDogInput) (*models.Dog, error) {
	s.lastDog = input
	if s.err != nil {
		return nil, s.err
	}
	return &models.Dog{ID: "d-new", OwnerID: ownerID, Name: input.Name, Size: input.Size}, nil
}

func (s *stubProfileService) RecommendWalkers(_ context.Context, _ string, dogID string, limit int) ([]models.WalkerWithScore, error) {
	s.lastDogID = dogID
	s.lastLimit = limit
	return s.recommended, s.err
}

func TestListWalkersPaginatesAndFilters(t *testing.T) {
	profiles := &stubProfileService{walkers: []models.Walker{{ID: "w-1"}}, total: 25}
	handler := NewProfileHandler(profiles)

	app := fiber.New()
	app.Get("/api/walkers", handler.ListWalkers)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/walkers?page=3&limit=500&location=Centro", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if profiles.lastFilter.Limit != maxPageLimit || profiles.lastFilter.Offset != 2*maxPageLimit {
		t.Fatalf("unexpected paging: %+v", profiles.lastFilter)
	}
	if profiles.lastFilter.Location != "Centro" {
		t.Fatalf("expected location filter, got %q", profiles.lastFilter.Location)
	}

	var body struct {
		Walkers    []models.Walker       `json:"walkers"`
		Pagination models.PaginationMeta `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(body.Walkers) != 1 || body.Pagination.Total != 25 || body.Pagination.Page != 3 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestGetWalkerMapsNotFound(t *testing.T) {
	handler := NewProfileHandler(&stubProfileService{err: services.ErrNotFound})

	app := fiber.New()
	app.Get("/api/walkers/:id", handler.GetWalker)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/walkers/missing", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestRecommendedWalkersPassesDogAndLimit(t *testing.T) {
	profiles := &stubProfileService{recommended: []models.WalkerWithScore{{Walker: models.Walker{ID: "w-1"}, MatchScore: 85}}}
	handler := NewProfileHandler(profiles)

	app := authenticatedApp("owner-1", models.RoleOwner)
	app.Get("/api/walkers/recommended", handler.RecommendedWalkers)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/walkers/recommended?dog_id=d-1&limit=3", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if profiles.lastDogID != "d-1" || profiles.lastLimit != 3 {
		t.Fatalf("unexpected call: dog=%q limit=%d", profiles.lastDogID, profiles.lastLimit)
	}
}

func TestCreateDogReturnsCreated(t *testing.T) {
	profiles := &stubProfileService{}
	handler := NewProfileHandler(profiles)

	app := authenticatedApp("owner-1", models.RoleOwner)
	app.Post("/api/dogs", handler.CreateDog)

	req := httptest.NewRequest(http.MethodPost, "/api/dogs", strings.NewReader(`{"name": "Toby", "size": " Grande ", "special_needs": ["Senior"]}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if profiles.lastDog.Size != "Grande" || len(profiles.lastDog.SpecialNeeds) != 1 {
		t.Fatalf("unexpected dog input: %+v", profiles.lastDog)
	}
}
