package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Soniti94/paseoslugo/internal/models"
	"github.com/Soniti94/paseoslugo/internal/services"
)

type stubWalkTracker struct {
	walk          *models.Walk
	err           error
	lastBookingID string
	lastUpdate    services.UpdateWalkInput
	lastComplete  services.CompleteWalkInput
	lastPhoto     string
}

func (s *stubWalkTracker) GetWalk(_ context.Context, bookingID string, _ services.Actor) (*models.Walk, error) {
	s.lastBookingID = bookingID
	return s.walk, s.err
}

func (s *stubWalkTracker) StartWalk(_ context.Context, bookingID string, _ services.Actor, _ time.Time) (*models.Walk, error) {
	s.lastBookingID = bookingID
	return s.walk, s.err
}

func (s *stubWalkTracker) UpdateWalk(_ context.Context, bookingID string, _ services.Actor, input services.UpdateWalkInput) (*models.Walk, error) {
	s.lastBookingID = bookingID
	s.lastUpdate = input
	return s.walk, s.err
}

func (s *stubWalkTracker) CompleteWalk(_ context.Context, bookingID string, _ services.Actor, _ time.Time, input services.CompleteWalkInput) (*models.Walk, error) {
	s.lastBookingID = bookingID
	s.lastComplete = input
	return s.walk, s.err
}

func (s *stubWalkTracker) AddWalkPhoto(_ context.Context, bookingID string, _ services.Actor, photo string) (*models.Walk, error) {
	s.lastBookingID = bookingID
	s.lastPhoto = photo
	return s.walk, s.err
}

func TestUpdateWalkParsesRoutePoint(t *testing.T) {
	tracker := &stubWalkTracker{walk: &models.Walk{BookingID: "b-1"}}
	handler := NewWalkHandler(tracker)

	app := authenticatedApp("walker-user", models.RoleWalker)
	app.Post("/api/walks/:bookingId/update", handler.UpdateWalk)

	req := httptest.NewRequest(http.MethodPost, "/api/walks/b-1/update", strings.NewReader(`{
		"route_point": {"lat": 43.0125, "lng": -7.5559, "timestamp": 1715421600}
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	point := tracker.lastUpdate.RoutePoint
	if point == nil || point.Lat != 43.0125 || point.Lng != -7.5559 {
		t.Fatalf("unexpected route point: %+v", point)
	}
	if tracker.lastUpdate.ReportText != nil {
		t.Fatalf("expected no report text")
	}
}

func TestCompleteWalkAcceptsQueryParameters(t *testing.T) {
	tracker := &stubWalkTracker{walk: &models.Walk{BookingID: "b-1", Status: models.WalkCompleted}}
	handler := NewWalkHandler(tracker)

	app := authenticatedApp("walker-user", models.RoleWalker)
	app.Post("/api/walks/:bookingId/complete", handler.CompleteWalk)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/walks/b-1/complete?report=Todo%20bien", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if tracker.lastComplete.Report == nil || *tracker.lastComplete.Report != "Todo bien" {
		t.Fatalf("expected report from query, got %v", tracker.lastComplete.Report)
	}
	if tracker.lastComplete.Photo != nil {
		t.Fatalf("expected no photo, got %v", *tracker.lastComplete.Photo)
	}
}

func TestCompleteWalkReturnsConflictWhenNotStarted(t *testing.T) {
	handler := NewWalkHandler(&stubWalkTracker{err: services.ErrInvalidState})

	app := authenticatedApp("walker-user", models.RoleWalker)
	app.Post("/api/walks/:bookingId/complete", handler.CompleteWalk)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/walks/b-1/complete", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestAddPhotoRequiresPhoto(t *testing.T) {
	tracker := &stubWalkTracker{}
	handler := NewWalkHandler(tracker)

	app := authenticatedApp("walker-user", models.RoleWalker)
	app.Post("/api/walks/:bookingId/photos", handler.AddPhoto)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/walks/b-1/photos", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if tracker.lastPhoto != "" {
		t.Fatalf("service should not be called without a photo")
	}
}

func TestAddPhotoReadsJSONBody(t *testing.T) {
	tracker := &stubWalkTracker{walk: &models.Walk{BookingID: "b-1", Photos: []string{"https://cdn.example/p.jpg"}}}
	handler := NewWalkHandler(tracker)

	app := authenticatedApp("walker-user", models.RoleWalker)
	app.Post("/api/walks/:bookingId/photos", handler.AddPhoto)

	req := httptest.NewRequest(http.MethodPost, "/api/walks/b-1/photos", strings.NewReader(`{"photo_base64": "data:image/jpeg;base64,AAAA"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if tracker.lastPhoto != "data:image/jpeg;base64,AAAA" {
		t.Fatalf("unexpected photo %q", tracker.lastPhoto)
	}
}
