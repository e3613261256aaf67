package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/Soniti94/paseoslugo/internal/models"
	"github.com/Soniti94/paseoslugo/internal/services"
	"github.com/gofiber/fiber/v2"
)

type walkTracker interface {
	GetWalk(ctx context.Context, bookingID string, actor services.Actor) (*models.Walk, error)
	StartWalk(ctx context.Context, bookingID string, actor services.Actor, now time.Time) (*models.Walk, error)
	UpdateWalk(ctx context.Context, bookingID string, actor services.Actor, input services.UpdateWalkInput) (*models.Walk, error)
	CompleteWalk(ctx context.Context, bookingID string, actor services.Actor, now time.Time, input services.CompleteWalkInput) (*models.Walk, error)
	AddWalkPhoto(ctx context.Context, bookingID string, actor services.Actor, photo string) (*models.Walk, error)
}

type WalkHandler struct {
	walks walkTracker
	now   func() time.Time
}

func NewWalkHandler(walks walkTracker) *WalkHandler {
	return &WalkHandler{walks: walks, now: time.Now}
}

type updateWalkRequest struct {
	RoutePoint *models.RoutePoint `json:"route_point"`
	ReportText *string            `json:"report_text"`
}

type completeWalkRequest struct {
	Photo  *string `json:"photo"`
	Report *string `json:"report"`
}

type walkPhotoRequest struct {
	PhotoBase64 string `json:"photo_base64"`
}

func (h *WalkHandler) GetWalk(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	walk, err := h.walks.GetWalk(c.Context(), c.Params("bookingId"), actor)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(walk)
}

func (h *WalkHandler) StartWalk(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	walk, err := h.walks.StartWalk(c.Context(), c.Params("bookingId"), actor, h.now())
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Walk started", "walk": walk})
}

func (h *WalkHandler) UpdateWalk(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	var req updateWalkRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	walk, err := h.walks.UpdateWalk(c.Context(), c.Params("bookingId"), actor, services.UpdateWalkInput{
		RoutePoint: req.RoutePoint,
		ReportText: req.ReportText,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Walk updated", "walk": walk})
}

// CompleteWalk takes photo and report from the JSON body or, for older
// clients, from the query string.
func (h *WalkHandler) CompleteWalk(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	var req completeWalkRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}
	if req.Photo == nil {
		req.Photo = optionalQuery(c, "photo")
	}
	if req.Report == nil {
		req.Report = optionalQuery(c, "report")
	}

	walk, err := h.walks.CompleteWalk(c.Context(), c.Params("bookingId"), actor, h.now(), services.CompleteWalkInput{
		Photo:  req.Photo,
		Report: req.Report,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Walk completed", "walk": walk})
}

func (h *WalkHandler) AddPhoto(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	var req walkPhotoRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}
	if req.PhotoBase64 == "" {
		req.PhotoBase64 = c.Query("photo_base64")
	}
	if strings.TrimSpace(req.PhotoBase64) == "" {
		return badRequest(c, "photo_base64 is required")
	}

	walk, err := h.walks.AddWalkPhoto(c.Context(), c.Params("bookingId"), actor, req.PhotoBase64)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Photo added", "walk": walk})
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil
	}
	return &value
}
