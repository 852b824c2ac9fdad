package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"storefront/internal/tracking"
)

// TrackingHandler serves order tracking reports.
type TrackingHandler struct {
	tracker *tracking.Tracker
	logger  *zap.Logger
}

func NewTrackingHandler(tracker *tracking.Tracker, logger *zap.Logger) *TrackingHandler {
	return &TrackingHandler{tracker: tracker, logger: logger}
}

func (h *TrackingHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/orders/:id/tracking", h.HandleTrackOrder)
}

// HandleTrackOrder returns the tracking report of :id.
func (h *TrackingHandler) HandleTrackOrder(c *fiber.Ctx) error {
	report, err := h.tracker.Track(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "Could not track order")
	}
	return c.JSON(report)
}
