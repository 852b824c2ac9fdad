package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/notify"
)

// NotificationHandler exposes the notifications raised for the shopper.
type NotificationHandler struct {
	recorder *notify.Recorder
}

func NewNotificationHandler(recorder *notify.Recorder) *NotificationHandler {
	return &NotificationHandler{recorder: recorder}
}

func (h *NotificationHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/notifications", h.HandleGetNotifications)
}

// HandleGetNotifications lists notifications oldest first. With ?drain=true they are also cleared.
func (h *NotificationHandler) HandleGetNotifications(c *fiber.Ctx) error {
	items := h.recorder.All()
	if c.QueryBool("drain") {
		items = h.recorder.Drain()
	}
	if items == nil {
		items = []notify.Notification{}
	}
	return c.JSON(items)
}
