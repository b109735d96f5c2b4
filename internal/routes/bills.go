package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kobopay/kobopay/internal/billing"
)

// RegisterBillRoutes wires bill purchase endpoints for authenticated users.
func RegisterBillRoutes(r fiber.Router, h *billing.Handler) {
	group := r.Group("/bills")
	group.Post("/pay", h.Pay)
	group.Get("/history", h.History)
}
