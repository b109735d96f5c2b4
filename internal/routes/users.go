package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kobopay/kobopay/internal/identity"
	"github.com/kobopay/kobopay/internal/middleware"
)

// RegisterUserRoutes wires profile endpoints for authenticated users.
func RegisterUserRoutes(r fiber.Router, h *identity.Handler) {
	group := r.Group("/users")
	group.Get("/me", h.Me)
	group.Patch("/me", h.Update)
	group.Get("/:id", middleware.AdminOnly(), h.Get)
}
