package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kobopay/kobopay/internal/auth"
	"github.com/kobopay/kobopay/internal/identity"
)

// RegisterAuthRoutes wires the public registration and login endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, ids *identity.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	group.Post("/register", ids.Register)
	if rateLimiter != nil {
		group.Post("/login", rateLimiter, h.Login)
	} else {
		group.Post("/login", h.Login)
	}
}
