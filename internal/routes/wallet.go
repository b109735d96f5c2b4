package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kobopay/kobopay/internal/wallet"
)

// RegisterWalletRoutes wires wallet endpoints for authenticated users.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	group := r.Group("/wallet")
	group.Get("/me", h.Me)
	group.Get("/balance", h.Balance)
	group.Post("/fund", h.Fund)
	group.Post("/deduct", h.Deduct)
	group.Get("/transactions", h.Transactions)
}
