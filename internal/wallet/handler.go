package wallet

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/kobopay/kobopay/internal/ledger"
)

// Handler exposes wallet HTTP endpoints. The authenticated user id is placed
// in locals by the JWT middleware.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type fundRequest struct {
	AccountNumber string          `json:"account_number"`
	Amount        decimal.Decimal `json:"amount"`
}

type deductRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type entryResponse struct {
	ID          string    `json:"id"`
	WalletID    string    `json:"wallet_id"`
	Type        string    `json:"type"`
	Amount      string    `json:"amount"`
	Status      string    `json:"status"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Balance returns the authenticated user's wallet balance.
func (h *Handler) Balance(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	balance, err := h.service.Balance(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"balance": balance.StringFixed(2)})
}

// Me returns the authenticated user's wallet.
func (h *Handler) Me(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	w, err := h.service.Get(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"id":             w.ID,
		"account_number": w.AccountNumber,
		"balance":        w.Balance.StringFixed(2),
		"created_at":     w.CreatedAt,
	})
}

// Fund credits the wallet addressed by account number.
func (h *Handler) Fund(c *fiber.Ctx) error {
	var req fundRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.AccountNumber == "" {
		return fiber.NewError(http.StatusBadRequest, "account_number is required")
	}
	entry, err := h.service.Fund(c.UserContext(), req.AccountNumber, req.Amount)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(toEntryResponse(entry))
}

// Deduct debits the authenticated user's wallet.
func (h *Handler) Deduct(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var req deductRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	entry, err := h.service.Deduct(c.UserContext(), userID, req.Amount)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(toEntryResponse(entry))
}

// Transactions lists recent ledger entries for the authenticated user.
func (h *Handler) Transactions(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	entries, err := h.service.Entries(c.UserContext(), userID, limit)
	if err != nil {
		return err
	}
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"transactions": out})
}

func toEntryResponse(e ledger.Entry) entryResponse {
	return entryResponse{
		ID:          e.ID,
		WalletID:    e.WalletID,
		Type:        string(e.Type),
		Amount:      e.Amount.StringFixed(2),
		Status:      string(e.Status),
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
}
