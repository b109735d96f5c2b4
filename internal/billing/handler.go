package billing

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Handler exposes bill payment HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a billing HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type payRequest struct {
	Type     string          `json:"bill_type"`
	Customer string          `json:"customer"`
	Amount   decimal.Decimal `json:"amount"`
}

type paymentResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"bill_type"`
	Amount    string    `json:"amount"`
	Reference string    `json:"reference"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Pay purchases a bill from the authenticated user's wallet.
func (h *Handler) Pay(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var req payRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Type == "" {
		return fiber.NewError(http.StatusBadRequest, "bill_type is required")
	}
	payment, err := h.service.Pay(c.UserContext(), PayInput{
		UserID:   userID,
		Type:     BillType(req.Type),
		Customer: req.Customer,
		Amount:   req.Amount,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(toPaymentResponse(payment))
}

// History lists recent bill payments for the authenticated user.
func (h *Handler) History(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	payments, err := h.service.History(c.UserContext(), userID, limit)
	if err != nil {
		return err
	}
	out := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"bill_payments": out})
}

func toPaymentResponse(p BillPayment) paymentResponse {
	return paymentResponse{
		ID:        p.ID,
		Type:      string(p.Type),
		Amount:    p.Amount.StringFixed(2),
		Reference: p.Reference,
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt,
	}
}
