package identity

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes user registration and profile endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds an identity HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type userResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Register provisions a user and their wallet.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := requireFields([]requiredField{
		{"Email", req.Email},
		{"Password", req.Password},
		{"First Name", req.FirstName},
		{"Last Name", req.LastName},
	}); err != nil {
		return err
	}
	user, w, err := h.service.Register(c.UserContext(), Registration{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"user": toUserResponse(user),
		"wallet": fiber.Map{
			"id":             w.ID,
			"account_number": w.AccountNumber,
			"balance":        w.Balance.StringFixed(2),
		},
	})
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	user, err := h.service.Get(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(toUserResponse(user))
}

// Get returns a user by id. Admin only; enforced by middleware.
func (h *Handler) Get(c *fiber.Ctx) error {
	user, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(toUserResponse(user))
}

// updatableFields is the allow list for profile updates. Anything else in the
// request body — the credential in particular — is rejected outright.
var updatableFields = map[string]bool{
	"first_name": true,
	"last_name":  true,
	"email":      true,
}

// Update applies an allow-listed profile update for the authenticated user.
func (h *Handler) Update(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &raw); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	for field := range raw {
		if !updatableFields[field] {
			return fiber.NewError(http.StatusBadRequest, "field "+field+" cannot be updated")
		}
	}

	var update ProfileUpdate
	if err := decodeField(raw, "first_name", &update.FirstName); err != nil {
		return err
	}
	if err := decodeField(raw, "last_name", &update.LastName); err != nil {
		return err
	}
	if err := decodeField(raw, "email", &update.Email); err != nil {
		return err
	}

	user, err := h.service.UpdateProfile(c.UserContext(), userID, update)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(toUserResponse(user))
}

func decodeField(raw map[string]json.RawMessage, key string, dest **string) error {
	msg, ok := raw[key]
	if !ok {
		return nil
	}
	var value string
	if err := json.Unmarshal(msg, &value); err != nil {
		return fiber.NewError(http.StatusBadRequest, "field "+key+" must be a string")
	}
	if strings.TrimSpace(value) == "" {
		return fiber.NewError(http.StatusBadRequest, "field "+key+" must not be empty")
	}
	*dest = &value
	return nil
}

type requiredField struct {
	name  string
	value string
}

func requireFields(fields []requiredField) error {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	if len(missing) == 1 {
		return fiber.NewError(http.StatusBadRequest, missing[0]+" is required")
	}
	return fiber.NewError(http.StatusBadRequest, strings.Join(missing, ", ")+" are required")
}

func toUserResponse(user User) userResponse {
	return userResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}
