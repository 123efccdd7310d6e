package order

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/htetaung/storefront-backend/internal/user"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterProtectedRoutes mounts the order endpoints behind authentication.
// Staff routes go first so "/orders/staff/..." is not swallowed by the
// ":order_number" parameter.
func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	staff := app.Group("/orders/staff", user.RequireStaff)
	staff.Get("/all/", h.StaffList)
	staff.Get("/stats/", h.StaffStats)
	staff.Get("/:order_number/", h.StaffGet)
	staff.Patch("/:order_number/update/", h.StaffUpdate)
	staff.Post("/:order_number/cancel/", h.StaffCancel)
	staff.Post("/:order_number/received-back/", h.ReceivedBack)

	app.Post("/orders/create/", h.Create)
	app.Get("/orders/", h.List)
	app.Get("/orders/:order_number/", h.Get)
	app.Get("/orders/:order_number/invoice/", h.Invoice)
	app.Post("/orders/:order_number/cancel/", h.Cancel)
}

type createOrderRequest struct {
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	City          string `json:"city"`
	PostalCode    string `json:"postal_code"`
	Country       string `json:"country"`
	PaymentMethod string `json:"payment_method"`
	PaymentStatus string `json:"payment_status"`
}

func (h *Handler) Create(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if missing := missingShippingFields(&req); len(missing) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing required fields: " + strings.Join(missing, ", "),
		})
	}

	o, err := h.service.Create(c.Context(), userID, CreateRequest{
		Shipping: ShippingInfo{
			FullName:   req.FullName,
			Email:      req.Email,
			Phone:      req.Phone,
			Address:    req.Address,
			City:       req.City,
			PostalCode: req.PostalCode,
			Country:    req.Country,
		},
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: req.PaymentStatus,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyCart),
			errors.Is(err, ErrInvalidPaymentMethod),
			errors.Is(err, ErrInvalidPaymentStatus):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create order"})
	}

	return c.Status(fiber.StatusCreated).JSON(o)
}

func missingShippingFields(req *createOrderRequest) []string {
	missing := make([]string, 0)
	for _, field := range []struct {
		name  string
		value string
	}{
		{"full_name", req.FullName},
		{"email", req.Email},
		{"address", req.Address},
		{"city", req.City},
		{"postal_code", req.PostalCode},
		{"country", req.Country},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	return missing
}

func (h *Handler) List(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	orders, err := h.service.ListByUser(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch orders"})
	}
	return c.JSON(fiber.Map{"orders": orders, "count": len(orders)})
}

func (h *Handler) Get(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	o, err := h.service.GetUserOrder(c.Context(), userID, c.Params("order_number"))
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch order"})
	}
	return c.JSON(o)
}

func (h *Handler) Invoice(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	o, err := h.service.GetUserOrder(c.Context(), userID, c.Params("order_number"))
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch order"})
	}

	return c.JSON(fiber.Map{
		"invoice_number": "INV-" + o.OrderNumber,
		"issued_at":      o.CreatedAt,
		"order":          o,
		"customer": fiber.Map{
			"name":    o.Shipping.FullName,
			"email":   o.Shipping.Email,
			"address": o.Shipping.Address,
			"city":    o.Shipping.City,
			"country": o.Shipping.Country,
		},
	})
}

func (h *Handler) Cancel(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.BodyParser(&req)
	if req.Reason == "" {
		req.Reason = "Cancelled by customer"
	}

	o, err := h.service.Cancel(c.Context(), userID, c.Params("order_number"), req.Reason, false)
	if err != nil {
		return cancelError(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) StaffList(c *fiber.Ctx) error {
	filter := StaffFilter{Limit: c.QueryInt("limit", 100)}
	if s := c.Query("status"); s != "" {
		filter.Statuses = strings.Split(s, ",")
	}
	if s := c.Query("payment_status"); s != "" {
		filter.PaymentStatuses = strings.Split(s, ",")
	}

	orders, err := h.service.ListAll(c.Context(), filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch orders"})
	}
	return c.JSON(fiber.Map{"orders": orders, "count": len(orders)})
}

func (h *Handler) StaffStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch order stats"})
	}
	return c.JSON(stats)
}

func (h *Handler) StaffGet(c *fiber.Ctx) error {
	o, err := h.service.GetByNumber(c.Context(), c.Params("order_number"))
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch order"})
	}
	return c.JSON(o)
}

type staffUpdateRequest struct {
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	PaymentMethod string `json:"payment_method"`
}

func (h *Handler) StaffUpdate(c *fiber.Ctx) error {
	actorID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var req staffUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	o, err := h.service.Update(c.Context(), actorID, c.Params("order_number"), StaffUpdate{
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update order"})
	}
	return c.JSON(o)
}

func (h *Handler) StaffCancel(c *fiber.Ctx) error {
	actorID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.BodyParser(&req)
	if req.Reason == "" {
		req.Reason = "Cancelled by staff"
	}

	o, err := h.service.Cancel(c.Context(), actorID, c.Params("order_number"), req.Reason, true)
	if err != nil {
		return cancelError(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) ReceivedBack(c *fiber.Ctx) error {
	actorID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	o, err := h.service.ReceivedBack(c.Context(), actorID, c.Params("order_number"))
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, ErrNeverShipped), errors.Is(err, ErrAlreadyReceived):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to mark order received back"})
	}
	return c.JSON(o)
}

func cancelError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrOrderNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrAlreadyCancelled), errors.Is(err, ErrAlreadyShipped):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to cancel order"})
}
