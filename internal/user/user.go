package user

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("email already registered")
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsStaff      bool      `json:"is_staff"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Email
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// GetUserIDFromCtx extracts the user_id claim from the JWT token stored in
// c.Locals("user") by the jwt middleware. Shared by every protected handler.
func GetUserIDFromCtx(c *fiber.Ctx) (int64, error) {
	claims, err := claimsFromCtx(c)
	if err != nil {
		return 0, err
	}
	raw, ok := claims["user_id"]
	if !ok {
		return 0, fiber.ErrUnauthorized
	}
	switch v := raw.(type) {
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fiber.ErrUnauthorized
		}
		return id, nil
	default:
		return 0, fiber.ErrUnauthorized
	}
}

// IsStaffFromCtx reports whether the authenticated user carries the is_staff
// claim. Missing or malformed claims count as not staff.
func IsStaffFromCtx(c *fiber.Ctx) bool {
	claims, err := claimsFromCtx(c)
	if err != nil {
		return false
	}
	staff, ok := claims["is_staff"].(bool)
	return ok && staff
}

// RequireStaff is a route-level middleware guarding staff endpoints.
func RequireStaff(c *fiber.Ctx) error {
	if !IsStaffFromCtx(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "staff access required"})
	}
	return c.Next()
}

func claimsFromCtx(c *fiber.Ctx) (jwt.MapClaims, error) {
	u := c.Locals("user")
	if u == nil {
		return nil, fiber.ErrUnauthorized
	}
	tok, ok := u.(*jwt.Token)
	if !ok {
		return nil, fiber.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}
