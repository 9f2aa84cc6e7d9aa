package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	LocUserID   = "user_id"
	LocUserRole = "userRole"
	LocUserName = "user_name"
)

// Ambil user_id dari c.Locals("user_id").
// 401 kalau belum login, 400 kalau formatnya tidak valid.
func GetUserIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	v := c.Locals(LocUserID)
	if v == nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "not logged in")
	}

	switch t := v.(type) {
	case uuid.UUID:
		if t == uuid.Nil {
			return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "not logged in")
		}
		return t, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "not logged in")
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid user id in token")
		}
		return id, nil
	default:
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid user id in token")
	}
}

func GetRole(c *fiber.Ctx) string {
	r, _ := c.Locals(LocUserRole).(string)
	return strings.ToLower(strings.TrimSpace(r))
}

// ParseUUIDParam: path param → uuid, 400 kalau tidak valid.
func ParseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(c.Params(name))
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, name+" is not a valid uuid")
	}
	return id, nil
}

// ParseUUIDQuery: query param wajib → uuid.
func ParseUUIDQuery(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Query(name)))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, name+" is not a valid uuid")
	}
	return id, nil
}

// OptionalUUIDQuery: kosong → nil, tidak valid → 400.
func OptionalUUIDQuery(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	if strings.TrimSpace(c.Query(name)) == "" {
		return nil, nil
	}
	id, err := ParseUUIDQuery(c, name)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
