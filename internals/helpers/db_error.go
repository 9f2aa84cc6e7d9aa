package helper

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// MapDBError menerjemahkan error DB ke (status, pesan).
// 23505 unique_violation, 23503 foreign_key_violation, 23514 check_violation
func MapDBError(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return http.StatusNotFound, "record not found"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return http.StatusConflict, "duplicate data (unique violation)"
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return http.StatusBadRequest, "referenced record not found (foreign key violation)"
	}

	var code string
	var pgErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgErr):
		code = pgErr.Code
	case errors.As(err, &pqErr):
		code = string(pqErr.Code)
	}
	switch code {
	case "23505":
		return http.StatusConflict, "duplicate data (unique violation)"
	case "23503":
		return http.StatusBadRequest, "referenced record not found (foreign key violation)"
	case "23514":
		return http.StatusBadRequest, "data violates a check constraint"
	}
	return http.StatusInternalServerError, err.Error()
}

func IsUniqueViolation(err error) bool {
	status, _ := MapDBError(err)
	return status == http.StatusConflict
}

func WriteDBError(c *fiber.Ctx, err error) error {
	code, msg := MapDBError(err)
	return JsonError(c, code, msg)
}
