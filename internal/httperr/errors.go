package httperr

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// FieldError is implemented by validation failures that name their fields.
type FieldError interface {
	error
	Fields() map[string]string
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Respond maps a use case or persistence error to the JSON error taxonomy.
func Respond(c *gin.Context, err error) {
	var fe FieldError
	var be BusinessError

	switch {
	case errors.As(err, &fe):
		Validation(c, fe.Fields())
	case IsNotFound(err):
		NotFound(c, "not_found", "Resource not found")
	case IsUniqueViolation(err):
		BadRequest(c, "duplicate", "A record with the same unique value already exists")
	case errors.As(err, &be):
		if be.Status != 0 {
			Write(c, be.Status, be.Code, be.message())
			return
		}
		BadRequest(c, be.Code, be.message())
	default:
		Internal(c, "internal_error", "Internal server error", err)
	}
}
