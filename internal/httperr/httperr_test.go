package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fieldErr map[string]string

func (f fieldErr) Error() string              { return "invalid" }
func (f fieldErr) Fields() map[string]string { return f }

func respond(t *testing.T, err error) (*httptest.ResponseRecorder, HTTPError) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Respond(c, err)

	var body HTTPError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestRespond(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", fieldErr{"patientAge": "Age must be between 1 and 120"}, http.StatusBadRequest, "validation_failed"},
		{"not found", fmt.Errorf("load: %w", gorm.ErrRecordNotFound), http.StatusNotFound, "not_found"},
		{"pg unique", &pgconn.PgError{Code: "23505"}, http.StatusBadRequest, "duplicate"},
		{"gorm duplicated", gorm.ErrDuplicatedKey, http.StatusBadRequest, "duplicate"},
		{"sqlite unique", errors.New("UNIQUE constraint failed: services.slug"), http.StatusBadRequest, "duplicate"},
		{"business", ErrBusiness("invalid_state"), http.StatusBadRequest, "invalid_state"},
		{"business with status", ErrStatus(http.StatusForbidden, "not_owner", "Not yours"), http.StatusForbidden, "not_owner"},
		{"unexpected", errors.New("db down"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := respond(t, tt.err)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestRespond_ValidationFields(t *testing.T) {
	_, body := respond(t, fieldErr{"patientAge": "Age must be between 1 and 120"})
	assert.Equal(t, "Age must be between 1 and 120", body.Fields["patientAge"])
}

func TestInternal_HidesDetailsOutsideDevelopment(t *testing.T) {
	ShowDetails = false
	_, body := respond(t, errors.New("pq: connection reset"))
	assert.Empty(t, body.Details)

	ShowDetails = true
	defer func() { ShowDetails = false }()
	_, body = respond(t, errors.New("pq: connection reset"))
	assert.Equal(t, "pq: connection reset", body.Details)
}

func TestIsBusiness(t *testing.T) {
	err := fmt.Errorf("wrap: %w", ErrBusinessMsg("cannot_delete_self", "You cannot delete your own account"))
	assert.True(t, IsBusiness(err, "cannot_delete_self"))
	assert.False(t, IsBusiness(err, "other"))
	assert.False(t, IsUniqueViolation(nil))
}
