package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"go-employee/internal/shared/apperror"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

func TestToHTTP(t *testing.T) {
	t.Run("app error keeps status and code", func(t *testing.T) {
		err := apperror.New(apperror.CodeNotFound, "Employee not found", http.StatusNotFound)

		httpErr := apperror.ToHTTP(fmt.Errorf("lookup: %w", err))

		assert.Equal(t, http.StatusNotFound, httpErr.Status)
		assert.Equal(t, apperror.CodeNotFound, httpErr.Code)
		assert.Equal(t, "Employee not found", httpErr.Message)
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		httpErr := apperror.ToHTTP(errors.New("socket closed"))

		assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
		assert.Equal(t, apperror.CodeInternalError, httpErr.Code)
		assert.NotContains(t, httpErr.Message, "socket")
	})
}

func TestAppError_WrapAndIs(t *testing.T) {
	cause := errors.New("boom")
	wrapped := apperror.Wrap(cause, apperror.CodeInternalError, "failed", http.StatusInternalServerError)

	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, "failed: boom", wrapped.Error())
	assert.Nil(t, apperror.Wrap(nil, apperror.CodeInternalError, "failed", 500))

	withDetails := apperror.ErrInvalidInput.WithDetails("x")
	assert.ErrorIs(t, withDetails, apperror.ErrInvalidInput)
	assert.Nil(t, apperror.ErrInvalidInput.Details)
}

type sampleRequest struct {
	JoiningDate string   `json:"joining_date" binding:"required"`
	Salary      *float64 `json:"salary" binding:"required,gte=0"`
}

func TestMapValidationError(t *testing.T) {
	apperror.Init()

	t.Run("required field", func(t *testing.T) {
		zero := 1.0
		err := binding.Validator.ValidateStruct(sampleRequest{Salary: &zero})

		appErr := apperror.MapValidationError(err)

		assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
		assert.Equal(t, "Joining Date is required", appErr.Message)
	})

	t.Run("minimum violated", func(t *testing.T) {
		negative := -1.0
		err := binding.Validator.ValidateStruct(sampleRequest{JoiningDate: "2024-01-01", Salary: &negative})

		appErr := apperror.MapValidationError(err)

		assert.Equal(t, "Salary must be at least 0", appErr.Message)
	})

	t.Run("non validator error", func(t *testing.T) {
		appErr := apperror.MapValidationError(errors.New("unexpected EOF"))

		assert.Equal(t, "Invalid input", appErr.Message)
		assert.Equal(t, "unexpected EOF", appErr.Details)
	})
}
