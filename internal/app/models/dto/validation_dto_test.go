package dto_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/clubhub/internal/app/models/dto"
)

type sample struct {
	Name  string `validate:"required"`
	Email string `validate:"required,email"`
}

func TestHandleValidationError_FieldErrors(t *testing.T) {
	err := validator.New().Struct(sample{Email: "nope"})
	require.Error(t, err)

	detail := dto.HandleValidationError(err)
	assert.Equal(t, dto.ErrorCodeValidationFailed, detail.Code)
	assert.Equal(t, "name is required", detail.Message)

	fields, ok := detail.Details.([]dto.FieldError)
	require.True(t, ok)
	assert.Len(t, fields, 2)
	assert.Equal(t, "email", fields[1].Field)
	assert.Equal(t, "email must be a valid email address", fields[1].Message)
}

func TestHandleValidationError_JSONErrors(t *testing.T) {
	var v struct {
		Year int `json:"year"`
	}
	err := json.Unmarshal([]byte(`{"year":"two"}`), &v)
	assert.Equal(t, "year", dto.HandleValidationError(err).Field)

	err = json.Unmarshal([]byte(`{`), &v)
	assert.Equal(t, "Request body is not valid JSON", dto.HandleValidationError(err).Message)

	assert.Equal(t, "Invalid request format", dto.HandleValidationError(errors.New("EOF")).Message)
}

func TestNewErrorResponse_CopiesMessage(t *testing.T) {
	resp := dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Enrollment is closed"))
	assert.False(t, resp.Success)
	assert.Equal(t, "Enrollment is closed", resp.Message)
}
