package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("VAL_001", "bad input", http.StatusBadRequest),
			expected: "[VAL_001] bad input",
		},
		{
			name:     "with wrapped error",
			appErr:   InternalError(fmt.Errorf("connection refused")),
			expected: "[SYS_001] Internal server error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := ErrInsufficientBalance(inner)

	assert.True(t, errors.Is(appErr, inner))
	assert.Nil(t, Validation("x").Unwrap())
}

func TestAppError_WithDetail(t *testing.T) {
	base := ErrAccountNotFound(nil)
	withID := base.WithDetail("account_id", "abc")
	both := withID.WithDetail("field", "sender")

	assert.Nil(t, base.Details, "original must not be mutated")
	assert.Equal(t, map[string]string{"account_id": "abc"}, withID.Details)
	assert.Equal(t, map[string]string{"account_id": "abc", "field": "sender"}, both.Details)
	assert.Equal(t, base.Code, both.Code)
}

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"InvalidAmount", ErrInvalidAmount(nil), "LED_001", 400},
		{"InsufficientBalance", ErrInsufficientBalance(nil), "LED_002", 422},
		{"AccountNotFound", ErrAccountNotFound(nil), "ACC_001", 404},
		{"AccountExists", ErrAccountExists(nil), "ACC_002", 409},
		{"WithdrawalNotFound", ErrWithdrawalNotFound(nil), "WDR_001", 404},
		{"ProviderUnavailable", ErrProviderUnavailable(nil), "WDR_002", 503},
		{"Validation", Validation("bad"), "VAL_001", 400},
		{"BodyTooLarge", ErrBodyTooLarge(), "VAL_002", 413},
		{"RateLimit", ErrRateLimitExceeded(), "RATE_001", 429},
		{"Internal", InternalError(nil), "SYS_001", 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}
