package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string            `json:"error_code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	HTTPStatus int               `json:"-"`
	Err        error             `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail returns a copy of e carrying an extra client-visible detail.
func (e *AppError) WithDetail(key, value string) *AppError {
	out := *e
	out.Details = make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		out.Details[k] = v
	}
	out.Details[key] = value
	return &out
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Ledger (LED) ----

func ErrInvalidAmount(err error) *AppError {
	return Wrap("LED_001", "Amount must be positive", http.StatusBadRequest, err)
}

func ErrInsufficientBalance(err error) *AppError {
	return Wrap("LED_002", "Insufficient balance", http.StatusUnprocessableEntity, err)
}

// ---- Accounts (ACC) ----

func ErrAccountNotFound(err error) *AppError {
	return Wrap("ACC_001", "Account not found", http.StatusNotFound, err)
}

func ErrAccountExists(err error) *AppError {
	return Wrap("ACC_002", "Account already exists", http.StatusConflict, err)
}

// ---- Withdrawals (WDR) ----

func ErrWithdrawalNotFound(err error) *AppError {
	return Wrap("WDR_001", "Withdrawal not found", http.StatusNotFound, err)
}

func ErrProviderUnavailable(err error) *AppError {
	return Wrap("WDR_002", "Withdrawal provider unavailable", http.StatusServiceUnavailable, err)
}

// ---- Validation (VAL) ----

// Validation returns a VAL_001 error for malformed client input.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

func ErrBodyTooLarge() *AppError {
	return New("VAL_002", "Request body too large", http.StatusRequestEntityTooLarge)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
