package handler

import (
	"errors"
	"net/http"

	"money-transfer-service/internal/core/domain"
	"money-transfer-service/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

// toAppError maps ledger errors to client-facing AppErrors. Unrecognised errors become SYS_001.
func toAppError(err error) *apperror.AppError {
	var (
		appErr        *apperror.AppError
		invalidAmount *domain.InvalidAmountError
		insufficient  *domain.InsufficientBalanceError
		notFound      *domain.AccountNotFoundError
		duplicate     *domain.DuplicateAccountError
		wdrNotFound   *domain.WithdrawalNotFoundError
	)

	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.As(err, &invalidAmount):
		return apperror.ErrInvalidAmount(err).WithDetail("amount", invalidAmount.Amount.String())
	case errors.As(err, &insufficient):
		return apperror.ErrInsufficientBalance(err).
			WithDetail("account_id", insufficient.AccountID.String()).
			WithDetail("balance", insufficient.Balance.String()).
			WithDetail("requested", insufficient.Requested.String())
	case errors.As(err, &notFound):
		return apperror.ErrAccountNotFound(err).WithDetail("account_id", notFound.AccountID.String())
	case errors.As(err, &duplicate):
		return apperror.ErrAccountExists(err).WithDetail("account_id", duplicate.AccountID.String())
	case errors.As(err, &wdrNotFound):
		return apperror.ErrWithdrawalNotFound(err).WithDetail("withdrawal_id", wdrNotFound.WithdrawalID.String())
	case errors.Is(err, domain.ErrProviderUnavailable):
		return apperror.ErrProviderUnavailable(err)
	default:
		return apperror.InternalError(err)
	}
}

// bindError converts a gin binding failure into a client error.
func bindError(err error) *apperror.AppError {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return apperror.ErrBodyTooLarge()
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		appErr := apperror.Validation("Request validation failed")
		for _, fe := range verrs {
			appErr = appErr.WithDetail(fe.Field(), fe.Tag())
		}
		return appErr
	}

	return apperror.Validation("Malformed request body")
}
