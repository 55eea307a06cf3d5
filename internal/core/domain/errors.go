package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrInvalidAmount is returned for non-positive transfer/withdrawal amounts
	// and negative opening balances.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrAccountNotFound is returned when a referenced account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInsufficientBalance is returned when a debit exceeds the available balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrDuplicateAccount is returned when creating an account whose id is taken.
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrWithdrawalNotFound is returned when neither the ledger nor the provider knows a withdrawal id.
	ErrWithdrawalNotFound = errors.New("withdrawal not found")

	// ErrProviderUnavailable is returned when the withdrawal provider could not be reached
	// and the ledger has nothing to answer from.
	ErrProviderUnavailable = errors.New("withdrawal provider unavailable")
)

// InvalidAmountError carries the rejected amount.
type InvalidAmountError struct {
	Amount Amount
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidAmount, e.Amount)
}

func (e *InvalidAmountError) Unwrap() error { return ErrInvalidAmount }

// AccountNotFoundError carries the missing account id.
type AccountNotFoundError struct {
	AccountID uuid.UUID
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrAccountNotFound, e.AccountID)
}

func (e *AccountNotFoundError) Unwrap() error { return ErrAccountNotFound }

// InsufficientBalanceError carries the balance seen at check time and the requested debit.
type InsufficientBalanceError struct {
	AccountID uuid.UUID
	Balance   Amount
	Requested Amount
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%s: account %s has %s, requested %s", ErrInsufficientBalance, e.AccountID, e.Balance, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// Shortfall is the amount missing to cover the request.
func (e *InsufficientBalanceError) Shortfall() Amount {
	return e.Requested.Sub(e.Balance)
}

// DuplicateAccountError carries the colliding id.
type DuplicateAccountError struct {
	AccountID uuid.UUID
}

func (e *DuplicateAccountError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDuplicateAccount, e.AccountID)
}

func (e *DuplicateAccountError) Unwrap() error { return ErrDuplicateAccount }

// WithdrawalNotFoundError carries the unknown withdrawal id.
type WithdrawalNotFoundError struct {
	WithdrawalID uuid.UUID
}

func (e *WithdrawalNotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrWithdrawalNotFound, e.WithdrawalID)
}

func (e *WithdrawalNotFoundError) Unwrap() error { return ErrWithdrawalNotFound }
