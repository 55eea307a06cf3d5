package ports

import (
	"context"
	"time"

	"money-transfer-service/internal/core/domain"

	"github.com/google/uuid"
)

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

// LedgerService owns accounts and pending withdrawals.
// Every method is safe for concurrent use.
type LedgerService interface {
	CreateAccount(ctx context.Context, req CreateAccountRequest) (*domain.Account, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	Transfer(ctx context.Context, req TransferRequest) error
	InitiateWithdrawal(ctx context.Context, req WithdrawalRequest) (uuid.UUID, error)
	// GetWithdrawalStatus reconciles the withdrawal against the provider before answering,
	// so a terminal status observed here has already been applied to balances.
	GetWithdrawalStatus(ctx context.Context, id uuid.UUID) (domain.WithdrawalStatus, error)
}

// CreateAccountRequest holds input for account creation. A nil ID requests a generated one.
type CreateAccountRequest struct {
	ID             uuid.UUID
	Name           string
	InitialBalance domain.Amount
}

// TransferRequest holds input for an internal transfer.
type TransferRequest struct {
	SenderAccountID   uuid.UUID
	ReceiverAccountID uuid.UUID
	Amount            domain.Amount
}

// WithdrawalRequest holds input for an outbound withdrawal.
type WithdrawalRequest struct {
	SenderAccountID uuid.UUID
	Address         string
	Amount          domain.Amount
}

// RateLimitStore counts requests per key in fixed windows.
type RateLimitStore interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error)
}

// RateLimitResult holds the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   int64 // Unix timestamp
}
