package ports

import (
	"context"
	"errors"

	"money-transfer-service/internal/core/domain"

	"github.com/google/uuid"
)

//go:generate mockgen -source=provider.go -destination=mocks/mock_provider.go -package=mocks

// ErrUnknownWithdrawal is returned by a provider queried for an id it never accepted.
var ErrUnknownWithdrawal = errors.New("withdrawal provider: unknown withdrawal id")

// WithdrawalProvider executes outbound payments and reports their status asynchronously.
// The ledger's withdrawal id is the correlation key.
type WithdrawalProvider interface {
	// Submit hands the withdrawal to the provider. Outcome is learned only through QueryStatus.
	Submit(ctx context.Context, id uuid.UUID, address string, amount domain.Amount) error
	// QueryStatus is side-effect free and may be called any number of times.
	QueryStatus(ctx context.Context, id uuid.UUID) (domain.WithdrawalStatus, error)
}
