package provider

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"money-transfer-service/internal/core/domain"
	"money-transfer-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrConflictingRequest is returned when an id is resubmitted with different parameters.
var ErrConflictingRequest = errors.New("withdrawal provider: id reused with different parameters")

// Options configures the simulated provider.
type Options struct {
	// ProcessingTime is how long a request reports PROCESSING before its final status.
	ProcessingTime time.Duration
	// FailureRate is the probability in [0,1] that a request ends FAILED.
	FailureRate float64
	// Latency delays every call, simulating a remote service.
	Latency time.Duration
}

type request struct {
	address  string
	amount   domain.Amount
	final    domain.WithdrawalStatus
	settleAt time.Time
}

// Simulated is an in-process stand-in for an external withdrawal provider.
// Each request picks its final status on submit and reports PROCESSING until it settles.
type Simulated struct {
	mu       sync.Mutex
	requests map[uuid.UUID]request

	opts Options
	log  zerolog.Logger
	now  func() time.Time
	roll func() float64
}

// NewSimulated creates a simulated provider.
func NewSimulated(opts Options, log zerolog.Logger) *Simulated {
	if opts.FailureRate < 0 {
		opts.FailureRate = 0
	}
	if opts.FailureRate > 1 {
		opts.FailureRate = 1
	}
	return &Simulated{
		requests: make(map[uuid.UUID]request),
		opts:     opts,
		log:      log,
		now:      time.Now,
		roll:     rand.Float64,
	}
}

// Submit accepts a withdrawal. Resubmitting identical parameters is a no-op.
func (p *Simulated) Submit(ctx context.Context, id uuid.UUID, address string, amount domain.Amount) error {
	if err := p.delay(ctx); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if existing, ok := p.requests[id]; ok {
		if existing.address != address || !existing.amount.Equal(amount) {
			return fmt.Errorf("%w: %s", ErrConflictingRequest, id)
		}
		return nil
	}

	final := domain.WithdrawalStatusCompleted
	if p.roll() < p.opts.FailureRate {
		final = domain.WithdrawalStatusFailed
	}
	p.requests[id] = request{
		address:  address,
		amount:   amount,
		final:    final,
		settleAt: p.now().Add(p.opts.ProcessingTime),
	}

	p.log.Debug().
		Str("withdrawal_id", id.String()).
		Str("final_status", string(final)).
		Msg("provider accepted withdrawal")

	return nil
}

// QueryStatus returns PROCESSING until the request settles, then its final status.
func (p *Simulated) QueryStatus(ctx context.Context, id uuid.UUID) (domain.WithdrawalStatus, error) {
	if err := p.delay(ctx); err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	req, ok := p.requests[id]
	if !ok {
		return "", ports.ErrUnknownWithdrawal
	}
	if p.now().Before(req.settleAt) {
		return domain.WithdrawalStatusProcessing, nil
	}
	return req.final, nil
}

// Ping implements ports.HealthChecker.
func (p *Simulated) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Name implements ports.HealthChecker.
func (p *Simulated) Name() string {
	return "withdrawal-provider"
}

func (p *Simulated) delay(ctx context.Context) error {
	if p.opts.Latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.opts.Latency)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var (
	_ ports.WithdrawalProvider = (*Simulated)(nil)
	_ ports.HealthChecker      = (*Simulated)(nil)
)
