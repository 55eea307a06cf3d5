package service

import (
	"context"
	"errors"
	"sync"

	"money-transfer-service/internal/core/domain"
	"money-transfer-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// scriptedProvider accepts submits and reports PROCESSING until resolveAll assigns
// final statuses by submission order. The first dropSubmits submits are lost.
type scriptedProvider struct {
	mu          sync.Mutex
	order       []uuid.UUID
	statuses    map[uuid.UUID]domain.WithdrawalStatus
	dropSubmits int
	submits     int
}

func newScriptedProvider() *scriptedProvider {
	return &scriptedProvider{statuses: make(map[uuid.UUID]domain.WithdrawalStatus)}
}

func (p *scriptedProvider) Submit(_ context.Context, id uuid.UUID, _ string, _ domain.Amount) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.submits++
	if p.dropSubmits > 0 {
		p.dropSubmits--
		return errors.New("submit timed out")
	}
	if _, ok := p.statuses[id]; ok {
		return nil
	}
	p.order = append(p.order, id)
	p.statuses[id] = domain.WithdrawalStatusProcessing
	return nil
}

func (p *scriptedProvider) QueryStatus(_ context.Context, id uuid.UUID) (domain.WithdrawalStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	status, ok := p.statuses[id]
	if !ok {
		return "", ports.ErrUnknownWithdrawal
	}
	return status, nil
}

func (p *scriptedProvider) resolveAll(pick func(i int) domain.WithdrawalStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, id := range p.order {
		p.statuses[id] = pick(i)
	}
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

var _ ports.WithdrawalProvider = (*scriptedProvider)(nil)
