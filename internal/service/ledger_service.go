package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"money-transfer-service/internal/core/domain"
	"money-transfer-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	defaultReconcileInterval       = time.Second
	defaultProviderTimeout         = 2 * time.Second
	defaultMaxConcurrentReconciles = 16
	defaultMaxSubmitAttempts       = 5
)

// LedgerOptions tunes withdrawal reconciliation. Zero values fall back to defaults.
type LedgerOptions struct {
	ReconcileInterval       time.Duration
	ProviderTimeout         time.Duration
	MaxConcurrentReconciles int
	// MaxSubmitAttempts bounds how often a withdrawal the provider has never acknowledged
	// is submitted before it is resolved as FAILED and refunded.
	MaxSubmitAttempts int
}

func (o LedgerOptions) withDefaults() LedgerOptions {
	if o.ReconcileInterval <= 0 {
		o.ReconcileInterval = defaultReconcileInterval
	}
	if o.ProviderTimeout <= 0 {
		o.ProviderTimeout = defaultProviderTimeout
	}
	if o.MaxConcurrentReconciles <= 0 {
		o.MaxConcurrentReconciles = defaultMaxConcurrentReconciles
	}
	if o.MaxSubmitAttempts <= 0 {
		o.MaxSubmitAttempts = defaultMaxSubmitAttempts
	}
	return o
}

// LedgerSnapshot is a consistent copy of the ledger state taken under a single lock acquisition.
type LedgerSnapshot struct {
	Accounts []domain.Account
	Pending  []domain.Withdrawal
}

// Holdings returns the sum of all balances plus all funds held by pending withdrawals.
// It only changes through account creation and completed withdrawals.
func (s LedgerSnapshot) Holdings() domain.Amount {
	total := domain.ZeroAmount
	for _, a := range s.Accounts {
		total = total.Add(a.Balance)
	}
	for _, w := range s.Pending {
		total = total.Add(w.Amount)
	}
	return total
}

// ReconcileReport summarizes one reconciliation pass. Status counters count observations,
// not resolutions performed by this pass.
type ReconcileReport struct {
	Checked    int
	Processing int
	Completed  int
	Failed     int
	Errors     int
}

// LedgerServiceImpl implements ports.LedgerService.
//
// Accounts and pending withdrawals share one mutex. Provider calls are made without it;
// only interpreting a provider answer and applying its effect happen under the lock.
type LedgerServiceImpl struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*domain.Account
	pending  map[uuid.UUID]*domain.Withdrawal

	provider ports.WithdrawalProvider
	inflight singleflight.Group
	opts     LedgerOptions
	metrics  *Metrics
	log      zerolog.Logger

	reconciler *reconciler
}

// NewLedgerService creates an empty ledger. The reconciler is not started; call Start.
// metrics may be nil.
func NewLedgerService(
	provider ports.WithdrawalProvider,
	opts LedgerOptions,
	metrics *Metrics,
	log zerolog.Logger,
) *LedgerServiceImpl {
	s := &LedgerServiceImpl{
		accounts: make(map[uuid.UUID]*domain.Account),
		pending:  make(map[uuid.UUID]*domain.Withdrawal),
		provider: provider,
		opts:     opts.withDefaults(),
		metrics:  metrics,
		log:      log,
	}
	s.reconciler = newReconciler(s.ReconcilePending, s.opts.ReconcileInterval, log)
	return s
}

// Start launches the periodic reconciliation loop.
func (s *LedgerServiceImpl) Start(ctx context.Context) error {
	return s.reconciler.Start(ctx)
}

// Stop halts the reconciliation loop and waits for an in-flight pass to finish,
// or for ctx to expire.
func (s *LedgerServiceImpl) Stop(ctx context.Context) error {
	return s.reconciler.Stop(ctx)
}

// CreateAccount registers a new account with an opening balance.
func (s *LedgerServiceImpl) CreateAccount(_ context.Context, req ports.CreateAccountRequest) (*domain.Account, error) {
	if req.InitialBalance.IsNegative() {
		return nil, &domain.InvalidAmountError{Amount: req.InitialBalance}
	}

	id := req.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[id]; exists {
		return nil, &domain.DuplicateAccountError{AccountID: id}
	}

	acc := &domain.Account{ID: id, Name: req.Name, Balance: req.InitialBalance}
	s.accounts[id] = acc

	s.log.Info().
		Str("account_id", id.String()).
		Str("balance", acc.Balance.String()).
		Msg("account created")

	out := *acc
	return &out, nil
}

// GetAccount returns a copy of the account as of the latest committed mutation.
func (s *LedgerServiceImpl) GetAccount(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, err := s.accountLocked(id)
	if err != nil {
		return nil, err
	}
	out := *acc
	return &out, nil
}

// Transfer moves funds between two accounts. The balance check and both mutations
// form one critical section.
func (s *LedgerServiceImpl) Transfer(_ context.Context, req ports.TransferRequest) error {
	err := s.transfer(req)
	s.metrics.observeTransfer(err)
	return err
}

func (s *LedgerServiceImpl) transfer(req ports.TransferRequest) error {
	if !req.Amount.IsPositive() {
		return &domain.InvalidAmountError{Amount: req.Amount}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sender, err := s.accountLocked(req.SenderAccountID)
	if err != nil {
		return err
	}
	receiver, err := s.accountLocked(req.ReceiverAccountID)
	if err != nil {
		return err
	}

	if !sender.CanDebit(req.Amount) {
		return &domain.InsufficientBalanceError{
			AccountID: sender.ID,
			Balance:   sender.Balance,
			Requested: req.Amount,
		}
	}

	// A self-transfer passes the same checks and nets to zero.
	sender.Debit(req.Amount)
	receiver.Credit(req.Amount)

	s.log.Info().
		Str("sender_account_id", sender.ID.String()).
		Str("receiver_account_id", receiver.ID.String()).
		Str("amount", req.Amount.String()).
		Msg("transfer applied")

	return nil
}

// InitiateWithdrawal debits the sender, records the withdrawal as pending and submits it
// to the provider. The funds stay out of the spendable balance until reconciliation
// observes a terminal status.
func (s *LedgerServiceImpl) InitiateWithdrawal(ctx context.Context, req ports.WithdrawalRequest) (uuid.UUID, error) {
	if !req.Amount.IsPositive() {
		return uuid.Nil, &domain.InvalidAmountError{Amount: req.Amount}
	}

	w, err := s.reserveWithdrawal(req)
	if err != nil {
		return uuid.Nil, err
	}
	s.metrics.withdrawalInitiated()

	// The debit is already committed, so the submit must not be abandoned with the request.
	submitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.ProviderTimeout)
	defer cancel()

	if err := s.provider.Submit(submitCtx, w.ID, w.Address, w.Amount); err != nil {
		s.metrics.providerError("submit")
		s.recordFailedSubmit(w.ID)
		s.log.Warn().
			Err(err).
			Str("withdrawal_id", w.ID.String()).
			Msg("withdrawal submit failed, reconciliation will resubmit it")
	}

	s.log.Info().
		Str("withdrawal_id", w.ID.String()).
		Str("account_id", w.SenderAccountID.String()).
		Str("amount", w.Amount.String()).
		Msg("withdrawal initiated")

	return w.ID, nil
}

// reserveWithdrawal performs the debit and records the pending withdrawal atomically.
func (s *LedgerServiceImpl) reserveWithdrawal(req ports.WithdrawalRequest) (domain.Withdrawal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sender, err := s.accountLocked(req.SenderAccountID)
	if err != nil {
		return domain.Withdrawal{}, err
	}
	if !sender.CanDebit(req.Amount) {
		return domain.Withdrawal{}, &domain.InsufficientBalanceError{
			AccountID: sender.ID,
			Balance:   sender.Balance,
			Requested: req.Amount,
		}
	}

	id := uuid.New()
	for s.pending[id] != nil {
		id = uuid.New()
	}

	sender.Debit(req.Amount)
	w := &domain.Withdrawal{
		ID:              id,
		SenderAccountID: sender.ID,
		Address:         req.Address,
		Amount:          req.Amount,
		CreatedAt:       time.Now().UTC(),
	}
	s.pending[id] = w
	s.metrics.setPending(len(s.pending))

	return *w, nil
}

// GetWithdrawalStatus reconciles the withdrawal and returns the provider's view of it.
// A provider failure on a still-pending withdrawal is reported as PROCESSING.
func (s *LedgerServiceImpl) GetWithdrawalStatus(ctx context.Context, id uuid.UUID) (domain.WithdrawalStatus, error) {
	status, err := s.reconcile(ctx, id)
	if err == nil {
		return status, nil
	}

	if s.isPending(id) {
		s.log.Warn().
			Err(err).
			Str("withdrawal_id", id.String()).
			Msg("provider query failed, reporting withdrawal as processing")
		return domain.WithdrawalStatusProcessing, nil
	}
	if errors.Is(err, ports.ErrUnknownWithdrawal) {
		return "", &domain.WithdrawalNotFoundError{WithdrawalID: id}
	}
	return "", fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
}

// ReconcilePending reconciles every currently pending withdrawal once. Each id is handled
// independently with its own provider timeout, so one slow id cannot hold up the others.
func (s *LedgerServiceImpl) ReconcilePending(ctx context.Context) ReconcileReport {
	start := time.Now()
	ids := s.pendingIDs()

	var (
		mu     sync.Mutex
		report = ReconcileReport{Checked: len(ids)}
		g      errgroup.Group
	)
	g.SetLimit(s.opts.MaxConcurrentReconciles)

	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			status, err := s.reconcile(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Errors++
				s.log.Warn().
					Err(err).
					Str("withdrawal_id", id.String()).
					Msg("withdrawal status query failed, retrying next tick")
				return nil
			}
			switch status {
			case domain.WithdrawalStatusCompleted:
				report.Completed++
			case domain.WithdrawalStatusFailed:
				report.Failed++
			default:
				report.Processing++
			}
			return nil
		})
	}
	_ = g.Wait()

	s.metrics.observePass(time.Since(start))
	return report
}

// reconcile queries the provider for id and applies a terminal answer. Overlapping calls
// for the same id share one provider query and one application; the flight is bounded by
// the provider timeout rather than by any single caller's context.
func (s *LedgerServiceImpl) reconcile(ctx context.Context, id uuid.UUID) (domain.WithdrawalStatus, error) {
	v, err, _ := s.inflight.Do(id.String(), func() (any, error) {
		queryCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.ProviderTimeout)
		defer cancel()

		status, err := s.provider.QueryStatus(queryCtx, id)
		if errors.Is(err, ports.ErrUnknownWithdrawal) {
			if w, ok := s.pendingWithdrawal(id); ok {
				return s.resubmit(ctx, w)
			}
		}
		if err != nil {
			s.metrics.providerError("query")
			return nil, fmt.Errorf("query withdrawal %s: %w", id, err)
		}
		return s.applyStatus(id, status), nil
	})
	if err != nil {
		return "", err
	}
	return v.(domain.WithdrawalStatus), nil
}

// resubmit hands a pending withdrawal the provider does not know about back to it.
// Once MaxSubmitAttempts submits have gone unacknowledged the withdrawal is failed and refunded.
func (s *LedgerServiceImpl) resubmit(ctx context.Context, w domain.Withdrawal) (domain.WithdrawalStatus, error) {
	submitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.ProviderTimeout)
	defer cancel()

	err := s.provider.Submit(submitCtx, w.ID, w.Address, w.Amount)
	if err == nil {
		s.log.Info().
			Str("withdrawal_id", w.ID.String()).
			Int("failed_submits", w.FailedSubmits).
			Msg("withdrawal resubmitted")
		return domain.WithdrawalStatusProcessing, nil
	}

	s.metrics.providerError("submit")
	attempts := s.recordFailedSubmit(w.ID)
	if attempts < s.opts.MaxSubmitAttempts {
		return "", fmt.Errorf("resubmit withdrawal %s: %w", w.ID, err)
	}

	s.log.Warn().
		Err(err).
		Str("withdrawal_id", w.ID.String()).
		Int("failed_submits", attempts).
		Msg("provider never acknowledged withdrawal, failing it")
	return s.applyStatus(w.ID, domain.WithdrawalStatusFailed), nil
}

// applyStatus interprets a provider status for id under the ledger lock. Only the call that
// still finds the pending record mutates anything.
func (s *LedgerServiceImpl) applyStatus(id uuid.UUID, status domain.WithdrawalStatus) domain.WithdrawalStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.pending[id]
	if !ok {
		return status
	}

	switch status {
	case domain.WithdrawalStatusProcessing:
		return status
	case domain.WithdrawalStatusFailed:
		if sender, ok := s.accounts[w.SenderAccountID]; ok {
			sender.Credit(w.Amount)
		} else {
			s.log.Error().
				Str("withdrawal_id", id.String()).
				Str("account_id", w.SenderAccountID.String()).
				Msg("refund target account missing")
		}
	case domain.WithdrawalStatusCompleted:
		// Funds were debited at initiation and have now left the ledger.
	default:
		s.log.Warn().
			Str("withdrawal_id", id.String()).
			Str("status", string(status)).
			Msg("provider reported unknown status, keeping withdrawal pending")
		return domain.WithdrawalStatusProcessing
	}

	delete(s.pending, id)
	s.metrics.withdrawalResolved(status)
	s.metrics.setPending(len(s.pending))

	s.log.Info().
		Str("withdrawal_id", id.String()).
		Str("account_id", w.SenderAccountID.String()).
		Str("amount", w.Amount.String()).
		Str("status", string(status)).
		Msg("withdrawal resolved")

	return status
}

// Snapshot returns a consistent copy of all accounts and pending withdrawals.
func (s *LedgerServiceImpl) Snapshot() LedgerSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := LedgerSnapshot{
		Accounts: make([]domain.Account, 0, len(s.accounts)),
		Pending:  make([]domain.Withdrawal, 0, len(s.pending)),
	}
	for _, a := range s.accounts {
		snap.Accounts = append(snap.Accounts, *a)
	}
	for _, w := range s.pending {
		snap.Pending = append(snap.Pending, *w)
	}
	return snap
}

func (s *LedgerServiceImpl) pendingIDs() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]uuid.UUID, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	return ids
}

func (s *LedgerServiceImpl) pendingWithdrawal(id uuid.UUID) (domain.Withdrawal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.pending[id]
	if !ok {
		return domain.Withdrawal{}, false
	}
	return *w, true
}

// recordFailedSubmit returns the updated count, or 0 once the withdrawal is no longer pending.
func (s *LedgerServiceImpl) recordFailedSubmit(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.pending[id]
	if !ok {
		return 0
	}
	w.FailedSubmits++
	return w.FailedSubmits
}

func (s *LedgerServiceImpl) isPending(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[id]
	return ok
}

// accountLocked must be called with s.mu held.
func (s *LedgerServiceImpl) accountLocked(id uuid.UUID) (*domain.Account, error) {
	acc, ok := s.accounts[id]
	if !ok {
		return nil, &domain.AccountNotFoundError{AccountID: id}
	}
	return acc, nil
}

var _ ports.LedgerService = (*LedgerServiceImpl)(nil)
