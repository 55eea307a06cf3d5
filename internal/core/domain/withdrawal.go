package domain

import (
	"time"

	"github.com/google/uuid"
)

// WithdrawalStatus is the provider-reported state of an outbound withdrawal.
type WithdrawalStatus string

const (
	WithdrawalStatusProcessing WithdrawalStatus = "PROCESSING"
	WithdrawalStatusCompleted  WithdrawalStatus = "COMPLETED"
	WithdrawalStatusFailed     WithdrawalStatus = "FAILED"
)

// IsTerminal returns true once the status can no longer change.
func (s WithdrawalStatus) IsTerminal() bool {
	return s == WithdrawalStatusCompleted || s == WithdrawalStatusFailed
}

// IsValid reports whether s is one of the known statuses.
func (s WithdrawalStatus) IsValid() bool {
	switch s {
	case WithdrawalStatusProcessing, WithdrawalStatusCompleted, WithdrawalStatusFailed:
		return true
	}
	return false
}

// Withdrawal is a pending outbound payment. The funds were debited from SenderAccountID
// at initiation and are held here until the provider reports a terminal status.
// The record exists only while pending; resolution discards it.
type Withdrawal struct {
	ID              uuid.UUID `json:"id"`
	SenderAccountID uuid.UUID `json:"sender_account_id"`
	Address         string    `json:"address"`
	Amount          Amount    `json:"amount"`
	CreatedAt       time.Time `json:"created_at"`
	// FailedSubmits counts submit attempts the provider did not acknowledge.
	FailedSubmits int `json:"failed_submits"`
}
