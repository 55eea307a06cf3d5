package dto

// Amounts travel as decimal strings ("12.50") so no precision is lost in JSON.

// CreateAccountRequest is the request body for account creation. ID is optional.
type CreateAccountRequest struct {
	ID             string `json:"id" binding:"omitempty,uuid"`
	Name           string `json:"name" binding:"required,min=1,max=100"`
	InitialBalance string `json:"initial_balance" binding:"required,decimal_amount"`
}

// TransferRequest is the request body for an internal transfer.
type TransferRequest struct {
	SenderAccountID   string `json:"sender_account_id" binding:"required,uuid"`
	ReceiverAccountID string `json:"receiver_account_id" binding:"required,uuid"`
	Amount            string `json:"amount" binding:"required,decimal_amount"`
}

// WithdrawalRequest is the request body for an outbound withdrawal.
type WithdrawalRequest struct {
	SenderAccountID string `json:"sender_account_id" binding:"required,uuid"`
	Address         string `json:"address" binding:"required,max=256,printascii"`
	Amount          string `json:"amount" binding:"required,decimal_amount"`
}

// AccountResponse is the response body for account queries.
type AccountResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Balance string `json:"balance"`
}

// TransferResponse echoes an applied transfer.
type TransferResponse struct {
	SenderAccountID   string `json:"sender_account_id"`
	ReceiverAccountID string `json:"receiver_account_id"`
	Amount            string `json:"amount"`
}

// WithdrawalResponse is the response body for withdrawal initiation and status queries.
type WithdrawalResponse struct {
	WithdrawalID string `json:"withdrawal_id"`
	Status       string `json:"status"`
}
