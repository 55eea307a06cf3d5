package handler

import (
	"money-transfer-service/internal/adapter/http/dto"
	"money-transfer-service/internal/core/domain"
	"money-transfer-service/internal/core/ports"
	"money-transfer-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TransferHandler handles internal transfers and outbound withdrawals.
type TransferHandler struct {
	ledger ports.LedgerService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(ledger ports.LedgerService) *TransferHandler {
	return &TransferHandler{ledger: ledger}
}

// Transfer handles POST /api/v1/transfers.
func (h *TransferHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	amount := domain.MustParseAmount(req.Amount)
	err := h.ledger.Transfer(c.Request.Context(), ports.TransferRequest{
		SenderAccountID:   uuid.MustParse(req.SenderAccountID),
		ReceiverAccountID: uuid.MustParse(req.ReceiverAccountID),
		Amount:            amount,
	})
	if err != nil {
		response.Error(c, toAppError(err))
		return
	}

	response.OK(c, dto.TransferResponse{
		SenderAccountID:   req.SenderAccountID,
		ReceiverAccountID: req.ReceiverAccountID,
		Amount:            amount.String(),
	})
}

// Withdraw handles POST /api/v1/withdrawals. The withdrawal completes asynchronously.
func (h *TransferHandler) Withdraw(c *gin.Context) {
	var req dto.WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	id, err := h.ledger.InitiateWithdrawal(c.Request.Context(), ports.WithdrawalRequest{
		SenderAccountID: uuid.MustParse(req.SenderAccountID),
		Address:         req.Address,
		Amount:          domain.MustParseAmount(req.Amount),
	})
	if err != nil {
		response.Error(c, toAppError(err))
		return
	}

	response.Accepted(c, dto.WithdrawalResponse{
		WithdrawalID: id.String(),
		Status:       string(domain.WithdrawalStatusProcessing),
	})
}

// WithdrawalStatus handles GET /api/v1/withdrawals/:id/status.
func (h *TransferHandler) WithdrawalStatus(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	status, err := h.ledger.GetWithdrawalStatus(c.Request.Context(), id)
	if err != nil {
		response.Error(c, toAppError(err))
		return
	}

	response.OK(c, dto.WithdrawalResponse{
		WithdrawalID: id.String(),
		Status:       string(status),
	})
}
