package handler

import (
	"money-transfer-service/internal/adapter/http/dto"
	"money-transfer-service/internal/core/domain"
	"money-transfer-service/internal/core/ports"
	"money-transfer-service/pkg/apperror"
	"money-transfer-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AccountHandler handles account endpoints.
type AccountHandler struct {
	ledger ports.LedgerService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(ledger ports.LedgerService) *AccountHandler {
	return &AccountHandler{ledger: ledger}
}

// Create handles POST /api/v1/accounts.
func (h *AccountHandler) Create(c *gin.Context) {
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.SanitizeStruct(&req)

	id := uuid.Nil
	if req.ID != "" {
		id = uuid.MustParse(req.ID) // validated by binding
	}
	balance := domain.MustParseAmount(req.InitialBalance)

	acc, err := h.ledger.CreateAccount(c.Request.Context(), ports.CreateAccountRequest{
		ID:             id,
		Name:           req.Name,
		InitialBalance: balance,
	})
	if err != nil {
		response.Error(c, toAppError(err))
		return
	}

	response.Created(c, toAccountResponse(acc))
}

// Get handles GET /api/v1/accounts/:id.
func (h *AccountHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	acc, err := h.ledger.GetAccount(c.Request.Context(), id)
	if err != nil {
		response.Error(c, toAppError(err))
		return
	}

	response.OK(c, toAccountResponse(acc))
}

func toAccountResponse(acc *domain.Account) dto.AccountResponse {
	return dto.AccountResponse{
		ID:      acc.ID.String(),
		Name:    acc.Name,
		Balance: acc.Balance.String(),
	}
}

// pathUUID parses a path parameter, writing a VAL_001 response on failure.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Error(c, apperror.Validation("Invalid "+name).WithDetail(name, "uuid"))
		return uuid.Nil, false
	}
	return id, true
}
