package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"money-transfer-service/internal/core/domain"
	"money-transfer-service/internal/core/ports"
	"money-transfer-service/internal/core/ports/mocks"
	"money-transfer-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func jsonRequest(method, path string, body any) *http.Request {
	var buf bytes.Buffer
	switch v := body.(type) {
	case nil:
	case string:
		buf.WriteString(v)
	default:
		_ = json.NewEncoder(&buf).Encode(v)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]any)
	require.True(t, ok, "missing data envelope: %s", w.Body.String())
	return data
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorResponse {
	t.Helper()
	var resp response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// --- Account Handler Tests ---

func TestCreateAccount_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockLedgerService(ctrl)
	h := NewAccountHandler(ledger)

	id := uuid.New()
	ledger.EXPECT().CreateAccount(gomock.Any(), ports.CreateAccountRequest{
		ID:             id,
		Name:           "Alice",
		InitialBalance: domain.MustParseAmount("100.50"),
	}).Return(&domain.Account{ID: id, Name: "Alice", Balance: domain.MustParseAmount("100.50")}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/api/v1/accounts", map[string]string{
		"id":              id.String(),
		"name":            "Alice",
		"initial_balance": "100.50",
	})

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, id.String(), data["id"])
	assert.Equal(t, "Alice", data["name"])
	assert.Equal(t, "100.5", data["balance"])
}

func TestCreateAccount_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewAccountHandler(mocks.NewMockLedgerService(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/api/v1/accounts", "{}")

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "VAL_001", resp.ErrorCode)
	assert.Equal(t, "required", resp.Details["Name"])
}

func TestCreateAccount_Duplicate(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockLedgerService(ctrl)
	h := NewAccountHandler(ledger)

	id := uuid.New()
	ledger.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).Return(nil, &domain.DuplicateAccountError{AccountID: id})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/", map[string]string{"id": id.String(), "name": "A", "initial_balance": "1"})

	h.Create(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "ACC_002", resp.ErrorCode)
	assert.Equal(t, id.String(), resp.Details["account_id"])
}

func TestGetAccount_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockLedgerService(ctrl)
	h := NewAccountHandler(ledger)

	id := uuid.New()
	ledger.EXPECT().GetAccount(gomock.Any(), id).
		Return(&domain.Account{ID: id, Name: "Bob", Balance: domain.MustParseAmount("500")}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/accounts/"+id.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.Get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "500", decodeData(t, w)["balance"])
}

func TestGetAccount_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockLedgerService(ctrl)
	h := NewAccountHandler(ledger)

	id := uuid.New()
	ledger.EXPECT().GetAccount(gomock.Any(), id).Return(nil, &domain.AccountNotFoundError{AccountID: id})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ACC_001", decodeError(t, w).ErrorCode)
}

func TestGetAccount_InvalidID(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewAccountHandler(mocks.NewMockLedgerService(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: "nope"}}

	h.Get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_001", decodeError(t, w).ErrorCode)
}

// --- Transfer Handler Tests ---

func TestTransfer_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockLedgerService(ctrl)
	h := NewTransferHandler(ledger)

	from, to := uuid.New(), uuid.New()
	ledger.EXPECT().Transfer(gomock.Any(), ports.TransferRequest{
		SenderAccountID:   from,
		ReceiverAccountID: to,
		Amount:            domain.MustParseAmount("300"),
	}).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/api/v1/transfers", map[string]string{
		"sender_account_id":   from.String(),
		"receiver_account_id": to.String(),
		"amount":              "300",
	})

	h.Transfer(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "300", decodeData(t, w)["amount"])
}

func TestTransfer_DomainErrors(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid amount", &domain.InvalidAmountError{Amount: domain.MustParseAmount("0")}, http.StatusBadRequest, "LED_001"},
		{"insufficient balance", &domain.InsufficientBalanceError{
			AccountID: id, Balance: domain.MustParseAmount("1"), Requested: domain.MustParseAmount("2"),
		}, http.StatusUnprocessableEntity, "LED_002"},
		{"unknown account", &domain.AccountNotFoundError{AccountID: id}, http.StatusNotFound, "ACC_001"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "SYS_001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			ledger := mocks.NewMockLedgerService(ctrl)
			h := NewTransferHandler(ledger)
			ledger.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return(tt.err)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = jsonRequest(http.MethodPost, "/", map[string]string{
				"sender_account_id":   id.String(),
				"receiver_account_id": uuid.NewString(),
				"amount":              "2",
			})

			h.Transfer(c)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).ErrorCode)
		})
	}
}

func TestTransfer_InsufficientBalanceDetails(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockLedgerService(ctrl)
	h := NewTransferHandler(ledger)

	id := uuid.New()
	ledger.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return(&domain.InsufficientBalanceError{
		AccountID: id, Balance: domain.MustParseAmount("10"), Requested: domain.MustParseAmount("25"),
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/", map[string]string{
		"sender_account_id":   id.String(),
		"receiver_account_id": uuid.NewString(),
		"amount":              "25",
	})

	h.Transfer(c)

	resp := decodeError(t, w)
	assert.Equal(t, map[string]string{
		"account_id": id.String(),
		"balance":    "10",
		"requested":  "25",
	}, resp.Details)
}

func TestTransfer_MalformedAmount(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewTransferHandler(mocks.NewMockLedgerService(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/", map[string]string{
		"sender_account_id":   uuid.NewString(),
		"receiver_account_id": uuid.NewString(),
		"amount":              "lots",
	})

	h.Transfer(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "decimal_amount", decodeError(t, w).Details["Amount"])
}

func TestTransfer_MalformedJSON(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewTransferHandler(mocks.NewMockLedgerService(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/", "{not json")

	h.Transfer(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_001", decodeError(t, w).ErrorCode)
}

// --- Withdrawal Handler Tests ---

func TestWithdraw_Accepted(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockLedgerService(ctrl)
	h := NewTransferHandler(ledger)

	sender, wid := uuid.New(), uuid.New()
	ledger.EXPECT().InitiateWithdrawal(gomock.Any(), ports.WithdrawalRequest{
		SenderAccountID: sender,
		Address:         "0xabc",
		Amount:          domain.MustParseAmount("400"),
	}).Return(wid, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/api/v1/withdrawals", map[string]string{
		"sender_account_id": sender.String(),
		"address":           "0xabc",
		"amount":            "400",
	})

	h.Withdraw(c)

	assert.Equal(t, http.StatusAccepted, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, wid.String(), data["withdrawal_id"])
	assert.Equal(t, "PROCESSING", data["status"])
}

func TestWithdrawalStatus(t *testing.T) {
	wid := uuid.New()

	tests := []struct {
		name       string
		status     domain.WithdrawalStatus
		err        error
		httpStatus int
		code       string
	}{
		{"completed", domain.WithdrawalStatusCompleted, nil, http.StatusOK, ""},
		{"processing", domain.WithdrawalStatusProcessing, nil, http.StatusOK, ""},
		{"not found", "", &domain.WithdrawalNotFoundError{WithdrawalID: wid}, http.StatusNotFound, "WDR_001"},
		{"provider down", "", fmt.Errorf("%w: timeout", domain.ErrProviderUnavailable), http.StatusServiceUnavailable, "WDR_002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			ledger := mocks.NewMockLedgerService(ctrl)
			h := NewTransferHandler(ledger)
			ledger.EXPECT().GetWithdrawalStatus(gomock.Any(), wid).Return(tt.status, tt.err)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Params = gin.Params{{Key: "id", Value: wid.String()}}

			h.WithdrawalStatus(c)

			assert.Equal(t, tt.httpStatus, w.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeError(t, w).ErrorCode)
				return
			}
			assert.Equal(t, string(tt.status), decodeData(t, w)["status"])
		})
	}
}

// --- Health Check Tests ---

func TestHealthCheck(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck()(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestHealthCheck_Degraded(t *testing.T) {
	ctrl := gomock.NewController(t)
	good := mocks.NewMockHealthChecker(ctrl)
	bad := mocks.NewMockHealthChecker(ctrl)
	good.EXPECT().Ping(gomock.Any()).Return(nil)
	good.EXPECT().Name().Return("withdrawal-provider").AnyTimes()
	bad.EXPECT().Ping(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return errors.New("connection refused")
	})
	bad.EXPECT().Name().Return("redis").AnyTimes()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(good, bad)(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp struct {
		Status       string               `json:"status"`
		Dependencies map[string]depStatus `json:"dependencies"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "healthy", resp.Dependencies["withdrawal-provider"].Status)
	assert.Equal(t, "unhealthy", resp.Dependencies["redis"].Status)
	assert.Equal(t, "connection refused", resp.Dependencies["redis"].Error)
}
