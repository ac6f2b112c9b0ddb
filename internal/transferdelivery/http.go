// Package transferdelivery manages delivery layer of balance mutations.
package transferdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-teller/teller/internal/domain"
	"github.com/go-teller/teller/pkg/errorspkg"
	"github.com/go-teller/teller/pkg/web"
)

// Service provides service layer interface needed by transfer delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transferdelivery
type Service interface {
	Deposit(ctx context.Context, number, amount string) (domain.Account, error)
	Withdraw(ctx context.Context, number, amount string) (domain.Account, error)
	Transfer(ctx context.Context, from, to, amount string) (domain.TransferTxResult, error)
}

// Handler facilitates transfer delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transfer handler.
func NewHandler(ts Service) Handler {
	return Handler{service: ts}
}

type adjustRequest struct {
	AccountNumber string `json:"account_number" binding:"required,accnumber"`
	Amount        string `json:"amount" binding:"required"`
}

type accountData struct {
	Account domain.Account `json:"account"`
}
type accountResponse struct {
	Data accountData `json:"data,omitempty"`
}

func bindJSON(gctx *gin.Context, req any) bool {
	l := zerolog.Ctx(gctx.Request.Context())

	if err := gctx.ShouldBindJSON(req); err != nil {
		l.Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})

			return false
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return false
	}

	return true
}

func writeError(gctx *gin.Context, err error) {
	switch err {
	case domain.ErrInvalidAmount, domain.ErrNonPositiveAmount, domain.ErrSameAccountTransfer:
		gctx.JSON(http.StatusBadRequest, web.Error(err))
	case domain.ErrAccountNotFound:
		gctx.JSON(http.StatusNotFound, web.Error(err))
	case domain.ErrInsufficientBalance:
		gctx.JSON(http.StatusUnprocessableEntity, web.Error(err))
	case errorspkg.ErrUnavailable:
		gctx.JSON(http.StatusServiceUnavailable, web.Error(err))
	default:
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}

// Deposit handles http request to add funds to an account.
func (h *Handler) Deposit(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req adjustRequest
	if !bindJSON(gctx, &req) {
		return
	}

	account, err := h.service.Deposit(ctx, req.AccountNumber, req.Amount)
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, accountResponse{Data: accountData{account}})
}

// Withdraw handles http request to remove funds from an account.
func (h *Handler) Withdraw(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req adjustRequest
	if !bindJSON(gctx, &req) {
		return
	}

	account, err := h.service.Withdraw(ctx, req.AccountNumber, req.Amount)
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, accountResponse{Data: accountData{account}})
}

type transferRequest struct {
	FromAccount string `json:"from_account" binding:"required,accnumber"`
	ToAccount   string `json:"to_account" binding:"required,accnumber"`
	Amount      string `json:"amount" binding:"required"`
}

type transferData struct {
	Transfer domain.TransferTxResult `json:"transfer"`
}
type transferResponse struct {
	Data transferData `json:"data,omitempty"`
}

// Create handles http request to transfer funds between two accounts.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req transferRequest
	if !bindJSON(gctx, &req) {
		return
	}

	result, err := h.service.Transfer(ctx, req.FromAccount, req.ToAccount, req.Amount)
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, transferResponse{Data: transferData{result}})
}
