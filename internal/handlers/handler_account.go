package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/velopay/ledger-core/internal/core/domain"
	portssvc "github.com/velopay/ledger-core/internal/core/ports/services"
	"github.com/velopay/ledger-core/internal/dto"
	"github.com/velopay/ledger-core/internal/middleware"
)

// accountHandler handles HTTP requests related to accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := &accountHandler{accountService: accountService}

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:id", h.getAccount)
		accounts.GET("/:id/balances", h.getBalances)
		accounts.GET("/:id/recalculated-balance", h.recalculateBalance)
		accounts.POST("/:id/suspend", h.suspendAccount)
		accounts.POST("/:id/reactivate", h.reactivateAccount)
		accounts.POST("/:id/close", h.closeAccount)
		accounts.POST("/:id/freeze", h.freeze)
		accounts.POST("/:id/unfreeze", h.unfreeze)
		accounts.POST("/:id/reserve", h.reserve)
		accounts.POST("/:id/release", h.release)
	}
}

func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		respondBindError(c, err)
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), req, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.ToAccountResponse(account)))
}

func (h *accountHandler) getAccount(c *gin.Context) {
	account, err := h.accountService.GetAccountByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ToAccountResponse(account)))
}

func (h *accountHandler) listAccounts(c *gin.Context) {
	limit := intQuery(c, "limit", 25)
	offset := intQuery(c, "offset", 0)

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	responses := make([]dto.AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = dto.ToAccountResponse(&accounts[i])
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(responses))
}

func (h *accountHandler) getBalances(c *gin.Context) {
	account, err := h.accountService.GetBalances(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ToBalanceInquiryResponse(account, time.Now().UTC())))
}

func (h *accountHandler) recalculateBalance(c *gin.Context) {
	stored, replayed, err := h.accountService.RecalculateBalance(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{
		"accountID":         c.Param("id"),
		"storedBalance":     stored.String(),
		"recomputedBalance": replayed.String(),
		"consistent":        stored.Equal(replayed),
	}))
}

func (h *accountHandler) suspendAccount(c *gin.Context) {
	if err := h.accountService.SuspendAccount(c.Request.Context(), c.Param("id"), actor(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(nil))
}

func (h *accountHandler) reactivateAccount(c *gin.Context) {
	if err := h.accountService.ReactivateAccount(c.Request.Context(), c.Param("id"), actor(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(nil))
}

func (h *accountHandler) closeAccount(c *gin.Context) {
	if err := h.accountService.CloseAccount(c.Request.Context(), c.Param("id"), actor(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(nil))
}

// bucketOperation handles the four hold operations, each a transfer between
// two buckets of one account.
func (h *accountHandler) bucketOperation(c *gin.Context, from, to domain.BalanceBucket) {
	var req dto.BalanceOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	account, err := h.accountService.TransferBetweenBuckets(c.Request.Context(), c.Param("id"), from, to, req.Amount, req.Reference, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ToAccountResponse(account)))
}

func (h *accountHandler) freeze(c *gin.Context) {
	h.bucketOperation(c, domain.BucketAvailable, domain.BucketFrozen)
}

func (h *accountHandler) unfreeze(c *gin.Context) {
	h.bucketOperation(c, domain.BucketFrozen, domain.BucketAvailable)
}

func (h *accountHandler) reserve(c *gin.Context) {
	h.bucketOperation(c, domain.BucketAvailable, domain.BucketReserved)
}

func (h *accountHandler) release(c *gin.Context) {
	h.bucketOperation(c, domain.BucketReserved, domain.BucketAvailable)
}
