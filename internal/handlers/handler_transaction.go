package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/velopay/ledger-core/internal/core/ports/services"
	"github.com/velopay/ledger-core/internal/dto"
	"github.com/velopay/ledger-core/internal/middleware"
)

// transactionHandler handles HTTP requests related to business transactions.
type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
}

// registerTransactionRoutes registers routes related to transactions.
func registerTransactionRoutes(rg *gin.RouterGroup, transactionService portssvc.TransactionSvcFacade) {
	h := &transactionHandler{transactionService: transactionService}

	transactions := rg.Group("/transactions")
	{
		transactions.POST("", h.processTransaction)
		transactions.GET("/:id", h.getTransaction)
		transactions.POST("/:id/reverse", h.reverseTransaction)
		transactions.POST("/:id/reconcile", h.reconcileTransaction)
	}

	rg.GET("/accounts/:id/transactions", h.listByAccount)
}

func (h *transactionHandler) processTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ProcessTransaction", slog.String("error", err.Error()))
		respondBindError(c, err)
		return
	}

	txn, err := h.transactionService.ProcessTransaction(c.Request.Context(), req, actor(c))
	if err != nil {
		middleware.CountTransaction(string(req.TransactionType), "failed")
		respondError(c, err)
		return
	}
	middleware.CountTransaction(string(req.TransactionType), "completed")
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.ToTransactionResponse(txn)))
}

func (h *transactionHandler) getTransaction(c *gin.Context) {
	txn, err := h.transactionService.GetTransactionByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ToTransactionResponse(txn)))
}

func (h *transactionHandler) listByAccount(c *gin.Context) {
	limit := intQuery(c, "limit", 25)
	offset := intQuery(c, "offset", 0)

	txns, err := h.transactionService.ListTransactionsByAccount(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ToTransactionResponses(txns)))
}

func (h *transactionHandler) reverseTransaction(c *gin.Context) {
	var req dto.ReverseTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	reversal, err := h.transactionService.ReverseTransaction(c.Request.Context(), c.Param("id"), req, actor(c))
	if err != nil {
		middleware.CountTransaction("REVERSAL", "failed")
		respondError(c, err)
		return
	}
	middleware.CountTransaction("REVERSAL", "completed")
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.ToTransactionResponse(reversal)))
}

func (h *transactionHandler) reconcileTransaction(c *gin.Context) {
	var req dto.ReconcileTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.transactionService.MarkReconciled(c.Request.Context(), c.Param("id"), req.Status, actor(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(nil))
}
