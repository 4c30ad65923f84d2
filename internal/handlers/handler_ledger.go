package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/velopay/ledger-core/internal/core/ports/services"
	"github.com/velopay/ledger-core/internal/dto"
	"github.com/velopay/ledger-core/internal/middleware"
)

// ledgerHandler handles the high-level ledger flows.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// registerLedgerRoutes registers routes for the orchestrated flows.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := &ledgerHandler{ledgerService: ledgerService}

	ledger := rg.Group("/ledger")
	{
		ledger.POST("/asset-deposits", h.processAssetDeposit)
		ledger.POST("/bitcoin-purchases", h.processBitcoinPurchase)
	}
}

func (h *ledgerHandler) processAssetDeposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.AssetDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ProcessAssetDeposit", slog.String("error", err.Error()))
		respondBindError(c, err)
		return
	}

	txn, err := h.ledgerService.ProcessAssetDeposit(c.Request.Context(), req, actor(c))
	if err != nil {
		middleware.CountTransaction("ASSET_DEPOSIT", "failed")
		respondError(c, err)
		return
	}
	middleware.CountTransaction("ASSET_DEPOSIT", "completed")
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.ToTransactionResponse(txn)))
}

func (h *ledgerHandler) processBitcoinPurchase(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.BitcoinPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ProcessBitcoinPurchase", slog.String("error", err.Error()))
		respondBindError(c, err)
		return
	}

	txn, err := h.ledgerService.ProcessBitcoinPurchase(c.Request.Context(), req, actor(c))
	if err != nil {
		middleware.CountTransaction("BITCOIN_PURCHASE", "failed")
		respondError(c, err)
		return
	}
	middleware.CountTransaction("BITCOIN_PURCHASE", "completed")
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.ToTransactionResponse(txn)))
}
