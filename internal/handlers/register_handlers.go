package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/velopay/ledger-core/internal/core/domain"
	portssvc "github.com/velopay/ledger-core/internal/core/ports/services"
)

// RegisterCustomValidators installs the binding validators the request DTOs
// rely on. Must run once before the engine serves traffic.
func RegisterCustomValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("currencycode", func(fl validator.FieldLevel) bool {
			return domain.IsValidCurrencyCode(fl.Field().String())
		})
	}
}

// RegisterRoutes sets up all routes for the application.
func RegisterRoutes(r *gin.Engine, services *portssvc.ServiceContainer) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		registerAccountRoutes(v1, services.Account)
		registerJournalRoutes(v1, services.Journal)
		registerTransactionRoutes(v1, services.Transaction)
		registerAuditRoutes(v1, services.Audit)
		registerLedgerRoutes(v1, services.Ledger)
	}
}
