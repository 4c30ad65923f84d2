package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	"github.com/velopay/ledger-core/internal/dto"
)

// CodeRateLimited is the stable error code returned when a client exceeds
// the per-IP request budget.
const CodeRateLimited = "RATE_LIMIT_EXCEEDED"

// RateLimit enforces a per-client-IP request budget. Limiter store failures
// fail open: a broken store must not take down the ledger API, so the request
// proceeds and the failure is logged.
func RateLimit(limiterInstance *limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())
		ip := c.ClientIP()

		lctx, err := limiterInstance.Get(c.Request.Context(), ip)
		if err != nil {
			logger.Warn("Rate limit check failed, allowing request",
				slog.String("ip", ip),
				slog.String("error", err.Error()),
			)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			logger.Warn("Rate limit exceeded",
				slog.String("ip", ip),
				slog.Int64("limit", lctx.Limit),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewFailureResponse(CodeRateLimited, "Too many requests, slow down and retry later"))
			return
		}

		c.Next()
	}
}
