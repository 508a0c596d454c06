package http

import (
	"github.com/gin-gonic/gin"

	"github.com/abc-custody/custody-backend/internal/handler"
)

func loadV1Routes(r *gin.Engine, h *handler.Handler) {
	v1 := r.Group("/api/v1")

	deposits := v1.Group("/deposits")
	{
		deposits.GET("", h.DepositHandler.GetDeposits)
		deposits.GET("/:id", h.DepositHandler.GetDeposit)
	}

	withdrawals := v1.Group("/withdrawals")
	{
		withdrawals.GET("", h.WithdrawalHandler.GetWithdrawals)
		withdrawals.GET("/:id", h.WithdrawalHandler.GetWithdrawal)
		withdrawals.POST("/:id/submit", h.WithdrawalHandler.Submit)
	}

	healthGroup := v1.Group("/health")
	{
		healthGroup.GET("/db", h.HealthHandler.Database)
		healthGroup.GET("/external", h.HealthHandler.External)
		healthGroup.GET("/jobs", h.HealthHandler.Jobs)
	}

	r.GET("/healthz", h.HealthHandler.Basic)
	r.GET("/metrics", h.MetricsHandler.Handler())
}
