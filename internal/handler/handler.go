package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/abc-custody/custody-backend/internal/controller"
	"github.com/abc-custody/custody-backend/internal/ethrpc"
	"github.com/abc-custody/custody-backend/internal/handler/deposit"
	"github.com/abc-custody/custody-backend/internal/handler/health"
	"github.com/abc-custody/custody-backend/internal/handler/metrics"
	"github.com/abc-custody/custody-backend/internal/handler/withdrawal"
	"github.com/abc-custody/custody-backend/internal/monitoring"
	"github.com/abc-custody/custody-backend/internal/store"
	"github.com/abc-custody/custody-backend/internal/utils/config"
	"github.com/abc-custody/custody-backend/internal/utils/logger"
	"github.com/abc-custody/custody-backend/internal/vaultapi"
)

type Handler struct {
	DepositHandler    deposit.IHandler
	WithdrawalHandler withdrawal.IHandler
	HealthHandler     health.IHealthHandler
	MetricsHandler    *metrics.MetricsHandler
}

func New(appConfig *config.AppConfig, logger *logger.Logger,
	db *gorm.DB,
	s *store.Store,
	ethRpc ethrpc.IEthRPC,
	vaultApi vaultapi.IVaultAPI,
	ctrl controller.IController,
	metricsRegistry *prometheus.Registry,
	jobStatusManager *monitoring.JobStatusManager) *Handler {
	return &Handler{
		DepositHandler:    deposit.New(db, s),
		WithdrawalHandler: withdrawal.New(db, s, ctrl, logger),
		HealthHandler:     health.New(appConfig, logger, db, ethRpc, vaultApi, jobStatusManager),
		MetricsHandler:    metrics.NewMetricsHandler(metricsRegistry),
	}
}
