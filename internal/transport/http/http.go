package http

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/abc-custody/custody-backend/internal/controller"
	"github.com/abc-custody/custody-backend/internal/ethrpc"
	"github.com/abc-custody/custody-backend/internal/handler"
	"github.com/abc-custody/custody-backend/internal/monitoring"
	"github.com/abc-custody/custody-backend/internal/store"
	"github.com/abc-custody/custody-backend/internal/utils/config"
	"github.com/abc-custody/custody-backend/internal/utils/logger"
	"github.com/abc-custody/custody-backend/internal/vaultapi"
)

func setupCORS(r *gin.Engine, cfg *config.AppConfig) {
	corsOrigins := strings.Split(cfg.ApiServer.AllowedOrigins, ";")
	r.Use(func(c *gin.Context) {
		cors.New(
			cors.Config{
				AllowOrigins: corsOrigins,
				AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD"},
				AllowHeaders: []string{
					"Origin", "Host", "Content-Type", "Content-Length", "Accept-Encoding", "Accept-Language", "Accept",
					"X-CSRF-Token", "Authorization", "X-Requested-With", "X-Access-Token",
				},
				AllowCredentials: true,
			},
		)(c)
	})
}

func NewHttpServer(
	appConfig *config.AppConfig,
	logger *logger.Logger,
	db *gorm.DB,
	s *store.Store,
	ethRpc ethrpc.IEthRPC,
	vaultApi vaultapi.IVaultAPI,
	ctrl controller.IController,
	metricsRegistry *prometheus.Registry,
	jobStatusManager *monitoring.JobStatusManager,
) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.LoggerWithWriter(gin.DefaultWriter, "/healthz"),
		gin.Recovery(),
	)
	setupCORS(r, appConfig)

	h := handler.New(appConfig, logger, db, s, ethRpc, vaultApi, ctrl, metricsRegistry, jobStatusManager)

	loadV1Routes(r, h)

	return r
}
