package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"

	"github.com/abc-custody/custody-backend/internal/controller"
	"github.com/abc-custody/custody-backend/internal/crawler"
	"github.com/abc-custody/custody-backend/internal/ethrpc"
	"github.com/abc-custody/custody-backend/internal/monitoring"
	"github.com/abc-custody/custody-backend/internal/store"
	pgstore "github.com/abc-custody/custody-backend/internal/store/postgres"
	"github.com/abc-custody/custody-backend/internal/transport/http"
	"github.com/abc-custody/custody-backend/internal/utils/config"
	"github.com/abc-custody/custody-backend/internal/utils/logger"
	"github.com/abc-custody/custody-backend/internal/vaultapi"
)

const jobTimeout = 10 * time.Minute

func Init() {
	appConfig := config.New()
	logger := logger.New(appConfig.Environment)

	db := pgstore.New(appConfig, logger)
	s := store.New()

	ethRpc, err := ethrpc.New(appConfig, logger)
	if err != nil {
		logger.Fatal("failed to init eth rpc", map[string]string{
			"error": err.Error(),
		})
	}
	vaultApi := vaultapi.New(appConfig, logger)

	crw := crawler.New(db, s, appConfig, logger, ethRpc, vaultApi)
	ctrl := controller.New(db, s, vaultApi, logger, appConfig)

	metricsRegistry := prometheus.NewRegistry()
	metricsRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	jobMetrics := monitoring.NewBackgroundJobMetrics()
	jobMetrics.MustRegister(metricsRegistry)
	jobStatusManager := monitoring.NewJobStatusManager(logger, jobMetrics)

	c := cron.New()
	scheduleJobs(c, crw, jobStatusManager, logger)
	c.Start()

	httpServer := http.NewHttpServer(appConfig, logger, db, s, ethRpc, vaultApi, ctrl, metricsRegistry, jobStatusManager)

	if err := httpServer.Run(":" + appConfig.ApiServer.Port); err != nil {
		logger.Fatal("http server stopped", map[string]string{
			"error": err.Error(),
		})
	}
}

func scheduleJobs(c *cron.Cron, crw crawler.ICrawler, jsm *monitoring.JobStatusManager, logger *logger.Logger) {
	jobs := []struct {
		name     string
		schedule string
		cycle    monitoring.CycleFunc
	}{
		{"deposit_scanning", "@every 30s", cycleJob(crw.ScanDeposits)},
		{"deposit_confirmation_tracking", "@every 30s", cycleJob(crw.TrackDepositConfirmations)},
		{"vault_sweeping", "@every 30s", cycleJob(crw.SweepConfirmedDeposits)},
		{"withdrawal_wait_promotion", "@every 1m", cycleJob(crw.PromoteExpiredWaits)},
		{"withdrawal_vault_tracking", "@every 30s", cycleJob(crw.TrackVaultWithdrawals)},
		{"withdrawal_chain_tracking", "@every 30s", cycleJob(crw.TrackWithdrawalReceipts)},
	}

	for _, job := range jobs {
		instrumented := monitoring.NewInstrumentedJob(job.name, job.cycle, jsm, logger, jobTimeout)
		if _, err := c.AddFunc(job.schedule, instrumented.Execute); err != nil {
			logger.Fatal("failed to schedule job", map[string]string{
				"job_name": job.name,
				"error":    err.Error(),
			})
		}
	}
}

func cycleJob(run func() (crawler.CycleResult, error)) monitoring.CycleFunc {
	return func() (int, int, error) {
		result, err := run()
		return len(result.Succeeded) + len(result.Failed), len(result.Failed), err
	}
}
