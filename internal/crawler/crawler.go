package crawler

import (
	"time"

	"gorm.io/gorm"

	"github.com/abc-custody/custody-backend/internal/ethrpc"
	"github.com/abc-custody/custody-backend/internal/store"
	"github.com/abc-custody/custody-backend/internal/utils/config"
	"github.com/abc-custody/custody-backend/internal/utils/logger"
	"github.com/abc-custody/custody-backend/internal/vaultapi"
)

// Crawler owns the reconciliation cycles. Each method is one poller body:
// it re-reads the rows it needs from the store, talks to the chain or the
// custody API, and advances row state. Pollers coordinate only through row
// state and uniqueness constraints; they never call each other.
type Crawler struct {
	db        *gorm.DB
	store     *store.Store
	appConfig *config.AppConfig
	logger    *logger.Logger
	ethRpc    ethrpc.IEthRPC
	vaultApi  vaultapi.IVaultAPI

	// injectable clock for the schedule-driven cycles
	now func() time.Time

	// injectable transaction runner, defaults to store.DoInTx
	doInTx func(fn func(tx *gorm.DB) error) error
}

func New(db *gorm.DB, s *store.Store, appConfig *config.AppConfig, logger *logger.Logger, ethRpc ethrpc.IEthRPC, vaultApi vaultapi.IVaultAPI) *Crawler {
	c := &Crawler{
		db:        db,
		store:     s,
		appConfig: appConfig,
		logger:    logger,
		ethRpc:    ethRpc,
		vaultApi:  vaultApi,
		now:       time.Now,
	}
	c.doInTx = func(fn func(tx *gorm.DB) error) error {
		return store.DoInTx(c.db, fn)
	}
	return c
}
