package deposit

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/abc-custody/custody-backend/internal/model"
	"github.com/abc-custody/custody-backend/internal/store"
	depositstore "github.com/abc-custody/custody-backend/internal/store/deposit"
)

type depositHandler struct {
	db    *gorm.DB
	store *store.Store
}

// New creates a new instance of the deposit handler
func New(db *gorm.DB, store *store.Store) IHandler {
	return &depositHandler{
		db:    db,
		store: store,
	}
}

func (h *depositHandler) GetDeposits(c *gin.Context) {
	var req GetDepositsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Limit <= 0 {
		req.Limit = 20
	}
	if req.Limit > 100 {
		req.Limit = 100
	}

	deposits, err := h.store.Deposit.List(h.db, depositstore.ListFilter{
		UserID: req.UserID,
		Status: model.DepositStatus(req.Status),
		Asset:  req.Asset,
		Limit:  req.Limit,
		Offset: req.Offset,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch deposits"})
		return
	}

	c.JSON(http.StatusOK, GetDepositsResponse{
		Total:    len(deposits),
		Deposits: deposits,
	})
}

func (h *depositHandler) GetDeposit(c *gin.Context) {
	id := c.Param("id")

	d, err := h.store.Deposit.GetByID(h.db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "deposit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch deposit"})
		return
	}

	resp := GetDepositResponse{Deposit: d}

	transfer, err := h.store.VaultTransfer.GetLatestByDepositID(h.db, id)
	if err == nil {
		resp.VaultTransfer = transfer
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch vault transfer"})
		return
	}

	c.JSON(http.StatusOK, resp)
}
