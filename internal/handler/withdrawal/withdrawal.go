package withdrawal

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/abc-custody/custody-backend/internal/controller"
	"github.com/abc-custody/custody-backend/internal/model"
	"github.com/abc-custody/custody-backend/internal/store"
	withdrawalstore "github.com/abc-custody/custody-backend/internal/store/withdrawal"
	"github.com/abc-custody/custody-backend/internal/utils/logger"
)

type withdrawalHandler struct {
	db         *gorm.DB
	store      *store.Store
	controller controller.IController
	logger     *logger.Logger
}

// New creates a new instance of the withdrawal handler
func New(db *gorm.DB, store *store.Store, controller controller.IController, logger *logger.Logger) IHandler {
	return &withdrawalHandler{
		db:         db,
		store:      store,
		controller: controller,
		logger:     logger,
	}
}

func (h *withdrawalHandler) GetWithdrawals(c *gin.Context) {
	var req GetWithdrawalsRequest
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

	withdrawals, err := h.store.Withdrawal.List(h.db, withdrawalstore.ListFilter{
		UserID:     req.UserID,
		MemberType: model.MemberType(req.MemberType),
		Status:     model.WithdrawalStatus(req.Status),
		Currency:   req.Currency,
		Limit:      req.Limit,
		Offset:     req.Offset,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch withdrawals"})
		return
	}

	c.JSON(http.StatusOK, GetWithdrawalsResponse{
		Total:       len(withdrawals),
		Withdrawals: withdrawals,
	})
}

func (h *withdrawalHandler) GetWithdrawal(c *gin.Context) {
	id := c.Param("id")

	w, err := h.store.Withdrawal.GetByID(h.db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "withdrawal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch withdrawal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"withdrawal": w})
}

func (h *withdrawalHandler) Submit(c *gin.Context) {
	id := c.Param("id")

	var req SubmitWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	w, err := h.controller.SubmitWithdrawal(id, controller.SourceVault(req.SourceVault))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "withdrawal not found"})
			return
		}

		h.logger.Error("[Submit] failed to submit withdrawal", map[string]string{
			"withdrawalId": id,
			"error":        err.Error(),
		})
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, SubmitWithdrawalResponse{Withdrawal: w})
}
