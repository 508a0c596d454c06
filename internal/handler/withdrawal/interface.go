package withdrawal

import (
	"github.com/gin-gonic/gin"

	"github.com/abc-custody/custody-backend/internal/model"
)

type IHandler interface {
	// GetWithdrawals retrieves withdrawal requests with optional filtering
	GetWithdrawals(c *gin.Context)

	// GetWithdrawal retrieves one withdrawal by id
	GetWithdrawal(c *gin.Context)

	// Submit pushes a processing withdrawal into the custody vault
	Submit(c *gin.Context)
}

type GetWithdrawalsRequest struct {
	Limit      int    `form:"limit" json:"limit"`
	Offset     int    `form:"offset" json:"offset"`
	UserID     string `form:"user_id" json:"user_id"`
	MemberType string `form:"member_type" json:"member_type"`
	Status     string `form:"status" json:"status"`
	Currency   string `form:"currency" json:"currency"`
}

type GetWithdrawalsResponse struct {
	Total       int                `json:"total"`
	Withdrawals []model.Withdrawal `json:"withdrawals"`
}

type SubmitWithdrawalRequest struct {
	SourceVault string `json:"source_vault" binding:"required,oneof=hot cold"`
}

type SubmitWithdrawalResponse struct {
	Withdrawal *model.Withdrawal `json:"withdrawal"`
}
