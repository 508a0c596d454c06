package deposit

import (
	"github.com/gin-gonic/gin"

	"github.com/abc-custody/custody-backend/internal/model"
)

type IHandler interface {
	// GetDeposits retrieves tracked deposits with optional filtering
	GetDeposits(c *gin.Context)

	// GetDeposit retrieves one deposit with its vault transfer lineage
	GetDeposit(c *gin.Context)
}

type GetDepositsRequest struct {
	Limit  int    `form:"limit" json:"limit"`
	Offset int    `form:"offset" json:"offset"`
	UserID string `form:"user_id" json:"user_id"`
	Status string `form:"status" json:"status"`
	Asset  string `form:"asset" json:"asset"`
}

type GetDepositsResponse struct {
	Total    int             `json:"total"`
	Deposits []model.Deposit `json:"deposits"`
}

type GetDepositResponse struct {
	Deposit       *model.Deposit       `json:"deposit"`
	VaultTransfer *model.VaultTransfer `json:"vault_transfer,omitempty"`
}
