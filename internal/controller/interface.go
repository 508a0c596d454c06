package controller

import "github.com/abc-custody/custody-backend/internal/model"

// SourceVault names which pooled wallet an operator submits a withdrawal
// from.
type SourceVault string

const (
	SourceVaultHot  SourceVault = "hot"
	SourceVaultCold SourceVault = "cold"
)

type IController interface {
	// SubmitWithdrawal initiates the custody-side transfer for a
	// withdrawal that an operator has cleared for processing. On success
	// the withdrawal moves to withdrawal_pending with the vault-assigned
	// transaction id recorded.
	SubmitWithdrawal(withdrawalID string, source SourceVault) (*model.Withdrawal, error)
}
