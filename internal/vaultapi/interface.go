package vaultapi

import "github.com/abc-custody/custody-backend/internal/model"

type IVaultAPI interface {
	// InitiateTransfer asks the custody API to move the withdrawal amount
	// from the given vault to the withdrawal's destination address, always
	// as an external transfer. Returns the vault-assigned transaction id.
	InitiateTransfer(withdrawal *model.Withdrawal, fromVaultID int) (string, error)

	// TransferStatus fetches the current custody-side view of an initiated
	// transfer.
	TransferStatus(assignedID string) (*TransferStatus, error)

	// VaultReceiveAddress returns the vault's receive address for an asset,
	// preferring the main address when one is flagged.
	VaultReceiveAddress(vaultID int, asset string) (string, error)
}
