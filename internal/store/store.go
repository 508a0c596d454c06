package store

import (
	"github.com/abc-custody/custody-backend/internal/store/deposit"
	"github.com/abc-custody/custody-backend/internal/store/depositaddress"
	"github.com/abc-custody/custody-backend/internal/store/vaulttransfer"
	"github.com/abc-custody/custody-backend/internal/store/withdrawal"
	"github.com/abc-custody/custody-backend/internal/store/withdrawaladdress"
)

type Store struct {
	DepositAddress    depositaddress.IStore
	WithdrawalAddress withdrawaladdress.IStore
	Deposit           deposit.IStore
	VaultTransfer     vaulttransfer.IStore
	Withdrawal        withdrawal.IStore
}

func New() *Store {
	return &Store{
		DepositAddress:    depositaddress.New(),
		WithdrawalAddress: withdrawaladdress.New(),
		Deposit:           deposit.New(),
		VaultTransfer:     vaulttransfer.New(),
		Withdrawal:        withdrawal.New(),
	}
}
