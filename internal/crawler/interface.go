package crawler

type ICrawler interface {
	ScanDeposits() (CycleResult, error)
	TrackDepositConfirmations() (CycleResult, error)
	SweepConfirmedDeposits() (CycleResult, error)
	PromoteExpiredWaits() (CycleResult, error)
	TrackVaultWithdrawals() (CycleResult, error)
	TrackWithdrawalReceipts() (CycleResult, error)
}
