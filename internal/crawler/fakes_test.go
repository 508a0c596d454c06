package crawler

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/abc-custody/custody-backend/internal/model"
	"github.com/abc-custody/custody-backend/internal/store"
	depositstore "github.com/abc-custody/custody-backend/internal/store/deposit"
	withdrawalstore "github.com/abc-custody/custody-backend/internal/store/withdrawal"
	"github.com/abc-custody/custody-backend/internal/types/environments"
	"github.com/abc-custody/custody-backend/internal/utils/config"
	"github.com/abc-custody/custody-backend/internal/utils/logger"
	"github.com/abc-custody/custody-backend/internal/vaultapi"
)

var testNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

type fakeDepositAddressStore struct {
	addrs          []model.DepositAddress
	checkpoints    map[string]uint64
	checkpointErrs map[string]error
}

func newFakeDepositAddressStore() *fakeDepositAddressStore {
	return &fakeDepositAddressStore{
		checkpoints:    map[string]uint64{},
		checkpointErrs: map[string]error{},
	}
}

func (f *fakeDepositAddressStore) Create(_ *gorm.DB, addr *model.DepositAddress) (*model.DepositAddress, error) {
	f.addrs = append(f.addrs, *addr)
	return addr, nil
}

func (f *fakeDepositAddressStore) GetByID(_ *gorm.DB, id string) (*model.DepositAddress, error) {
	for i := range f.addrs {
		if f.addrs[i].ID == id {
			addr := f.addrs[i]
			return &addr, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDepositAddressStore) FindScannable(_ *gorm.DB, coins []string) ([]model.DepositAddress, error) {
	var out []model.DepositAddress
	for _, addr := range f.addrs {
		if !addr.IsActive {
			continue
		}
		for _, coin := range coins {
			if addr.Coin == coin {
				out = append(out, addr)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeDepositAddressStore) UpdateLastCheckedBlock(_ *gorm.DB, id string, block uint64) error {
	if err := f.checkpointErrs[id]; err != nil {
		return err
	}
	f.checkpoints[id] = block
	return nil
}

type fakeWithdrawalAddressStore struct {
	entries []model.WithdrawalAddress
}

func (f *fakeWithdrawalAddressStore) Create(_ *gorm.DB, addr *model.WithdrawalAddress) (*model.WithdrawalAddress, error) {
	f.entries = append(f.entries, *addr)
	return addr, nil
}

func (f *fakeWithdrawalAddressStore) FindByUser(_ *gorm.DB, userID string) ([]model.WithdrawalAddress, error) {
	var out []model.WithdrawalAddress
	for _, entry := range f.entries {
		if entry.UserID == userID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type fakeDepositStore struct {
	deposits map[string]*model.Deposit
	byHash   map[string]*model.Deposit

	// FindSweepEligible derives eligibility from deposit state plus the
	// transfer lineage, mirroring the store's selection
	transfers *fakeVaultTransferStore

	confirmationUpdates []string
}

func newFakeDepositStore() *fakeDepositStore {
	return &fakeDepositStore{
		deposits: map[string]*model.Deposit{},
		byHash:   map[string]*model.Deposit{},
	}
}

func (f *fakeDepositStore) add(d model.Deposit) *model.Deposit {
	stored := d
	f.deposits[d.ID] = &stored
	f.byHash[d.TxHash] = &stored
	return &stored
}

func (f *fakeDepositStore) Create(_ *gorm.DB, deposit *model.Deposit) (*model.Deposit, error) {
	if _, exists := f.byHash[deposit.TxHash]; exists {
		return nil, gorm.ErrDuplicatedKey
	}
	return f.add(*deposit), nil
}

func (f *fakeDepositStore) GetByID(_ *gorm.DB, id string) (*model.Deposit, error) {
	if d, ok := f.deposits[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDepositStore) GetByTxHash(_ *gorm.DB, txHash string) (*model.Deposit, error) {
	if d, ok := f.byHash[txHash]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDepositStore) List(_ *gorm.DB, _ depositstore.ListFilter) ([]model.Deposit, error) {
	var out []model.Deposit
	for _, d := range f.deposits {
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeDepositStore) FindConfirming(_ *gorm.DB) ([]model.Deposit, error) {
	var out []model.Deposit
	for _, d := range f.deposits {
		if d.Status == model.DepositStatusDetected || d.Status == model.DepositStatusConfirming {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeDepositStore) FindSweepEligible(_ *gorm.DB) ([]model.Deposit, error) {
	var out []model.Deposit
	for _, d := range f.deposits {
		if d.Status != model.DepositStatusConfirmed || !d.SenderVerified {
			continue
		}
		if f.transfers != nil {
			active, err := f.transfers.HasActiveForDeposit(nil, d.ID)
			if err != nil {
				return nil, err
			}
			if active {
				continue
			}
		}
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeDepositStore) UpdateConfirmations(_ *gorm.DB, id string, confirmations int64, status model.DepositStatus, confirmedAt *time.Time) error {
	d, ok := f.deposits[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	d.CurrentConfirmations = confirmations
	d.Status = status
	if confirmedAt != nil {
		d.ConfirmedAt = confirmedAt
	}
	f.confirmationUpdates = append(f.confirmationUpdates, id)
	return nil
}

func (f *fakeDepositStore) UpdateStatusIf(_ *gorm.DB, id string, from, to model.DepositStatus) (bool, error) {
	d, ok := f.deposits[id]
	if !ok {
		return false, nil
	}
	if d.Status != from {
		return false, nil
	}
	d.Status = to
	return true, nil
}

type fakeVaultTransferStore struct {
	transfers map[string]*model.VaultTransfer
	created   []string
}

func newFakeVaultTransferStore() *fakeVaultTransferStore {
	return &fakeVaultTransferStore{transfers: map[string]*model.VaultTransfer{}}
}

func (f *fakeVaultTransferStore) Create(_ *gorm.DB, transfer *model.VaultTransfer) (*model.VaultTransfer, error) {
	stored := *transfer
	f.transfers[transfer.ID] = &stored
	f.created = append(f.created, transfer.ID)
	return &stored, nil
}

func (f *fakeVaultTransferStore) GetByID(_ *gorm.DB, id string) (*model.VaultTransfer, error) {
	if t, ok := f.transfers[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeVaultTransferStore) GetLatestByDepositID(_ *gorm.DB, depositID string) (*model.VaultTransfer, error) {
	var latest *model.VaultTransfer
	for _, t := range f.transfers {
		if t.DepositID != depositID {
			continue
		}
		if latest == nil || transferRanksAfter(t, latest) {
			latest = t
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

// transferRanksAfter mirrors the store's ordering: latest transferred_at
// first, never-broadcast attempts last, created_at as tie break.
func transferRanksAfter(a, b *model.VaultTransfer) bool {
	switch {
	case a.TransferredAt != nil && b.TransferredAt == nil:
		return true
	case a.TransferredAt == nil && b.TransferredAt != nil:
		return false
	case a.TransferredAt != nil && b.TransferredAt != nil && !a.TransferredAt.Equal(*b.TransferredAt):
		return a.TransferredAt.After(*b.TransferredAt)
	default:
		return a.CreatedAt.After(b.CreatedAt)
	}
}

func (f *fakeVaultTransferStore) HasActiveForDeposit(_ *gorm.DB, depositID string) (bool, error) {
	for _, t := range f.transfers {
		if t.DepositID == depositID &&
			(t.Status == model.VaultTransferStatusSent || t.Status == model.VaultTransferStatusConfirmed) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeVaultTransferStore) MarkSent(_ *gorm.DB, id, txHash string, gasEstimate uint64, at time.Time) error {
	t, ok := f.transfers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.Status = model.VaultTransferStatusSent
	t.TxHash = &txHash
	t.GasUsed = &gasEstimate
	t.TransferredAt = &at
	return nil
}

func (f *fakeVaultTransferStore) MarkConfirmed(_ *gorm.DB, id string, gasUsed uint64, gasFee string, at time.Time) error {
	t, ok := f.transfers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	fee, err := decimal.NewFromString(gasFee)
	if err != nil {
		return err
	}
	t.Status = model.VaultTransferStatusConfirmed
	t.GasUsed = &gasUsed
	t.GasFee = &fee
	t.ConfirmedAt = &at
	return nil
}

func (f *fakeVaultTransferStore) MarkFailed(_ *gorm.DB, id, errorMessage string) error {
	t, ok := f.transfers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.Status = model.VaultTransferStatusFailed
	t.ErrorMessage = errorMessage
	return nil
}

type fakeWithdrawalStore struct {
	rows map[string]*model.Withdrawal
}

func newFakeWithdrawalStore() *fakeWithdrawalStore {
	return &fakeWithdrawalStore{rows: map[string]*model.Withdrawal{}}
}

func (f *fakeWithdrawalStore) add(w model.Withdrawal) *model.Withdrawal {
	stored := w
	f.rows[w.ID] = &stored
	return &stored
}

func (f *fakeWithdrawalStore) Create(_ *gorm.DB, w *model.Withdrawal) (*model.Withdrawal, error) {
	return f.add(*w), nil
}

func (f *fakeWithdrawalStore) GetByID(_ *gorm.DB, id string) (*model.Withdrawal, error) {
	if w, ok := f.rows[id]; ok {
		return w, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeWithdrawalStore) List(_ *gorm.DB, _ withdrawalstore.ListFilter) ([]model.Withdrawal, error) {
	var out []model.Withdrawal
	for _, w := range f.rows {
		out = append(out, *w)
	}
	return out, nil
}

func (f *fakeWithdrawalStore) Save(_ *gorm.DB, w *model.Withdrawal) error {
	f.rows[w.ID] = w
	return nil
}

func (f *fakeWithdrawalStore) FindExpiredWaiting(_ *gorm.DB, now time.Time) ([]model.Withdrawal, error) {
	var out []model.Withdrawal
	for _, w := range f.rows {
		if w.Status == model.WithdrawalStatusWait &&
			w.MemberType == model.MemberTypeIndividual &&
			w.ProcessingScheduledAt != nil &&
			!w.ProcessingScheduledAt.After(now) {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (f *fakeWithdrawalStore) FindPendingWithVaultTx(_ *gorm.DB) ([]model.Withdrawal, error) {
	var out []model.Withdrawal
	for _, w := range f.rows {
		if w.Status == model.WithdrawalStatusPending && w.VaultTxID != "" {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (f *fakeWithdrawalStore) FindByStatusWithTxHash(_ *gorm.DB, status model.WithdrawalStatus) ([]model.Withdrawal, error) {
	var out []model.Withdrawal
	for _, w := range f.rows {
		if w.Status == status && w.TxHash != "" {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (f *fakeWithdrawalStore) UpdateStatusIf(_ *gorm.DB, id string, from model.WithdrawalStatus, updates map[string]interface{}) (bool, error) {
	w, ok := f.rows[id]
	if !ok || w.Status != from {
		return false, nil
	}
	for key, value := range updates {
		switch key {
		case "status":
			w.Status = value.(model.WithdrawalStatus)
		case "tx_hash":
			w.TxHash = value.(string)
		case "vault_tx_id":
			w.VaultTxID = value.(string)
		case "rejection_reason":
			w.RejectionReason = value.(string)
		case "rejected_by":
			w.RejectedBy = value.(string)
		case "rejected_at":
			at := value.(time.Time)
			w.RejectedAt = &at
		case "completed_at":
			at := value.(time.Time)
			w.CompletedAt = &at
		case "audit_trail":
			w.AuditTrail = value.(model.AuditTrail)
		}
	}
	return true, nil
}

type fakeEthRPC struct {
	height    uint64
	heightErr error

	transfersFn func(address string, sinceBlock *uint64, maxBlocks int) ([]model.OnchainTransfer, uint64, error)
	receiptFn   func(txHash string) (*types.Receipt, error)

	nativeBalance *big.Int
	tokenDecimals uint8

	gasEstimate  uint64
	estimateErr  error
	signErr      error
	broadcastErr error

	broadcastHash string
	awaitReceipt  *types.Receipt
	awaitErr      error

	signedNativeAmount *big.Int
	signedTokenAmount  *big.Int
}

func (f *fakeEthRPC) CurrentBlockHeight() (uint64, error) {
	return f.height, f.heightErr
}

func (f *fakeEthRPC) TransfersTo(address string, sinceBlock *uint64, maxBlocks int) ([]model.OnchainTransfer, uint64, error) {
	if f.transfersFn != nil {
		return f.transfersFn(address, sinceBlock, maxBlocks)
	}
	return nil, f.height, nil
}

func (f *fakeEthRPC) Receipt(txHash string) (*types.Receipt, error) {
	if f.receiptFn != nil {
		return f.receiptFn(txHash)
	}
	return nil, nil
}

func (f *fakeEthRPC) NativeBalance(_ string) (*big.Int, error) {
	if f.nativeBalance == nil {
		return big.NewInt(0), nil
	}
	return f.nativeBalance, nil
}

func (f *fakeEthRPC) TokenDecimals(_ string) (uint8, error) {
	return f.tokenDecimals, nil
}

func (f *fakeEthRPC) EstimateNativeTransferGas(_, _ string, _ *big.Int) (uint64, error) {
	return f.gasEstimate, f.estimateErr
}

func (f *fakeEthRPC) EstimateTokenTransferGas(_, _, _ string, _ *big.Int) (uint64, error) {
	return f.gasEstimate, f.estimateErr
}

func (f *fakeEthRPC) SignNativeTransfer(_, _ string, amountWei *big.Int) (*types.Transaction, error) {
	if f.signErr != nil {
		return nil, f.signErr
	}
	f.signedNativeAmount = amountWei
	return types.NewTx(&types.LegacyTx{Value: amountWei}), nil
}

func (f *fakeEthRPC) SignTokenTransfer(_, _, _ string, amountRaw *big.Int) (*types.Transaction, error) {
	if f.signErr != nil {
		return nil, f.signErr
	}
	f.signedTokenAmount = amountRaw
	return types.NewTx(&types.LegacyTx{}), nil
}

func (f *fakeEthRPC) Broadcast(_ *types.Transaction) (string, error) {
	if f.broadcastErr != nil {
		return "", f.broadcastErr
	}
	return f.broadcastHash, nil
}

func (f *fakeEthRPC) AwaitConfirmations(_ string, _ int) (*types.Receipt, error) {
	return f.awaitReceipt, f.awaitErr
}

type fakeVaultAPI struct {
	receiveAddress string
	receiveErr     error

	statuses  map[string]*vaultapi.TransferStatus
	statusErr error

	initiateFn func(w *model.Withdrawal, fromVaultID int) (string, error)
}

func (f *fakeVaultAPI) InitiateTransfer(w *model.Withdrawal, fromVaultID int) (string, error) {
	if f.initiateFn != nil {
		return f.initiateFn(w, fromVaultID)
	}
	return "", errors.New("not configured")
}

func (f *fakeVaultAPI) TransferStatus(assignedID string) (*vaultapi.TransferStatus, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	if status, ok := f.statuses[assignedID]; ok {
		return status, nil
	}
	return nil, errors.Errorf("unknown transfer %s", assignedID)
}

func (f *fakeVaultAPI) VaultReceiveAddress(_ int, _ string) (string, error) {
	return f.receiveAddress, f.receiveErr
}

type testFixture struct {
	crawler        *Crawler
	depositAddrs   *fakeDepositAddressStore
	whitelist      *fakeWithdrawalAddressStore
	deposits       *fakeDepositStore
	vaultTransfers *fakeVaultTransferStore
	withdrawals    *fakeWithdrawalStore
	ethRpc         *fakeEthRPC
	vaultApi       *fakeVaultAPI
}

func newTestFixture() *testFixture {
	f := &testFixture{
		depositAddrs:   newFakeDepositAddressStore(),
		whitelist:      &fakeWithdrawalAddressStore{},
		deposits:       newFakeDepositStore(),
		vaultTransfers: newFakeVaultTransferStore(),
		withdrawals:    newFakeWithdrawalStore(),
		ethRpc:         &fakeEthRPC{},
		vaultApi:       &fakeVaultAPI{},
	}

	appConfig := &config.AppConfig{
		Blockchain: config.BlockchainConfig{
			Network:       "Holesky",
			MaxScanBlocks: 10,
			TokenAddresses: map[string]string{
				"USDT": "0x7169D38820dfd117C3FA1f22a697dBA58d90BA06",
			},
		},
		Vault: config.VaultConfig{
			DefaultVaultID: 7,
			HotVaultID:     7,
			ColdVaultID:    8,
		},
		Sweep: config.SweepConfig{
			FeeRate:       decimal.RequireFromString("0.05"),
			MinGasBalance: decimal.RequireFromString("0.001"),
		},
	}

	s := &store.Store{
		DepositAddress:    f.depositAddrs,
		WithdrawalAddress: f.whitelist,
		Deposit:           f.deposits,
		VaultTransfer:     f.vaultTransfers,
		Withdrawal:        f.withdrawals,
	}

	f.deposits.transfers = f.vaultTransfers

	f.crawler = New(nil, s, appConfig, logger.New(environments.Test), f.ethRpc, f.vaultApi)
	f.crawler.now = func() time.Time { return testNow }
	f.crawler.doInTx = func(fn func(tx *gorm.DB) error) error { return fn(nil) }
	return f
}
