package deposit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/abc-custody/custody-backend/internal/model"
	"github.com/abc-custody/custody-backend/internal/store"
	depositstore "github.com/abc-custody/custody-backend/internal/store/deposit"
)

type fakeDepositStore struct {
	deposits map[string]*model.Deposit

	gotFilter depositstore.ListFilter
}

func (f *fakeDepositStore) Create(_ *gorm.DB, d *model.Deposit) (*model.Deposit, error) {
	f.deposits[d.ID] = d
	return d, nil
}

func (f *fakeDepositStore) GetByID(_ *gorm.DB, id string) (*model.Deposit, error) {
	if d, ok := f.deposits[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDepositStore) GetByTxHash(_ *gorm.DB, _ string) (*model.Deposit, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDepositStore) List(_ *gorm.DB, filter depositstore.ListFilter) ([]model.Deposit, error) {
	f.gotFilter = filter
	var out []model.Deposit
	for _, d := range f.deposits {
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeDepositStore) FindConfirming(_ *gorm.DB) ([]model.Deposit, error) {
	return nil, nil
}

func (f *fakeDepositStore) FindSweepEligible(_ *gorm.DB) ([]model.Deposit, error) {
	return nil, nil
}

func (f *fakeDepositStore) UpdateConfirmations(_ *gorm.DB, _ string, _ int64, _ model.DepositStatus, _ *time.Time) error {
	return nil
}

func (f *fakeDepositStore) UpdateStatusIf(_ *gorm.DB, _ string, _, _ model.DepositStatus) (bool, error) {
	return false, nil
}

type fakeVaultTransferStore struct {
	transfers []*model.VaultTransfer
}

func (f *fakeVaultTransferStore) Create(_ *gorm.DB, t *model.VaultTransfer) (*model.VaultTransfer, error) {
	f.transfers = append(f.transfers, t)
	return t, nil
}

func (f *fakeVaultTransferStore) GetByID(_ *gorm.DB, _ string) (*model.VaultTransfer, error) {
	return nil, gorm.ErrRecordNotFound
}

// latest transferred_at first, never-broadcast attempts last, created_at
// as tie break, mirroring the store's ordering
func (f *fakeVaultTransferStore) GetLatestByDepositID(_ *gorm.DB, depositID string) (*model.VaultTransfer, error) {
	var latest *model.VaultTransfer
	for _, t := range f.transfers {
		if t.DepositID != depositID {
			continue
		}
		if latest == nil {
			latest = t
			continue
		}
		switch {
		case t.TransferredAt != nil && latest.TransferredAt == nil:
			latest = t
		case t.TransferredAt == nil && latest.TransferredAt != nil:
		case t.TransferredAt != nil && t.TransferredAt.After(*latest.TransferredAt):
			latest = t
		case t.TransferredAt == nil && latest.TransferredAt == nil && t.CreatedAt.After(latest.CreatedAt):
			latest = t
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (f *fakeVaultTransferStore) HasActiveForDeposit(_ *gorm.DB, _ string) (bool, error) {
	return false, nil
}

func (f *fakeVaultTransferStore) MarkSent(_ *gorm.DB, _, _ string, _ uint64, _ time.Time) error {
	return nil
}

func (f *fakeVaultTransferStore) MarkConfirmed(_ *gorm.DB, _ string, _ uint64, _ string, _ time.Time) error {
	return nil
}

func (f *fakeVaultTransferStore) MarkFailed(_ *gorm.DB, _, _ string) error {
	return nil
}

func newHandlerFixture() (IHandler, *fakeDepositStore, *fakeVaultTransferStore) {
	deposits := &fakeDepositStore{deposits: map[string]*model.Deposit{}}
	transfers := &fakeVaultTransferStore{}
	h := New(nil, &store.Store{
		Deposit:       deposits,
		VaultTransfer: transfers,
	})
	return h, deposits, transfers
}

func testContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, w
}

func TestGetDeposit_ReturnsLatestBroadcastTransfer(t *testing.T) {
	h, deposits, transfers := newHandlerFixture()
	deposits.deposits["dep_1"] = &model.Deposit{ID: "dep_1", TxHash: "0xaaa"}

	sentAt := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	transfers.transfers = []*model.VaultTransfer{
		{
			ID:            "vtx_sent",
			DepositID:     "dep_1",
			Status:        model.VaultTransferStatusConfirmed,
			TransferredAt: &sentAt,
			CreatedAt:     sentAt.Add(-time.Minute),
		},
		{
			// a later attempt that never reached the chain ranks below
			ID:        "vtx_unsent",
			DepositID: "dep_1",
			Status:    model.VaultTransferStatusFailed,
			CreatedAt: sentAt.Add(time.Hour),
		},
	}

	c, w := testContext("/api/v1/deposits/dep_1")
	c.Params = gin.Params{{Key: "id", Value: "dep_1"}}
	h.GetDeposit(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp GetDepositResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.VaultTransfer)
	assert.Equal(t, "vtx_sent", resp.VaultTransfer.ID)
}

func TestGetDeposit_NoTransferLineage(t *testing.T) {
	h, deposits, _ := newHandlerFixture()
	deposits.deposits["dep_1"] = &model.Deposit{ID: "dep_1", TxHash: "0xaaa"}

	c, w := testContext("/api/v1/deposits/dep_1")
	c.Params = gin.Params{{Key: "id", Value: "dep_1"}}
	h.GetDeposit(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp GetDepositResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Deposit)
	assert.Nil(t, resp.VaultTransfer)
}

func TestGetDeposit_NotFound(t *testing.T) {
	h, _, _ := newHandlerFixture()

	c, w := testContext("/api/v1/deposits/dep_missing")
	c.Params = gin.Params{{Key: "id", Value: "dep_missing"}}
	h.GetDeposit(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetDeposits_LimitDefaultsAndCaps(t *testing.T) {
	h, deposits, _ := newHandlerFixture()

	c, w := testContext("/api/v1/deposits")
	h.GetDeposits(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 20, deposits.gotFilter.Limit)

	c, w = testContext("/api/v1/deposits?limit=500&user_id=user_1")
	h.GetDeposits(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 100, deposits.gotFilter.Limit)
	assert.Equal(t, "user_1", deposits.gotFilter.UserID)
}
