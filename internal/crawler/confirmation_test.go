package crawler

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abc-custody/custody-backend/internal/model"
)

func confirmingDeposit(id string, status model.DepositStatus, block uint64, confirmations int64) model.Deposit {
	return model.Deposit{
		ID:                    id,
		TxHash:                "0xhash_" + id,
		Status:                status,
		BlockHeight:           block,
		CurrentConfirmations:  confirmations,
		RequiredConfirmations: 12,
	}
}

func TestTrackDepositConfirmations_AdvancesCount(t *testing.T) {
	f := newTestFixture()
	f.deposits.add(confirmingDeposit("dep_1", model.DepositStatusDetected, 90, 0))
	f.ethRpc.height = 100

	result, err := f.crawler.TrackDepositConfirmations()
	require.NoError(t, err)
	assert.Equal(t, []string{"dep_1"}, result.Succeeded)

	d, _ := f.deposits.GetByID(nil, "dep_1")
	assert.Equal(t, int64(10), d.CurrentConfirmations)
	assert.Equal(t, model.DepositStatusConfirming, d.Status)
	assert.Nil(t, d.ConfirmedAt)
}

func TestTrackDepositConfirmations_ConfirmsAtThreshold(t *testing.T) {
	f := newTestFixture()
	f.deposits.add(confirmingDeposit("dep_1", model.DepositStatusConfirming, 88, 10))
	f.ethRpc.height = 100

	_, err := f.crawler.TrackDepositConfirmations()
	require.NoError(t, err)

	d, _ := f.deposits.GetByID(nil, "dep_1")
	assert.Equal(t, int64(12), d.CurrentConfirmations)
	assert.Equal(t, model.DepositStatusConfirmed, d.Status)
	require.NotNil(t, d.ConfirmedAt)
	assert.Equal(t, testNow, *d.ConfirmedAt)
}

func TestTrackDepositConfirmations_NoWriteWhenUnchanged(t *testing.T) {
	f := newTestFixture()
	f.deposits.add(confirmingDeposit("dep_1", model.DepositStatusConfirming, 95, 5))
	f.ethRpc.height = 100

	result, err := f.crawler.TrackDepositConfirmations()
	require.NoError(t, err)
	assert.Empty(t, result.Succeeded)
	assert.Empty(t, f.deposits.confirmationUpdates)
}

func TestTrackDepositConfirmations_ReorgNeverDemotes(t *testing.T) {
	f := newTestFixture()
	// the head moved behind the deposit's block; the count drops to zero
	// but confirming holds
	f.deposits.add(confirmingDeposit("dep_1", model.DepositStatusConfirming, 95, 5))
	f.ethRpc.height = 93

	_, err := f.crawler.TrackDepositConfirmations()
	require.NoError(t, err)

	d, _ := f.deposits.GetByID(nil, "dep_1")
	assert.Equal(t, int64(0), d.CurrentConfirmations)
	assert.Equal(t, model.DepositStatusConfirming, d.Status)
}

func TestTrackDepositConfirmations_CreditedDepositsUntouched(t *testing.T) {
	f := newTestFixture()
	f.deposits.add(confirmingDeposit("dep_1", model.DepositStatusCredited, 50, 50))
	f.ethRpc.height = 200

	result, err := f.crawler.TrackDepositConfirmations()
	require.NoError(t, err)
	assert.Empty(t, result.Succeeded)

	d, _ := f.deposits.GetByID(nil, "dep_1")
	assert.Equal(t, model.DepositStatusCredited, d.Status)
}

func TestTrackDepositConfirmations_HeightErrorAbortsCycle(t *testing.T) {
	f := newTestFixture()
	f.ethRpc.heightErr = errors.New("rpc unavailable")

	_, err := f.crawler.TrackDepositConfirmations()
	assert.Error(t, err)
}
