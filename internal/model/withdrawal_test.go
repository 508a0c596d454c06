package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithdrawalBeforeCreate_IndividualDefaults(t *testing.T) {
	initiated := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	w := &Withdrawal{
		MemberType:  MemberTypeIndividual,
		InitiatedAt: initiated,
	}

	require.NoError(t, w.BeforeCreate(nil))

	assert.Equal(t, WithdrawalStatusWait, w.Status)
	require.NotNil(t, w.WaitingPeriodHours)
	assert.Equal(t, 24, *w.WaitingPeriodHours)
	require.NotNil(t, w.ProcessingScheduledAt)
	assert.Equal(t, initiated.Add(24*time.Hour), *w.ProcessingScheduledAt)
	assert.True(t, w.Cancellable)
	assert.NotNil(t, w.AuditTrail)
}

func TestWithdrawalBeforeCreate_IndividualExplicitSchedule(t *testing.T) {
	initiated := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	hours := 48
	w := &Withdrawal{
		MemberType:         MemberTypeIndividual,
		InitiatedAt:        initiated,
		WaitingPeriodHours: &hours,
	}

	require.NoError(t, w.BeforeCreate(nil))

	assert.Equal(t, 48, *w.WaitingPeriodHours)
	assert.Equal(t, initiated.Add(48*time.Hour), *w.ProcessingScheduledAt)
}

func TestWithdrawalBeforeCreate_CorporateDefaults(t *testing.T) {
	w := &Withdrawal{
		MemberType: MemberTypeCorporate,
	}

	require.NoError(t, w.BeforeCreate(nil))

	assert.Equal(t, WithdrawalStatusRequest, w.Status)
	assert.Nil(t, w.WaitingPeriodHours)
	assert.Nil(t, w.ProcessingScheduledAt)
	assert.False(t, w.Cancellable)
	assert.False(t, w.InitiatedAt.IsZero())
}

func TestWithdrawalBeforeCreate_ExistingStatusPreserved(t *testing.T) {
	w := &Withdrawal{
		MemberType: MemberTypeIndividual,
		Status:     WithdrawalStatusProcessing,
	}

	require.NoError(t, w.BeforeCreate(nil))
	assert.Equal(t, WithdrawalStatusProcessing, w.Status)
}

func TestAppendAudit(t *testing.T) {
	w := &Withdrawal{}
	w.AppendAudit("operator", "approved", "looks fine")
	w.AppendAudit("scheduler", "wait_period_expired", "")

	require.Len(t, w.AuditTrail, 2)
	assert.Equal(t, "operator", w.AuditTrail[0].Actor)
	assert.Equal(t, "approved", w.AuditTrail[0].Action)
	assert.Equal(t, "wait_period_expired", w.AuditTrail[1].Action)
	assert.False(t, w.AuditTrail[0].Timestamp.IsZero())
}

func TestAuditTrailValueScan(t *testing.T) {
	trail := AuditTrail{
		{Timestamp: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC), Actor: "operator", Action: "approved"},
	}

	value, err := trail.Value()
	require.NoError(t, err)

	var decoded AuditTrail
	require.NoError(t, decoded.Scan(value))
	require.Len(t, decoded, 1)
	assert.Equal(t, "operator", decoded[0].Actor)
	assert.Equal(t, "approved", decoded[0].Action)
}

func TestAuditTrailScanNil(t *testing.T) {
	var trail AuditTrail
	require.NoError(t, trail.Scan(nil))
	assert.NotNil(t, trail)
	assert.Empty(t, trail)
}

func TestApprovalListValueScan(t *testing.T) {
	approvals := ApprovalList{
		{UserID: "user_1", Name: "Kim", Timestamp: time.Now().UTC()},
	}

	value, err := approvals.Value()
	require.NoError(t, err)

	var decoded ApprovalList
	require.NoError(t, decoded.Scan(value))
	require.Len(t, decoded, 1)
	assert.Equal(t, "user_1", decoded[0].UserID)
}

func TestApprovalListNilValue(t *testing.T) {
	var approvals ApprovalList
	value, err := approvals.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", string(value.([]byte)))
}
