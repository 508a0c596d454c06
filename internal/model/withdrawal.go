package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type WithdrawalStatus string

const (
	// Corporate lineage entry point.
	WithdrawalStatusRequest WithdrawalStatus = "withdrawal_request"

	// Individual lineage.
	WithdrawalStatusWait            WithdrawalStatus = "withdrawal_wait"
	WithdrawalStatusAMLReview       WithdrawalStatus = "aml_review"
	WithdrawalStatusApprovalPending WithdrawalStatus = "approval_pending"

	// Shared tail of both lineages.
	WithdrawalStatusProcessing   WithdrawalStatus = "processing"
	WithdrawalStatusPending      WithdrawalStatus = "withdrawal_pending"
	WithdrawalStatusTransferring WithdrawalStatus = "transferring"
	WithdrawalStatusSuccess      WithdrawalStatus = "success"

	// Terminal branches.
	WithdrawalStatusStopped       WithdrawalStatus = "withdrawal_stopped"
	WithdrawalStatusFailed        WithdrawalStatus = "failed"
	WithdrawalStatusRejected      WithdrawalStatus = "rejected"
	WithdrawalStatusAdminRejected WithdrawalStatus = "admin_rejected"
	WithdrawalStatusArchived      WithdrawalStatus = "archived"
	WithdrawalStatusReapply       WithdrawalStatus = "withdrawal_reapply"
)

type MemberType string

const (
	MemberTypeIndividual MemberType = "individual"
	MemberTypeCorporate  MemberType = "corporate"
)

type WithdrawalPriority string

const (
	PriorityLow      WithdrawalPriority = "low"
	PriorityMedium   WithdrawalPriority = "medium"
	PriorityHigh     WithdrawalPriority = "high"
	PriorityCritical WithdrawalPriority = "critical"
)

// DefaultWaitingPeriodHours is the mandatory holding period applied to
// individual-member withdrawals that carry no explicit schedule.
const DefaultWaitingPeriodHours = 24

// ApprovalRecord is one approval or rejection vote on a corporate
// withdrawal. Stored as JSONB.
type ApprovalRecord struct {
	UserID    string    `json:"userId"`
	Name      string    `json:"name,omitempty"`
	Comment   string    `json:"comment,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ApprovalList []ApprovalRecord

func (a ApprovalList) Value() (driver.Value, error) {
	if a == nil {
		a = ApprovalList{}
	}
	return json.Marshal(a)
}

func (a *ApprovalList) Scan(value interface{}) error {
	if value == nil {
		*a = ApprovalList{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.Errorf("unexpected type %T for ApprovalList", value)
	}
	return json.Unmarshal(b, a)
}

// AuditEntry is one line of the append-only withdrawal audit trail.
type AuditEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
}

type AuditTrail []AuditEntry

func (t AuditTrail) Value() (driver.Value, error) {
	if t == nil {
		t = AuditTrail{}
	}
	return json.Marshal(t)
}

func (t *AuditTrail) Scan(value interface{}) error {
	if value == nil {
		*t = AuditTrail{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.Errorf("unexpected type %T for AuditTrail", value)
	}
	return json.Unmarshal(b, t)
}

// Withdrawal is one member withdrawal request. VaultTxID is the custody
// API's assigned transaction id; TxHash is the eventual broadcast hash.
// The two are distinct and assigned at different pipeline stages.
type Withdrawal struct {
	ID          string          `json:"id" gorm:"column:id;primaryKey"`
	Title       string          `json:"title" gorm:"column:title;not null"`
	FromAddress string          `json:"from_address" gorm:"column:from_address;not null"`
	ToAddress   string          `json:"to_address" gorm:"column:to_address;not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"column:amount;type:numeric(30,10);not null"`
	Currency    string          `json:"currency" gorm:"column:currency;not null;index"`

	UserID     string     `json:"user_id" gorm:"column:user_id;not null;index"`
	MemberType MemberType `json:"member_type" gorm:"column:member_type;type:varchar(20);not null;index"`
	GroupID    string     `json:"group_id,omitempty" gorm:"column:group_id"`
	Initiator  string     `json:"initiator" gorm:"column:initiator;not null"`

	Status   WithdrawalStatus    `json:"status" gorm:"column:status;type:varchar(30);not null;index"`
	Priority *WithdrawalPriority `json:"priority,omitempty" gorm:"column:priority;type:varchar(20)"`

	Description string `json:"description,omitempty" gorm:"column:description;type:text"`

	// Corporate approval loop.
	RequiredApprovals ApprovalList `json:"required_approvals" gorm:"column:required_approvals;type:jsonb"`
	Approvals         ApprovalList `json:"approvals" gorm:"column:approvals;type:jsonb"`
	Rejections        ApprovalList `json:"rejections" gorm:"column:rejections;type:jsonb"`

	// Assigned by the custody API when the operator submits the transfer.
	VaultTxID string `json:"vault_tx_id,omitempty" gorm:"column:vault_tx_id;index"`

	// Assigned at most once, on the withdrawal_pending -> transferring edge.
	TxHash             string `json:"tx_hash,omitempty" gorm:"column:tx_hash;index"`
	BlockConfirmations int64  `json:"block_confirmations" gorm:"column:block_confirmations;not null;default:0"`

	// Individual-member scheduling.
	QueuePosition         *int       `json:"queue_position,omitempty" gorm:"column:queue_position"`
	WaitingPeriodHours    *int       `json:"waiting_period_hours,omitempty" gorm:"column:waiting_period_hours"`
	ProcessingScheduledAt *time.Time `json:"processing_scheduled_at,omitempty" gorm:"column:processing_scheduled_at;index"`
	Cancellable           bool       `json:"cancellable" gorm:"column:cancellable;not null;default:false"`

	CompletedAt     *time.Time `json:"completed_at,omitempty" gorm:"column:completed_at"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty" gorm:"column:cancelled_at"`
	CancelledBy     string     `json:"cancelled_by,omitempty" gorm:"column:cancelled_by"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty" gorm:"column:rejected_at"`
	RejectedBy      string     `json:"rejected_by,omitempty" gorm:"column:rejected_by"`
	RejectionReason string     `json:"rejection_reason,omitempty" gorm:"column:rejection_reason;type:text"`

	AuditTrail AuditTrail `json:"audit_trail" gorm:"column:audit_trail;type:jsonb;not null"`

	// Corporate reapplication chain.
	OriginalRequestID  string `json:"original_request_id,omitempty" gorm:"column:original_request_id"`
	ReapplicationCount int    `json:"reapplication_count" gorm:"column:reapplication_count;not null;default:0"`

	InitiatedAt time.Time `json:"initiated_at" gorm:"column:initiated_at;not null;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Withdrawal) TableName() string {
	return "withdrawals"
}

// BeforeCreate applies the member-type defaults: individual withdrawals
// enter the mandatory holding period, corporate withdrawals enter the
// approval loop.
func (w *Withdrawal) BeforeCreate(tx *gorm.DB) error {
	if w.InitiatedAt.IsZero() {
		w.InitiatedAt = time.Now()
	}
	if w.AuditTrail == nil {
		w.AuditTrail = AuditTrail{}
	}

	switch w.MemberType {
	case MemberTypeIndividual:
		if w.Status == "" {
			w.Status = WithdrawalStatusWait
		}
		if w.WaitingPeriodHours == nil {
			hours := DefaultWaitingPeriodHours
			w.WaitingPeriodHours = &hours
		}
		if w.ProcessingScheduledAt == nil {
			scheduled := w.InitiatedAt.Add(time.Duration(*w.WaitingPeriodHours) * time.Hour)
			w.ProcessingScheduledAt = &scheduled
		}
		w.Cancellable = true
	case MemberTypeCorporate:
		if w.Status == "" {
			w.Status = WithdrawalStatusRequest
		}
	}

	return nil
}

// AppendAudit records an engine or operator action on the withdrawal. The
// trail is append-only; callers must persist the whole row afterwards.
func (w *Withdrawal) AppendAudit(actor, action, detail string) {
	w.AuditTrail = append(w.AuditTrail, AuditEntry{
		Timestamp: time.Now(),
		Actor:     actor,
		Action:    action,
		Detail:    detail,
	})
}
