package domain

import "time"

// RecordKind names an entity type that participates in the approval workflow.
type RecordKind string

const (
	KindIncomeRecord   RecordKind = "income_record"
	KindExpenseRecord  RecordKind = "expense_record"
	KindAsset          RecordKind = "asset"
	KindWorkerPayment  RecordKind = "worker_payment"
	KindWorkerApproval RecordKind = "worker_management"
)

// Approvable is the slice of any record the approval workflow cares about.
type Approvable struct {
	ID             string
	Kind           RecordKind
	CreatedBy      string
	ApprovalStatus ApprovalStatus
	ApprovedBy     *string
	UpdatedAt      time.Time
}
