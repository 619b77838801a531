package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Enumerations
const (
	RoleCoFounder        UserRole = "co_founder"
	RolePermanentPartner UserRole = "permanent_partner"
	RoleTemporaryWorker  UserRole = "temporary_worker"

	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"

	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"

	SalaryPending SalaryStatus = "pending"
	SalaryPaid    SalaryStatus = "paid"

	WorkerActionCreate WorkerAction = "create"
	WorkerActionUpdate WorkerAction = "update"
	WorkerActionDelete WorkerAction = "delete"
)

type UserRole string
type ApprovalStatus string
type ProjectStatus string
type SalaryStatus string
type WorkerAction string

type User struct {
	ID              string
	Email           *string
	Username        string
	FullName        string
	Role            UserRole
	IsActive        bool
	ProfilePhotoURL *string
	PasswordHash    *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type IncomeSource struct {
	ID                string
	Name              string
	Description       string
	AllocationFormula *string
	FeePercentage     decimal.Decimal
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type IncomeRecord struct {
	ID              string
	IncomeSourceID  string
	SourceName      string
	FeePercentage   decimal.Decimal
	Amount          decimal.Decimal
	NetAmount       *decimal.Decimal
	Description     string
	TransactionDate time.Time
	CreatedBy       string
	ApprovalStatus  ApprovalStatus
	ApprovedBy      *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type ExpenseRecord struct {
	ID              string
	Category        string
	Amount          decimal.Decimal
	Description     string
	TransactionDate time.Time
	VendorName      *string
	InvoiceNumber   *string
	ReceiptNumber   string
	CreatedBy       string
	ApprovalStatus  ApprovalStatus
	ApprovedBy      *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Asset struct {
	ID             string
	Name           string
	Description    string
	PurchaseDate   *time.Time
	PurchaseValue  decimal.Decimal
	CurrentValue   decimal.Decimal
	Condition      string
	Status         string
	CreatedBy      string
	ApprovalStatus ApprovalStatus
	ApprovedBy     *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Project struct {
	ID          string
	Name        string
	Description string
	TotalValue  decimal.Decimal
	StartDate   *time.Time
	EndDate     *time.Time
	Status      ProjectStatus
	CreatedBy   string
	Workers     []ProjectWorker
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ProjectWorker struct {
	ID              string
	ProjectID       string
	WorkerID        string
	WorkerName      string
	SharePercentage decimal.Decimal
	CreatedAt       time.Time
}

type WorkerPayment struct {
	ID             string
	WorkerID       string
	ProjectID      string
	ProjectName    string
	Amount         decimal.Decimal
	PaymentDate    time.Time
	Description    string
	CreatedBy      string
	ApprovalStatus ApprovalStatus
	ApprovedBy     *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// WorkerSnapshot is the identity payload carried by a WorkerApproval.
// On approval of a create action it becomes the live user record.
type WorkerSnapshot struct {
	Email    *string  `json:"email"`
	FullName string   `json:"full_name"`
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
}

type WorkerApproval struct {
	ID             string
	Action         WorkerAction
	UserID         string
	UserData       WorkerSnapshot
	CreatedBy      string
	CreatedByName  string
	ApprovalStatus ApprovalStatus
	ApprovedBy     *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type SalaryRecord struct {
	ID             string
	UserID         string
	UserName       string
	Month          time.Time
	Amount         decimal.Decimal
	ProfitSharePct decimal.Decimal
	TotalProfit    decimal.Decimal
	Status         SalaryStatus
	PaidDate       *time.Time
	CreatedAt      time.Time
}

type ActivityLog struct {
	ID         string
	UserID     *string
	Action     string
	EntityType string
	EntityID   *string
	Details    string
	CreatedAt  time.Time
}
