// Package types holds the payroll domain model. Monetary fields are int64
// cents; percent fields are int64 milli-percent (1000 = 1%).
package types

import (
	"time"

	"github.com/harborpay/payroll-core/pkg/payroll/tax"
)

type CompensationType string

const (
	CompensationSalary CompensationType = "SALARY"
	CompensationHourly CompensationType = "HOURLY"
)

type PayPeriodStatus string

const (
	PayPeriodDraft     PayPeriodStatus = "DRAFT"
	PayPeriodSubmitted PayPeriodStatus = "SUBMITTED"
	PayPeriodApproved  PayPeriodStatus = "APPROVED"
	PayPeriodRejected  PayPeriodStatus = "REJECTED"
)

type Company struct {
	ID                     string
	EIN                    string
	RegisteredState        string
	PayPeriodsPerYear      int64
	FederalDepositSchedule string
	// EligibilityExpr is an optional CEL expression evaluated per employee
	// before a payroll run; empty admits everyone.
	EligibilityExpr string
}

type Employee struct {
	ID               string
	CompanyID        string
	CompensationType CompensationType
	// PayRateCents is annual salary for SALARY, hourly rate for HOURLY.
	PayRateCents    int64
	FilingStatus    tax.FilingStatus
	Allowances      int64
	HireDate        time.Time
	TerminationDate *time.Time
	WorkState       string
	Active          bool
}

type PayPeriod struct {
	CompanyID string
	StartDate time.Time
	EndDate   time.Time
	PayDate   time.Time
	Status    PayPeriodStatus
}

// Validate enforces start < end <= payDate.
func (p PayPeriod) Validate() error {
	if !p.StartDate.Before(p.EndDate) {
		return NewValidation("period start must be before period end")
	}
	if p.EndDate.After(p.PayDate) {
		return NewValidation("pay date must not precede period end")
	}
	return nil
}

type Garnishment struct {
	ID              string
	EmployeeID      string
	Type            string
	AmountCents     int64
	PercentMilliPct int64
	Priority        int64
	Active          bool
	TotalOwedCents  int64
	TotalPaidCents  int64
}

// PayrollRecord is one employee's result for one pay period, immutable once
// created.
type PayrollRecord struct {
	ID         string
	CompanyID  string
	EmployeeID string

	PeriodStart time.Time
	PeriodEnd   time.Time
	PayDate     time.Time

	GrossPayCents         int64
	FederalIncomeTaxCents int64
	SocialSecurityCents   int64
	MedicareCents         int64
	StateIncomeTaxCents   int64
	SDICents              int64
	SUICents              int64
	GarnishmentCents      int64
	NetPayCents           int64

	GarnishmentDetails []GarnishmentDetail
	CreatedAt          time.Time
}

type GarnishmentDetail struct {
	GarnishmentID string
	Type          string
	AmountCents   int64
}
