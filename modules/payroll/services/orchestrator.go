package services

import (
	"context"
	"fmt"
	"time"

	"github.com/harborpay/payroll-core/modules/payroll/domain/ports"
	"github.com/harborpay/payroll-core/modules/payroll/domain/types"
	"github.com/harborpay/payroll-core/pkg/payroll/garnish"
	"github.com/harborpay/payroll-core/pkg/payroll/proration"
	"github.com/harborpay/payroll-core/pkg/payroll/tax"
	"github.com/harborpay/payroll-core/pkg/uuidv7"
)

// standardAnnualHours backs hourly gross pay until a time-tracking source
// exists: 2080 hours/year, so 80 for biweekly, 86.67 for semimonthly.
const standardAnnualHours = 2080

// Orchestrator computes one payroll run: per eligible employee, proration →
// gross pay → federal + state tax → garnishments → net pay, persisted as
// one atomic record batch. The caller must already hold an ACTIVE run lock;
// the orchestrator does not acquire one.
type Orchestrator struct {
	engine       *tax.Engine
	companies    ports.CompanyStore
	employees    ports.EmployeeStore
	garnishments ports.GarnishmentStore
	records      ports.PayrollRecordStore
	ceilings     garnish.CeilingPolicy
	newID        func() (string, error)
	now          func() time.Time
}

func NewOrchestrator(
	engine *tax.Engine,
	companies ports.CompanyStore,
	employees ports.EmployeeStore,
	garnishments ports.GarnishmentStore,
	records ports.PayrollRecordStore,
) *Orchestrator {
	return &Orchestrator{
		engine:       engine,
		companies:    companies,
		employees:    employees,
		garnishments: garnishments,
		records:      records,
		ceilings:     garnish.DefaultCeilingPolicy(),
		newID:        uuidv7.NewString,
		now:          time.Now,
	}
}

// Run processes every eligible active employee for the period. The first
// employee error aborts the whole run; nothing is committed unless every
// record computes. Zero eligible employees is a DataError, not an empty
// success, because it usually means a data problem.
func (o *Orchestrator) Run(ctx context.Context, companyID string, periodStart, periodEnd, payDate time.Time) ([]types.PayrollRecord, error) {
	period := types.PayPeriod{
		CompanyID: companyID,
		StartDate: periodStart,
		EndDate:   periodEnd,
		PayDate:   payDate,
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}

	company, err := o.companies.GetCompany(ctx, companyID)
	if err != nil {
		return nil, types.NewStorage("get company", err)
	}
	if company.PayPeriodsPerYear <= 0 {
		return nil, types.NewConfiguration(fmt.Sprintf("company %s has no pay frequency", companyID), nil)
	}

	filter, err := newEligibilityFilter(company.EligibilityExpr)
	if err != nil {
		return nil, err
	}

	employees, err := o.employees.ListActiveEmployees(ctx, companyID)
	if err != nil {
		return nil, types.NewStorage("list employees", err)
	}

	year := payDate.Year()
	var records []types.PayrollRecord
	var payments []ports.GarnishmentPayment

	for _, emp := range employees {
		admitted, err := filter.admits(emp)
		if err != nil {
			return nil, err
		}
		if !admitted {
			continue
		}

		num, den := proration.Factor(periodStart, periodEnd, emp.HireDate, emp.TerminationDate)
		if num == 0 {
			continue
		}

		record, empPayments, err := o.processEmployee(ctx, company, emp, period, year, num, den)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
		payments = append(payments, empPayments...)
	}

	if len(records) == 0 {
		return nil, types.NewData("no eligible employees for period")
	}

	if err := o.records.CreateRecordBatch(ctx, companyID, records, payments); err != nil {
		return nil, types.NewStorage("create record batch", err)
	}
	return records, nil
}

func (o *Orchestrator) processEmployee(ctx context.Context, company types.Company, emp types.Employee, period types.PayPeriod, year int, num, den int64) (types.PayrollRecord, []ports.GarnishmentPayment, error) {
	periods := company.PayPeriodsPerYear

	var basePeriodGross int64
	switch emp.CompensationType {
	case types.CompensationSalary:
		basePeriodGross = divRoundHalfUp(emp.PayRateCents, periods)
	case types.CompensationHourly:
		basePeriodGross = divRoundHalfUp(emp.PayRateCents*standardAnnualHours, periods)
	default:
		return types.PayrollRecord{}, nil, types.NewValidation(fmt.Sprintf("employee %s has unknown compensation type %q", emp.ID, emp.CompensationType))
	}
	gross := proration.Apply(basePeriodGross, num, den)

	ytdGross, err := o.employees.YTDGrossWages(ctx, company.ID, emp.ID, year, period.StartDate)
	if err != nil {
		return types.PayrollRecord{}, nil, types.NewStorage("ytd wages", err)
	}

	in := tax.Input{
		GrossPayCents:      gross,
		PayPeriodsPerYear:  periods,
		FilingStatus:       emp.FilingStatus,
		Allowances:         emp.Allowances,
		YTDGrossWagesCents: ytdGross,
	}

	federal, err := o.engine.Compute(tax.JurisdictionFederal, year, in)
	if err != nil {
		return types.PayrollRecord{}, nil, types.NewConfiguration(fmt.Sprintf("federal tax for employee %s", emp.ID), err)
	}
	state, err := o.engine.Compute(emp.WorkState, year, in)
	if err != nil {
		return types.PayrollRecord{}, nil, types.NewConfiguration(fmt.Sprintf("state %s tax for employee %s", emp.WorkState, emp.ID), err)
	}

	totalTax := federal.TotalCents + state.TotalCents
	disposable := gross - totalTax
	if disposable < 0 {
		disposable = 0
	}

	orders, err := o.garnishments.ListActiveGarnishments(ctx, company.ID, emp.ID)
	if err != nil {
		return types.PayrollRecord{}, nil, types.NewStorage("list garnishments", err)
	}
	outcome := garnish.Apply(disposable, toGarnishInput(orders), o.ceilings)

	id, err := o.newID()
	if err != nil {
		return types.PayrollRecord{}, nil, types.NewStorage("generate record id", err)
	}

	record := types.PayrollRecord{
		ID:         id,
		CompanyID:  company.ID,
		EmployeeID: emp.ID,

		PeriodStart: period.StartDate,
		PeriodEnd:   period.EndDate,
		PayDate:     period.PayDate,

		GrossPayCents:         gross,
		FederalIncomeTaxCents: federal.IncomeTaxCents,
		SocialSecurityCents:   federal.SocialSecurityCents,
		MedicareCents:         federal.MedicareCents,
		StateIncomeTaxCents:   state.IncomeTaxCents,
		SDICents:              state.SDICents,
		SUICents:              state.SUICents,
		GarnishmentCents:      outcome.TotalDeductionCents,
		NetPayCents:           disposable - outcome.TotalDeductionCents,

		CreatedAt: o.now(),
	}
	for _, d := range outcome.Details {
		record.GarnishmentDetails = append(record.GarnishmentDetails, types.GarnishmentDetail{
			GarnishmentID: d.GarnishmentID,
			Type:          d.Type,
			AmountCents:   d.AmountCents,
		})
	}

	payments := make([]ports.GarnishmentPayment, 0, len(outcome.Details))
	for _, d := range outcome.Details {
		payments = append(payments, ports.GarnishmentPayment{GarnishmentID: d.GarnishmentID, AmountCents: d.AmountCents})
	}
	return record, payments, nil
}

func toGarnishInput(orders []types.Garnishment) []garnish.Garnishment {
	out := make([]garnish.Garnishment, 0, len(orders))
	for _, g := range orders {
		if !g.Active {
			continue
		}
		out = append(out, garnish.Garnishment{
			ID:              g.ID,
			Type:            g.Type,
			AmountCents:     g.AmountCents,
			PercentMilliPct: g.PercentMilliPct,
			Priority:        g.Priority,
			TotalOwedCents:  g.TotalOwedCents,
			TotalPaidCents:  g.TotalPaidCents,
		})
	}
	return out
}

func divRoundHalfUp(amountCents, div int64) int64 {
	if amountCents <= 0 || div <= 0 {
		return 0
	}
	q := amountCents / div
	if (amountCents%div)*2 >= div {
		return q + 1
	}
	return q
}
