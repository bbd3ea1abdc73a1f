package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/harborpay/payroll-core/modules/payroll/domain/ports"
	"github.com/harborpay/payroll-core/modules/payroll/domain/types"
	"github.com/harborpay/payroll-core/pkg/payroll/tax"
)

type pgBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PGStore implements the domain ports over Postgres. Each call against the
// tenant tables (companies, employees, records, garnishments) runs in its
// own transaction with the company set as the row-security tenant.
// payroll.run_locks carries no row-security policy: idempotency keys embed
// the company, period lookups filter on company_id explicitly, and the
// expiry sweep has to see every tenant's stale locks. The run-lock table
// carries two partial unique indexes: one on idempotency_key and one on
// (company_id, period_start, period_end), both WHERE status IN ('ACTIVE',
// 'COMPLETED'); those indexes are what make concurrent acquisition safe
// and let failed attempts be retried.
type PGStore struct {
	pool pgBeginner
}

func NewPGStore(pool pgBeginner) *PGStore {
	return &PGStore{pool: pool}
}

const dateFormat = "2006-01-02"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *PGStore) begin(ctx context.Context, companyID string) (pgx.Tx, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return nil, errors.New("company_id is required")
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `SELECT set_config('app.current_tenant', $1, true);`, companyID); err != nil {
		_ = tx.Rollback(context.Background())
		return nil, err
	}
	return tx, nil
}

func (s *PGStore) GetCompany(ctx context.Context, companyID string) (types.Company, error) {
	tx, err := s.begin(ctx, companyID)
	if err != nil {
		return types.Company{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	var c types.Company
	err = tx.QueryRow(ctx, `
SELECT
  id::text,
  ein,
  registered_state,
  pay_periods_per_year,
  federal_deposit_schedule,
  COALESCE(eligibility_expr, '')
FROM payroll.companies
WHERE id = $1::uuid
`, companyID).Scan(&c.ID, &c.EIN, &c.RegisteredState, &c.PayPeriodsPerYear, &c.FederalDepositSchedule, &c.EligibilityExpr)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Company{}, ports.ErrNotFound
	}
	if err != nil {
		return types.Company{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return types.Company{}, err
	}
	return c, nil
}

func (s *PGStore) ListActiveEmployees(ctx context.Context, companyID string) ([]types.Employee, error) {
	tx, err := s.begin(ctx, companyID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	rows, err := tx.Query(ctx, `
SELECT
  id::text,
  company_id::text,
  compensation_type,
  pay_rate_cents,
  filing_status,
  allowances,
  hire_date::text,
  COALESCE(termination_date::text, ''),
  work_state,
  active
FROM payroll.employees
WHERE company_id = $1::uuid
  AND active
ORDER BY id::text ASC
`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Employee
	for rows.Next() {
		var e types.Employee
		var compType, filing, hireDate, termDate string
		if err := rows.Scan(&e.ID, &e.CompanyID, &compType, &e.PayRateCents, &filing, &e.Allowances, &hireDate, &termDate, &e.WorkState, &e.Active); err != nil {
			return nil, err
		}
		e.CompensationType = types.CompensationType(compType)
		e.FilingStatus = tax.FilingStatus(strings.ToUpper(strings.TrimSpace(filing)))
		if e.HireDate, err = time.Parse(dateFormat, hireDate); err != nil {
			return nil, err
		}
		if termDate != "" {
			t, err := time.Parse(dateFormat, termDate)
			if err != nil {
				return nil, err
			}
			e.TerminationDate = &t
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PGStore) YTDGrossWages(ctx context.Context, companyID, employeeID string, year int, periodStart time.Time) (int64, error) {
	tx, err := s.begin(ctx, companyID)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	var total int64
	if err := tx.QueryRow(ctx, `
SELECT COALESCE(SUM(gross_pay_cents), 0)
FROM payroll.records
WHERE company_id = $1::uuid
  AND employee_id = $2::uuid
  AND EXTRACT(YEAR FROM pay_date) = $3
  AND period_start < $4::date
`, companyID, employeeID, year, periodStart.Format(dateFormat)).Scan(&total); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *PGStore) ListActiveGarnishments(ctx context.Context, companyID, employeeID string) ([]types.Garnishment, error) {
	tx, err := s.begin(ctx, companyID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	rows, err := tx.Query(ctx, `
SELECT
  g.id::text,
  g.employee_id::text,
  g.garnishment_type,
  g.amount_cents,
  g.percent_milli_pct,
  g.priority,
  g.active,
  g.total_owed_cents,
  g.total_paid_cents
FROM payroll.garnishments g
JOIN payroll.employees e ON e.id = g.employee_id
WHERE e.company_id = $1::uuid
  AND g.employee_id = $2::uuid
  AND g.active
ORDER BY g.priority ASC, g.id::text ASC
`, companyID, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Garnishment
	for rows.Next() {
		var g types.Garnishment
		if err := rows.Scan(&g.ID, &g.EmployeeID, &g.Type, &g.AmountCents, &g.PercentMilliPct, &g.Priority, &g.Active, &g.TotalOwedCents, &g.TotalPaidCents); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PGStore) CreateRecordBatch(ctx context.Context, companyID string, records []types.PayrollRecord, payments []ports.GarnishmentPayment) error {
	if len(records) == 0 {
		return errors.New("record batch must not be empty")
	}

	tx, err := s.begin(ctx, companyID)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	for _, r := range records {
		if _, err := tx.Exec(ctx, `
INSERT INTO payroll.records (
  id,
  company_id,
  employee_id,
  period_start,
  period_end,
  pay_date,
  gross_pay_cents,
  federal_income_tax_cents,
  social_security_cents,
  medicare_cents,
  state_income_tax_cents,
  sdi_cents,
  sui_cents,
  garnishment_cents,
  net_pay_cents,
  created_at
)
VALUES (
  $1::uuid, $2::uuid, $3::uuid,
  $4::date, $5::date, $6::date,
  $7, $8, $9, $10, $11, $12, $13, $14, $15,
  now()
)
`, r.ID, r.CompanyID, r.EmployeeID,
			r.PeriodStart.Format(dateFormat), r.PeriodEnd.Format(dateFormat), r.PayDate.Format(dateFormat),
			r.GrossPayCents, r.FederalIncomeTaxCents, r.SocialSecurityCents, r.MedicareCents,
			r.StateIncomeTaxCents, r.SDICents, r.SUICents, r.GarnishmentCents, r.NetPayCents); err != nil {
			if isUniqueViolation(err) {
				return ports.ErrUniqueViolation
			}
			return err
		}

		for _, d := range r.GarnishmentDetails {
			if _, err := tx.Exec(ctx, `
INSERT INTO payroll.record_garnishments (record_id, garnishment_id, garnishment_type, amount_cents)
VALUES ($1::uuid, $2::uuid, $3, $4)
`, r.ID, d.GarnishmentID, d.Type, d.AmountCents); err != nil {
				return err
			}
		}
	}

	for _, p := range payments {
		if _, err := tx.Exec(ctx, `
UPDATE payroll.garnishments
SET total_paid_cents = total_paid_cents + $2
WHERE id = $1::uuid
`, p.GarnishmentID, p.AmountCents); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *PGStore) ListRecords(ctx context.Context, companyID string, periodStart, periodEnd time.Time) ([]types.PayrollRecord, error) {
	tx, err := s.begin(ctx, companyID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	rows, err := tx.Query(ctx, `
SELECT
  id::text,
  company_id::text,
  employee_id::text,
  period_start::text,
  period_end::text,
  pay_date::text,
  gross_pay_cents,
  federal_income_tax_cents,
  social_security_cents,
  medicare_cents,
  state_income_tax_cents,
  sdi_cents,
  sui_cents,
  garnishment_cents,
  net_pay_cents
FROM payroll.records
WHERE company_id = $1::uuid
  AND period_start = $2::date
  AND period_end = $3::date
ORDER BY employee_id::text ASC
`, companyID, periodStart.Format(dateFormat), periodEnd.Format(dateFormat))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.PayrollRecord
	for rows.Next() {
		var r types.PayrollRecord
		var start, end, pay string
		if err := rows.Scan(&r.ID, &r.CompanyID, &r.EmployeeID, &start, &end, &pay,
			&r.GrossPayCents, &r.FederalIncomeTaxCents, &r.SocialSecurityCents, &r.MedicareCents,
			&r.StateIncomeTaxCents, &r.SDICents, &r.SUICents, &r.GarnishmentCents, &r.NetPayCents); err != nil {
			return nil, err
		}
		if r.PeriodStart, err = time.Parse(dateFormat, start); err != nil {
			return nil, err
		}
		if r.PeriodEnd, err = time.Parse(dateFormat, end); err != nil {
			return nil, err
		}
		if r.PayDate, err = time.Parse(dateFormat, pay); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PGStore) FindLockByIdempotencyKey(ctx context.Context, key string) (types.RunLock, error) {
	return s.findLock(ctx, `WHERE idempotency_key = $1 AND status IN ('ACTIVE', 'COMPLETED')`, key)
}

func (s *PGStore) FindActiveLockForPeriod(ctx context.Context, companyID string, periodStart, periodEnd time.Time) (types.RunLock, error) {
	return s.findLock(ctx,
		`WHERE company_id = $1::uuid AND period_start = $2::date AND period_end = $3::date AND status = 'ACTIVE'`,
		companyID, periodStart.Format(dateFormat), periodEnd.Format(dateFormat))
}

func (s *PGStore) FindCompletedLockForPeriod(ctx context.Context, companyID string, periodStart, periodEnd time.Time) (types.RunLock, error) {
	return s.findLock(ctx,
		`WHERE company_id = $1::uuid AND period_start = $2::date AND period_end = $3::date AND status = 'COMPLETED'`,
		companyID, periodStart.Format(dateFormat), periodEnd.Format(dateFormat))
}

func (s *PGStore) findLock(ctx context.Context, where string, args ...any) (types.RunLock, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.RunLock{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	var l types.RunLock
	var status, start, end string
	err = tx.QueryRow(ctx, `
SELECT
  id::text,
  company_id::text,
  period_start::text,
  period_end::text,
  idempotency_key,
  status,
  locked_by,
  locked_at,
  expires_at
FROM payroll.run_locks
`+where+`
ORDER BY locked_at DESC
LIMIT 1
`, args...).Scan(&l.ID, &l.CompanyID, &start, &end, &l.IdempotencyKey, &status, &l.LockedBy, &l.LockedAt, &l.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.RunLock{}, ports.ErrNotFound
	}
	if err != nil {
		return types.RunLock{}, err
	}
	l.Status = types.RunLockStatus(status)
	if l.PeriodStart, err = time.Parse(dateFormat, start); err != nil {
		return types.RunLock{}, err
	}
	if l.PeriodEnd, err = time.Parse(dateFormat, end); err != nil {
		return types.RunLock{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return types.RunLock{}, err
	}
	return l, nil
}

func (s *PGStore) CreateLock(ctx context.Context, lock types.RunLock) error {
	tx, err := s.begin(ctx, lock.CompanyID)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	if _, err := tx.Exec(ctx, `
INSERT INTO payroll.run_locks (
  id, company_id, period_start, period_end, idempotency_key,
  status, locked_by, locked_at, expires_at
)
VALUES ($1::uuid, $2::uuid, $3::date, $4::date, $5, $6, $7, $8, $9)
`, lock.ID, lock.CompanyID,
		lock.PeriodStart.Format(dateFormat), lock.PeriodEnd.Format(dateFormat),
		lock.IdempotencyKey, string(lock.Status), lock.LockedBy, lock.LockedAt, lock.ExpiresAt); err != nil {
		if isUniqueViolation(err) {
			return ports.ErrUniqueViolation
		}
		return err
	}

	return tx.Commit(ctx)
}

func (s *PGStore) UpdateLockStatus(ctx context.Context, lockID string, to types.RunLockStatus) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	tag, err := tx.Exec(ctx, `
UPDATE payroll.run_locks
SET status = $2
WHERE id = $1::uuid
  AND status = 'ACTIVE'
`, lockID, string(to))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return tx.Commit(ctx)
}

func (s *PGStore) ExpireStaleLocks(ctx context.Context, now time.Time) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	tag, err := tx.Exec(ctx, `
UPDATE payroll.run_locks
SET status = 'EXPIRED'
WHERE status = 'ACTIVE'
  AND expires_at < $1
`, now)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
