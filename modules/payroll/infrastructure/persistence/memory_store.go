// Package persistence provides the storage implementations behind the
// domain ports: a Postgres store for production and an in-memory store for
// tests and single-process use.
package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/harborpay/payroll-core/modules/payroll/domain/ports"
	"github.com/harborpay/payroll-core/modules/payroll/domain/types"
)

// MemoryStore implements every domain port over maps guarded by one mutex.
// Lock uniqueness is enforced under the mutex, giving the same semantics as
// the Postgres unique indexes for in-process concurrency.
type MemoryStore struct {
	mu           sync.Mutex
	companies    map[string]types.Company
	employees    map[string][]types.Employee    // by company
	garnishments map[string][]types.Garnishment // by employee
	records      []types.PayrollRecord
	locks        map[string]types.RunLock // by lock ID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		companies:    make(map[string]types.Company),
		employees:    make(map[string][]types.Employee),
		garnishments: make(map[string][]types.Garnishment),
		locks:        make(map[string]types.RunLock),
	}
}

func (m *MemoryStore) PutCompany(c types.Company) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.companies[c.ID] = c
}

func (m *MemoryStore) PutEmployee(e types.Employee) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.CompanyID] = append(m.employees[e.CompanyID], e)
}

func (m *MemoryStore) PutGarnishment(g types.Garnishment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.garnishments[g.EmployeeID] = append(m.garnishments[g.EmployeeID], g)
}

func (m *MemoryStore) GetCompany(_ context.Context, companyID string) (types.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.companies[companyID]
	if !ok {
		return types.Company{}, ports.ErrNotFound
	}
	return c, nil
}

func (m *MemoryStore) ListActiveEmployees(_ context.Context, companyID string) ([]types.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.Employee
	for _, e := range m.employees[companyID] {
		if e.Active {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MemoryStore) YTDGrossWages(_ context.Context, companyID, employeeID string, year int, periodStart time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for _, r := range m.records {
		if r.CompanyID == companyID && r.EmployeeID == employeeID && r.PayDate.Year() == year && r.PeriodStart.Before(periodStart) {
			total += r.GrossPayCents
		}
	}
	return total, nil
}

func (m *MemoryStore) ListActiveGarnishments(_ context.Context, _, employeeID string) ([]types.Garnishment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.Garnishment
	for _, g := range m.garnishments[employeeID] {
		if g.Active {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *MemoryStore) CreateRecordBatch(_ context.Context, companyID string, records []types.PayrollRecord, payments []ports.GarnishmentPayment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range records {
		for _, existing := range m.records {
			if existing.EmployeeID == r.EmployeeID && existing.PeriodStart.Equal(r.PeriodStart) && existing.PeriodEnd.Equal(r.PeriodEnd) {
				return ports.ErrUniqueViolation
			}
		}
	}

	m.records = append(m.records, records...)
	for _, p := range payments {
		for employeeID, list := range m.garnishments {
			for i := range list {
				if list[i].ID == p.GarnishmentID {
					list[i].TotalPaidCents += p.AmountCents
					m.garnishments[employeeID] = list
				}
			}
		}
	}
	return nil
}

func (m *MemoryStore) ListRecords(_ context.Context, companyID string, periodStart, periodEnd time.Time) ([]types.PayrollRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.PayrollRecord
	for _, r := range m.records {
		if r.CompanyID == companyID && r.PeriodStart.Equal(periodStart) && r.PeriodEnd.Equal(periodEnd) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MemoryStore) FindLockByIdempotencyKey(_ context.Context, key string) (types.RunLock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.locks {
		if l.IdempotencyKey != key {
			continue
		}
		// FAILED and EXPIRED locks are invisible here: a key whose only
		// prior attempts failed may be reused.
		if l.Status == types.RunLockActive || l.Status == types.RunLockCompleted {
			return l, nil
		}
	}
	return types.RunLock{}, ports.ErrNotFound
}

func (m *MemoryStore) FindActiveLockForPeriod(_ context.Context, companyID string, periodStart, periodEnd time.Time) (types.RunLock, error) {
	return m.findLockForPeriod(companyID, periodStart, periodEnd, types.RunLockActive)
}

func (m *MemoryStore) FindCompletedLockForPeriod(_ context.Context, companyID string, periodStart, periodEnd time.Time) (types.RunLock, error) {
	return m.findLockForPeriod(companyID, periodStart, periodEnd, types.RunLockCompleted)
}

func (m *MemoryStore) findLockForPeriod(companyID string, periodStart, periodEnd time.Time, status types.RunLockStatus) (types.RunLock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.locks {
		if l.CompanyID == companyID && l.PeriodStart.Equal(periodStart) && l.PeriodEnd.Equal(periodEnd) && l.Status == status {
			return l, nil
		}
	}
	return types.RunLock{}, ports.ErrNotFound
}

func (m *MemoryStore) CreateLock(_ context.Context, lock types.RunLock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.locks {
		// FAILED and EXPIRED locks do not block reuse of their key or
		// period; this mirrors the partial unique indexes in Postgres.
		if l.Status != types.RunLockActive && l.Status != types.RunLockCompleted {
			continue
		}
		if l.IdempotencyKey == lock.IdempotencyKey {
			return ports.ErrUniqueViolation
		}
		if l.CompanyID == lock.CompanyID &&
			l.PeriodStart.Equal(lock.PeriodStart) && l.PeriodEnd.Equal(lock.PeriodEnd) {
			return ports.ErrUniqueViolation
		}
	}
	m.locks[lock.ID] = lock
	return nil
}

func (m *MemoryStore) UpdateLockStatus(_ context.Context, lockID string, to types.RunLockStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[lockID]
	if !ok || l.Status != types.RunLockActive {
		return ports.ErrNotFound
	}
	l.Status = to
	m.locks[lockID] = l
	return nil
}

func (m *MemoryStore) ExpireStaleLocks(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, l := range m.locks {
		if l.ExpiredAt(now) {
			l.Status = types.RunLockExpired
			m.locks[id] = l
			n++
		}
	}
	return n, nil
}
