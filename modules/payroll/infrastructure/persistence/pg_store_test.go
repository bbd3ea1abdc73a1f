package persistence

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/harborpay/payroll-core/modules/payroll/domain/ports"
	"github.com/harborpay/payroll-core/modules/payroll/domain/types"
)

type beginnerFunc func(ctx context.Context) (pgx.Tx, error)

func (f beginnerFunc) Begin(ctx context.Context) (pgx.Tx, error) { return f(ctx) }

type stubTx struct {
	execErr   error
	execErrAt int
	execN     int
	execSQLs  []string
	execTag   pgconn.CommandTag
	queryErr  error
	commitErr error
	rowErr    error

	rows pgx.Rows
	row  pgx.Row
}

func (t *stubTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *stubTx) Commit(context.Context) error              { return t.commitErr }
func (t *stubTx) Rollback(context.Context) error            { return nil }
func (t *stubTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *stubTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (t *stubTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (t *stubTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *stubTx) Conn() *pgx.Conn { return nil }

func (t *stubTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	t.execSQLs = append(t.execSQLs, sql)
	t.execN++
	if t.execErr != nil {
		at := t.execErrAt
		if at == 0 {
			at = 1
		}
		if t.execN == at {
			return pgconn.CommandTag{}, t.execErr
		}
	}
	return t.execTag, nil
}

func (t *stubTx) Query(context.Context, string, ...any) (pgx.Rows, error) {
	if t.queryErr != nil {
		return nil, t.queryErr
	}
	return t.rows, nil
}

func (t *stubTx) QueryRow(context.Context, string, ...any) pgx.Row {
	if t.rowErr != nil {
		return stubRow{err: t.rowErr}
	}
	return t.row
}

type stubRow struct {
	vals []any
	err  error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return scanInto(r.vals, dest)
}

func scanInto(vals, dest []any) error {
	for i := range dest {
		if i >= len(vals) {
			return errors.New("not enough stub values")
		}
		switch d := dest[i].(type) {
		case *string:
			*d = vals[i].(string)
		case *int64:
			*d = vals[i].(int64)
		case *bool:
			*d = vals[i].(bool)
		case *time.Time:
			*d = vals[i].(time.Time)
		default:
			return errors.New("unsupported scan type")
		}
	}
	return nil
}

type stubRows struct {
	vals    [][]any
	idx     int
	scanErr error
	err     error
}

func (r *stubRows) Close()                        {}
func (r *stubRows) Err() error                    { return r.err }
func (r *stubRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }
func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription {
	return nil
}
func (r *stubRows) Next() bool             { return r.idx < len(r.vals) }
func (r *stubRows) Values() ([]any, error) { return nil, nil }
func (r *stubRows) RawValues() [][]byte    { return nil }
func (r *stubRows) Conn() *pgx.Conn        { return nil }

func (r *stubRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	vals := r.vals[r.idx]
	r.idx++
	return scanInto(vals, dest)
}

func oneTx(tx pgx.Tx) beginnerFunc {
	return func(context.Context) (pgx.Tx, error) { return tx, nil }
}

func TestPGStoreGetCompany(t *testing.T) {
	ctx := context.Background()

	t.Run("begin error", func(t *testing.T) {
		store := NewPGStore(beginnerFunc(func(context.Context) (pgx.Tx, error) {
			return nil, errors.New("begin")
		}))
		if _, err := store.GetCompany(ctx, "c1"); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("empty company id", func(t *testing.T) {
		store := NewPGStore(oneTx(&stubTx{}))
		if _, err := store.GetCompany(ctx, "  "); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("set tenant error", func(t *testing.T) {
		store := NewPGStore(oneTx(&stubTx{execErr: errors.New("exec")}))
		if _, err := store.GetCompany(ctx, "c1"); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("not found", func(t *testing.T) {
		store := NewPGStore(oneTx(&stubTx{rowErr: pgx.ErrNoRows}))
		_, err := store.GetCompany(ctx, "c1")
		if !errors.Is(err, ports.ErrNotFound) {
			t.Fatalf("err=%v", err)
		}
	})

	t.Run("success", func(t *testing.T) {
		store := NewPGStore(oneTx(&stubTx{row: stubRow{vals: []any{
			"c1", "12-3456789", "TX", int64(26), "MONTHLY", "",
		}}}))
		c, err := store.GetCompany(ctx, "c1")
		if err != nil {
			t.Fatal(err)
		}
		if c.ID != "c1" || c.PayPeriodsPerYear != 26 || c.RegisteredState != "TX" {
			t.Fatalf("company=%+v", c)
		}
	})
}

func employeeRow(id, termDate string) []any {
	return []any{
		id, "c1", "SALARY", int64(10_400_000), "single", int64(0),
		"2020-06-01", termDate, "TX", true,
	}
}

func TestPGStoreListActiveEmployees(t *testing.T) {
	ctx := context.Background()

	t.Run("query error", func(t *testing.T) {
		store := NewPGStore(oneTx(&stubTx{queryErr: errors.New("query")}))
		if _, err := store.ListActiveEmployees(ctx, "c1"); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("scan error", func(t *testing.T) {
		store := NewPGStore(oneTx(&stubTx{rows: &stubRows{
			vals:    [][]any{employeeRow("e1", "")},
			scanErr: errors.New("scan"),
		}}))
		if _, err := store.ListActiveEmployees(ctx, "c1"); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("rows err", func(t *testing.T) {
		store := NewPGStore(oneTx(&stubTx{rows: &stubRows{err: errors.New("rows")}}))
		if _, err := store.ListActiveEmployees(ctx, "c1"); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("bad termination date", func(t *testing.T) {
		store := NewPGStore(oneTx(&stubTx{rows: &stubRows{
			vals: [][]any{employeeRow("e1", "not-a-date")},
		}}))
		if _, err := store.ListActiveEmployees(ctx, "c1"); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("success", func(t *testing.T) {
		store := NewPGStore(oneTx(&stubTx{rows: &stubRows{
			vals: [][]any{employeeRow("e1", ""), employeeRow("e2", "2025-03-31")},
		}}))
		out, err := store.ListActiveEmployees(ctx, "c1")
		if err != nil {
			t.Fatal(err)
		}
		if len(out) != 2 {
			t.Fatalf("len=%d", len(out))
		}
		// Filing status is normalized on the way out of storage.
		if out[0].FilingStatus != "SINGLE" {
			t.Fatalf("filing=%s", out[0].FilingStatus)
		}
		if out[0].TerminationDate != nil {
			t.Fatalf("term=%v", out[0].TerminationDate)
		}
		if out[1].TerminationDate == nil || !out[1].TerminationDate.Equal(time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("term=%v", out[1].TerminationDate)
		}
	})
}

func TestPGStoreYTDGrossWages(t *testing.T) {
	ctx := context.Background()

	t.Run("empty company id", func(t *testing.T) {
		store := NewPGStore(oneTx(&stubTx{row: stubRow{vals: []any{int64(0)}}}))
		if _, err := store.YTDGrossWages(ctx, "", "e1", 2025, start); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("query error", func(t *testing.T) {
		store := NewPGStore(oneTx(&stubTx{rowErr: errors.New("query")}))
		if _, err := store.YTDGrossWages(ctx, "c1", "e1", 2025, start); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("success", func(t *testing.T) {
		tx := &stubTx{row: stubRow{vals: []any{int64(200_000)}}}
		store := NewPGStore(oneTx(tx))
		got, err := store.YTDGrossWages(ctx, "c1", "e1", 2025, start)
		if err != nil {
			t.Fatal(err)
		}
		if got != 200_000 {
			t.Fatalf("ytd=%d", got)
		}
		// The sum runs with the company set as tenant; otherwise row
		// security would hide every record and the cap math sees YTD 0.
		if len(tx.execSQLs) != 1 || !strings.Contains(tx.execSQLs[0], "set_config") {
			t.Fatalf("execs=%v", tx.execSQLs)
		}
	})
}

func TestPGStoreListActiveGarnishments(t *testing.T) {
	ctx := context.Background()

	t.Run("empty company id", func(t *testing.T) {
		store := NewPGStore(oneTx(&stubTx{rows: &stubRows{}}))
		if _, err := store.ListActiveGarnishments(ctx, "", "e1"); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("success", func(t *testing.T) {
		tx := &stubTx{rows: &stubRows{vals: [][]any{{
			"g1", "e1", "CHILD_SUPPORT", int64(50_000), int64(0), int64(1), true, int64(1_000_000), int64(0),
		}}}}
		store := NewPGStore(oneTx(tx))
		out, err := store.ListActiveGarnishments(ctx, "c1", "e1")
		if err != nil {
			t.Fatal(err)
		}
		if len(out) != 1 || out[0].Type != "CHILD_SUPPORT" || out[0].AmountCents != 50_000 {
			t.Fatalf("out=%+v", out)
		}
		if len(tx.execSQLs) != 1 || !strings.Contains(tx.execSQLs[0], "set_config") {
			t.Fatalf("execs=%v", tx.execSQLs)
		}
	})
}

func TestPGStoreCreateRecordBatch(t *testing.T) {
	ctx := context.Background()
	record := types.PayrollRecord{
		ID: "r1", CompanyID: "c1", EmployeeID: "e1",
		PeriodStart: start, PeriodEnd: end, PayDate: pay,
		GrossPayCents: 400_000, NetPayCents: 313_654,
		GarnishmentDetails: []types.GarnishmentDetail{
			{GarnishmentID: "g1", Type: "CHILD_SUPPORT", AmountCents: 50_000},
		},
	}
	payments := []ports.GarnishmentPayment{{GarnishmentID: "g1", AmountCents: 50_000}}

	t.Run("empty batch", func(t *testing.T) {
		store := NewPGStore(oneTx(&stubTx{}))
		if err := store.CreateRecordBatch(ctx, "c1", nil, nil); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("unique violation", func(t *testing.T) {
		// Exec 1 is set_config; the record insert is exec 2.
		store := NewPGStore(oneTx(&stubTx{
			execErr:   &pgconn.PgError{Code: "23505"},
			execErrAt: 2,
		}))
		err := store.CreateRecordBatch(ctx, "c1", []types.PayrollRecord{record}, payments)
		if !errors.Is(err, ports.ErrUniqueViolation) {
			t.Fatalf("err=%v", err)
		}
	})

	t.Run("success", func(t *testing.T) {
		tx := &stubTx{}
		store := NewPGStore(oneTx(tx))
		if err := store.CreateRecordBatch(ctx, "c1", []types.PayrollRecord{record}, payments); err != nil {
			t.Fatal(err)
		}
		// set_config, record insert, detail insert, balance update.
		if len(tx.execSQLs) != 4 {
			t.Fatalf("execs=%d", len(tx.execSQLs))
		}
	})

	t.Run("commit error", func(t *testing.T) {
		store := NewPGStore(oneTx(&stubTx{commitErr: errors.New("commit")}))
		if err := store.CreateRecordBatch(ctx, "c1", []types.PayrollRecord{record}, payments); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestPGStoreListRecords(t *testing.T) {
	ctx := context.Background()
	store := NewPGStore(oneTx(&stubTx{rows: &stubRows{vals: [][]any{{
		"r1", "c1", "e1", "2025-01-01", "2025-01-14", "2025-01-17",
		int64(400_000), int64(55_746), int64(24_800), int64(5_800),
		int64(0), int64(0), int64(0), int64(0), int64(313_654),
	}}}}))

	out, err := store.ListRecords(ctx, "c1", start, end)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Fatalf("len=%d", len(out))
	}
	r := out[0]
	if !r.PeriodStart.Equal(start) || !r.PayDate.Equal(pay) || r.NetPayCents != 313_654 {
		t.Fatalf("record=%+v", r)
	}
}

func lockRowVals(status string) []any {
	return []any{
		"l1", "c1", "2025-01-01", "2025-01-14", "key1", status, "alice",
		time.Date(2025, time.January, 17, 9, 0, 0, 0, time.UTC),
		time.Date(2025, time.January, 17, 9, 10, 0, 0, time.UTC),
	}
}

func TestPGStoreFindLocks(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		store := NewPGStore(oneTx(&stubTx{rowErr: pgx.ErrNoRows}))
		_, err := store.FindLockByIdempotencyKey(ctx, "key1")
		if !errors.Is(err, ports.ErrNotFound) {
			t.Fatalf("err=%v", err)
		}
	})

	t.Run("by key", func(t *testing.T) {
		store := NewPGStore(oneTx(&stubTx{row: stubRow{vals: lockRowVals("ACTIVE")}}))
		l, err := store.FindLockByIdempotencyKey(ctx, "key1")
		if err != nil {
			t.Fatal(err)
		}
		if l.ID != "l1" || l.Status != types.RunLockActive || !l.PeriodStart.Equal(start) {
			t.Fatalf("lock=%+v", l)
		}
	})

	t.Run("completed for period", func(t *testing.T) {
		store := NewPGStore(oneTx(&stubTx{row: stubRow{vals: lockRowVals("COMPLETED")}}))
		l, err := store.FindCompletedLockForPeriod(ctx, "c1", start, end)
		if err != nil {
			t.Fatal(err)
		}
		if l.Status != types.RunLockCompleted {
			t.Fatalf("status=%s", l.Status)
		}
	})
}

func TestPGStoreCreateLock(t *testing.T) {
	ctx := context.Background()
	lock := types.RunLock{
		ID: "l1", CompanyID: "c1",
		PeriodStart: start, PeriodEnd: end,
		IdempotencyKey: "key1", Status: types.RunLockActive,
		LockedBy: "alice",
	}

	t.Run("unique violation", func(t *testing.T) {
		store := NewPGStore(oneTx(&stubTx{
			execErr:   &pgconn.PgError{Code: "23505"},
			execErrAt: 2,
		}))
		if err := store.CreateLock(ctx, lock); !errors.Is(err, ports.ErrUniqueViolation) {
			t.Fatalf("err=%v", err)
		}
	})

	t.Run("success", func(t *testing.T) {
		store := NewPGStore(oneTx(&stubTx{}))
		if err := store.CreateLock(ctx, lock); err != nil {
			t.Fatal(err)
		}
	})
}

func TestPGStoreUpdateLockStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("no active row", func(t *testing.T) {
		store := NewPGStore(oneTx(&stubTx{}))
		err := store.UpdateLockStatus(ctx, "l1", types.RunLockCompleted)
		if !errors.Is(err, ports.ErrNotFound) {
			t.Fatalf("err=%v", err)
		}
	})

	t.Run("success", func(t *testing.T) {
		store := NewPGStore(oneTx(&stubTx{execTag: pgconn.NewCommandTag("UPDATE 1")}))
		if err := store.UpdateLockStatus(ctx, "l1", types.RunLockCompleted); err != nil {
			t.Fatal(err)
		}
	})
}

func TestPGStoreExpireStaleLocks(t *testing.T) {
	ctx := context.Background()
	store := NewPGStore(oneTx(&stubTx{execTag: pgconn.NewCommandTag("UPDATE 2")}))
	n, err := store.ExpireStaleLocks(ctx, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("n=%d", n)
	}
}
