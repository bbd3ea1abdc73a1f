// Package server wires the payroll engine, stores, and services into an
// http.Handler.
package server

import (
	"context"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harborpay/payroll-core/modules/payroll/domain/ports"
	"github.com/harborpay/payroll-core/modules/payroll/infrastructure/persistence"
	"github.com/harborpay/payroll-core/modules/payroll/presentation/controllers"
	"github.com/harborpay/payroll-core/modules/payroll/services"
	"github.com/harborpay/payroll-core/pkg/payroll/tax"
)

// Store is the full storage surface the handler needs. Both the Postgres
// and the in-memory implementation satisfy it.
type Store interface {
	ports.CompanyStore
	ports.EmployeeStore
	ports.GarnishmentStore
	ports.PayrollRecordStore
	ports.RunLockStore
}

type HandlerOptions struct {
	Store      Store
	Engine     *tax.Engine
	Authorizer authorizer
}

func NewHandler() (http.Handler, error) {
	return NewHandlerWithOptions(HandlerOptions{})
}

func NewHandlerWithOptions(opts HandlerOptions) (http.Handler, error) {
	store := opts.Store
	if store == nil {
		dsn := dbDSNFromEnv()
		pool, err := pgxpool.New(context.Background(), dsn)
		if err != nil {
			return nil, err
		}
		store = persistence.NewPGStore(pool)
	}

	engine := opts.Engine
	if engine == nil {
		overrides, err := tax.LoadOverrides(os.Getenv("TAX_OVERRIDES_PATH"))
		if err != nil {
			return nil, err
		}
		engine, err = tax.NewEngine(overrides...)
		if err != nil {
			return nil, err
		}
	}

	auth := opts.Authorizer
	if auth == nil {
		a, err := loadAuthorizer()
		if err != nil {
			return nil, err
		}
		auth = a
	}

	locks := services.NewRunLockService(store)
	orch := services.NewOrchestrator(engine, store, store, store, store)
	coord := services.NewRunCoordinator(locks, orch)

	runs := controllers.RunsController{
		CompanyID:   currentCompanyID,
		Coordinator: coord,
		Locks:       locks,
		Records:     store,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/payroll/runs", runs.HandlePayrollRunsAPI)
	mux.HandleFunc("/api/payroll/locks:cleanup", runs.HandleLockCleanupAPI)

	return withCompany(withAuthz(auth, mux)), nil
}
