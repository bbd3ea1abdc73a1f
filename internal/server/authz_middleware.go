package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/harborpay/payroll-core/pkg/authz"
)

func loadAuthorizer() (*authz.Authorizer, error) {
	modelPath := os.Getenv("AUTHZ_MODEL_PATH")
	if modelPath == "" {
		p, err := defaultAuthzPath("config/access/model.conf")
		if err != nil {
			return nil, err
		}
		modelPath = p
	}

	policyPath := os.Getenv("AUTHZ_POLICY_PATH")
	if policyPath == "" {
		p, err := defaultAuthzPath("config/access/policy.csv")
		if err != nil {
			return nil, err
		}
		policyPath = p
	}

	mode, err := authz.ModeFromEnv()
	if err != nil {
		return nil, err
	}

	return authz.NewAuthorizer(modelPath, policyPath, mode)
}

func defaultAuthzPath(rel string) (string, error) {
	path := rel
	for i := 0; i < 8; i++ {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		path = filepath.Join("..", path)
	}
	return "", errors.New("server: " + rel + " not found")
}

type authorizer interface {
	Authorize(subject string, domain string, object string, action string) (allowed bool, enforced bool, err error)
}

func withAuthz(a authorizer, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		companyID, ok := currentCompanyID(r.Context())
		if !ok {
			writeAuthzError(w, http.StatusInternalServerError, "company_missing", "company missing")
			return
		}

		subject := authz.SubjectFromRoleSlug(r.Header.Get("X-Role"))
		domain := authz.DomainFromCompanyID(companyID)

		object, action, shouldCheck := authzRequirementForRoute(r.Method, r.URL.Path)
		if !shouldCheck {
			next.ServeHTTP(w, r)
			return
		}

		allowed, enforced, err := a.Authorize(subject, domain, object, action)
		if err != nil {
			writeAuthzError(w, http.StatusInternalServerError, "authz_error", "authz error")
			return
		}
		if enforced && !allowed {
			writeAuthzError(w, http.StatusForbidden, "forbidden", "forbidden")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func authzRequirementForRoute(method string, path string) (object string, action string, ok bool) {
	switch path {
	case "/api/payroll/runs":
		if method == http.MethodPost {
			return authz.ObjectPayrollRuns, authz.ActionAdmin, true
		}
		if method == http.MethodGet {
			return authz.ObjectPayrollRecords, authz.ActionRead, true
		}
		return "", "", false
	case "/api/payroll/locks:cleanup":
		if method == http.MethodPost {
			return authz.ObjectPayrollLocks, authz.ActionAdmin, true
		}
		return "", "", false
	default:
		return "", "", false
	}
}

func writeAuthzError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    code,
		"message": message,
	})
}
