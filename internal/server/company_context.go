package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type companyCtxKey struct{}

// withCompany requires the X-Company-ID header on every API route and makes
// it available to downstream handlers. Health stays open.
func withCompany(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		companyID := strings.TrimSpace(r.Header.Get("X-Company-ID"))
		if companyID == "" {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"code":    "company_missing",
				"message": "X-Company-ID header is required",
			})
			return
		}

		ctx := context.WithValue(r.Context(), companyCtxKey{}, companyID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func currentCompanyID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(companyCtxKey{}).(string)
	return id, ok && id != ""
}
