// Package controllers exposes the payroll run API over HTTP. Handlers
// translate between JSON and the services layer; every error leaves as a
// stable machine-readable code in the error envelope.
package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/harborpay/payroll-core/modules/payroll/domain/ports"
	"github.com/harborpay/payroll-core/modules/payroll/domain/types"
	"github.com/harborpay/payroll-core/modules/payroll/services"
	"github.com/harborpay/payroll-core/pkg/httperr"
)

type CompanyIDGetter func(ctx context.Context) (companyID string, ok bool)

type RunsController struct {
	CompanyID   CompanyIDGetter
	Coordinator *services.RunCoordinator
	Locks       *services.RunLockService
	Records     ports.PayrollRecordStore
}

type runAPIRequest struct {
	PeriodStart    string `json:"period_start"`
	PeriodEnd      string `json:"period_end"`
	PayDate        string `json:"pay_date"`
	RequestedBy    string `json:"requested_by"`
	IdempotencyKey string `json:"idempotency_key"`
}

type recordAPIResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`

	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	PayDate     string `json:"pay_date"`

	GrossPayCents         int64 `json:"gross_pay_cents"`
	FederalIncomeTaxCents int64 `json:"federal_income_tax_cents"`
	SocialSecurityCents   int64 `json:"social_security_cents"`
	MedicareCents         int64 `json:"medicare_cents"`
	StateIncomeTaxCents   int64 `json:"state_income_tax_cents"`
	SDICents              int64 `json:"sdi_cents"`
	SUICents              int64 `json:"sui_cents"`
	GarnishmentCents      int64 `json:"garnishment_cents"`
	NetPayCents           int64 `json:"net_pay_cents"`

	Garnishments []garnishmentDetailAPIResponse `json:"garnishments,omitempty"`
}

type garnishmentDetailAPIResponse struct {
	GarnishmentID string `json:"garnishment_id"`
	Type          string `json:"type"`
	AmountCents   int64  `json:"amount_cents"`
}

type lockAPIResponse struct {
	LockID    string `json:"lock_id"`
	Status    string `json:"status"`
	LockedBy  string `json:"locked_by"`
	LockedAt  string `json:"locked_at"`
	ExpiresAt string `json:"expires_at"`
}

const dateFormat = "2006-01-02"

func (c RunsController) HandlePayrollRunsAPI(w http.ResponseWriter, r *http.Request) {
	companyID, ok := c.CompanyID(r.Context())
	if !ok {
		writeError(w, r, http.StatusInternalServerError, "company_missing", "company missing")
		return
	}

	switch r.Method {
	case http.MethodPost:
		c.handleRun(w, r, companyID)
	case http.MethodGet:
		c.handleListRecords(w, r, companyID)
	default:
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (c RunsController) handleRun(w http.ResponseWriter, r *http.Request, companyID string) {
	var req runAPIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_json", "bad json")
		return
	}

	start, err := parseDate(req.PeriodStart)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_period_start", "invalid period_start")
		return
	}
	end, err := parseDate(req.PeriodEnd)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_period_end", "invalid period_end")
		return
	}
	pay, err := parseDate(req.PayDate)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_pay_date", "invalid pay_date")
		return
	}

	records, err := c.Coordinator.Execute(r.Context(), services.RunRequest{
		CompanyID:      companyID,
		PeriodStart:    start,
		PeriodEnd:      end,
		PayDate:        pay,
		RequestedBy:    strings.TrimSpace(req.RequestedBy),
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		writeRunError(w, r, err)
		return
	}

	var totalGross, totalNet int64
	out := make([]recordAPIResponse, 0, len(records))
	for _, rec := range records {
		totalGross += rec.GrossPayCents
		totalNet += rec.NetPayCents
		out = append(out, toRecordResponse(rec))
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"company":           companyID,
		"period_start":      req.PeriodStart,
		"period_end":        req.PeriodEnd,
		"pay_date":          req.PayDate,
		"employee_count":    len(out),
		"total_gross_cents": totalGross,
		"total_net_cents":   totalNet,
		"records":           out,
	})
}

func (c RunsController) handleListRecords(w http.ResponseWriter, r *http.Request, companyID string) {
	start, err := parseDate(r.URL.Query().Get("period_start"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_period_start", "invalid period_start")
		return
	}
	end, err := parseDate(r.URL.Query().Get("period_end"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_period_end", "invalid period_end")
		return
	}

	records, err := c.Records.ListRecords(r.Context(), companyID, start, end)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "storage_error", "list failed")
		return
	}

	out := make([]recordAPIResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toRecordResponse(rec))
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"company": companyID,
		"records": out,
	})
}

// HandleLockCleanupAPI sweeps lapsed ACTIVE locks. Intended for a cron-style
// caller; acquisition already reclaims expired locks on its own.
func (c RunsController) HandleLockCleanupAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	n, err := c.Locks.CleanupExpiredLocks(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "storage_error", "cleanup failed")
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(map[string]any{"expired": n})
}

func toRecordResponse(rec types.PayrollRecord) recordAPIResponse {
	out := recordAPIResponse{
		ID:         rec.ID,
		EmployeeID: rec.EmployeeID,

		PeriodStart: rec.PeriodStart.Format(dateFormat),
		PeriodEnd:   rec.PeriodEnd.Format(dateFormat),
		PayDate:     rec.PayDate.Format(dateFormat),

		GrossPayCents:         rec.GrossPayCents,
		FederalIncomeTaxCents: rec.FederalIncomeTaxCents,
		SocialSecurityCents:   rec.SocialSecurityCents,
		MedicareCents:         rec.MedicareCents,
		StateIncomeTaxCents:   rec.StateIncomeTaxCents,
		SDICents:              rec.SDICents,
		SUICents:              rec.SUICents,
		GarnishmentCents:      rec.GarnishmentCents,
		NetPayCents:           rec.NetPayCents,
	}
	for _, d := range rec.GarnishmentDetails {
		out.Garnishments = append(out.Garnishments, garnishmentDetailAPIResponse{
			GarnishmentID: d.GarnishmentID,
			Type:          d.Type,
			AmountCents:   d.AmountCents,
		})
	}
	return out
}

func writeRunError(w http.ResponseWriter, r *http.Request, err error) {
	if conflict, ok := types.AsConcurrency(err); ok {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code":     string(conflict.Code),
			"message":  conflict.Error(),
			"trace_id": traceIDFromRequest(r),
			"lock": lockAPIResponse{
				LockID:    conflict.Lock.ID,
				Status:    string(conflict.Lock.Status),
				LockedBy:  conflict.Lock.LockedBy,
				LockedAt:  conflict.Lock.LockedAt.UTC().Format(time.RFC3339),
				ExpiresAt: conflict.Lock.ExpiresAt.UTC().Format(time.RFC3339),
			},
		})
		return
	}

	switch {
	case types.IsValidation(err) || httperr.IsBadRequest(err):
		writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
	case types.IsConfiguration(err):
		writeError(w, r, http.StatusUnprocessableEntity, "configuration_error", err.Error())
	case types.IsData(err):
		writeError(w, r, http.StatusUnprocessableEntity, "no_eligible_employees", err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal_error", "run failed")
	}
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateFormat, strings.TrimSpace(s))
}

type errorEnvelope struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	TraceID string            `json:"trace_id"`
	Meta    errorEnvelopeMeta `json:"meta"`
}

type errorEnvelopeMeta struct {
	Path   string `json:"path"`
	Method string `json:"method"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{
		Code:    code,
		Message: message,
		TraceID: traceIDFromRequest(r),
		Meta: errorEnvelopeMeta{
			Path:   r.URL.Path,
			Method: r.Method,
		},
	})
}

func traceIDFromRequest(r *http.Request) string {
	traceparent := strings.TrimSpace(r.Header.Get("traceparent"))
	if traceparent == "" {
		return ""
	}
	parts := strings.Split(traceparent, "-")
	if len(parts) != 4 {
		return ""
	}
	traceID := strings.ToLower(parts[1])
	if len(traceID) != 32 || traceID == "00000000000000000000000000000000" {
		return ""
	}
	for _, ch := range traceID {
		if (ch < '0' || ch > '9') && (ch < 'a' || ch > 'f') {
			return ""
		}
	}
	return traceID
}
