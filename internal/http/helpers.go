package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"viaggi/internal/core"
)

// validationErrs are the domain failures a caller can fix; they map to 400.
var validationErrs = []error{
	core.ErrEmptyName,
	core.ErrNameTooLong,
	core.ErrInvalidDate,
	core.ErrInvalidDateRange,
	core.ErrInvalidCurrency,
	core.ErrInvalidBudget,
	core.ErrInvalidAmount,
	core.ErrInvalidFxRate,
	core.ErrCurrencyNotOnTrip,
	core.ErrMissingTrip,
	core.ErrEmptyCategory,
	core.ErrEmptyPayment,
	core.ErrEmptySettingsList,
	core.ErrFieldTooLong,
	core.ErrBadSnapshot,
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrBaseCurrencyLocked):
		return http.StatusConflict
	}
	for _, v := range validationErrs {
		if errors.Is(err, v) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// respondErr maps a service error to an HTTP status. Validation problems go
// back to the caller as-is; storage failures are logged and sanitized.
func (s *Server) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.log.ErrContext(r.Context(), "Request failed", err, "path", r.URL.Path)
		msg = "internal error"
	}
	s.respondJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// parseFilter reads the optional filter query parameters.
func parseFilter(r *http.Request) core.Filter {
	q := r.URL.Query()
	return core.Filter{
		From:     q.Get("from"),
		To:       q.Get("to"),
		Category: q.Get("category"),
		Payment:  q.Get("payment"),
		Search:   q.Get("search"),
	}
}

// parseNow reads the optional now override (YYYY-MM-DD) used to pin the
// burn-rate reference day; defaults to the current time.
func parseNow(r *http.Request) time.Time {
	if v := r.URL.Query().Get("now"); v != "" {
		if t, err := core.ParseDay(v); err == nil {
			return t
		}
	}
	return time.Now()
}
