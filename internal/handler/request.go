package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"alphagrid-backend/internal/approval"
	"alphagrid-backend/internal/server/authctx"
)

const dateLayout = "2006-01-02"

// parseYearMonth reads year/month query parameters, defaulting to the
// current month.
func parseYearMonth(r *http.Request) (int, int, error) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())
	if raw := r.URL.Query().Get("year"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 2000 || v > 2100 {
			return 0, 0, errInvalidYear
		}
		year = v
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 12 {
			return 0, 0, errInvalidMonth
		}
		month = v
	}
	return year, month, nil
}

var (
	errInvalidYear  = errors.New("invalid year")
	errInvalidMonth = errors.New("invalid month")
)

// currentActor resolves the authenticated user into an approval actor.
func currentActor(r *http.Request) (approval.Actor, bool) {
	u := authctx.FromContext(r.Context())
	if u == nil {
		return approval.Actor{}, false
	}
	return approval.Actor{ID: u.ID, Role: u.Role}, true
}
