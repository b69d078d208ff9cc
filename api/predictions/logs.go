package predictions

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kilianp07/pilgrimcast/core/audit"
	"github.com/kilianp07/pilgrimcast/core/model"
)

// maxLimit caps the number of records returned by one request.
const maxLimit = 1000

// NewLogHandler returns an HTTP handler exposing prediction records via GET /api/predictions/logs.
// Requests must include an Authorization header with "Bearer <token>" when token is non-empty.
// A nil store answers 404 so the route behaves as if auditing were not mounted.
func NewLogHandler(store audit.Store, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		if store == nil {
			http.Error(w, "prediction log disabled", http.StatusNotFound)
			return
		}
		q, err := parseQuery(r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []audit.Record{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

func parseQuery(v url.Values) (audit.Query, error) {
	q := audit.Query{Limit: maxLimit, Rule: v.Get("rule")}
	var err error
	if q.Start, err = parseTime(v, "start"); err != nil {
		return q, err
	}
	if q.End, err = parseTime(v, "end"); err != nil {
		return q, err
	}
	switch st := v.Get("status"); st {
	case "", model.StatusSuccess, model.StatusError:
		q.Status = st
	default:
		return q, fmt.Errorf("unknown status %q", st)
	}
	if cl := v.Get("crowd_level"); cl != "" {
		lvl, ok := model.ParseCrowdLevel(cl)
		if !ok {
			return q, fmt.Errorf("unknown crowd_level %q", cl)
		}
		q.CrowdLevel = lvl.String()
	}
	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return q, fmt.Errorf("invalid limit %q", s)
		}
		q.Limit = min(n, maxLimit)
	}
	return q, nil
}

func parseTime(v url.Values, key string) (time.Time, error) {
	s := v.Get(key)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	return t, nil
}
