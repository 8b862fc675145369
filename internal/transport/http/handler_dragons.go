package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	appdragons "dragon-backend/internal/app/dragons"
	"dragon-backend/internal/snapshot"

	"github.com/go-chi/chi/v5"
)

type DragonHandlers struct {
	svc    *appdragons.Service
	holder *snapshot.Holder
}

func NewDragonHandlers(svc *appdragons.Service, holder *snapshot.Holder) *DragonHandlers {
	return &DragonHandlers{svc: svc, holder: holder}
}

// List serves one scope's token listing. Every scope shares the same
// query surface, so the scope is fixed per route.
func (h *DragonHandlers) List(scope appdragons.Scope) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricListQueryTotal.Add(1)
		params, ok := parseListParams(w, r)
		if !ok {
			metricListQueryErrors.Add(1)
			return
		}
		resp, err := h.svc.List(scope, params)
		if err != nil {
			metricListQueryErrors.Add(1)
			writeServiceError(w, err)
			return
		}
		writePage(w, resp)
	}
}

func (h *DragonHandlers) GetByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricTokenQueryTotal.Add(1)
		resp, err := h.svc.GetByID(chi.URLParam(r, "id"))
		if err != nil {
			metricTokenQueryErrors.Add(1)
			writeServiceError(w, err)
			return
		}
		writePage(w, resp)
	}
}

// Health reports readiness: the service can answer queries once the
// first snapshot has been published.
func (h *DragonHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		snap := h.holder.Current()
		if snap == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":       true,
			"build_id": snap.BuildID,
			"built_at": snap.BuiltAt,
			"records":  len(snap.AllIDs),
		})
	}
}

func parseListParams(w http.ResponseWriter, r *http.Request) (appdragons.Params, bool) {
	q := r.URL.Query()
	p := appdragons.Params{
		Owner:    q.Get("owner"),
		EndPrice: appdragons.NoEndPrice,
		Limit:    appdragons.DefaultLimit,
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request", "limit must be an integer")
			return appdragons.Params{}, false
		}
		p.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request", "offset must be a non-negative integer")
			return appdragons.Params{}, false
		}
		p.Offset = n
	}
	if v := q.Get("stage"); v != "" {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request", "stage must be an integer in [0,255]")
			return appdragons.Params{}, false
		}
		stage := uint8(n)
		p.Stage = &stage
	}
	if v := q.Get("sort"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request", "sort must be an integer")
			return appdragons.Params{}, false
		}
		// Unknown sort values fall back to id order.
		if n >= int(appdragons.SortRarity) && n <= int(appdragons.SortPrice) {
			p.Sort = appdragons.Sort(n)
		}
	}
	if v := q.Get("start_price"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request", "start_price must be a non-negative integer")
			return appdragons.Params{}, false
		}
		p.StartPrice = n
	}
	if v := q.Get("end_price"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request", "end_price must be a non-negative integer")
			return appdragons.Params{}, false
		}
		p.EndPrice = n
	}
	return p, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appdragons.ErrBadLimit):
		WriteHTTPError(w, http.StatusBadRequest, "bad_limit", "limit must be positive")
	case errors.Is(err, appdragons.ErrOffsetTooBig):
		WriteHTTPError(w, http.StatusBadRequest, "offset_too_big", "offset is past the last page")
	case errors.Is(err, appdragons.ErrOwnerNotFound):
		WriteHTTPError(w, http.StatusNotFound, "owner_not_found", "no tokens for that owner in this scope")
	case errors.Is(err, appdragons.ErrTokenNotFound):
		WriteHTTPError(w, http.StatusNotFound, "token_not_found", "no such token")
	case errors.Is(err, appdragons.ErrSnapshotNotReady):
		WriteHTTPError(w, http.StatusServiceUnavailable, "snapshot_not_ready", "first snapshot is still being built")
	default:
		WriteHTTPError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
