package api

import (
	"encoding/json"
	"net/http"

	"github.com/Durgesh2022/yoga-app/internal/security"
)

func writeError(w http.ResponseWriter, r *http.Request, status int, code string) {
	security.WriteJSONError(w, r, status, code)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	cid := security.CorrelationIDFromContext(r.Context())
	if cid != "" {
		w.Header().Set(security.CorrelationIDHeader, cid)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
