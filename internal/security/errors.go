package security

import (
	"encoding/json"
	"net/http"
)

// WriteJSONError writes the standard JSON error envelope
// {success:false, error, correlation_id}.
func WriteJSONError(w http.ResponseWriter, r *http.Request, status int, code string) {
	WriteJSONErrorExtra(w, r, status, code, nil)
}

// WriteJSONErrorExtra merges endpoint-specific fields, such as the shortfall
// on a failed debit, into the envelope before encoding.
func WriteJSONErrorExtra(w http.ResponseWriter, r *http.Request, status int, code string, extra map[string]any) {
	cid := CorrelationIDFromContext(r.Context())
	if cid != "" {
		w.Header().Set(CorrelationIDHeader, cid)
	}

	body := map[string]any{
		"success": false,
		"error":   code,
	}
	if cid != "" {
		body["correlation_id"] = cid
	}
	for k, v := range extra {
		body[k] = v
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// BodySizeLimit caps request bodies; oversized reads surface as
// http.MaxBytesError downstream.
func BodySizeLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxBytes > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
