package httpx

import (
	"encoding/json"
	"net/http"
)

// maxBodyBytes caps JSON request bodies. Job params and chat messages are
// small; anything near this limit is a client bug.
const maxBodyBytes = 1 << 20

// DecodeJSON decodes the request body into dst, rejecting unknown fields and
// oversized bodies. On failure it writes the 400 response itself and returns
// false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return false
	}
	return true
}

// WriteJSON marshals v and writes it with the given status code. Marshal
// errors surface as a plain 500 since no partial body has been written yet.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	// A write error here means the client went away; nothing left to do.
	_, _ = w.Write(body)
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
}

// WriteError writes the standard JSON error envelope.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	WriteJSON(w, p.Code, map[string]string{"error": p.ErrCode, "message": p.Err.Error()})
}
