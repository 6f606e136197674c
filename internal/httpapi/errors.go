package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"lmsbridge/internal/lmclient"
	"lmsbridge/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
// *lmclient.Error implements it.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status, Kind: kind})
}

// writeError maps err to a status code and writes it. It returns the status written.
func writeError(w http.ResponseWriter, err error) int {
	kind := lmclient.KindOf(err)
	status := http.StatusInternalServerError
	var he HTTPError
	if errors.As(err, &he) {
		status = he.StatusCode()
	}
	IncrementErrors(string(kind))
	writeJSONError(w, status, string(kind), err.Error())
	return status
}
