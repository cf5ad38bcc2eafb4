package httpapi

import (
	"net/http"

	"modelbridge/pkg/types"
)

// writeJSONError writes a consistent JSON error payload for transport-level
// failures (bad content type, malformed body).
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ErrorResponse{Error: msg, Code: status})
}

// replyStatus maps a bridge reply to its HTTP status code.
func replyStatus(r types.Reply) int {
	switch r.Status {
	case types.ReplyOK:
		return http.StatusOK
	case types.ReplyNotImplemented:
		return http.StatusNotImplemented
	}
	if r.Error == nil {
		return http.StatusInternalServerError
	}
	switch r.Error.Kind {
	case types.KindMissingField, types.KindInvalidShape:
		return http.StatusBadRequest
	case types.KindUnknownHandle:
		return http.StatusNotFound
	case types.KindLoadError, types.KindForwardError:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
