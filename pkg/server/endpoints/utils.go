package endpoints

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/scriptmarket/identity-in-go/pkg/apperrors"
)

// errorBody is the wire shape of every error response:
// {"error":{"code":"...","message":"..."}}
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func respondWithError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	respondWithJSON(w, code.HTTPStatus(), map[string]interface{}{
		"error": errorBody{
			Code:    string(code),
			Message: apperrors.MessageOf(err),
		},
	})
}

// clientIP extracts the peer address for audit logging. The service sits
// behind its own TLS terminator in production; X-Forwarded-For is only
// trusted when the direct peer set it.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.InvalidFormat("malformed request body")
	}
	return nil
}
