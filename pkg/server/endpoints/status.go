package endpoints

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/scriptmarket/identity-in-go/pkg/server"
)

// StatusResponse reports service liveness and store connectivity.
type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Store   string `json:"store"`
}

// RegisterStatusEndpoints registers the unauthenticated status endpoint.
func RegisterStatusEndpoints(s *server.Server) {
	registerStatusEndpoints(s.Router, s.Accounts)
}

func registerStatusEndpoints(router *mux.Router, api AccountAPI) {
	router.HandleFunc("/status", handleStatus(api)).Methods("GET")
}

func handleStatus(api AccountAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version := os.Getenv("IDENTITY_VERSION_DISPLAY")
		if version == "" {
			version = "0.1.0"
		}

		response := StatusResponse{Status: "ok", Version: version, Store: "ok"}
		code := http.StatusOK
		if err := api.Ping(r.Context()); err != nil {
			response.Status = "degraded"
			response.Store = "unreachable"
			code = http.StatusServiceUnavailable
		}
		respondWithJSON(w, code, response)
	}
}

// RegisterAll wires every endpoint group onto the server's router.
func RegisterAll(s *server.Server) {
	RegisterStatusEndpoints(s)
	RegisterAccountsEndpoints(s)
	RegisterKeysEndpoints(s)
	RegisterAdminEndpoints(s)
}
