package endpoints

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/scriptmarket/identity-in-go/pkg/config"
	"github.com/scriptmarket/identity-in-go/pkg/server"
	"github.com/scriptmarket/identity-in-go/pkg/server/middleware"
	"github.com/scriptmarket/identity-in-go/pkg/service"
)

// RegisterAdminEndpoints registers the unsigned admin overrides behind the
// admin bearer-token middleware.
func RegisterAdminEndpoints(s *server.Server) {
	auth := middleware.NewAdminAuthenticator(config.AdminTokenSecret())
	registerAdminEndpoints(s.Router, s.Accounts, auth)
}

func registerAdminEndpoints(router *mux.Router, api AccountAPI, auth *middleware.AdminAuthenticator) {
	admin := router.PathPrefix("/admin").Subrouter()
	admin.Use(auth.Middleware)

	// POST /admin/keys/{keyId}/disable - disable any key, last one included
	admin.HandleFunc("/keys/{keyId}/disable", handleAdminDisableKey(api)).Methods("POST")

	// POST /admin/accounts/{username}/recovery-key - attach a key with no signer
	admin.HandleFunc("/accounts/{username}/recovery-key", handleAdminRecoveryKey(api)).Methods("POST")
}

type adminDisableKeyBody struct {
	Reason string `json:"reason"`
}

func handleAdminDisableKey(api AccountAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body adminDisableKeyBody
		if err := decodeJSON(r, &body); err != nil {
			respondWithError(w, err)
			return
		}

		key, err := api.AdminDisableKey(r.Context(), service.AdminDisableKeyRequest{
			KeyID:        mux.Vars(r)["keyId"],
			Reason:       body.Reason,
			AdminSubject: middleware.AdminSubject(r.Context()),
			ClientIP:     clientIP(r),
		})
		if err != nil {
			respondWithError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, keyView(key))
	}
}

type adminRecoveryKeyBody struct {
	Algorithm string `json:"algorithm"`
	PublicKey []byte `json:"publicKey"`
	Reason    string `json:"reason"`
}

func handleAdminRecoveryKey(api AccountAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body adminRecoveryKeyBody
		if err := decodeJSON(r, &body); err != nil {
			respondWithError(w, err)
			return
		}

		key, err := api.AdminAddRecoveryKey(r.Context(), service.AdminRecoveryKeyRequest{
			Username:     mux.Vars(r)["username"],
			Algorithm:    body.Algorithm,
			PublicKey:    body.PublicKey,
			Reason:       body.Reason,
			AdminSubject: middleware.AdminSubject(r.Context()),
			ClientIP:     clientIP(r),
		})
		if err != nil {
			respondWithError(w, err)
			return
		}
		view := keyView(key)
		view.AddedByAdmin = true
		respondWithJSON(w, http.StatusCreated, view)
	}
}
