package endpoints

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/scriptmarket/identity-in-go/pkg/server"
	"github.com/scriptmarket/identity-in-go/pkg/service"
)

// RegisterAccountsEndpoints registers account creation, lookup and profile
// management.
func RegisterAccountsEndpoints(s *server.Server) {
	registerAccountsEndpoints(s.Router, s.Accounts)
}

func registerAccountsEndpoints(router *mux.Router, api AccountAPI) {
	// POST /accounts - register an account with its first key
	router.HandleFunc("/accounts", handleRegisterAccount(api)).Methods("POST")

	// GET /accounts/{username} - fetch an account
	router.HandleFunc("/accounts/{username}", handleGetAccount(api)).Methods("GET")

	// GET /accounts/{username}/keys - list the account's key records
	router.HandleFunc("/accounts/{username}/keys", handleListKeys(api)).Methods("GET")

	// POST /accounts/{username}/profile - signed partial profile update
	router.HandleFunc("/accounts/{username}/profile", handleUpdateProfile(api)).Methods("POST")
}

type registerAccountBody struct {
	Username     string `json:"username"`
	DisplayName  string `json:"displayName"`
	ContactEmail string `json:"contactEmail"`
	ContactURL   string `json:"contactUrl"`
	Algorithm    string `json:"algorithm"`
	PublicKey    []byte `json:"publicKey"`
	Signature    []byte `json:"signature"`
	Timestamp    int64  `json:"timestamp"`
	Nonce        string `json:"nonce"`
}

// registerAccountResponse pairs the created account with its first key.
type registerAccountResponse struct {
	Account AccountView `json:"account"`
	Key     KeyView     `json:"key"`
}

func handleRegisterAccount(api AccountAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body registerAccountBody
		if err := decodeJSON(r, &body); err != nil {
			respondWithError(w, err)
			return
		}

		account, key, err := api.RegisterAccount(r.Context(), service.RegisterAccountRequest{
			Username:     body.Username,
			DisplayName:  body.DisplayName,
			ContactEmail: body.ContactEmail,
			ContactURL:   body.ContactURL,
			Algorithm:    body.Algorithm,
			PublicKey:    body.PublicKey,
			Signature:    body.Signature,
			Timestamp:    body.Timestamp,
			Nonce:        body.Nonce,
			ClientIP:     clientIP(r),
		})
		if err != nil {
			respondWithError(w, err)
			return
		}

		respondWithJSON(w, http.StatusCreated, registerAccountResponse{
			Account: accountView(account),
			Key:     keyView(key),
		})
	}
}

func handleGetAccount(api AccountAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, err := api.AccountByUsername(r.Context(), mux.Vars(r)["username"])
		if err != nil {
			respondWithError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, accountView(account))
	}
}

func handleListKeys(api AccountAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		keys, err := api.KeysForAccount(r.Context(), mux.Vars(r)["username"])
		if err != nil {
			respondWithError(w, err)
			return
		}

		views := make([]KeyView, 0, len(keys))
		for i := range keys {
			views = append(views, keyView(&keys[i]))
		}
		respondWithJSON(w, http.StatusOK, views)
	}
}

type updateProfileBody struct {
	DisplayName      *string `json:"displayName"`
	ContactEmail     *string `json:"contactEmail"`
	ContactURL       *string `json:"contactUrl"`
	SigningPublicKey []byte  `json:"signingPublicKey"`
	Signature        []byte  `json:"signature"`
	Timestamp        int64   `json:"timestamp"`
	Nonce            string  `json:"nonce"`
}

func handleUpdateProfile(api AccountAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body updateProfileBody
		if err := decodeJSON(r, &body); err != nil {
			respondWithError(w, err)
			return
		}

		account, err := api.UpdateProfile(r.Context(), service.UpdateProfileRequest{
			Username:         mux.Vars(r)["username"],
			DisplayName:      body.DisplayName,
			ContactEmail:     body.ContactEmail,
			ContactURL:       body.ContactURL,
			SigningPublicKey: body.SigningPublicKey,
			Signature:        body.Signature,
			Timestamp:        body.Timestamp,
			Nonce:            body.Nonce,
			ClientIP:         clientIP(r),
		})
		if err != nil {
			respondWithError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, accountView(account))
	}
}
