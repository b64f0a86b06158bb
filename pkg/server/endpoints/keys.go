package endpoints

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/scriptmarket/identity-in-go/pkg/server"
	"github.com/scriptmarket/identity-in-go/pkg/service"
)

// RegisterKeysEndpoints registers the signed key-rotation endpoints.
func RegisterKeysEndpoints(s *server.Server) {
	registerKeysEndpoints(s.Router, s.Accounts)
}

func registerKeysEndpoints(router *mux.Router, api AccountAPI) {
	// POST /accounts/{username}/keys - add a key, signed by an existing one
	router.HandleFunc("/accounts/{username}/keys", handleAddKey(api)).Methods("POST")

	// POST /accounts/{username}/keys/{keyId}/remove - disable a key.
	// Removal is a POST carrying a signed body, not a DELETE: the request
	// must prove possession of another active key.
	router.HandleFunc("/accounts/{username}/keys/{keyId}/remove", handleRemoveKey(api)).Methods("POST")
}

type addKeyBody struct {
	Algorithm        string `json:"algorithm"`
	NewPublicKey     []byte `json:"newPublicKey"`
	SigningPublicKey []byte `json:"signingPublicKey"`
	Signature        []byte `json:"signature"`
	Timestamp        int64  `json:"timestamp"`
	Nonce            string `json:"nonce"`
}

func handleAddKey(api AccountAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body addKeyBody
		if err := decodeJSON(r, &body); err != nil {
			respondWithError(w, err)
			return
		}

		key, err := api.AddKey(r.Context(), service.AddKeyRequest{
			Username:         mux.Vars(r)["username"],
			NewAlgorithm:     body.Algorithm,
			NewPublicKey:     body.NewPublicKey,
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
		respondWithJSON(w, http.StatusCreated, keyView(key))
	}
}

type removeKeyBody struct {
	SigningPublicKey []byte `json:"signingPublicKey"`
	Signature        []byte `json:"signature"`
	Timestamp        int64  `json:"timestamp"`
	Nonce            string `json:"nonce"`
}

func handleRemoveKey(api AccountAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body removeKeyBody
		if err := decodeJSON(r, &body); err != nil {
			respondWithError(w, err)
			return
		}

		vars := mux.Vars(r)
		key, err := api.RemoveKey(r.Context(), service.RemoveKeyRequest{
			Username:         vars["username"],
			KeyID:            vars["keyId"],
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
		respondWithJSON(w, http.StatusOK, keyView(key))
	}
}
