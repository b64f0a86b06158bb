package service

import (
	"encoding/base64"

	"github.com/scriptmarket/identity-in-go/pkg/canonical"
	"github.com/scriptmarket/identity-in-go/pkg/model"
)

// Canonical payload builders. These define the exact bytes a client must
// sign for each operation; they are exported so client SDKs and tests can
// reproduce them byte-for-byte. Key material travels base64 (std encoding)
// inside the payload.

func BuildRegisterPayload(username string, publicKey []byte, timestamp int64, nonce string) []byte {
	return canonical.Encode(map[string]interface{}{
		"action":    model.ActionRegisterAccount,
		"nonce":     nonce,
		"publicKey": base64.StdEncoding.EncodeToString(publicKey),
		"timestamp": timestamp,
		"username":  username,
	})
}

func BuildAddKeyPayload(username string, newPublicKey, signingPublicKey []byte, timestamp int64, nonce string) []byte {
	return canonical.Encode(map[string]interface{}{
		"action":           model.ActionAddKey,
		"newPublicKey":     base64.StdEncoding.EncodeToString(newPublicKey),
		"nonce":            nonce,
		"signingPublicKey": base64.StdEncoding.EncodeToString(signingPublicKey),
		"timestamp":        timestamp,
		"username":         username,
	})
}

func BuildRemoveKeyPayload(username, keyID string, signingPublicKey []byte, timestamp int64, nonce string) []byte {
	return canonical.Encode(map[string]interface{}{
		"action":           model.ActionRemoveKey,
		"keyId":            keyID,
		"nonce":            nonce,
		"signingPublicKey": base64.StdEncoding.EncodeToString(signingPublicKey),
		"timestamp":        timestamp,
		"username":         username,
	})
}

// BuildUpdateProfilePayload includes only the fields actually being changed,
// so partial updates never require re-signing unrelated fields. nil pointers
// are omitted from the payload entirely.
func BuildUpdateProfilePayload(username string, displayName, contactEmail, contactURL *string, signingPublicKey []byte, timestamp int64, nonce string) []byte {
	payload := map[string]interface{}{
		"action":           model.ActionUpdateProfile,
		"nonce":            nonce,
		"signingPublicKey": base64.StdEncoding.EncodeToString(signingPublicKey),
		"timestamp":        timestamp,
		"username":         username,
	}
	if displayName != nil {
		payload["displayName"] = *displayName
	}
	if contactEmail != nil {
		payload["contactEmail"] = *contactEmail
	}
	if contactURL != nil {
		payload["contactUrl"] = *contactURL
	}
	return canonical.Encode(payload)
}
