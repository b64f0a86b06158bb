package service

import (
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/scriptmarket/identity-in-go/pkg/apperrors"
)

// usernameRegex: 3-32 chars, lowercase alphanumeric with inner '_'/'-',
// alphanumeric at both ends.
var usernameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{1,30}[a-z0-9]$`)

const (
	maxDisplayNameLen  = 100
	maxContactFieldLen = 200
)

// RegisterAccountRequest carries a register_account request. Signed fields:
// action, nonce, publicKey, timestamp, username. DisplayName and the contact
// fields are unsigned metadata.
type RegisterAccountRequest struct {
	Username     string
	DisplayName  string
	ContactEmail string
	ContactURL   string
	Algorithm    string
	PublicKey    []byte
	Signature    []byte
	Timestamp    int64
	Nonce        string
	ClientIP     string
}

// AddKeyRequest carries an add_key request. Signed fields: action,
// newPublicKey, nonce, signingPublicKey, timestamp, username.
type AddKeyRequest struct {
	Username         string
	NewAlgorithm     string
	NewPublicKey     []byte
	SigningPublicKey []byte
	Signature        []byte
	Timestamp        int64
	Nonce            string
	ClientIP         string
}

// RemoveKeyRequest carries a remove_key request. Signed fields: action,
// keyId, nonce, signingPublicKey, timestamp, username.
type RemoveKeyRequest struct {
	Username         string
	KeyID            string
	SigningPublicKey []byte
	Signature        []byte
	Timestamp        int64
	Nonce            string
	ClientIP         string
}

// UpdateProfileRequest carries an update_profile request. Only the fields
// actually being changed are set (nil means "leave unchanged"), and only
// those appear in the signed payload.
type UpdateProfileRequest struct {
	Username         string
	DisplayName      *string
	ContactEmail     *string
	ContactURL       *string
	SigningPublicKey []byte
	Signature        []byte
	Timestamp        int64
	Nonce            string
	ClientIP         string
}

// AdminDisableKeyRequest is the unsigned admin override that disables a key.
type AdminDisableKeyRequest struct {
	KeyID        string
	Reason       string
	AdminSubject string
	ClientIP     string
}

// AdminRecoveryKeyRequest is the unsigned admin override that adds a
// recovery key without an existing signer.
type AdminRecoveryKeyRequest struct {
	Username     string
	Algorithm    string
	PublicKey    []byte
	Reason       string
	AdminSubject string
	ClientIP     string
}

// normalizeUsername lowercases and trims before validation; usernames are
// stored and compared in normalized form.
func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func validateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return apperrors.ErrInvalidUsername
	}
	return nil
}

func parseNonce(nonce string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(nonce)
	if err != nil {
		return uuid.Nil, apperrors.InvalidFormat("nonce must be a UUID")
	}
	return parsed, nil
}

func validateDisplayName(name string) error {
	if name == "" {
		return apperrors.InvalidFormat("display name is required")
	}
	if len(name) > maxDisplayNameLen {
		return apperrors.InvalidFormat("display name too long")
	}
	return nil
}

func validateContactEmail(email string) error {
	if email == "" {
		return nil
	}
	if len(email) > maxContactFieldLen || !strings.Contains(email, "@") {
		return apperrors.InvalidFormat("invalid contact email")
	}
	return nil
}

func validateContactURL(url string) error {
	if url == "" {
		return nil
	}
	if len(url) > maxContactFieldLen ||
		(!strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://")) {
		return apperrors.InvalidFormat("invalid contact url")
	}
	return nil
}

func validateSignature(sig []byte) error {
	if len(sig) == 0 {
		return apperrors.InvalidFormat("signature is required")
	}
	return nil
}

func codeOf(err error) apperrors.Code {
	return apperrors.CodeOf(err)
}

func messageOf(err error) string {
	return apperrors.MessageOf(err)
}

// asAppError normalizes unexpected errors so nothing foreign escapes the
// service boundary.
func asAppError(err error) error {
	if err == nil {
		return nil
	}
	var app *apperrors.AppError
	if errors.As(err, &app) {
		return err
	}
	return apperrors.Wrap(apperrors.CodeInternal, "internal error", err)
}
