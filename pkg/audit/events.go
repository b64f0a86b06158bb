package audit

import (
	"encoding/hex"
	"fmt"
)

// FingerprintKey renders a public key safely for diagnostics: first eight
// bytes hex, never the full key. Signatures get the same treatment.
func FingerprintKey(key []byte) string {
	if len(key) == 0 {
		return "-"
	}
	if len(key) <= 8 {
		return hex.EncodeToString(key)
	}
	return hex.EncodeToString(key[:8]) + "…"
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// OperationEvent covers the four signed operations.
type OperationEvent struct {
	Action       string // model.Action* constant
	Username     string
	ClientIP     string
	SigningKey   []byte
	Nonce        string
	Success      bool
	ErrorCode    string
	ErrorMessage string
}

func (e OperationEvent) MessageID() string { return e.Action }

func (e OperationEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s completed %s", e.Username, e.Action)
	}
	msg := fmt.Sprintf("%s failed %s", e.Username, e.Action)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e OperationEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e OperationEvent) Facility() int { return FacilityAuthPriv }

func (e OperationEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"user": e.Username,
			"key":  FingerprintKey(e.SigningKey),
		},
		SDIDAction: {
			"operation": e.Action,
			"result":    result(e.Success),
		},
	}
	if e.ClientIP != "" {
		sd[SDIDClient] = map[string]string{"ip": e.ClientIP}
	}
	if e.Nonce != "" {
		sd[SDIDAction]["nonce"] = e.Nonce
	}
	if e.ErrorCode != "" {
		sd[SDIDAction]["error"] = e.ErrorCode
	}
	return sd
}

// AdminEvent covers the unsigned admin overrides. Always notice-or-worse:
// admin actions are rare and every one matters in review.
type AdminEvent struct {
	Action       string
	AdminSubject string
	Username     string
	KeyID        string
	ClientIP     string
	Reason       string
	Success      bool
	ErrorMessage string
}

func (e AdminEvent) MessageID() string { return e.Action }

func (e AdminEvent) Message() string {
	subject := e.Username
	if e.KeyID != "" {
		subject = "key " + e.KeyID
	}
	if e.Success {
		return fmt.Sprintf("admin %s performed %s on %s: %s", e.AdminSubject, e.Action, subject, e.Reason)
	}
	msg := fmt.Sprintf("admin %s failed %s on %s", e.AdminSubject, e.Action, subject)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e AdminEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e AdminEvent) Facility() int { return FacilityAuthPriv }

func (e AdminEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"admin": e.AdminSubject,
		},
		SDIDSubject: {},
		SDIDAction: {
			"operation": e.Action,
			"result":    result(e.Success),
			"admin":     "true",
		},
	}
	if e.Username != "" {
		sd[SDIDSubject]["account"] = e.Username
	}
	if e.KeyID != "" {
		sd[SDIDSubject]["key"] = e.KeyID
	}
	if e.Reason != "" {
		sd[SDIDAction]["reason"] = e.Reason
	}
	if e.ClientIP != "" {
		sd[SDIDClient] = map[string]string{"ip": e.ClientIP}
	}
	return sd
}
