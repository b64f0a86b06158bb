// Package service orchestrates the signed account and key operations.
//
// Every mutating request runs the same pipeline, short-circuiting on the
// first failure: structural validation → account/key existence → replay
// check → signature verification → business invariants → commit + audit
// write. The pipeline from the existence checks onward executes inside one
// serializable store transaction, so the nonce check-and-record and the
// key-count invariants hold under concurrent requests. Admin operations
// skip the replay and signature stages but are always audited with the
// admin flag set.
package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/scriptmarket/identity-in-go/pkg/audit"
	"github.com/scriptmarket/identity-in-go/pkg/config"
	"github.com/scriptmarket/identity-in-go/pkg/keylifecycle"
	"github.com/scriptmarket/identity-in-go/pkg/principal"
	"github.com/scriptmarket/identity-in-go/pkg/replay"
	"github.com/scriptmarket/identity-in-go/pkg/server/store"
)

// AccountService composes the canonical encoder, signature verifier, replay
// guard and key-lifecycle manager into the public operations.
type AccountService struct {
	store     store.Store
	guard     *replay.Guard
	lifecycle keylifecycle.Manager
	derive    principal.Deriver
	cfg       *config.Config
	auditLog  *audit.Logger

	now   func() time.Time
	newID func() uuid.UUID
}

func NewAccountService(st store.Store, cfg *config.Config) *AccountService {
	return &AccountService{
		store:     st,
		guard:     replay.NewGuard(),
		lifecycle: keylifecycle.NewManager(),
		derive:    principal.SelfAuthenticating,
		cfg:       cfg,
		auditLog:  audit.NewLogger(),
		now:       time.Now,
		newID:     uuid.New,
	}
}

// WithDeriver swaps the principal-derivation collaborator.
func (s *AccountService) WithDeriver(d principal.Deriver) *AccountService {
	s.derive = d
	return s
}

// WithClock overrides the time source. Test hook.
func (s *AccountService) WithClock(now func() time.Time) *AccountService {
	s.now = now
	s.guard.WithClock(now)
	return s
}

// WithAuditLogger overrides the syslog-stream audit logger.
func (s *AccountService) WithAuditLogger(l *audit.Logger) *AccountService {
	s.auditLog = l
	return s
}

func (s *AccountService) logOperation(action, username, clientIP string, signingKey []byte, nonce string, err error) {
	event := audit.OperationEvent{
		Action:     action,
		Username:   username,
		ClientIP:   clientIP,
		SigningKey: signingKey,
		Nonce:      nonce,
		Success:    err == nil,
	}
	if err != nil {
		event.ErrorCode = string(codeOf(err))
		event.ErrorMessage = messageOf(err)
	}
	s.auditLog.Log(event)
}

func (s *AccountService) logAdmin(action, adminSubject, username, keyID, clientIP, reason string, err error) {
	event := audit.AdminEvent{
		Action:       action,
		AdminSubject: adminSubject,
		Username:     username,
		KeyID:        keyID,
		ClientIP:     clientIP,
		Reason:       reason,
		Success:      err == nil,
	}
	if err != nil {
		event.ErrorMessage = messageOf(err)
	}
	s.auditLog.Log(event)
}
