// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters and internal/data; orchestration
// in internal/service.
package ports

import (
	"context"

	domainauth "github.com/dealerdesk/dealerdesk/internal/domain/auth"
)

// PasswordHasher derives storable password encodings and verifies
// plaintexts against them.
type PasswordHasher interface {
	// Hash returns the encoded form (digest plus salt) for the plaintext.
	// It fails only when the entropy source is exhausted.
	Hash(plaintext string) (string, error)

	// Verify reports whether plaintext matches the encoded form. A
	// malformed encoding fails closed and reports false.
	Verify(plaintext, encoded string) bool
}

// CredentialStore persists and retrieves credential records.
//
// GetByEmail and GetByUsername return the full record including the
// password hash; they exist for verification only. GetByID is the
// hash-free path used for session resolution.
type CredentialStore interface {
	Create(ctx context.Context, cand domainauth.NewCredential) (domainauth.Credential, error)
	GetByEmail(ctx context.Context, email string) (domainauth.Credential, error)
	GetByUsername(ctx context.Context, username string) (domainauth.Credential, error)
	GetByID(ctx context.Context, id int64) (domainauth.Principal, error)
	ListByDealerAndRole(ctx context.Context, dealerID int64, role domainauth.Role) ([]domainauth.Principal, error)
	Delete(ctx context.Context, id int64) error
}

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// SessionReaper is implemented by session stores that can purge expired
// rows eagerly. Purging is an optimization; expired sessions are already
// treated as absent on read.
type SessionReaper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}
