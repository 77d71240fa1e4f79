// Package auth contains domain-level types for credentials and sessions.
// It is pure and free of framework/adapter concerns.
package auth

import (
	"fmt"
	"strings"
	"time"
)

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
// Valid values are defined as constants below.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleDealer        Role = "dealer"
	RoleSalesAgent    Role = "sales-agent"
)

// ParseRole converts a raw string into a Role, rejecting anything outside
// the closed set.
func ParseRole(raw string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !r.Valid() {
		return "", fmt.Errorf("invalid role: %q", raw)
	}
	return r, nil
}

// Valid reports whether the role is one of the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdministrator, RoleDealer, RoleSalesAgent:
		return true
	default:
		return false
	}
}

// roleRank orders roles for capability checks.
// Hierarchy: SalesAgent < Dealer < Administrator.
var roleRank = map[Role]int{
	RoleSalesAgent:    0,
	RoleDealer:        1,
	RoleAdministrator: 2,
}

// Allows reports whether a principal holding this role may perform an
// operation gated on the required role. All role gates in the application
// go through this single check.
func (r Role) Allows(required Role) bool {
	have, haveOK := roleRank[r]
	want, wantOK := roleRank[required]
	if !haveOK || !wantOK {
		return false
	}
	return have >= want
}

// Credential is the internal record for one login-capable principal.
// It carries the password hash and must never cross the authentication
// boundary; hand callers a Principal instead.
type Credential struct {
	ID           int64      `db:"id"`
	Username     string     `db:"username"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	Role         Role       `db:"role"`
	DealerID     *int64     `db:"dealer_id"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

// Principal is the public view of a credential. It structurally cannot
// carry the password hash, so serializing one can never leak it.
type Principal struct {
	ID        int64     `json:"id"        db:"id"`
	Username  string    `json:"username"  db:"username"`
	Email     string    `json:"email"     db:"email"`
	Role      Role      `json:"role"      db:"role"`
	DealerID  *int64    `json:"dealer_id,omitempty" db:"dealer_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Principal returns the public view of the credential.
func (c Credential) Principal() Principal {
	return Principal{
		ID:        c.ID,
		Username:  c.Username,
		Email:     c.Email,
		Role:      c.Role,
		DealerID:  c.DealerID,
		CreatedAt: c.CreatedAt,
	}
}

// NewCredential carries the fields needed to persist a new credential.
// PasswordHash must already be the encoded hash; hashing happens before
// the record reaches storage.
type NewCredential struct {
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	DealerID     *int64
}

// Session is the server-side record binding an opaque client-held token
// to a principal. ID is unguessable and generated by the session layer.
type Session struct {
	ID        string    `json:"id"         db:"id"`
	UserID    int64     `json:"user_id"    db:"user_id"`
	Role      Role      `json:"role"       db:"role"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}

// Expired reports whether the session's expiry has passed at the given time.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
