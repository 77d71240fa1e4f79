// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	domainauth "github.com/dealerdesk/dealerdesk/internal/domain/auth"
	apperrors "github.com/dealerdesk/dealerdesk/internal/errors"
	"github.com/dealerdesk/dealerdesk/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.PasswordHasher  = (*PlainHasher)(nil)
	_ ports.CredentialStore = (*MemoryCredentialStore)(nil)
	_ ports.SessionStore    = (*MemorySessionStore)(nil)
)

// PlainHasher is a trivially reversible hasher for tests. It marks the
// plaintext instead of deriving a key so assertions stay readable.
type PlainHasher struct {
	HashFunc   func(plaintext string) (string, error)
	VerifyFunc func(plaintext, encoded string) bool
}

func (h *PlainHasher) Hash(plaintext string) (string, error) {
	if h.HashFunc != nil {
		return h.HashFunc(plaintext)
	}
	return "hashed:" + plaintext, nil
}

func (h *PlainHasher) Verify(plaintext, encoded string) bool {
	if h.VerifyFunc != nil {
		return h.VerifyFunc(plaintext, encoded)
	}
	return encoded == "hashed:"+plaintext
}

// MemoryCredentialStore is an in-memory credential store for unit tests.
// It enforces email/username uniqueness the way the real store's unique
// constraints do.
type MemoryCredentialStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]domainauth.Credential
}

// NewMemoryCredentialStore creates a new in-memory credential store.
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{
		nextID: 1,
		users:  make(map[int64]domainauth.Credential),
	}
}

func (m *MemoryCredentialStore) Create(_ context.Context, cand domainauth.NewCredential) (domainauth.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, cand.Email) {
			return domainauth.Credential{}, apperrors.ConflictField("email", "email already in use")
		}
		if u.Username == cand.Username {
			return domainauth.Credential{}, apperrors.ConflictField("username", "username already in use")
		}
	}

	cred := domainauth.Credential{
		ID:           m.nextID,
		Username:     cand.Username,
		Email:        cand.Email,
		PasswordHash: cand.PasswordHash,
		Role:         cand.Role,
		DealerID:     cand.DealerID,
	}
	m.users[cred.ID] = cred
	m.nextID++
	return cred, nil
}

func (m *MemoryCredentialStore) GetByEmail(_ context.Context, email string) (domainauth.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return domainauth.Credential{}, apperrors.NotFound("user not found")
}

func (m *MemoryCredentialStore) GetByUsername(_ context.Context, username string) (domainauth.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return domainauth.Credential{}, apperrors.NotFound("user not found")
}

func (m *MemoryCredentialStore) GetByID(_ context.Context, id int64) (domainauth.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domainauth.Principal{}, apperrors.NotFound("user not found")
	}
	return u.Principal(), nil
}

func (m *MemoryCredentialStore) ListByDealerAndRole(
	_ context.Context,
	dealerID int64,
	role domainauth.Role,
) ([]domainauth.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domainauth.Principal
	for id := int64(1); id < m.nextID; id++ {
		u, ok := m.users[id]
		if !ok {
			continue
		}
		if u.Role == role && u.DealerID != nil && *u.DealerID == dealerID {
			out = append(out, u.Principal())
		}
	}
	return out, nil
}

func (m *MemoryCredentialStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return apperrors.NotFound("user not found")
	}
	delete(m.users, id)
	return nil
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
	}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if id == "" || !ok {
		return domainauth.Session{}, apperrors.NotFound("session not found")
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	if id == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len reports the number of stored sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
