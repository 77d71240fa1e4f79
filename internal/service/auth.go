package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/dealerdesk/dealerdesk/internal/domain/auth"
	apperrors "github.com/dealerdesk/dealerdesk/internal/errors"
	"github.com/dealerdesk/dealerdesk/internal/ports"
)

const (
	// defaultSessionTTL is the fixed session lifetime stamped at issuance.
	// There is no sliding refresh.
	defaultSessionTTL = 30 * 24 * time.Hour

	minUsernameLen = 3
	minPasswordLen = 8
)

// Messages for login failures. The authentication message is shared by
// "no such email" and "wrong password" so the two cases cannot be told
// apart; the role mismatch message is deliberately specific.
const (
	msgInvalidCredentials = "invalid email or password"
	msgRoleMismatch       = "wrong role for this account"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Hasher      ports.PasswordHasher
	Credentials ports.CredentialStore
	Sessions    ports.SessionStore
	SessionTTL  time.Duration
	Logger      *slog.Logger
}

// AuthService orchestrates registration, login, logout, and identity
// queries. It is the only component that coordinates the password codec,
// the credential store, and the session store, and the only place that
// decides which failure detail is safe to reveal.
type AuthService struct {
	hasher      ports.PasswordHasher
	credentials ports.CredentialStore
	sessions    ports.SessionStore
	sessionTTL  time.Duration
	logger      *slog.Logger
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		hasher:      opts.Hasher,
		credentials: opts.Credentials,
		sessions:    opts.Sessions,
		sessionTTL:  ttl,
		logger:      logger.With("component", "auth"),
	}
}

// RegisterInput carries the raw registration request. Role arrives as a
// raw string and is validated against the closed set.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
	DealerID *int64
}

// AuthResult is returned by Register and Login: the public principal plus
// the established session.
type AuthResult struct {
	Principal domainauth.Principal
	Session   domainauth.Session
}

// Register validates the candidate, checks uniqueness, hashes the
// password, persists the credential, and establishes a session.
// Registration implies login.
//
// Shape validation reports every violated field at once. Uniqueness is
// checked email first, then username, and the conflict names the field
// that collided. Two concurrent registrations with the same email race at
// the storage layer; the loser gets the same conflict from the unique
// constraint.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	role, err := s.validateRegistration(input)
	if err != nil {
		return nil, err
	}

	if err := s.checkUniqueness(ctx, input.Email, input.Username); err != nil {
		return nil, err
	}

	encoded, err := s.hasher.Hash(input.Password)
	if err != nil {
		// Entropy exhaustion; unrecoverable for this request.
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "hash password")
	}

	cred, err := s.credentials.Create(ctx, domainauth.NewCredential{
		Username:     strings.TrimSpace(input.Username),
		Email:        normalizeEmail(input.Email),
		PasswordHash: encoded,
		Role:         role,
		DealerID:     input.DealerID,
	})
	if err != nil {
		return nil, fmt.Errorf("create credential: %w", err)
	}

	session, err := s.establishSession(ctx, cred.ID, cred.Role)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", cred.ID, "role", cred.Role)
	return &AuthResult{Principal: cred.Principal(), Session: session}, nil
}

// LoginInput carries the raw login request, including the claimed role.
type LoginInput struct {
	Email    string
	Password string
	Role     string
}

// Login verifies credentials and the claimed role, then establishes a
// session.
//
// An unknown email and a wrong password produce the identical generic
// failure so account existence does not leak. Valid credentials with a
// mismatched claimed role fail with a distinct error: the user picked a
// role tab before logging in and must be told they picked the wrong one.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	claimed, err := domainauth.ParseRole(input.Role)
	if err != nil {
		return nil, apperrors.ValidationField("role", "role must be one of administrator, dealer, sales-agent")
	}

	cred, err := s.credentials.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if apperrors.IsNotFound(err) {
			s.logger.InfoContext(ctx, "login failed", "reason", "credentials")
			return nil, apperrors.Authentication(msgInvalidCredentials)
		}
		return nil, fmt.Errorf("get credential by email: %w", err)
	}

	if !s.hasher.Verify(input.Password, cred.PasswordHash) {
		s.logger.InfoContext(ctx, "login failed", "reason", "credentials")
		return nil, apperrors.Authentication(msgInvalidCredentials)
	}

	if cred.Role != claimed {
		s.logger.InfoContext(ctx, "login failed", "reason", "role", "user_id", cred.ID)
		return nil, apperrors.RoleMismatch(msgRoleMismatch)
	}

	session, err := s.establishSession(ctx, cred.ID, cred.Role)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", cred.ID, "role", cred.Role)
	return &AuthResult{Principal: cred.Principal(), Session: session}, nil
}

// Logout removes a session. It is idempotent: empty or unknown session IDs
// are not errors.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil // Nothing to logout
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// GetSession retrieves a valid session by ID. Expired sessions read as
// absent (NotFound), and a stale row found past its expiry is cleaned up.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, apperrors.NotFound("session not found")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Expired(time.Now()) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			s.logger.WarnContext(ctx, "cleanup of expired session failed", "error", deleteErr)
		}
		return nil, apperrors.NotFound("session not found")
	}

	return &session, nil
}

// CurrentUser resolves the current session to its principal through the
// hash-free lookup path. An absent or expired session reports NotFound,
// which callers present as "not authenticated" rather than as a failure.
func (s *AuthService) CurrentUser(ctx context.Context, sessionID string) (domainauth.Principal, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return domainauth.Principal{}, err
	}

	principal, err := s.credentials.GetByID(ctx, session.UserID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			// The principal was deleted out from under the session.
			if deleteErr := s.sessions.Delete(ctx, session.ID); deleteErr != nil {
				s.logger.WarnContext(ctx, "cleanup of orphaned session failed", "error", deleteErr)
			}
			return domainauth.Principal{}, apperrors.NotFound("session not found")
		}
		return domainauth.Principal{}, fmt.Errorf("get user by id: %w", err)
	}

	return principal, nil
}

// validateRegistration checks input shape and collects every violated
// field rather than stopping at the first.
func (s *AuthService) validateRegistration(input RegisterInput) (domainauth.Role, error) {
	var fields []apperrors.FieldError

	if len(strings.TrimSpace(input.Username)) < minUsernameLen {
		fields = append(fields, apperrors.FieldError{
			Field:   "username",
			Message: fmt.Sprintf("username must be at least %d characters", minUsernameLen),
		})
	}

	if _, err := mail.ParseAddress(strings.TrimSpace(input.Email)); err != nil {
		fields = append(fields, apperrors.FieldError{
			Field:   "email",
			Message: "email must be a valid email address",
		})
	}

	if len(input.Password) < minPasswordLen {
		fields = append(fields, apperrors.FieldError{
			Field:   "password",
			Message: fmt.Sprintf("password must be at least %d characters", minPasswordLen),
		})
	}

	role, roleErr := domainauth.ParseRole(input.Role)
	if roleErr != nil {
		fields = append(fields, apperrors.FieldError{
			Field:   "role",
			Message: "role must be one of administrator, dealer, sales-agent",
		})
	} else if role != domainauth.RoleAdministrator && input.DealerID == nil {
		// Dealer and sales-agent accounts belong to a dealership.
		fields = append(fields, apperrors.FieldError{
			Field:   "dealer_id",
			Message: "dealer_id is required for dealer and sales-agent roles",
		})
	}

	if len(fields) > 0 {
		return "", apperrors.ValidationFields(fields)
	}
	return role, nil
}

// checkUniqueness rejects candidates whose email or username is taken,
// email first. The storage engine's unique constraints remain the
// authority under concurrency; this pre-check exists to name the field.
func (s *AuthService) checkUniqueness(ctx context.Context, email, username string) error {
	if _, err := s.credentials.GetByEmail(ctx, normalizeEmail(email)); err == nil {
		return apperrors.ConflictField("email", "email already in use")
	} else if !apperrors.IsNotFound(err) {
		return fmt.Errorf("check email uniqueness: %w", err)
	}

	if _, err := s.credentials.GetByUsername(ctx, strings.TrimSpace(username)); err == nil {
		return apperrors.ConflictField("username", "username already in use")
	} else if !apperrors.IsNotFound(err) {
		return fmt.Errorf("check username uniqueness: %w", err)
	}

	return nil
}

// establishSession creates and persists a session bound to the principal.
func (s *AuthService) establishSession(ctx context.Context, userID int64, role domainauth.Role) (domainauth.Session, error) {
	session := domainauth.Session{
		ID:        generateSessionID(),
		UserID:    userID,
		Role:      role,
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return domainauth.Session{}, fmt.Errorf("save session: %w", err)
	}

	return session, nil
}

// generateSessionID creates a cryptographically secure random session ID.
func generateSessionID() string {
	// Use UUID for session ID - it's URL-safe and has good entropy
	return uuid.New().String()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
