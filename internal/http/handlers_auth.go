package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	domainauth "github.com/dealerdesk/dealerdesk/internal/domain/auth"
	"github.com/dealerdesk/dealerdesk/internal/service"
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	Register(ctx context.Context, input service.RegisterInput) (*service.AuthResult, error)
	Login(ctx context.Context, input service.LoginInput) (*service.AuthResult, error)
	Logout(ctx context.Context, sessionID string) error
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
	CurrentUser(ctx context.Context, sessionID string) (domainauth.Principal, error)
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	Codec        *SessionCookieCodec
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// registerRequest is the wire shape for registration.
type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	DealerID *int64 `json:"dealer_id"`
}

// authResponse is returned by Register and Login.
type authResponse struct {
	User      domainauth.Principal `json:"user"`
	ExpiresAt time.Time            `json:"expires_at"`
}

// Register handles account creation. Registration implies login: the
// response carries a fresh session cookie.
// POST /api/auth/register.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	result, err := h.Svc.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		DealerID: req.DealerID,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}

	h.setSession(w, r, result.Session)
	WriteJSON(w, http.StatusCreated, authResponse{
		User:      result.Principal,
		ExpiresAt: result.Session.ExpiresAt,
	})
}

// loginRequest is the wire shape for login, including the claimed role.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Login verifies credentials and the claimed role and issues a session cookie.
// POST /api/auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	result, err := h.Svc.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}

	h.setSession(w, r, result.Session)
	WriteJSON(w, http.StatusOK, authResponse{
		User:      result.Principal,
		ExpiresAt: result.Session.ExpiresAt,
	})
}

// Logout invalidates the server-side session and clears the cookie. It is
// idempotent: a missing or bad cookie still gets the cookie cleared and a 200.
// POST /api/auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if sessionID, ok := h.Codec.Decode(cookie.Value); ok {
			if logoutErr := h.Svc.Logout(r.Context(), sessionID); logoutErr != nil {
				h.logger().WarnContext(r.Context(), "logout failed", "error", logoutErr)
			}
		}
	}

	clearSessionCookie(w, r, h.CookieDomain)
	WriteJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// Me resolves the session cookie to the authenticated principal.
// GET /api/auth/me.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		h.unauthenticated(w, r)
		return
	}

	sessionID, ok := h.Codec.Decode(cookie.Value)
	if !ok {
		h.unauthenticated(w, r)
		return
	}

	principal, err := h.Svc.CurrentUser(r.Context(), sessionID)
	if err != nil {
		// An absent or expired session is "not authenticated", not a failure.
		h.unauthenticated(w, r)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"user": principal})
}

// unauthenticated clears any stale session cookie and writes a 401.
func (h *AuthHandlers) unauthenticated(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w, r, h.CookieDomain)
	WriteJSON(w, http.StatusUnauthorized, errorBody{
		Error:   "authentication_required",
		Message: "authentication required",
	})
}

func (h *AuthHandlers) setSession(w http.ResponseWriter, r *http.Request, s domainauth.Session) {
	setSessionCookie(w, r, sessionCookieParams{
		Codec:     h.Codec,
		Domain:    h.CookieDomain,
		SessionID: s.ID,
		ExpiresAt: s.ExpiresAt,
	})
}
