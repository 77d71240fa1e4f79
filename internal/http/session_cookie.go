package httpx

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"
	"time"
)

// SessionCookieName is the cookie carrying the signed session reference.
const SessionCookieName = "session_id"

// SessionCookieCodec signs and verifies the session cookie value. The cookie
// carries the session ID plus an HMAC over it, so a forged or tampered cookie
// is rejected before any store lookup. Rotating the secret invalidates every
// outstanding cookie.
type SessionCookieCodec struct {
	secret []byte
}

// NewSessionCookieCodec constructs a codec keyed with the given secret.
func NewSessionCookieCodec(secret string) *SessionCookieCodec {
	return &SessionCookieCodec{secret: []byte(secret)}
}

// Encode returns the cookie value for a session ID: the ID followed by its
// base64url-encoded signature, dot-separated.
func (c *SessionCookieCodec) Encode(sessionID string) string {
	return sessionID + "." + c.sign(sessionID)
}

// Decode extracts and verifies the session ID from a cookie value. It returns
// false for malformed values and signature mismatches.
// Uses constant-time comparison to prevent timing side-channel attacks.
func (c *SessionCookieCodec) Decode(value string) (string, bool) {
	sessionID, sig, found := strings.Cut(value, ".")
	if !found || sessionID == "" {
		return "", false
	}
	expected := c.sign(sessionID)
	if subtle.ConstantTimeCompare([]byte(sig), []byte(expected)) != 1 {
		return "", false
	}
	return sessionID, true
}

func (c *SessionCookieCodec) sign(sessionID string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(sessionID))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// sessionCookieParams groups values needed to set the session cookie.
type sessionCookieParams struct {
	Codec     *SessionCookieCodec
	Domain    string
	SessionID string
	ExpiresAt time.Time
}

// setSessionCookie writes the signed session cookie based on the session's expiry.
func setSessionCookie(w http.ResponseWriter, r *http.Request, p sessionCookieParams) {
	isSecure := r.TLS != nil || isForwardedHTTPS(r)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    p.Codec.Encode(p.SessionID),
		Path:     "/",
		Domain:   p.Domain,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(p.ExpiresAt).Seconds()),
	})
}

// clearSessionCookie clears the session cookie by setting it to expire immediately.
// It mirrors key attributes (Secure, Path, Domain, SameSite) used when setting cookies
// to maximize compatibility across browsers during deletion.
func clearSessionCookie(w http.ResponseWriter, r *http.Request, domain string) {
	isSecure := r.TLS != nil || isForwardedHTTPS(r)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   domain,
		HttpOnly: true,
		Secure:   isSecure,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// isForwardedHTTPS checks if the request was forwarded over HTTPS.
// Handles comma-separated values in X-Forwarded-Proto header.
func isForwardedHTTPS(r *http.Request) bool {
	xfProto := r.Header.Get("X-Forwarded-Proto")
	if xfProto == "" {
		return false
	}

	// Handle comma-separated values (e.g., "https,http")
	for _, proto := range strings.Split(xfProto, ",") {
		if strings.EqualFold(strings.TrimSpace(proto), "https") {
			return true
		}
	}

	return false
}
