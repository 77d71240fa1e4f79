package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/dealerdesk/dealerdesk/internal/domain/auth"
	mocksauth "github.com/dealerdesk/dealerdesk/internal/mocks/auth"
	"github.com/dealerdesk/dealerdesk/internal/service"
)

// testServer wires the router against in-memory stores so handler tests
// exercise the full request path without a database.
type testServer struct {
	router   http.Handler
	codec    *SessionCookieCodec
	sessions *mocksauth.MemorySessionStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	credentials := mocksauth.NewMemoryCredentialStore()
	sessions := mocksauth.NewMemorySessionStore()

	auth := service.NewAuthService(service.AuthServiceOptions{
		Hasher:      &mocksauth.PlainHasher{},
		Credentials: credentials,
		Sessions:    sessions,
	})
	staff := service.NewStaffService(service.StaffServiceOptions{
		Credentials: credentials,
	})

	codec := NewSessionCookieCodec("test-secret")
	router := NewRouter(RouterServices{
		Auth:  auth,
		Staff: staff,
		Codec: codec,
	})

	return &testServer{router: router, codec: codec, sessions: sessions}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

// register creates an account and returns the session cookie issued with it.
func (ts *testServer) register(t *testing.T, body map[string]any) *http.Cookie {
	t.Helper()

	w := ts.do(t, http.MethodPost, "/api/auth/register", body)
	require.Equal(t, http.StatusCreated, w.Code, "register failed: %s", w.Body.String())

	cookie := sessionCookieFrom(t, w)
	require.NotNil(t, cookie)
	return cookie
}

func sessionCookieFrom(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	resp := w.Result()
	defer resp.Body.Close()
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	return nil
}

func dealerRegistration() map[string]any {
	return map[string]any{
		"username":  "alice",
		"email":     "alice@example.com",
		"password":  "correct-horse",
		"role":      "dealer",
		"dealer_id": 7,
	}
}

func TestAuthHandlers_Register_Success(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/auth/register", dealerRegistration())

	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		User domainauth.Principal `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "alice", body.User.Username)
	assert.Equal(t, "alice@example.com", body.User.Email)
	assert.Equal(t, domainauth.RoleDealer, body.User.Role)

	cookie := sessionCookieFrom(t, w)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Positive(t, cookie.MaxAge)

	// Cookie value must carry a valid signature.
	_, ok := ts.codec.Decode(cookie.Value)
	assert.True(t, ok)
}

func TestAuthHandlers_Register_ValidationErrors(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/auth/register", map[string]any{
		"username": "",
		"email":    "not-an-email",
		"password": "",
		"role":     "janitor",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Error  string `json:"error"`
		Fields []struct {
			Field string `json:"field"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "validation", body.Error)
	assert.NotEmpty(t, body.Fields)
}

func TestAuthHandlers_Register_DuplicateEmail(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, dealerRegistration())

	dup := dealerRegistration()
	dup["username"] = "someone-else"
	w := ts.do(t, http.MethodPost, "/api/auth/register", dup)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "email")
}

func TestAuthHandlers_Register_RejectsUnknownFields(t *testing.T) {
	ts := newTestServer(t)

	body := dealerRegistration()
	body["is_admin"] = true
	w := ts.do(t, http.MethodPost, "/api/auth/register", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_json")
}

func TestAuthHandlers_Login_Success(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, dealerRegistration())

	w := ts.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    "alice@example.com",
		"password": "correct-horse",
		"role":     "dealer",
	})

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, sessionCookieFrom(t, w))
}

func TestAuthHandlers_Login_WrongPasswordAndUnknownEmailMatch(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, dealerRegistration())

	wrongPassword := ts.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    "alice@example.com",
		"password": "nope",
		"role":     "dealer",
	})
	unknownEmail := ts.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    "nobody@example.com",
		"password": "nope",
		"role":     "dealer",
	})

	// Both failures must be byte-identical so account existence cannot be probed.
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestAuthHandlers_Login_WrongRoleIsForbidden(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, dealerRegistration())

	w := ts.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    "alice@example.com",
		"password": "correct-horse",
		"role":     "administrator",
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "role_mismatch")
}

func TestAuthHandlers_Me_Success(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.register(t, dealerRegistration())

	w := ts.do(t, http.MethodGet, "/api/auth/me", nil, cookie)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		User domainauth.Principal `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "alice@example.com", body.User.Email)
}

func TestAuthHandlers_Me_NoCookie(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/auth/me", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "authentication_required")
}

func TestAuthHandlers_Me_ForgedCookie(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, dealerRegistration())

	forged := &http.Cookie{Name: SessionCookieName, Value: "some-session-id.bogus-signature"}
	w := ts.do(t, http.MethodGet, "/api/auth/me", nil, forged)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlers_Logout_InvalidatesSession(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.register(t, dealerRegistration())
	require.Equal(t, 1, ts.sessions.Len())

	w := ts.do(t, http.MethodPost, "/api/auth/logout", nil, cookie)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, ts.sessions.Len())

	cleared := sessionCookieFrom(t, w)
	require.NotNil(t, cleared)
	assert.Equal(t, "", cleared.Value)
	assert.Negative(t, cleared.MaxAge)

	// The old cookie no longer authenticates.
	me := ts.do(t, http.MethodGet, "/api/auth/me", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, me.Code)
}

func TestAuthHandlers_Logout_WithoutCookieStillSucceeds(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/auth/logout", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "success")
}
