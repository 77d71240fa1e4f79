package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/dealerdesk/dealerdesk/internal/domain/auth"
)

// seedDealership registers a dealer for the given dealership plus two sales
// agents, one in the same dealership and one in another. Returns the dealer's
// session cookie and the two agents' account IDs.
func seedDealership(t *testing.T, ts *testServer) (*http.Cookie, int64, int64) {
	t.Helper()

	dealer := ts.register(t, map[string]any{
		"username":  "dealer-dave",
		"email":     "dave@example.com",
		"password":  "swordfish1",
		"role":      "dealer",
		"dealer_id": 7,
	})

	ownAgent := ts.do(t, http.MethodPost, "/api/auth/register", map[string]any{
		"username":  "agent-amy",
		"email":     "amy@example.com",
		"password":  "swordfish2",
		"role":      "sales-agent",
		"dealer_id": 7,
	})
	require.Equal(t, http.StatusCreated, ownAgent.Code)

	otherAgent := ts.do(t, http.MethodPost, "/api/auth/register", map[string]any{
		"username":  "agent-omar",
		"email":     "omar@example.com",
		"password":  "swordfish3",
		"role":      "sales-agent",
		"dealer_id": 8,
	})
	require.Equal(t, http.StatusCreated, otherAgent.Code)

	return dealer, registeredUserID(t, ownAgent.Body.Bytes()), registeredUserID(t, otherAgent.Body.Bytes())
}

func registeredUserID(t *testing.T, body []byte) int64 {
	t.Helper()

	var resp struct {
		User domainauth.Principal `json:"user"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.User.ID
}

func TestStaffHandlers_List_OwnDealershipOnly(t *testing.T) {
	ts := newTestServer(t)
	dealer, ownAgentID, _ := seedDealership(t, ts)

	w := ts.do(t, http.MethodGet, "/api/staff", nil, dealer)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Staff []domainauth.Principal `json:"staff"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Staff, 1)
	assert.Equal(t, ownAgentID, body.Staff[0].ID)
	assert.Equal(t, "agent-amy", body.Staff[0].Username)
}

func TestStaffHandlers_List_EmptyDealership(t *testing.T) {
	ts := newTestServer(t)
	dealer := ts.register(t, map[string]any{
		"username":  "lonely-dealer",
		"email":     "lonely@example.com",
		"password":  "swordfish1",
		"role":      "dealer",
		"dealer_id": 42,
	})

	w := ts.do(t, http.MethodGet, "/api/staff", nil, dealer)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"staff": []}`, w.Body.String())
}

func TestStaffHandlers_List_RequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/staff", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStaffHandlers_List_SalesAgentForbidden(t *testing.T) {
	ts := newTestServer(t)
	agent := ts.register(t, map[string]any{
		"username":  "agent-amy",
		"email":     "amy@example.com",
		"password":  "swordfish2",
		"role":      "sales-agent",
		"dealer_id": 7,
	})

	w := ts.do(t, http.MethodGet, "/api/staff", nil, agent)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "insufficient_permissions")
}

func TestStaffHandlers_Delete_Success(t *testing.T) {
	ts := newTestServer(t)
	dealer, ownAgentID, _ := seedDealership(t, ts)

	w := ts.do(t, http.MethodDelete, fmt.Sprintf("/api/staff/%d", ownAgentID), nil, dealer)

	require.Equal(t, http.StatusNoContent, w.Code)

	list := ts.do(t, http.MethodGet, "/api/staff", nil, dealer)
	assert.JSONEq(t, `{"staff": []}`, list.Body.String())
}

func TestStaffHandlers_Delete_OtherDealershipReadsAsAbsent(t *testing.T) {
	ts := newTestServer(t)
	dealer, _, otherAgentID := seedDealership(t, ts)

	w := ts.do(t, http.MethodDelete, fmt.Sprintf("/api/staff/%d", otherAgentID), nil, dealer)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStaffHandlers_Delete_UnknownTarget(t *testing.T) {
	ts := newTestServer(t)
	dealer, _, _ := seedDealership(t, ts)

	w := ts.do(t, http.MethodDelete, "/api/staff/9999", nil, dealer)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStaffHandlers_Delete_InvalidID(t *testing.T) {
	ts := newTestServer(t)
	dealer, _, _ := seedDealership(t, ts)

	w := ts.do(t, http.MethodDelete, "/api/staff/not-a-number", nil, dealer)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_id")
}
