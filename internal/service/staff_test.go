package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/dealerdesk/dealerdesk/internal/domain/auth"
	apperrors "github.com/dealerdesk/dealerdesk/internal/errors"
	mocksauth "github.com/dealerdesk/dealerdesk/internal/mocks/auth"
)

type testStaffService struct {
	svc         *StaffService
	credentials *mocksauth.MemoryCredentialStore
}

func newTestStaffService(t *testing.T) *testStaffService {
	t.Helper()

	credentials := mocksauth.NewMemoryCredentialStore()
	svc := NewStaffService(StaffServiceOptions{
		Credentials: credentials,
	})
	return &testStaffService{svc: svc, credentials: credentials}
}

func (ts *testStaffService) seed(t *testing.T, username string, role domainauth.Role, dealerID *int64) int64 {
	t.Helper()

	created, err := ts.credentials.Create(context.Background(), domainauth.NewCredential{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashed:pw",
		Role:         role,
		DealerID:     dealerID,
	})
	require.NoError(t, err)
	return created.ID
}

func dealershipID(id int64) *int64 {
	return &id
}

func TestStaffService_ListSalesAgents(t *testing.T) {
	ts := newTestStaffService(t)
	dealerID := ts.seed(t, "dealer-dave", domainauth.RoleDealer, dealershipID(7))
	ts.seed(t, "agent-amy", domainauth.RoleSalesAgent, dealershipID(7))
	ts.seed(t, "agent-omar", domainauth.RoleSalesAgent, dealershipID(8))
	ts.seed(t, "agent-ana", domainauth.RoleSalesAgent, dealershipID(7))

	agents, err := ts.svc.ListSalesAgents(context.Background(), dealerID)

	require.NoError(t, err)
	require.Len(t, agents, 2)
	assert.Equal(t, "agent-amy", agents[0].Username)
	assert.Equal(t, "agent-ana", agents[1].Username)
}

func TestStaffService_ListSalesAgents_EmptyDealership(t *testing.T) {
	ts := newTestStaffService(t)
	dealerID := ts.seed(t, "dealer-dave", domainauth.RoleDealer, dealershipID(7))

	agents, err := ts.svc.ListSalesAgents(context.Background(), dealerID)

	require.NoError(t, err)
	assert.Empty(t, agents)
}

func TestStaffService_ListSalesAgents_SalesAgentForbidden(t *testing.T) {
	ts := newTestStaffService(t)
	agentID := ts.seed(t, "agent-amy", domainauth.RoleSalesAgent, dealershipID(7))

	_, err := ts.svc.ListSalesAgents(context.Background(), agentID)

	require.Error(t, err)
	assert.True(t, apperrors.IsRoleMismatch(err))
}

func TestStaffService_ListSalesAgents_AdminWithoutDealership(t *testing.T) {
	ts := newTestStaffService(t)
	adminID := ts.seed(t, "admin-al", domainauth.RoleAdministrator, nil)

	_, err := ts.svc.ListSalesAgents(context.Background(), adminID)

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestStaffService_RemoveSalesAgent(t *testing.T) {
	ts := newTestStaffService(t)
	dealerID := ts.seed(t, "dealer-dave", domainauth.RoleDealer, dealershipID(7))
	agentID := ts.seed(t, "agent-amy", domainauth.RoleSalesAgent, dealershipID(7))

	err := ts.svc.RemoveSalesAgent(context.Background(), RemoveSalesAgentParams{
		ActorID:  dealerID,
		TargetID: agentID,
	})

	require.NoError(t, err)

	agents, err := ts.svc.ListSalesAgents(context.Background(), dealerID)
	require.NoError(t, err)
	assert.Empty(t, agents)
}

func TestStaffService_RemoveSalesAgent_OtherDealershipReadsAsAbsent(t *testing.T) {
	ts := newTestStaffService(t)
	dealerID := ts.seed(t, "dealer-dave", domainauth.RoleDealer, dealershipID(7))
	otherAgentID := ts.seed(t, "agent-omar", domainauth.RoleSalesAgent, dealershipID(8))

	err := ts.svc.RemoveSalesAgent(context.Background(), RemoveSalesAgentParams{
		ActorID:  dealerID,
		TargetID: otherAgentID,
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	// The agent must survive the failed cross-dealership removal.
	_, err = ts.credentials.GetByID(context.Background(), otherAgentID)
	assert.NoError(t, err)
}

func TestStaffService_RemoveSalesAgent_NonAgentTargetReadsAsAbsent(t *testing.T) {
	ts := newTestStaffService(t)
	dealerID := ts.seed(t, "dealer-dave", domainauth.RoleDealer, dealershipID(7))
	otherDealerID := ts.seed(t, "dealer-diane", domainauth.RoleDealer, dealershipID(7))

	err := ts.svc.RemoveSalesAgent(context.Background(), RemoveSalesAgentParams{
		ActorID:  dealerID,
		TargetID: otherDealerID,
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestStaffService_RemoveSalesAgent_UnknownTarget(t *testing.T) {
	ts := newTestStaffService(t)
	dealerID := ts.seed(t, "dealer-dave", domainauth.RoleDealer, dealershipID(7))

	err := ts.svc.RemoveSalesAgent(context.Background(), RemoveSalesAgentParams{
		ActorID:  dealerID,
		TargetID: 9999,
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestStaffService_AdminWithDealershipCanManageStaff(t *testing.T) {
	ts := newTestStaffService(t)
	adminID := ts.seed(t, "admin-al", domainauth.RoleAdministrator, dealershipID(7))
	agentID := ts.seed(t, "agent-amy", domainauth.RoleSalesAgent, dealershipID(7))

	err := ts.svc.RemoveSalesAgent(context.Background(), RemoveSalesAgentParams{
		ActorID:  adminID,
		TargetID: agentID,
	})

	assert.NoError(t, err)
}
