package service

import (
	"context"
	"fmt"
	"log/slog"

	domainauth "github.com/dealerdesk/dealerdesk/internal/domain/auth"
	apperrors "github.com/dealerdesk/dealerdesk/internal/errors"
	"github.com/dealerdesk/dealerdesk/internal/ports"
)

// StaffServiceOptions groups dependencies for StaffService.
type StaffServiceOptions struct {
	Credentials ports.CredentialStore
	Logger      *slog.Logger
}

// StaffService lets dealers manage the sales agents of their own dealership.
// Every operation is scoped to the acting dealer's dealership; staff of other
// dealerships read as absent.
type StaffService struct {
	credentials ports.CredentialStore
	logger      *slog.Logger
}

// NewStaffService constructs a new StaffService.
func NewStaffService(opts StaffServiceOptions) *StaffService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &StaffService{
		credentials: opts.Credentials,
		logger:      logger.With("component", "staff"),
	}
}

// ListSalesAgents returns the sales agents of the actor's dealership.
func (s *StaffService) ListSalesAgents(ctx context.Context, actorID int64) ([]domainauth.Principal, error) {
	actor, err := s.resolveDealer(ctx, actorID)
	if err != nil {
		return nil, err
	}

	agents, err := s.credentials.ListByDealerAndRole(ctx, *actor.DealerID, domainauth.RoleSalesAgent)
	if err != nil {
		return nil, fmt.Errorf("list sales agents: %w", err)
	}
	return agents, nil
}

// RemoveSalesAgentParams groups parameters for RemoveSalesAgent.
type RemoveSalesAgentParams struct {
	ActorID  int64
	TargetID int64
}

// RemoveSalesAgent deletes a sales agent belonging to the actor's dealership.
// Accounts outside the dealership, and accounts that are not sales agents,
// report NotFound so the actor learns nothing about them.
func (s *StaffService) RemoveSalesAgent(ctx context.Context, params RemoveSalesAgentParams) error {
	actor, err := s.resolveDealer(ctx, params.ActorID)
	if err != nil {
		return err
	}

	target, err := s.credentials.GetByID(ctx, params.TargetID)
	if err != nil {
		return err
	}

	if target.Role != domainauth.RoleSalesAgent ||
		target.DealerID == nil ||
		*target.DealerID != *actor.DealerID {
		return apperrors.NotFound("staff member not found")
	}

	if err := s.credentials.Delete(ctx, params.TargetID); err != nil {
		return fmt.Errorf("delete sales agent: %w", err)
	}

	s.logger.InfoContext(ctx, "sales agent removed",
		"actor_id", params.ActorID,
		"target_id", params.TargetID,
		"dealer_id", *actor.DealerID,
	)
	return nil
}

// resolveDealer loads the actor and verifies it can manage dealership staff.
// The HTTP layer already gates these operations by role; the check here keeps
// the service safe for other callers.
func (s *StaffService) resolveDealer(ctx context.Context, actorID int64) (domainauth.Principal, error) {
	actor, err := s.credentials.GetByID(ctx, actorID)
	if err != nil {
		return domainauth.Principal{}, fmt.Errorf("get actor: %w", err)
	}

	if !actor.Role.Allows(domainauth.RoleDealer) {
		return domainauth.Principal{}, apperrors.RoleMismatch("staff management requires the dealer role")
	}
	if actor.DealerID == nil {
		return domainauth.Principal{}, apperrors.Validation("no dealership bound to this account")
	}

	return actor, nil
}
