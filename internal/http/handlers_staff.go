package httpx

import (
	"errors"
	"net/http"
	"strconv"

	domainauth "github.com/dealerdesk/dealerdesk/internal/domain/auth"
	"github.com/dealerdesk/dealerdesk/internal/service"
)

// StaffHandlers provides HTTP handlers for dealership staff management.
// All routes are gated behind RequireRole(dealer), so a session is always
// present in the request context.
type StaffHandlers struct {
	Svc *service.StaffService
}

// List returns the sales agents of the caller's dealership.
// GET /api/staff.
func (h *StaffHandlers) List(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		h.missingSession(w)
		return
	}

	agents, err := h.Svc.ListSalesAgents(r.Context(), session.UserID)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	if agents == nil {
		agents = []domainauth.Principal{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"staff": agents})
}

// Delete removes a sales agent from the caller's dealership.
// DELETE /api/staff/{id}.
func (h *StaffHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		h.missingSession(w)
		return
	}

	targetID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_id",
			Err:     errors.New("id must be an integer"),
		})
		return
	}

	if err := h.Svc.RemoveSalesAgent(r.Context(), service.RemoveSalesAgentParams{
		ActorID:  session.UserID,
		TargetID: targetID,
	}); err != nil {
		WriteAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *StaffHandlers) missingSession(w http.ResponseWriter) {
	WriteError(w, ErrorParams{
		Code:    http.StatusUnauthorized,
		ErrCode: "authentication_required",
		Err:     errors.New("authentication required"),
	})
}
