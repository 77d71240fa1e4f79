package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/dealerdesk/dealerdesk/internal/domain/auth"
	"github.com/dealerdesk/dealerdesk/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth         *service.AuthService
	Staff        *service.StaffService
	Codec        *SessionCookieCodec
	CookieDomain string
	Logger       *slog.Logger // Logger for HTTP errors (optional)
}

// NewRouter creates and configures a new HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		Codec:        services.Codec,
		CookieDomain: services.CookieDomain,
		Logger:       services.Logger,
	}
	registerAuthRoutes(mux, authHandlers)

	if services.Staff != nil {
		resolver := SessionResolver{Svc: services.Auth, Codec: services.Codec}
		registerStaffRoutes(mux, &StaffHandlers{Svc: services.Staff}, resolver)
	}

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	return mux
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.HandleFunc("GET /api/auth/me", h.Me)
}

func registerStaffRoutes(mux *http.ServeMux, h *StaffHandlers, resolver SessionResolver) {
	dealerOnly := RequireRole(resolver, domainauth.RoleDealer)
	mux.Handle("GET /api/staff", dealerOnly(http.HandlerFunc(h.List)))
	mux.Handle("DELETE /api/staff/{id}", dealerOnly(http.HandlerFunc(h.Delete)))
}
