package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/lmsauth/internal/http/dto/auth"
	"github.com/dropDatabas3/lmsauth/internal/http/helpers"
	svc "github.com/dropDatabas3/lmsauth/internal/http/services/session"
)

type LogoutController struct {
	service   svc.Service
	transport Transport
}

func NewLogoutController(service svc.Service, t Transport) *LogoutController {
	return &LogoutController{service: service, transport: t}
}

// Logout handles POST /api/auth/logout. It always answers 200 and clears
// both cookies.
func (c *LogoutController) Logout(w http.ResponseWriter, r *http.Request) {
	refresh := helpers.CookieValue(r, c.transport.Cookies.RefreshName)
	access := helpers.CookieValue(r, c.transport.Cookies.AccessName)
	if access == "" {
		access = helpers.BearerToken(r)
	}

	c.service.Logout(r.Context(), refresh, access)

	helpers.ClearSessionCookies(w, c.transport.Cookies)
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Logged out"})
}
