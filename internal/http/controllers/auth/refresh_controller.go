package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/lmsauth/internal/http/dto/auth"
	"github.com/dropDatabas3/lmsauth/internal/http/helpers"
	svc "github.com/dropDatabas3/lmsauth/internal/http/services/session"
)

type RefreshController struct {
	service   svc.Service
	transport Transport
}

func NewRefreshController(service svc.Service, t Transport) *RefreshController {
	return &RefreshController{service: service, transport: t}
}

// Refresh handles POST /api/auth/refresh. The refresh cookie wins over a
// body token.
func (c *RefreshController) Refresh(w http.ResponseWriter, r *http.Request) {
	raw := helpers.CookieValue(r, c.transport.Cookies.RefreshName)
	if raw == "" {
		var req dto.RefreshRequest
		if err := helpers.ReadJSON(w, r, &req, true); err != nil {
			writeError(w, r, err)
			return
		}
		raw = req.RefreshToken
	}

	res, err := c.service.Refresh(r.Context(), raw)
	if err != nil {
		// a dead refresh cookie is useless to the browser
		helpers.ClearSessionCookies(w, c.transport.Cookies)
		writeError(w, r, err)
		return
	}
	c.transport.writeSession(w, res, false)
}
