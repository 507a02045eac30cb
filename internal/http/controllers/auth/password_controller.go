package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/lmsauth/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/lmsauth/internal/http/errors"
	"github.com/dropDatabas3/lmsauth/internal/http/helpers"
	mw "github.com/dropDatabas3/lmsauth/internal/http/middlewares"
	svc "github.com/dropDatabas3/lmsauth/internal/http/services/session"
)

type PasswordController struct {
	service   svc.Service
	transport Transport
}

func NewPasswordController(service svc.Service, t Transport) *PasswordController {
	return &PasswordController{service: service, transport: t}
}

// Change handles POST /api/auth/change-password (behind RequireAuth). The
// caller gets fresh cookies; every other session is revoked.
func (c *PasswordController) Change(w http.ResponseWriter, r *http.Request) {
	userID := mw.GetUserID(r.Context())
	if userID == "" {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	var req dto.ChangePasswordRequest
	if err := helpers.ReadJSON(w, r, &req, false); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := c.service.ChangePassword(r.Context(), userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c.transport.writeSession(w, res, true)
}
