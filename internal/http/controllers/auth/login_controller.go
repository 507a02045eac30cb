package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/lmsauth/internal/http/dto/auth"
	"github.com/dropDatabas3/lmsauth/internal/http/helpers"
	svc "github.com/dropDatabas3/lmsauth/internal/http/services/session"
	"github.com/dropDatabas3/lmsauth/internal/observability/logger"
)

type LoginController struct {
	service   svc.Service
	transport Transport
}

func NewLoginController(service svc.Service, t Transport) *LoginController {
	return &LoginController{service: service, transport: t}
}

// Login handles POST /api/auth/login.
func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("LoginController.Login"))

	var req dto.LoginRequest
	if err := helpers.ReadJSON(w, r, &req, false); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := c.service.Login(r.Context(), req)
	if err != nil {
		log.Debug("login failed", logger.Err(err))
		writeError(w, r, err)
		return
	}
	c.transport.writeSession(w, res, false)
}
