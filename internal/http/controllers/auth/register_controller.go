package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/lmsauth/internal/http/dto/auth"
	"github.com/dropDatabas3/lmsauth/internal/http/helpers"
	svc "github.com/dropDatabas3/lmsauth/internal/http/services/session"
	"github.com/dropDatabas3/lmsauth/internal/observability/logger"
)

type RegisterController struct {
	service svc.Service
}

func NewRegisterController(service svc.Service) *RegisterController {
	return &RegisterController{service: service}
}

// Register handles POST /api/auth/register.
func (c *RegisterController) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("RegisterController.Register"))

	var req dto.RegisterRequest
	if err := helpers.ReadJSON(w, r, &req, false); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := c.service.Register(r.Context(), req)
	if err != nil {
		log.Debug("register failed", logger.Err(err))
		writeError(w, r, err)
		return
	}

	msg := "Verification code sent. Check your email."
	if !res.CodeSent {
		msg = "Registration received. Request a new verification code to continue."
	}
	helpers.WriteJSON(w, http.StatusOK, dto.RegisterResponse{Message: msg, Email: res.Email})
}
