package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/lmsauth/internal/http/dto/auth"
	"github.com/dropDatabas3/lmsauth/internal/http/helpers"
	svc "github.com/dropDatabas3/lmsauth/internal/http/services/session"
	"github.com/dropDatabas3/lmsauth/internal/observability/logger"
)

// OTPController serves the email verification endpoints.
type OTPController struct {
	service   svc.Service
	transport Transport
}

func NewOTPController(service svc.Service, t Transport) *OTPController {
	return &OTPController{service: service, transport: t}
}

// Verify handles POST /api/auth/verify-otp. Success signs the user in.
func (c *OTPController) Verify(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("OTPController.Verify"))

	var req dto.VerifyOTPRequest
	if err := helpers.ReadJSON(w, r, &req, false); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := c.service.VerifyOTP(r.Context(), req)
	if err != nil {
		log.Debug("verify failed", logger.Err(err))
		writeError(w, r, err)
		return
	}
	c.transport.writeSession(w, res, true)
}

// Resend handles POST /api/auth/resend-otp.
func (c *OTPController) Resend(w http.ResponseWriter, r *http.Request) {
	var req dto.ResendOTPRequest
	if err := helpers.ReadJSON(w, r, &req, false); err != nil {
		writeError(w, r, err)
		return
	}
	if err := c.service.ResendOTP(r.Context(), req); err != nil {
		writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.OKResponse{OK: true})
}
