package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/lmsauth/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/lmsauth/internal/http/errors"
	"github.com/dropDatabas3/lmsauth/internal/http/helpers"
	mw "github.com/dropDatabas3/lmsauth/internal/http/middlewares"
)

type MeController struct{}

func NewMeController() *MeController { return &MeController{} }

// Me handles GET /api/auth/me.
func (c *MeController) Me(w http.ResponseWriter, r *http.Request) {
	id := mw.GetIdentity(r.Context())
	if id == nil {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MeResponse{
		ID:    id.ID,
		Email: id.Email,
		Name:  id.Name,
		Role:  string(id.Role),
	})
}
