// Package auth contains the /api/auth controllers.
package auth

import (
	"net/http"
	"time"

	dto "github.com/dropDatabas3/lmsauth/internal/http/dto/auth"
	"github.com/dropDatabas3/lmsauth/internal/http/helpers"
	svc "github.com/dropDatabas3/lmsauth/internal/http/services/session"
)

// Transport decides where minted tokens go.
type Transport struct {
	Cookies helpers.CookieConfig
	// TokensInBody also returns the tokens in JSON for non-browser clients.
	TokensInBody bool
	Now          func() time.Time
}

// Controllers groups the auth controllers.
type Controllers struct {
	Register *RegisterController
	OTP      *OTPController
	Login    *LoginController
	Refresh  *RefreshController
	Logout   *LogoutController
	Password *PasswordController
	Me       *MeController
}

func NewControllers(s svc.Service, t Transport) *Controllers {
	if t.Now == nil {
		t.Now = time.Now
	}
	return &Controllers{
		Register: NewRegisterController(s),
		OTP:      NewOTPController(s, t),
		Login:    NewLoginController(s, t),
		Refresh:  NewRefreshController(s, t),
		Logout:   NewLogoutController(s, t),
		Password: NewPasswordController(s, t),
		Me:       NewMeController(),
	}
}

// writeSession sets both cookies and answers 200 with the user.
func (t Transport) writeSession(w http.ResponseWriter, res *dto.SessionResult, ok bool) {
	now := t.Now()
	helpers.SetSessionCookies(w, t.Cookies,
		res.AccessToken, res.AccessExpiresAt.Sub(now),
		res.RefreshToken, res.RefreshExpiresAt.Sub(now),
	)
	body := dto.SessionResponse{OK: ok, User: res.User}
	if t.TokensInBody {
		body.AccessToken = res.AccessToken
		body.RefreshToken = res.RefreshToken
		body.ExpiresIn = int64(res.AccessExpiresAt.Sub(now).Seconds())
	}
	helpers.WriteJSON(w, http.StatusOK, body)
}
