package email

import (
	"bytes"
	htemplate "html/template"
	ttemplate "text/template"
)

type codeVars struct {
	Name       string
	Code       string
	TTLMinutes int
	Product    string
}

type changedVars struct {
	Name    string
	Product string
}

var (
	codeHTML = htemplate.Must(htemplate.New("code_html").Parse(
		`<p>Hi {{.Name}},</p>
<p>Your {{.Product}} verification code is <strong style="font-size:20px;letter-spacing:4px">{{.Code}}</strong>.</p>
<p>It expires in {{.TTLMinutes}} minutes. If you did not sign up, ignore this email.</p>`))
	codeText = ttemplate.Must(ttemplate.New("code_text").Parse(
		`Hi {{.Name}},

Your {{.Product}} verification code is {{.Code}}.
It expires in {{.TTLMinutes}} minutes. If you did not sign up, ignore this email.
`))

	changedHTML = htemplate.Must(htemplate.New("changed_html").Parse(
		`<p>Hi {{.Name}},</p>
<p>The password of your {{.Product}} account was just changed and every other session was signed out.</p>
<p>If this was not you, reset your password and contact support immediately.</p>`))
	changedText = ttemplate.Must(ttemplate.New("changed_text").Parse(
		`Hi {{.Name}},

The password of your {{.Product}} account was just changed and every other session was signed out.
If this was not you, reset your password and contact support immediately.
`))
)

func render(h *htemplate.Template, t *ttemplate.Template, data any) (string, string, error) {
	var hb, tb bytes.Buffer
	if err := h.Execute(&hb, data); err != nil {
		return "", "", err
	}
	if err := t.Execute(&tb, data); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}
