package email

import (
	"fmt"
	"html/template"
	"strings"
)

var subjects = map[string]string{
	TypeVerificationCode: "Your verification code",
	TypeWelcome:          "Welcome to Sigma",
	TypeNewSession:       "New login to your account",
	TypeAccountLocked:    "Your account has been locked",
	TypePasswordChanged:  "Your password was changed",
}

var bodies = template.Must(template.New("mail").Parse(`
{{define "verification_code"}}
<p>Your verification code is <strong>{{.code}}</strong>.</p>
<p>It expires at {{.expires_at}}. If you did not request this, ignore this message.</p>
{{end}}

{{define "welcome"}}
<p>Hi {{.name}},</p>
<p>Your account has been verified. Welcome to Sigma!</p>
{{end}}

{{define "new_session"}}
<p>A new login to your account was detected from {{.device}} (IP {{.ip}}).</p>
<p>If this was not you, close all sessions and change your password.</p>
{{end}}

{{define "account_locked"}}
<p>Your account has been temporarily locked after repeated failed login attempts.</p>
<p>It unlocks at {{.unlocks_at}}.</p>
{{end}}

{{define "password_changed"}}
<p>The password for your account was just changed.</p>
<p>If this was not you, contact support immediately.</p>
{{end}}
`))

func render(msgType string, values map[string]any) (subject, body string, err error) {
	subject, ok := subjects[msgType]
	if !ok {
		return "", "", fmt.Errorf("unknown mail type %q", msgType)
	}

	var buf strings.Builder
	if err := bodies.ExecuteTemplate(&buf, msgType, values); err != nil {
		return "", "", fmt.Errorf("render %s: %w", msgType, err)
	}
	return subject, buf.String(), nil
}
