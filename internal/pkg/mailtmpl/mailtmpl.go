// Package mailtmpl renders the HTML bodies of the account emails.
package mailtmpl

import (
	"bytes"
	"fmt"
	"html/template"
)

var (
	verificationTmpl = template.Must(template.New("verification").Parse(`<div>
  <p>{{.Name}},</p>
  <p>We're happy you signed up for {{.AppName}}. To start exploring, please confirm your email address.</p>
  <p><a href="{{.URL}}">Verify Now</a></p>
</div>
`))

	recoveryTmpl = template.Must(template.New("recovery").Parse(`<div>
  <p>{{.Name}},</p>
  <p>Your {{.AppName}} account recovery code is <b>{{.Code}}</b></p>
  <p>If you did not ask to recover your account, you can ignore this email.</p>
</div>
`))
)

// Email is a rendered message ready for the notification gateway.
type Email struct {
	Subject string
	HTML    string
}

// Renderer builds account emails for one application.
type Renderer struct {
	appName   string
	clientURL string
}

func NewRenderer(appName, clientURL string) *Renderer {
	return &Renderer{appName: appName, clientURL: clientURL}
}

// Verification renders the email carrying the account verification link.
func (r *Renderer) Verification(name, token string) (Email, error) {
	body, err := render(verificationTmpl, struct {
		Name, AppName, URL string
	}{
		Name:    name,
		AppName: r.appName,
		URL:     r.VerificationURL(token),
	})
	if err != nil {
		return Email{}, err
	}
	return Email{
		Subject: fmt.Sprintf("Your %s Account Verification Link", r.appName),
		HTML:    body,
	}, nil
}

// Recovery renders the email carrying the account recovery code.
func (r *Renderer) Recovery(name, code string) (Email, error) {
	body, err := render(recoveryTmpl, struct {
		Name, AppName, Code string
	}{
		Name:    name,
		AppName: r.appName,
		Code:    code,
	})
	if err != nil {
		return Email{}, err
	}
	return Email{
		Subject: fmt.Sprintf("Your %s Account Recovery Code", r.appName),
		HTML:    body,
	}, nil
}

// VerificationURL is the client page that submits token back to the API.
func (r *Renderer) VerificationURL(token string) string {
	return r.clientURL + "/verify-account/" + token
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", t.Name(), err)
	}
	return buf.String(), nil
}
