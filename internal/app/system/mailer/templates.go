// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/dalemusser/stratasite/internal/app/system/htmlsanitize"
)

// ContactEmailData contains the data for a contact form notification.
type ContactEmailData struct {
	SiteName string
	Name     string
	Email    string
	Phone    string // optional
	Message  string
}

// ContactEmail builds the notification sent to the site owner when a visitor
// uses the contact form.
func ContactEmail(data ContactEmailData) (subject, textBody, htmlBody string) {
	subject = "Nouveau message de contact - " + data.Name

	var text strings.Builder
	text.WriteString("Nouveau message de contact\n\n")
	text.WriteString("Nom : " + data.Name + "\n")
	text.WriteString("Email : " + data.Email + "\n")
	if data.Phone != "" {
		text.WriteString("Telephone : " + data.Phone + "\n")
	}
	text.WriteString("\nMessage :\n" + data.Message + "\n")

	htmlBody = render(contactHTMLTmpl, struct {
		ContactEmailData
		MessageHTML template.HTML
	}{data, htmlsanitize.MessageHTML(data.Message)})

	return subject, text.String(), htmlBody
}

// ReservationEmailData contains the data for a reservation request notification.
type ReservationEmailData struct {
	SiteName    string
	Name        string
	Email       string
	Phone       string // optional
	Inscription string // optional
	ServiceName string // optional
	Message     string
	CreatedAt   string
}

// ReservationEmail builds the notification sent to the booking address when a
// reservation request is submitted.
func ReservationEmail(data ReservationEmailData) (subject, textBody, htmlBody string) {
	subject = "Nouvelle demande de reservation - " + data.Name

	var text strings.Builder
	text.WriteString("Nouvelle demande de reservation\n\n")
	text.WriteString("Nom : " + data.Name + "\n")
	text.WriteString("Email : " + data.Email + "\n")
	if data.Phone != "" {
		text.WriteString("Telephone : " + data.Phone + "\n")
	}
	if data.ServiceName != "" {
		text.WriteString("Soin : " + data.ServiceName + "\n")
	}
	if data.Inscription != "" {
		text.WriteString("Inscription : " + data.Inscription + "\n")
	}
	text.WriteString("Recue le : " + data.CreatedAt + "\n")
	text.WriteString("\nMessage :\n" + data.Message + "\n")

	htmlBody = render(reservationHTMLTmpl, struct {
		ReservationEmailData
		MessageHTML template.HTML
	}{data, htmlsanitize.MessageHTML(data.Message)})

	return subject, text.String(), htmlBody
}

func render(t *template.Template, data any) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return ""
	}
	return buf.String()
}

const mailHead = `<!DOCTYPE html>
<html lang="fr">
<head>
  <meta charset="UTF-8">
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: linear-gradient(135deg, #ffce67, #f67e54); padding: 20px; border-radius: 8px 8px 0 0; }
    .header h1 { color: white; margin: 0; font-size: 24px; }
    .content { background: #f9f9f9; padding: 20px; border-radius: 0 0 8px 8px; }
    .field { margin-bottom: 15px; }
    .message { background: white; padding: 15px; border-radius: 4px; border-left: 4px solid #ffce67; }
  </style>
</head>`

var contactHTMLTmpl = template.Must(template.New("contact").Parse(mailHead + `
<body>
  <div class="container">
    <div class="header"><h1>Nouveau message de contact</h1></div>
    <div class="content">
      <div class="field"><p><strong>Nom :</strong> {{.Name}}</p></div>
      <div class="field"><p><strong>Email :</strong> <a href="mailto:{{.Email}}">{{.Email}}</a></p></div>
      {{if .Phone}}<div class="field"><p><strong>Telephone :</strong> {{.Phone}}</p></div>{{end}}
      <div class="field">
        <p><strong>Message :</strong></p>
        <div class="message">{{.MessageHTML}}</div>
      </div>
    </div>
    {{if .SiteName}}<p style="font-size: 12px; color: #a1a1aa;">{{.SiteName}}</p>{{end}}
  </div>
</body>
</html>`))

var reservationHTMLTmpl = template.Must(template.New("reservation").Parse(mailHead + `
<body>
  <div class="container">
    <div class="header"><h1>Nouvelle demande de reservation</h1></div>
    <div class="content">
      <div class="field"><p><strong>Nom :</strong> {{.Name}}</p></div>
      <div class="field"><p><strong>Email :</strong> <a href="mailto:{{.Email}}">{{.Email}}</a></p></div>
      {{if .Phone}}<div class="field"><p><strong>Telephone :</strong> {{.Phone}}</p></div>{{end}}
      {{if .ServiceName}}<div class="field"><p><strong>Soin :</strong> {{.ServiceName}}</p></div>{{end}}
      {{if .Inscription}}<div class="field"><p><strong>Inscription :</strong> {{.Inscription}}</p></div>{{end}}
      <div class="field"><p><strong>Recue le :</strong> {{.CreatedAt}}</p></div>
      <div class="field">
        <p><strong>Message :</strong></p>
        <div class="message">{{.MessageHTML}}</div>
      </div>
    </div>
    {{if .SiteName}}<p style="font-size: 12px; color: #a1a1aa;">{{.SiteName}}</p>{{end}}
  </div>
</body>
</html>`))
