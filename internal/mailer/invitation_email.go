package mailer

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"
)

// InvitationEmail holds the values rendered into an invitation message.
type InvitationEmail struct {
	To            string
	WorkspaceName string
	InviterName   string
	Role          string
	InviteURL     string
	ExpiresAt     time.Time
}

const invitationHTML = `<!DOCTYPE html>
<html>
  <body style="font-family: sans-serif; color: #1f2937;">
    <h2>You're invited to join {{.WorkspaceName}}</h2>
    <p><strong>{{.InviterName}}</strong> has invited you to collaborate on <strong>{{.WorkspaceName}}</strong> as {{.Role}}.</p>
    <p><a href="{{.InviteURL}}" style="background: #2563eb; color: #ffffff; padding: 10px 18px; border-radius: 6px; text-decoration: none;">Accept invitation</a></p>
    <p>Or paste this link into your browser:<br>{{.InviteURL}}</p>
    <p style="color: #6b7280; font-size: 12px;">This invitation expires on {{.ExpiresAt.Format "January 2, 2006"}}. If you were not expecting it you can ignore this email.</p>
  </body>
</html>
`

const invitationText = `{{.InviterName}} has invited you to join {{.WorkspaceName}} on Team Nexus as {{.Role}}.

Accept the invitation: {{.InviteURL}}

This invitation expires on {{.ExpiresAt.Format "January 2, 2006"}}.
`

var (
	invitationHTMLTmpl = htmltemplate.Must(htmltemplate.New("invitation.html").Parse(invitationHTML))
	invitationTextTmpl = texttemplate.Must(texttemplate.New("invitation.txt").Parse(invitationText))
)

// RenderInvitation builds the invitation message for data.
func RenderInvitation(data InvitationEmail) (Message, error) {
	var html, text bytes.Buffer
	if err := invitationHTMLTmpl.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("failed to render invitation html: %w", err)
	}
	if err := invitationTextTmpl.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("failed to render invitation text: %w", err)
	}

	return Message{
		To:       data.To,
		Subject:  fmt.Sprintf("%s invited you to join %s on Team Nexus", data.InviterName, data.WorkspaceName),
		HTMLBody: html.String(),
		TextBody: text.String(),
	}, nil
}
