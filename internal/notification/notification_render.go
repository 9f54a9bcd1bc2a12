package notification

import (
	"html/template"
	"strings"
)

var fragmentTmpl = template.Must(template.New("notification").Parse(
	`<strong>{{.Title}}</strong> {{.Message}}{{if .LinkURL}} <a href="{{.LinkURL}}" target="_blank" rel="noopener noreferrer">{{.LinkLabel}}</a>{{end}}`,
))

type fragment struct {
	Title     string
	Message   string
	LinkURL   string
	LinkLabel string
}

// RenderHTML builds the display fragment for a notification. Every field is
// escaped; only the link becomes markup.
func RenderHTML(n Notification) string {
	f := fragment{Title: n.Title, Message: n.Message, LinkLabel: linkLabel(n.Kind)}
	if n.LinkURL != nil {
		f.LinkURL = *n.LinkURL
	}

	var b strings.Builder
	if err := fragmentTmpl.Execute(&b, f); err != nil {
		return template.HTMLEscapeString(n.Message)
	}
	return b.String()
}

func linkLabel(kind string) string {
	switch kind {
	case KindRequestStatusChanged, KindRequestApprovedViaComplaint:
		return "Ver memorándum"
	default:
		return "Ver detalle"
	}
}

// RenderGreeting opens the e-mail copy of a notification.
func RenderGreeting(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "<p>Hola,</p>"
	}
	return "<p>Hola " + template.HTMLEscapeString(name) + ",</p>"
}
