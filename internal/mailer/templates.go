package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

const (
	TemplateUserWelcome      = "User Welcome Email"
	TemplateInstallerWelcome = "Installer Welcome Email"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type templateSpec struct {
	file          string
	subjectFormat string
	subjectName   string // fallback display name in the subject
	greetingName  string // fallback display name in the body
}

var templateSpecs = map[string]templateSpec{
	TemplateUserWelcome: {
		file:          "user_welcome.html",
		subjectFormat: "Welcome to Rezillion, %s!",
		subjectName:   "User",
		greetingName:  "User",
	},
	TemplateInstallerWelcome: {
		file:          "installer_welcome.html",
		subjectFormat: "Welcome to the Rezillion Installer Network, %s!",
		subjectName:   "Partner",
		greetingName:  "there",
	},
}

// Rendered is a template filled in for one recipient
type Rendered struct {
	TemplateName string
	Subject      string
	HTML         string
}

// TemplateNames lists the selectable templates
func TemplateNames() []string {
	return []string{TemplateUserWelcome, TemplateInstallerWelcome}
}

// Render fills in the named template. Unknown names fall back to the user welcome template.
func Render(templateName, displayName string) (Rendered, error) {
	spec, ok := templateSpecs[templateName]
	if !ok {
		templateName = TemplateUserWelcome
		spec = templateSpecs[TemplateUserWelcome]
	}

	subjectName, greetingName := displayName, displayName
	if displayName == "" {
		subjectName, greetingName = spec.subjectName, spec.greetingName
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, spec.file, struct{ Name string }{greetingName}); err != nil {
		return Rendered{}, fmt.Errorf("failed to render template %q: %w", templateName, err)
	}

	return Rendered{
		TemplateName: templateName,
		Subject:      fmt.Sprintf(spec.subjectFormat, subjectName),
		HTML:         buf.String(),
	}, nil
}
