package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sync"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/base.html"

// layout fields are read by base.html.
type layout struct {
	Title      string
	Heading    string
	Subheading string
}

type hotLeadView struct {
	layout
	OrganizationName string
	CompanyName      string
	LeadID           string
	Score            int
}

var (
	parsedMu sync.Mutex
	parsed   = map[string]*template.Template{}
)

// lookupTemplate parses page together with the layout once per process.
func lookupTemplate(page string) (*template.Template, error) {
	parsedMu.Lock()
	defer parsedMu.Unlock()

	if tmpl, ok := parsed[page]; ok {
		return tmpl, nil
	}
	tmpl, err := template.ParseFS(templateFS, layoutFile, "templates/"+page)
	if err != nil {
		return nil, fmt.Errorf("parse email template %s: %w", page, err)
	}
	parsed[page] = tmpl
	return tmpl, nil
}

func render(page string, view any) (string, error) {
	tmpl, err := lookupTemplate(page)
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	if err := tmpl.ExecuteTemplate(&out, "email", view); err != nil {
		return "", fmt.Errorf("render email template %s: %w", page, err)
	}
	return out.String(), nil
}
