package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	texttpl "text/template"
)

//go:embed templates/*
var templatesFS embed.FS

// ConfirmVars son las variables del template de confirmación.
type ConfirmVars struct {
	Product string
	Name    string
	Email   string
	Link    string
	TTL     string
}

// Templates del mail de confirmación.
type Templates struct {
	ConfirmHTML *template.Template
	ConfirmTXT  *texttpl.Template
}

// LoadTemplates parsea los templates embebidos.
func LoadTemplates() (*Templates, error) {
	h, err := template.ParseFS(templatesFS, "templates/confirm.html")
	if err != nil {
		return nil, fmt.Errorf("email: parse confirm.html: %w", err)
	}
	t, err := texttpl.ParseFS(templatesFS, "templates/confirm.txt")
	if err != nil {
		return nil, fmt.Errorf("email: parse confirm.txt: %w", err)
	}
	return &Templates{ConfirmHTML: h, ConfirmTXT: t}, nil
}

// RenderConfirm devuelve html y texto.
func (t *Templates) RenderConfirm(v ConfirmVars) (string, string, error) {
	var hb, tb bytes.Buffer
	if err := t.ConfirmHTML.Execute(&hb, v); err != nil {
		return "", "", fmt.Errorf("email: render html: %w", err)
	}
	if err := t.ConfirmTXT.Execute(&tb, v); err != nil {
		return "", "", fmt.Errorf("email: render text: %w", err)
	}
	return hb.String(), tb.String(), nil
}
