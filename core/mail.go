package core

import (
	"bytes"
	"embed"
	htmltmpl "html/template"
	"net/mail"
	"path"
	"strings"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"
)

const tmplDir = "templates/email"

var (
	//go:embed templates/email/*
	tmplFS embed.FS

	templates map[string]*mailTemplate // {name: templates}
	tmplInit  sync.Once
	tmplErr   error
)

type (
	mailTemplate struct {
		text *texttmpl.Template
		html *htmltmpl.Template
	}

	EmailMessage struct {
		To      []mail.Address
		ReplyTo *mail.Address // e.g. the coach of a workshop
		Subject string

		// templated contents
		TemplateName string // without ext, also used as the message category
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	// TemplateContext is what the email templates are executed with.
	TemplateContext struct {
		AppName         string
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

// Render renders the text and html contents of the message from its template.
func (m *EmailMessage) Render(conf *Config) error {
	if m.TemplateName == "" {
		return nil
	}
	tmplInit.Do(parseTemplates)
	if tmplErr != nil {
		return tmplErr
	}
	tmpl, ok := templates[m.TemplateName]
	if !ok {
		return errors.Errorf("unknown email template %q", m.TemplateName)
	}

	data := TemplateContext{AppName: conf.AppName, FrontendBaseURL: conf.FrontendBaseURL, Data: m.TemplateData}
	var buff bytes.Buffer
	if tmpl.text != nil {
		if err := tmpl.text.Execute(&buff, data); err != nil {
			return errors.Wrap(err, "rendering text")
		}
		m.TextContent = strings.TrimSpace(buff.String())
	}
	if tmpl.html != nil {
		buff.Reset()
		if err := tmpl.html.Execute(&buff, data); err != nil {
			return errors.Wrap(err, "rendering html")
		}
		m.HTMLContent = buff.String()
	}
	return nil
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return m.TextContent != "" || m.HTMLContent != "" }

// parseTemplates loads every <name>.txt / <name>.gohtml pair, each one extending its _base template.
func parseTemplates() {
	templates = make(map[string]*mailTemplate)

	entries, err := tmplFS.ReadDir(tmplDir)
	if err != nil {
		tmplErr = errors.Wrap(err, "reading email templates")
		return
	}

	for _, e := range entries {
		fname := e.Name()
		ext := path.Ext(fname)
		if strings.HasPrefix(fname, "_") || !(ext == ".txt" || ext == ".gohtml") {
			continue
		}
		name := strings.TrimSuffix(fname, ext)
		tmpl, ok := templates[name]
		if !ok {
			tmpl = new(mailTemplate)
			templates[name] = tmpl
		}

		files := []string{path.Join(tmplDir, "_base"+ext), path.Join(tmplDir, fname)}
		if ext == ".txt" {
			tmpl.text, err = texttmpl.ParseFS(tmplFS, files...)
			if err == nil {
				tmpl.text.Option("missingkey=error")
			}
		} else {
			tmpl.html, err = htmltmpl.ParseFS(tmplFS, files...)
			if err == nil {
				tmpl.html.Option("missingkey=error")
			}
		}
		if err != nil {
			tmplErr = errors.Wrapf(err, "parsing %s", fname)
			return
		}
	}
}
