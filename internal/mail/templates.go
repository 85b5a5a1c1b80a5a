package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/Masterminds/sprig/v3"

	"github.com/ignatzorin/cfp-backend/internal/models"
)

// Имена шаблонов писем.
const (
	TemplateCommentAdmins  = "comment_admins"
	TemplateCommentSpeaker = "comment_speaker"
	TemplateSelected       = "selected"
	TemplateNotSelected    = "not_selected"
	TemplateSubmitted      = "submitted"
)

// Поддерживаемые языки писем.
var Locales = []string{"fr", "en"}

var templateNames = []string{
	TemplateCommentAdmins,
	TemplateCommentSpeaker,
	TemplateSelected,
	TemplateNotSelected,
	TemplateSubmitted,
}

//go:embed templates
var templatesFS embed.FS

// MailData данные, доступные во всех шаблонах.
type MailData struct {
	Talk        *models.Proposal
	Author      *models.User
	Recipient   *models.User
	Comment     string
	Internal    bool
	Speakers    string
	Start       string
	End         string
	ProposalURL string
}

// Rendered готовое письмо.
type Rendered struct {
	Subject string
	Body    string
}

// Templates набор шаблонов по языкам. Каждый файл задаёт блоки "subject" и "body".
type Templates struct {
	defaultLocale string
	sets          map[string]map[string]*template.Template
}

// LoadTemplates разбирает вшитые шаблоны для всех языков.
func LoadTemplates(defaultLocale string) (*Templates, error) {
	t := &Templates{
		defaultLocale: defaultLocale,
		sets:          make(map[string]map[string]*template.Template, len(Locales)),
	}

	for _, locale := range Locales {
		t.sets[locale] = make(map[string]*template.Template, len(templateNames))
		for _, name := range templateNames {
			path := fmt.Sprintf("templates/%s/%s.html", locale, name)
			tpl, err := template.New(name).Funcs(sprig.FuncMap()).ParseFS(templatesFS, path)
			if err != nil {
				return nil, fmt.Errorf("mail: шаблон %s: %w", path, err)
			}
			t.sets[locale][name] = tpl
		}
	}

	if _, ok := t.sets[defaultLocale]; !ok {
		return nil, fmt.Errorf("mail: неизвестный язык по умолчанию %q", defaultLocale)
	}
	return t, nil
}

// Render выполняет шаблон; неизвестный язык заменяется языком по умолчанию.
func (t *Templates) Render(locale, name string, data MailData) (*Rendered, error) {
	set, ok := t.sets[strings.ToLower(locale)]
	if !ok {
		set = t.sets[t.defaultLocale]
	}
	tpl, ok := set[name]
	if !ok {
		return nil, fmt.Errorf("mail: шаблон %q не найден", name)
	}

	var subject, body bytes.Buffer
	if err := tpl.ExecuteTemplate(&subject, "subject", data); err != nil {
		return nil, fmt.Errorf("mail: тема %s: %w", name, err)
	}
	if err := tpl.ExecuteTemplate(&body, "body", data); err != nil {
		return nil, fmt.Errorf("mail: тело %s: %w", name, err)
	}

	return &Rendered{
		// тема уходит в заголовок, html-сущности там не нужны
		Subject: strings.TrimSpace(html.UnescapeString(subject.String())),
		Body:    body.String(),
	}, nil
}
