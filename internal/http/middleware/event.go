package middleware

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/ignatzorin/cfp-backend/internal/mail"
	"github.com/ignatzorin/cfp-backend/internal/pkg/apperror"
)

const (
	ContextEventKey  = "eventID"
	ContextLocaleKey = "locale"

	// EventHeader заголовок выбора мероприятия.
	EventHeader = "X-Event-Id"
)

var eventSlug = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// EventResolver определяет текущее мероприятие: заголовок X-Event-Id или defaultID.
func EventResolver(defaultID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID := strings.ToLower(strings.TrimSpace(c.GetHeader(EventHeader)))
		if eventID == "" {
			eventID = defaultID
		}
		if !eventSlug.MatchString(eventID) {
			abort(c, apperror.New(apperror.ErrCodeBadRequest, "некорректный идентификатор мероприятия"))
			return
		}
		c.Set(ContextEventKey, eventID)
		c.Next()
	}
}

// LocaleResolver выбирает язык писем по Accept-Language среди поддерживаемых.
func LocaleResolver(defaultLocale string) gin.HandlerFunc {
	tags := make([]language.Tag, 0, len(mail.Locales)+1)
	tags = append(tags, language.Make(defaultLocale))
	for _, l := range mail.Locales {
		if l != defaultLocale {
			tags = append(tags, language.Make(l))
		}
	}
	matcher := language.NewMatcher(tags)

	return func(c *gin.Context) {
		c.Set(ContextLocaleKey, matchLocale(matcher, c.GetHeader("Accept-Language"), defaultLocale))
		c.Next()
	}
}

func matchLocale(matcher language.Matcher, header, fallback string) string {
	if header == "" {
		return fallback
	}
	accepted, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(accepted) == 0 {
		return fallback
	}
	tag, _, confidence := matcher.Match(accepted...)
	if confidence == language.No {
		return fallback
	}
	base, _ := tag.Base()
	return base.String()
}
