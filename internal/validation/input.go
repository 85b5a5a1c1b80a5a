package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MaxNameLength            = 100
	MaxCompanyLength         = 200
	MaxBioLength             = 5000
	MaxTwitterLength         = 100
	MinProposalNameLength    = 3
	MaxProposalNameLength    = 200
	MaxProposalDescLength    = 10000
	MaxReferencesLength      = 5000
	MaxTrackLength           = 100
	MinCommentLength         = 1
	MaxCommentLength         = 5000
	MinDifficulty            = 1
	MaxDifficulty            = 3
	MaxFormatNameLength      = 100
	MaxFormatDescLength      = 2000
	MaxVenueLength           = 200
	MaxFormatDurationMinutes = 24 * 60
)

var (
	emailLocalRegex  = regexp.MustCompile(`^[a-z0-9._+-]+$`)
	emailDomainRegex = regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	twitterRegex     = regexp.MustCompile(`^@?[A-Za-z0-9_]{1,15}$`)
)

// ValidateLength проверяет длину строки в символах.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart, domainPart := parts[0], parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}
	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}
	if !emailLocalRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}
	if !emailDomainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidatePersonName проверяет имя или фамилию.
func ValidatePersonName(fieldName, value string) error {
	if err := ValidateNonEmpty(fieldName, value); err != nil {
		return err
	}
	return ValidateLength(fieldName, strings.TrimSpace(value), 1, MaxNameLength)
}

// ValidateProfile проверяет необязательные поля профиля спикера.
func ValidateProfile(company, bio, twitter string) error {
	if err := ValidateLength("компания", company, 0, MaxCompanyLength); err != nil {
		return err
	}
	if err := ValidateLength("биография", bio, 0, MaxBioLength); err != nil {
		return err
	}
	twitter = strings.TrimSpace(twitter)
	if twitter != "" && !twitterRegex.MatchString(twitter) {
		return fmt.Errorf("некорректный twitter")
	}
	return nil
}

// ValidateLanguage допускает пустое значение или один из языков писем.
func ValidateLanguage(lang string, allowed []string) error {
	if lang == "" {
		return nil
	}
	for _, a := range allowed {
		if a == lang {
			return nil
		}
	}
	return fmt.Errorf("язык %q не поддерживается", lang)
}

// ValidateProposal проверяет поля заявки.
func ValidateProposal(name, description, references string, difficulty int, track string) error {
	if err := ValidateNonEmpty("название доклада", name); err != nil {
		return err
	}
	if err := ValidateLength("название доклада", strings.TrimSpace(name), MinProposalNameLength, MaxProposalNameLength); err != nil {
		return err
	}
	if err := ValidateLength("описание доклада", description, 0, MaxProposalDescLength); err != nil {
		return err
	}
	if err := ValidateLength("ссылки", references, 0, MaxReferencesLength); err != nil {
		return err
	}
	if err := ValidateLength("трек", track, 0, MaxTrackLength); err != nil {
		return err
	}
	if difficulty < MinDifficulty || difficulty > MaxDifficulty {
		return fmt.Errorf("сложность должна быть от %d до %d", MinDifficulty, MaxDifficulty)
	}
	return nil
}

// ValidateComment проверяет текст комментария.
func ValidateComment(text string) error {
	if err := ValidateNonEmpty("комментарий", text); err != nil {
		return err
	}
	return ValidateLength("комментарий", text, MinCommentLength, MaxCommentLength)
}

// ValidateRate проверяет оценку: значение в диапазоне, love и hate взаимоисключающие.
func ValidateRate(rate, min, max int, love, hate bool) error {
	if rate < min || rate > max {
		return fmt.Errorf("оценка должна быть от %d до %d", min, max)
	}
	if love && hate {
		return fmt.Errorf("нельзя одновременно любить и ненавидеть доклад")
	}
	return nil
}

// ValidateFormat проверяет формат доклада.
func ValidateFormat(name string, duration int, description string) error {
	if err := ValidateNonEmpty("название формата", name); err != nil {
		return err
	}
	if err := ValidateLength("название формата", name, 1, MaxFormatNameLength); err != nil {
		return err
	}
	if duration <= 0 || duration > MaxFormatDurationMinutes {
		return fmt.Errorf("длительность должна быть от 1 до %d минут", MaxFormatDurationMinutes)
	}
	return ValidateLength("описание формата", description, 0, MaxFormatDescLength)
}

// ValidateVenue проверяет название зала.
func ValidateVenue(venue string) error {
	return ValidateLength("зал", venue, 0, MaxVenueLength)
}
