package repository

import "errors"

// Ошибки "не найдено" по сущностям. Сервисы превращают их в apperror.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEventNotFound    = errors.New("event not found")
	ErrFormatNotFound   = errors.New("format not found")
	ErrProposalNotFound = errors.New("proposal not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrRateNotFound     = errors.New("rate not found")
	ErrSessionNotFound  = errors.New("session not found")
)
