package common

import (
	"errors"

	"github.com/lib/pq"
)

// ErrAlreadyExists нарушение уникальности (email, оценка ревьюера).
var ErrAlreadyExists = errors.New("entity already exists")

const pgUniqueViolation = "23505"

// IsUniqueViolation сообщает о нарушении уникального индекса.
func IsUniqueViolation(err error) bool {
	return pgCode(err) == pgUniqueViolation
}

func pgCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
