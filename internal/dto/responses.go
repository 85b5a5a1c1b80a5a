package dto

import "github.com/ignatzorin/cfp-backend/internal/models"

// ErrorResponse стандартный ответ с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// SuccessResponse стандартный ответ без сущности.
type SuccessResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// CountResponse ответ операций, возвращающих количество обработанных записей.
type CountResponse struct {
	Count int `json:"count"`
}

// PhotoResponse ответ на загрузку фотографии.
type PhotoResponse struct {
	ImageURL string `json:"imageUrl"`
}

// MeResponse профиль текущего пользователя.
type MeResponse struct {
	*models.User
	ImageURL string `json:"imageUrl,omitempty"`
}

// NewMeResponse собирает профиль с публичной ссылкой на фото.
func NewMeResponse(u *models.User, mediaBaseURL string) MeResponse {
	return MeResponse{User: u, ImageURL: u.Profile(mediaBaseURL).ImageURL}
}
