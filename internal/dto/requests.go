package dto

// RegisterRequest тело POST /api/auth/register.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	Firstname string `json:"firstname" binding:"required"`
	Lastname  string `json:"lastname" binding:"required"`
	Language  string `json:"language"`
}

// LoginRequest тело POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest тело POST /api/auth/refresh и /api/auth/logout.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// UpdateProfileRequest тело PUT /api/users/me.
type UpdateProfileRequest struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Company   string `json:"company"`
	Bio       string `json:"bio"`
	Twitter   string `json:"twitter"`
	Language  string `json:"language"`
}

// SetRolesRequest тело PUT /api/admin/users/:id/roles.
type SetRolesRequest struct {
	Roles []string `json:"roles" binding:"required"`
}

// FormatRequest тело создания и изменения формата.
type FormatRequest struct {
	Name        string `json:"name" binding:"required"`
	Duration    int    `json:"duration" binding:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// ProposalRequest тело создания и изменения заявки.
// Cospeakers содержит email соспикеров.
type ProposalRequest struct {
	State       string   `json:"state"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	References  string   `json:"references"`
	Difficulty  int      `json:"difficulty"`
	Language    string   `json:"language"`
	Track       string   `json:"track"`
	FormatID    *int     `json:"formatId"`
	Cospeakers  []string `json:"cospeakers"`
}

// ProposalStateRequest тело PUT /api/admin/proposals/:id/state.
type ProposalStateRequest struct {
	State string `json:"state" binding:"required"`
}

// CommentRequest тело создания и изменения комментария.
type CommentRequest struct {
	Comment  string `json:"comment"`
	Internal bool   `json:"internal"`
}

// RateRequest тело создания и изменения оценки.
type RateRequest struct {
	Rate *int `json:"rate" binding:"required"`
	Love bool `json:"love"`
	Hate bool `json:"hate"`
}
