package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/cfp-backend/internal/dto"
	"github.com/ignatzorin/cfp-backend/internal/http/handlers/common"
	"github.com/ignatzorin/cfp-backend/internal/pkg/apperror"
	"github.com/ignatzorin/cfp-backend/internal/service"
)

// UserHandler профиль текущего пользователя и управление ролями.
type UserHandler struct {
	users          UserService
	mediaBaseURL   string
	maxUploadBytes int64
}

func NewUserHandler(users UserService, mediaBaseURL string, maxUploadBytes int64) *UserHandler {
	return &UserHandler{users: users, mediaBaseURL: mediaBaseURL, maxUploadBytes: maxUploadBytes}
}

// Me обрабатывает GET /api/users/me.
func (h *UserHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewMeResponse(common.CurrentUser(c), h.mediaBaseURL))
}

// UpdateMe обрабатывает PUT /api/users/me.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondError(c, err)
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), common.CurrentUser(c), service.UpdateProfileInput{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Company:   req.Company,
		Bio:       req.Bio,
		Twitter:   req.Twitter,
		Language:  req.Language,
	})
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMeResponse(user, h.mediaBaseURL))
}

// UploadPhoto обрабатывает POST /api/users/me/photo (multipart, поле "file").
func (h *UserHandler) UploadPhoto(c *gin.Context) {
	// запас на заголовки multipart
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+1<<20)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.RespondError(c, apperror.Wrap(err, apperror.ErrCodeBadRequest, "файл обязателен"))
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		common.RespondError(c, apperror.New(apperror.ErrCodeBadRequest, "файл слишком большой"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		common.RespondError(c, apperror.Wrap(err, apperror.ErrCodeBadRequest, "не удалось прочитать файл"))
		return
	}
	defer file.Close()

	path, err := h.users.UploadPhoto(c.Request.Context(), common.CurrentUser(c), file)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.PhotoResponse{ImageURL: h.mediaBaseURL + "/" + path})
}

// List обрабатывает GET /api/admin/users.
func (h *UserHandler) List(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	page, err := h.users.List(c.Request.Context(), limit, offset)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// SetRoles обрабатывает PUT /api/admin/users/:id/roles.
func (h *UserHandler) SetRoles(c *gin.Context) {
	id, err := common.ParseIntParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	var req dto.SetRolesRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondError(c, err)
		return
	}

	user, err := h.users.SetRoles(c.Request.Context(), common.CurrentUser(c), id, req.Roles)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
