package service

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/cfp-backend/internal/models"
	"github.com/ignatzorin/cfp-backend/internal/pkg/apperror"
	"github.com/ignatzorin/cfp-backend/internal/storage"
)

type mockPhotoStore struct {
	mock.Mock
}

func (m *mockPhotoStore) Save(ctx context.Context, userID int, r io.Reader) (string, int64, error) {
	args := m.Called(ctx, userID, r)
	return args.String(0), int64(args.Int(1)), args.Error(2)
}

func (m *mockPhotoStore) Delete(ctx context.Context, relativePath string) error {
	return m.Called(ctx, relativePath).Error(0)
}

type recordingCloser struct {
	disconnected []int
}

func (r *recordingCloser) DisconnectUser(userID int) {
	r.disconnected = append(r.disconnected, userID)
}

func TestUserService_UpdateProfile(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewUserService(repo, new(mockPhotoStore))
	ctx := context.Background()

	repo.On("UpdateProfile", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Firstname == "Jane" && u.Company == "SII" && u.Language == "en"
	})).Return(nil)

	u, err := svc.UpdateProfile(ctx, speakerUser, UpdateProfileInput{
		Firstname: " Jane ", Lastname: "Doe", Company: "SII", Twitter: "@jane", Language: "en",
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane", u.Firstname)
	assert.Equal(t, "John", speakerUser.Firstname, "исходный пользователь не меняется")
}

func TestUserService_UpdateProfile_Invalid(t *testing.T) {
	svc := NewUserService(new(mockUserRepo), new(mockPhotoStore))
	ctx := context.Background()

	_, err := svc.UpdateProfile(ctx, speakerUser, UpdateProfileInput{Firstname: "", Lastname: "Doe"})
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.UpdateProfile(ctx, speakerUser, UpdateProfileInput{Firstname: "J", Lastname: "D", Language: "de"})
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.UpdateProfile(ctx, speakerUser, UpdateProfileInput{Firstname: "J", Lastname: "D", Twitter: "not a handle"})
	assert.True(t, apperror.IsValidation(err))
}

func TestUserService_UploadPhoto_ReplacesOld(t *testing.T) {
	repo := new(mockUserRepo)
	photos := new(mockPhotoStore)
	svc := NewUserService(repo, photos)
	ctx := context.Background()

	old := "1/1_old.png"
	user := &models.User{ID: 1, ImagePath: &old}
	body := bytes.NewReader([]byte("img"))

	photos.On("Save", ctx, 1, body).Return("1/1_new.png", 3, nil)
	repo.On("UpdateImagePath", ctx, 1, "1/1_new.png").Return(nil)
	photos.On("Delete", ctx, old).Return(nil)

	path, err := svc.UploadPhoto(ctx, user, body)
	require.NoError(t, err)
	assert.Equal(t, "1/1_new.png", path)
	photos.AssertExpectations(t)
}

func TestUserService_UploadPhoto_Rejected(t *testing.T) {
	photos := new(mockPhotoStore)
	svc := NewUserService(new(mockUserRepo), photos)
	ctx := context.Background()

	photos.On("Save", ctx, 1, mock.Anything).Return("", 0, storage.ErrUnsupportedType).Once()
	photos.On("Save", ctx, 1, mock.Anything).Return("", 0, storage.ErrTooLarge).Once()

	_, err := svc.UploadPhoto(ctx, &models.User{ID: 1}, bytes.NewReader(nil))
	assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))
	_, err = svc.UploadPhoto(ctx, &models.User{ID: 1}, bytes.NewReader(nil))
	assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))
}

func TestUserService_UploadPhoto_DBFailureRemovesFile(t *testing.T) {
	repo := new(mockUserRepo)
	photos := new(mockPhotoStore)
	svc := NewUserService(repo, photos)
	ctx := context.Background()

	photos.On("Save", ctx, 1, mock.Anything).Return("1/1_new.png", 3, nil)
	repo.On("UpdateImagePath", ctx, 1, "1/1_new.png").Return(assert.AnError)
	photos.On("Delete", ctx, "1/1_new.png").Return(nil)

	_, err := svc.UploadPhoto(ctx, &models.User{ID: 1}, bytes.NewReader(nil))
	assert.Equal(t, http.StatusInternalServerError, apperror.StatusOf(err))
	photos.AssertCalled(t, "Delete", ctx, "1/1_new.png")
}

func TestUserService_List_ClampsLimit(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewUserService(repo, new(mockPhotoStore))
	ctx := context.Background()

	repo.On("List", ctx, 50, 0).Return(nil, nil)
	repo.On("Count", ctx).Return(0, nil)

	page, err := svc.List(ctx, 1000, -5)
	require.NoError(t, err)
	assert.NotNil(t, page.Users)
	assert.Equal(t, 0, page.Total)
}

func TestUserService_SetRoles(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewUserService(repo, new(mockPhotoStore))
	ctx := context.Background()

	target := &models.User{ID: 20, Roles: []string{models.RoleAuthenticated}}
	adminTarget := &models.User{ID: 21, Roles: []string{models.RoleAdmin}}
	repo.On("GetByID", ctx, 20).Return(target, nil)
	repo.On("GetByID", ctx, 21).Return(adminTarget, nil)
	repo.On("UpdateRoles", ctx, mock.Anything, mock.Anything).Return(nil)

	tests := []struct {
		name   string
		actor  *models.User
		target int
		roles  []string
		status int
	}{
		{"reviewer cannot manage roles", reviewer, 20, []string{"REVIEWER"}, http.StatusForbidden},
		{"admin grants reviewer", admin, 20, []string{"reviewer"}, 0},
		{"admin cannot grant admin", admin, 20, []string{"ADMIN"}, http.StatusForbidden},
		{"admin cannot touch another admin", admin, 21, []string{"REVIEWER"}, http.StatusForbidden},
		{"owner grants admin", owner, 20, []string{"ADMIN"}, 0},
		{"unknown role", owner, 20, []string{"ROOT"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := svc.SetRoles(ctx, tt.actor, tt.target, tt.roles)
			if tt.status == 0 {
				require.NoError(t, err)
				assert.Contains(t, []string(u.Roles), models.RoleAuthenticated)
				return
			}
			assert.Equal(t, tt.status, apperror.StatusOf(err))
		})
	}
}

func TestUserService_SetRoles_RevokedReviewerDisconnected(t *testing.T) {
	repo := new(mockUserRepo)
	conns := &recordingCloser{}
	svc := NewUserService(repo, new(mockPhotoStore)).WithConnections(conns)
	ctx := context.Background()

	repo.On("GetByID", ctx, 30).Return(&models.User{ID: 30, Roles: []string{models.RoleReviewer}}, nil).Once()
	repo.On("GetByID", ctx, 31).Return(&models.User{ID: 31, Roles: []string{models.RoleAuthenticated}}, nil).Once()
	repo.On("UpdateRoles", ctx, mock.Anything, mock.Anything).Return(nil)

	_, err := svc.SetRoles(ctx, admin, 30, nil)
	require.NoError(t, err)
	_, err = svc.SetRoles(ctx, admin, 31, []string{"REVIEWER"})
	require.NoError(t, err)

	assert.Equal(t, []int{30}, conns.disconnected)
}
