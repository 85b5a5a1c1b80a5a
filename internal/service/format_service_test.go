package service

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/cfp-backend/internal/models"
	"github.com/ignatzorin/cfp-backend/internal/pkg/apperror"
	"github.com/ignatzorin/cfp-backend/internal/repository"
)

const seedYAML = `
formats:
  - name: Conférence
    duration: 45
    description: Talk classique
    icon: microphone
  - name: Quickie
    duration: 15
`

func TestParseSeed(t *testing.T) {
	formats, err := ParseSeed([]byte(seedYAML))
	require.NoError(t, err)
	require.Len(t, formats, 2)
	assert.Equal(t, "Conférence", formats[0].Name)
	assert.Equal(t, 45, formats[0].Duration)
	assert.Equal(t, "microphone", formats[0].Icon)

	_, err = ParseSeed([]byte("formats:\n  - name: Broken\n    duration: 0\n"))
	assert.Error(t, err)

	_, err = ParseSeed([]byte("formats: ["))
	assert.Error(t, err)
}

func TestFormatService_SeedFromFile(t *testing.T) {
	repo := new(mockFormatRepo)
	svc := NewFormatService(repo)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "formats.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))

	repo.On("CountByEvent", ctx, testEvent).Return(0, nil)
	repo.On("Create", ctx, mock.MatchedBy(func(f *models.Format) bool { return f.EventID == testEvent })).Return(nil)

	n, err := svc.SeedFromFile(ctx, testEvent, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	repo.AssertNumberOfCalls(t, "Create", 2)
}

func TestFormatService_SeedFromFile_Skips(t *testing.T) {
	repo := new(mockFormatRepo)
	svc := NewFormatService(repo)
	ctx := context.Background()

	n, err := svc.SeedFromFile(ctx, testEvent, "")
	require.NoError(t, err)
	assert.Zero(t, n)

	repo.On("CountByEvent", ctx, "seeded").Return(3, nil)
	n, err = svc.SeedFromFile(ctx, "seeded", "/does/not/matter.yaml")
	require.NoError(t, err)
	assert.Zero(t, n)

	repo.On("CountByEvent", ctx, testEvent).Return(0, nil)
	n, err = svc.SeedFromFile(ctx, testEvent, filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Zero(t, n)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFormatService_CreateValidates(t *testing.T) {
	repo := new(mockFormatRepo)
	svc := NewFormatService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, testEvent, FormatInput{Name: "Atelier", Duration: -1})
	assert.True(t, apperror.IsValidation(err))

	repo.On("Create", ctx, mock.AnythingOfType("*models.Format")).Return(nil)
	f, err := svc.Create(ctx, testEvent, FormatInput{Name: " Atelier ", Duration: 120})
	require.NoError(t, err)
	assert.Equal(t, "Atelier", f.Name)
	assert.Equal(t, testEvent, f.EventID)
}

func TestFormatService_UpdateMissing(t *testing.T) {
	repo := new(mockFormatRepo)
	svc := NewFormatService(repo)
	ctx := context.Background()

	repo.On("Update", ctx, mock.AnythingOfType("*models.Format")).Return(repository.ErrFormatNotFound)

	_, err := svc.Update(ctx, testEvent, 9, FormatInput{Name: "Quickie", Duration: 15})
	assert.Equal(t, http.StatusNotFound, apperror.StatusOf(err))
}
