package service

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ignatzorin/cfp-backend/internal/logger"
	"github.com/ignatzorin/cfp-backend/internal/models"
	"github.com/ignatzorin/cfp-backend/internal/pkg/apperror"
	"github.com/ignatzorin/cfp-backend/internal/validation"
)

// FormatInput поля формата.
type FormatInput struct {
	Name        string
	Duration    int
	Description string
	Icon        string
}

// FormatService форматы выступлений мероприятия.
type FormatService struct {
	repo FormatRepository
}

func NewFormatService(repo FormatRepository) *FormatService {
	return &FormatService{repo: repo}
}

func (s *FormatService) List(ctx context.Context, eventID string) ([]models.Format, error) {
	formats, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if formats == nil {
		formats = []models.Format{}
	}
	return formats, nil
}

func (s *FormatService) Create(ctx context.Context, eventID string, in FormatInput) (*models.Format, error) {
	if err := validation.ValidateFormat(in.Name, in.Duration, in.Description); err != nil {
		return nil, validationErr(err)
	}
	f := &models.Format{
		EventID:     eventID,
		Name:        strings.TrimSpace(in.Name),
		Duration:    in.Duration,
		Description: in.Description,
		Icon:        in.Icon,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, mapRepoErr(err)
	}
	return f, nil
}

func (s *FormatService) Update(ctx context.Context, eventID string, id int, in FormatInput) (*models.Format, error) {
	if err := validation.ValidateFormat(in.Name, in.Duration, in.Description); err != nil {
		return nil, validationErr(err)
	}
	f := &models.Format{
		ID:          id,
		EventID:     eventID,
		Name:        strings.TrimSpace(in.Name),
		Duration:    in.Duration,
		Description: in.Description,
		Icon:        in.Icon,
	}
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, mapRepoErr(err)
	}
	return f, nil
}

func (s *FormatService) Delete(ctx context.Context, eventID string, id int) error {
	return mapRepoErr(s.repo.Delete(ctx, eventID, id))
}

// seedFile формат YAML файла с форматами по умолчанию.
type seedFile struct {
	Formats []models.Format `yaml:"formats"`
}

// ParseSeed читает форматы из YAML.
func ParseSeed(data []byte) ([]models.Format, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("format seed: %w", err)
	}
	for i, format := range f.Formats {
		if err := validation.ValidateFormat(format.Name, format.Duration, format.Description); err != nil {
			return nil, fmt.Errorf("format seed: запись %d: %w", i+1, err)
		}
	}
	return f.Formats, nil
}

// SeedFromFile создаёт форматы из файла, если у мероприятия их ещё нет. Возвращает число созданных.
func (s *FormatService) SeedFromFile(ctx context.Context, eventID, path string) (int, error) {
	if path == "" {
		return 0, nil
	}

	count, err := s.repo.CountByEvent(ctx, eventID)
	if err != nil {
		return 0, mapRepoErr(err)
	}
	if count > 0 {
		return 0, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Log.WithField("path", path).Warn("файл с форматами не найден, пропускаем")
			return 0, nil
		}
		return 0, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось прочитать файл с форматами")
	}

	formats, err := ParseSeed(data)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	for i := range formats {
		formats[i].EventID = eventID
		if err := s.repo.Create(ctx, &formats[i]); err != nil {
			return i, mapRepoErr(err)
		}
	}

	logger.Log.WithFields(logrus.Fields{
		"event_id": eventID,
		"count":    len(formats),
	}).Info("форматы созданы из файла")
	return len(formats), nil
}
