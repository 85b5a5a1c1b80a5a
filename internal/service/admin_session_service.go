package service

import (
	"context"
	"errors"
	"sort"

	"github.com/ignatzorin/cfp-backend/internal/logger"
	"github.com/ignatzorin/cfp-backend/internal/models"
	"github.com/ignatzorin/cfp-backend/internal/pkg/apperror"
	"github.com/ignatzorin/cfp-backend/internal/spreadsheet"
)

var errSessionRowNotFound = apperror.New(apperror.ErrCodeNotFound, "сессия не найдена в таблице")

// AdminSessionService сессии из Google таблицы для администраторов.
type AdminSessionService struct {
	sheet     SessionSheet
	viewed    ViewedSessionRepository
	proposals ProposalRepository
}

func NewAdminSessionService(sheet SessionSheet, viewed ViewedSessionRepository, proposals ProposalRepository) *AdminSessionService {
	return &AdminSessionService{sheet: sheet, viewed: viewed, proposals: proposals}
}

// mapSheetErr переводит ошибки таблицы в AppError.
func mapSheetErr(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *spreadsheet.APIError
	switch {
	case errors.Is(err, spreadsheet.ErrRowNotFound):
		return errSessionRowNotFound
	case errors.Is(err, spreadsheet.ErrNotConfigured):
		return apperror.Wrap(err, apperror.ErrCodeUpstream, "Google таблица не настроена")
	case errors.As(err, &apiErr):
		return apperror.Wrap(err, apperror.ErrCodeUpstream, "ошибка Google Sheets API")
	default:
		return apperror.Wrap(err, apperror.ErrCodeUpstream, "не удалось прочитать Google таблицу")
	}
}

// Sessions поданные сессии с отметкой просмотра текущим администратором.
func (s *AdminSessionService) Sessions(ctx context.Context, actor *models.User) ([]models.RowResponse, error) {
	return s.filtered(ctx, actor, false)
}

// Drafts черновики из таблицы.
func (s *AdminSessionService) Drafts(ctx context.Context, actor *models.User) ([]models.RowResponse, error) {
	return s.filtered(ctx, actor, true)
}

func (s *AdminSessionService) filtered(ctx context.Context, actor *models.User, drafts bool) ([]models.RowResponse, error) {
	rows, err := s.sheet.Rows(ctx)
	if err != nil {
		return nil, mapSheetErr(err)
	}

	viewed := map[int64]struct{}{}
	if actor != nil {
		viewed, err = s.viewed.ViewedBy(ctx, actor.ID)
		if err != nil {
			return nil, mapRepoErr(err)
		}
	}

	out := make([]models.RowResponse, 0, len(rows))
	for _, row := range rows {
		if row.Draft != drafts {
			continue
		}
		_, seen := viewed[row.Added]
		out = append(out, models.RowResponse{Row: row, Viewed: seen})
	}
	return out, nil
}

// Ordered ключи поданных сессий от новых к старым.
func (s *AdminSessionService) Ordered(ctx context.Context) ([]int64, error) {
	rows, err := s.sheet.Rows(ctx)
	if err != nil {
		return nil, mapSheetErr(err)
	}
	out := make([]int64, 0, len(rows))
	for _, row := range rows {
		if !row.Draft {
			out = append(out, row.Added)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] > out[j] })
	return out, nil
}

// Get одна строка по ключу added в том же виде, что и в списке.
func (s *AdminSessionService) Get(ctx context.Context, actor *models.User, added int64) (*models.RowResponse, error) {
	rows, err := s.sheet.Rows(ctx)
	if err != nil {
		return nil, mapSheetErr(err)
	}
	for i := range rows {
		if rows[i].Added != added {
			continue
		}
		resp := &models.RowResponse{Row: rows[i]}
		if actor != nil {
			viewed, err := s.viewed.ViewedBy(ctx, actor.ID)
			if err != nil {
				return nil, mapRepoErr(err)
			}
			_, resp.Viewed = viewed[added]
		}
		return resp, nil
	}
	return nil, errSessionRowNotFound
}

// Delete удаляет строку из листа.
func (s *AdminSessionService) Delete(ctx context.Context, added int64) error {
	return mapSheetErr(s.sheet.Delete(ctx, added))
}

// MarkViewed отмечает строку просмотренной текущим пользователем.
func (s *AdminSessionService) MarkViewed(ctx context.Context, actor *models.User, added int64) (*models.AdminViewedSession, error) {
	if actor == nil {
		return nil, apperror.ErrUserNotFound
	}
	v, err := s.viewed.MarkViewed(ctx, added, actor.ID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return v, nil
}

// Sync дописывает в лист поданные заявки, которых там ещё нет. Возвращает число добавленных строк.
func (s *AdminSessionService) Sync(ctx context.Context, eventID string) (int, error) {
	proposals, err := s.proposals.ListByEvent(ctx, eventID, []string{models.ProposalStateConfirmed})
	if err != nil {
		return 0, mapRepoErr(err)
	}
	rows, err := s.sheet.Rows(ctx)
	if err != nil {
		return 0, mapSheetErr(err)
	}

	present := make(map[int64]struct{}, len(rows))
	for _, row := range rows {
		present[row.Added] = struct{}{}
	}

	var missing []models.Row
	for _, p := range proposals {
		if _, ok := present[p.AddedMillis()]; ok {
			continue
		}
		missing = append(missing, spreadsheet.RowFromProposal(p))
	}
	if len(missing) == 0 {
		return 0, nil
	}
	if err := s.sheet.Append(ctx, missing); err != nil {
		return 0, mapSheetErr(err)
	}

	logger.For("sheet_sync").WithField("event_id", eventID).WithField("count", len(missing)).Info("заявки добавлены в таблицу")
	return len(missing), nil
}
