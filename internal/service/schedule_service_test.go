package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/cfp-backend/internal/models"
	"github.com/ignatzorin/cfp-backend/internal/pkg/apperror"
)

func scheduledTalks() []*models.Proposal {
	john := &models.User{ID: 1, Firstname: "John", Lastname: "Doe", Email: "john.doe@gmail.com"}
	t1 := &models.Proposal{ID: 1, Name: "A talk 1", Description: "A description", State: models.ProposalStateConfirmed, SpeakerID: 1, Speaker: john}
	t2 := &models.Proposal{ID: 2, Name: "A talk 2", Description: "A description", State: models.ProposalStateConfirmed, SpeakerID: 1, Speaker: john,
		Cospeakers: []*models.User{
			{ID: 10, Firstname: "Johnny", Lastname: "Deep"},
			{ID: 11, Firstname: "Alain", Lastname: "Connu"},
		}}
	t3 := &models.Proposal{ID: 3, Name: "A talk 3", State: models.ProposalStateConfirmed, SpeakerID: 1, Speaker: john}
	return []*models.Proposal{t1, t2, t3}
}

func TestScheduleService_List(t *testing.T) {
	proposals := new(mockProposalRepo)
	svc := NewScheduleService(proposals, new(mockMailer), "/media")
	ctx := context.Background()

	proposals.On("ListByEvent", ctx, testEvent, []string{models.ProposalStateConfirmed}).Return(scheduledTalks(), nil)

	list, err := svc.List(ctx, testEvent, "confirmed")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "John Doe", list[0].Speakers)
	assert.Contains(t, list[1].Speakers, "John Doe")
	assert.Contains(t, list[1].Speakers, "Johnny Deep")
	assert.Contains(t, list[1].Speakers, "Alain Connu")
	assert.Equal(t, "John Doe", list[2].Speakers)
}

func TestScheduleService_Speakers_Distinct(t *testing.T) {
	proposals := new(mockProposalRepo)
	svc := NewScheduleService(proposals, new(mockMailer), "/media")
	ctx := context.Background()

	proposals.On("ListByEvent", ctx, testEvent, []string{models.ProposalStateAccepted}).Return(scheduledTalks(), nil)

	speakers, err := svc.Speakers(ctx, testEvent, "accepted")
	require.NoError(t, err)
	require.Len(t, speakers, 1)
	assert.Equal(t, "John", speakers[0].Firstname)
}

func TestScheduleService_List_UnknownState(t *testing.T) {
	svc := NewScheduleService(new(mockProposalRepo), new(mockMailer), "")

	_, err := svc.List(context.Background(), testEvent, "nope")
	assert.True(t, apperror.IsValidation(err))
}

func scheduleItem(id int, start string) models.Schedule {
	ldt, err := models.ParseLocalDateTime(start)
	if err != nil {
		panic(err)
	}
	return models.Schedule{ID: id, EventStart: &ldt, Venue: "Amphi A"}
}

func TestScheduleService_Update_WithSendMail(t *testing.T) {
	proposals := new(mockProposalRepo)
	mailer := new(mockMailer)
	svc := NewScheduleService(proposals, mailer, "")
	ctx := context.Background()

	talk := &models.Proposal{ID: 1, State: models.ProposalStateAccepted, Format: &models.Format{Name: "Talk", Duration: 45}}
	refused := &models.Proposal{ID: 2, State: models.ProposalStateRefused}
	proposals.On("ListByEvent", ctx, testEvent, schedulableStates).Return([]*models.Proposal{talk, refused}, nil)
	proposals.On("UpdateSchedules", ctx, mock.MatchedBy(func(list []*models.Proposal) bool {
		return len(list) == 1 && list[0].ID == 1
	})).Return(nil)
	mailer.On("SendSelected", mock.Anything, talk, "fr").Return(nil)
	mailer.On("SendNotSelected", mock.Anything, refused, "fr").Return(nil)

	out, err := svc.Update(ctx, testEvent, []models.Schedule{scheduleItem(1, "2016-02-19T19:35:45.977")}, true, "fr")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "2016-02-19T19:35:45.977", out[0].EventStart.String())
	assert.Equal(t, "2016-02-19T20:20:45.977", out[0].EventEnd.String())
	assert.Equal(t, "Amphi A", out[0].Venue)
	assert.Equal(t, models.ProposalStateConfirmed, talk.State)
	mailer.AssertExpectations(t)
}

func TestScheduleService_Update_WithoutSendMail(t *testing.T) {
	proposals := new(mockProposalRepo)
	mailer := new(mockMailer)
	svc := NewScheduleService(proposals, mailer, "")
	ctx := context.Background()

	talk := &models.Proposal{ID: 1, State: models.ProposalStateAccepted}
	proposals.On("ListByEvent", ctx, testEvent, schedulableStates).Return([]*models.Proposal{talk}, nil)
	proposals.On("UpdateSchedules", ctx, mock.Anything).Return(nil)

	item := scheduleItem(1, "2016-02-19T19:35:45")
	end := models.LocalDateTime{Time: time.Date(2016, 2, 19, 20, 0, 0, 0, time.UTC)}
	item.EventEnd = &end

	out, err := svc.Update(ctx, testEvent, []models.Schedule{item}, false, "fr")
	require.NoError(t, err)
	assert.Equal(t, "2016-02-19T20:00:00.000", out[0].EventEnd.String())
	assert.Empty(t, mailer.Calls)
}

func TestScheduleService_Update_UnknownTalk(t *testing.T) {
	proposals := new(mockProposalRepo)
	svc := NewScheduleService(proposals, new(mockMailer), "")
	ctx := context.Background()

	proposals.On("ListByEvent", ctx, testEvent, schedulableStates).Return([]*models.Proposal{}, nil)

	_, err := svc.Update(ctx, testEvent, []models.Schedule{scheduleItem(42, "2016-02-19T19:35:45")}, true, "fr")
	assert.Equal(t, http.StatusNotFound, apperror.StatusOf(err))
	proposals.AssertNotCalled(t, "UpdateSchedules", mock.Anything, mock.Anything)
}

func TestScheduleService_Update_EndBeforeStart(t *testing.T) {
	proposals := new(mockProposalRepo)
	svc := NewScheduleService(proposals, new(mockMailer), "")
	ctx := context.Background()

	proposals.On("ListByEvent", ctx, testEvent, schedulableStates).Return([]*models.Proposal{{ID: 1}}, nil)

	item := scheduleItem(1, "2016-02-19T19:35:45")
	end := models.LocalDateTime{Time: time.Date(2016, 2, 19, 18, 0, 0, 0, time.UTC)}
	item.EventEnd = &end

	_, err := svc.Update(ctx, testEvent, []models.Schedule{item}, false, "fr")
	assert.True(t, apperror.IsValidation(err))
}

func TestScheduleService_Notify(t *testing.T) {
	proposals := new(mockProposalRepo)
	mailer := new(mockMailer)
	svc := NewScheduleService(proposals, mailer, "")
	ctx := context.Background()

	talks := []*models.Proposal{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}, {ID: 5}}
	proposals.On("ListByEvent", ctx, testEvent, []string{models.ProposalStateAccepted}).Return(talks, nil)
	mailer.On("SendSelected", mock.Anything, mock.AnythingOfType("*models.Proposal"), "en").Return(nil)

	n, err := svc.Notify(ctx, testEvent, "en")
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	mailer.AssertNumberOfCalls(t, "SendSelected", 5)
}
