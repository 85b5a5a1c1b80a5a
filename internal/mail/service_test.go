package mail

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/cfp-backend/internal/models"
)

type sentMail struct {
	receivers []string
	subject   string
	body      string
}

type fakeQueue struct {
	sent []sentMail
	err  error
}

func (f *fakeQueue) Enqueue(receivers []string, subject, body string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, sentMail{receivers: receivers, subject: subject, body: body})
	return "id", nil
}

type fakeAdmins struct {
	users []*models.User
	err   error
}

func (f *fakeAdmins) ListByRoles(ctx context.Context, roles ...string) ([]*models.User, error) {
	return f.users, f.err
}

func newTestEmailing(t *testing.T, enabled bool, admins *fakeAdmins) (*EmailingService, *fakeQueue) {
	t.Helper()
	tpl, err := LoadTemplates("fr")
	require.NoError(t, err)
	q := &fakeQueue{}
	return NewEmailingService(tpl, q, admins, "http://cfp.local/", enabled), q
}

func TestEmailing_SendSelectedToAllSpeakers(t *testing.T) {
	svc, q := newTestEmailing(t, true, &fakeAdmins{})

	require.NoError(t, svc.SendSelected(context.Background(), sampleTalk(), "en"))

	require.Len(t, q.sent, 1)
	assert.Equal(t, []string{"john@example.com", "johnny@example.com"}, q.sent[0].receivers)
	assert.Contains(t, q.sent[0].body, "John Doe, Johnny Deep")
	assert.Contains(t, q.sent[0].body, "http://cfp.local/proposals/42")
	assert.Contains(t, q.sent[0].body, "13/06/2024 09:30")
}

func TestEmailing_CommentToAdminsSkipsAuthor(t *testing.T) {
	author := &models.User{ID: 7, Email: "admin1@example.com", Firstname: "Ada"}
	admins := &fakeAdmins{users: []*models.User{author, {ID: 8, Email: "admin2@example.com"}}}
	svc, q := newTestEmailing(t, true, admins)

	require.NoError(t, svc.SendNewCommentToAdmins(context.Background(), author, sampleTalk(), "looks good", true))

	require.Len(t, q.sent, 1)
	assert.Equal(t, []string{"admin2@example.com"}, q.sent[0].receivers)
	assert.Contains(t, q.sent[0].subject, "interne")
}

func TestEmailing_NoAdminsNoMail(t *testing.T) {
	svc, q := newTestEmailing(t, true, &fakeAdmins{})

	require.NoError(t, svc.SendNewCommentToAdmins(context.Background(), &models.User{ID: 1}, sampleTalk(), "x", false))
	assert.Empty(t, q.sent)
}

func TestEmailing_AdminLookupError(t *testing.T) {
	svc, _ := newTestEmailing(t, true, &fakeAdmins{err: errors.New("db down")})

	err := svc.SendNewCommentToAdmins(context.Background(), &models.User{ID: 1}, sampleTalk(), "x", false)
	assert.Error(t, err)
}

func TestEmailing_CommentToSpeakerUsesSpeakerLanguage(t *testing.T) {
	svc, q := newTestEmailing(t, true, &fakeAdmins{})
	speaker := &models.User{ID: 1, Email: "john@example.com", Firstname: "John", Language: "en"}

	require.NoError(t, svc.SendNewCommentToSpeaker(context.Background(), speaker, sampleTalk(), "please add slides"))

	require.Len(t, q.sent, 1)
	assert.Contains(t, q.sent[0].subject, "The committee commented")
	assert.Contains(t, q.sent[0].body, "please add slides")
}

func TestEmailing_DisabledDropsMail(t *testing.T) {
	svc, q := newTestEmailing(t, false, &fakeAdmins{})

	require.NoError(t, svc.SendNotSelected(context.Background(), sampleTalk(), "fr"))
	assert.Empty(t, q.sent)
}

func TestEmailing_QueueErrorIsReturned(t *testing.T) {
	svc, q := newTestEmailing(t, true, &fakeAdmins{})
	q.err = ErrQueueFull

	err := svc.SendProposalSubmitted(context.Background(), sampleTalk(), "fr")
	assert.ErrorIs(t, err, ErrQueueFull)
}
