package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuvault/docuvault/internal/models"
	"github.com/docuvault/docuvault/internal/store/memory"
	"github.com/docuvault/docuvault/internal/vector"
	"github.com/docuvault/docuvault/pkg/logger"
)

type stubEmbedder struct {
	vec []float32
	err error
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.vec, e.err
}

func (e *stubEmbedder) Dimension() int { return len(e.vec) }

type stubAnswerer struct {
	answer      string
	err         error
	gotSummary  string
	gotQuestion string
}

func (a *stubAnswerer) Answer(ctx context.Context, summary, question string) (string, error) {
	a.gotSummary = summary
	a.gotQuestion = question
	return a.answer, a.err
}

type fixture struct {
	store    *memory.Store
	answerer *stubAnswerer
	service  *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.NewStore()
	answerer := &stubAnswerer{answer: "It is a quarterly report."}
	service := NewService(s, s, &stubEmbedder{vec: []float32{0.5, 0.5}}, answerer, logger.NewTestLogger())
	return &fixture{store: s, answerer: answerer, service: service}
}

func (f *fixture) addDocument(t *testing.T, id, summary string) {
	t.Helper()
	require.NoError(t, f.store.CreateDocument(context.Background(), &models.Document{
		ID:         id,
		Title:      "Report",
		Category:   models.CategoryFinance,
		FileType:   models.FileTypeTxt,
		FileKey:    "uploads/" + id,
		Summary:    summary,
		UploaderID: "u1",
		CreatedAt:  time.Now(),
	}))
}

func TestCreateSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addDocument(t, "d1", "Revenue grew in Q3.")

	session, err := f.service.CreateSession(ctx, "u1", "d1")
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "u1", session.UserID)
	assert.Equal(t, "d1", session.DocumentID)
	assert.Empty(t, session.History)

	vec, err := vector.Decode(session.SummaryVector)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, vec)
}

func TestCreateSessionRequiresSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addDocument(t, "d1", "")

	_, err := f.service.CreateSession(ctx, "u1", "d1")
	assert.ErrorIs(t, err, ErrSummaryMissing)
}

func TestCreateSessionMissingDocument(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.CreateSession(context.Background(), "u1", "ghost")
	assert.Error(t, err)
}

func TestAskAppendsHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addDocument(t, "d1", "Revenue grew in Q3.")
	session, err := f.service.CreateSession(ctx, "u1", "d1")
	require.NoError(t, err)

	answer, updated, err := f.service.Ask(ctx, "u1", session.ID, "What is this about?")
	require.NoError(t, err)
	assert.Equal(t, "It is a quarterly report.", answer)
	assert.Equal(t, "Revenue grew in Q3.", f.answerer.gotSummary)
	assert.Equal(t, "What is this about?", f.answerer.gotQuestion)

	require.Len(t, updated.History, 2)
	assert.Equal(t, models.ChatMessage{Role: "user", Text: "What is this about?"}, updated.History[0])
	assert.Equal(t, models.ChatMessage{Role: "bot", Text: "It is a quarterly report."}, updated.History[1])

	// History persists across turns.
	_, updated, err = f.service.Ask(ctx, "u1", session.ID, "Anything else?")
	require.NoError(t, err)
	assert.Len(t, updated.History, 4)
}

func TestAskFallsBackToApology(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addDocument(t, "d1", "Revenue grew in Q3.")
	session, err := f.service.CreateSession(ctx, "u1", "d1")
	require.NoError(t, err)

	f.answerer.err = errors.New("model unavailable")
	answer, updated, err := f.service.Ask(ctx, "u1", session.ID, "What is this about?")
	require.NoError(t, err)
	assert.Equal(t, Apology, answer)
	// The failed exchange is still recorded.
	require.Len(t, updated.History, 2)
	assert.Equal(t, Apology, updated.History[1].Text)
}

func TestAskRejectsForeignSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addDocument(t, "d1", "Revenue grew in Q3.")
	session, err := f.service.CreateSession(ctx, "u1", "d1")
	require.NoError(t, err)

	_, _, err = f.service.Ask(ctx, "intruder", session.ID, "What is this about?")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, _, err = f.service.Ask(ctx, "u1", "no-such-session", "What is this about?")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAskRequiresQuestion(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.service.Ask(context.Background(), "u1", "s1", "")
	assert.ErrorIs(t, err, ErrQuestionRequired)
}

func TestCreateSessionSurvivesEmbedderFailure(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	service := NewService(s, s, &stubEmbedder{err: errors.New("down")}, &stubAnswerer{answer: "ok"}, logger.NewTestLogger())
	require.NoError(t, s.CreateDocument(ctx, &models.Document{
		ID: "d1", Category: models.CategoryHR, FileType: models.FileTypeTxt,
		FileKey: "uploads/d1", Summary: "A summary.", UploaderID: "u1", CreatedAt: time.Now(),
	}))

	session, err := service.CreateSession(ctx, "u1", "d1")
	require.NoError(t, err)
	assert.Empty(t, session.SummaryVector)
}
