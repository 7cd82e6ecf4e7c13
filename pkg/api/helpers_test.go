package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nikogura/job-tracker/pkg/events"
	"github.com/nikogura/job-tracker/pkg/llm"
	"github.com/nikogura/job-tracker/pkg/models"
	"github.com/nikogura/job-tracker/pkg/store"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

// countingStore records how often job and session lookups reach the store.
type countingStore struct {
	*store.SQLiteStore
	mu    sync.Mutex
	calls int
}

func (s *countingStore) count() {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
}

func (s *countingStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *countingStore) GetJob(ctx context.Context, id string) (models.JobPosting, error) {
	s.count()
	return s.SQLiteStore.GetJob(ctx, id)
}

func (s *countingStore) ReplaceJob(ctx context.Context, id string, job models.JobPosting) (models.JobPosting, error) {
	s.count()
	return s.SQLiteStore.ReplaceJob(ctx, id, job)
}

func (s *countingStore) PatchJob(ctx context.Context, id string, patch models.JobPatch) (models.JobPosting, error) {
	s.count()
	return s.SQLiteStore.PatchJob(ctx, id, patch)
}

func (s *countingStore) DeleteJob(ctx context.Context, id string) error {
	s.count()
	return s.SQLiteStore.DeleteJob(ctx, id)
}

func (s *countingStore) GetSession(ctx context.Context, id string) (models.InterviewSession, error) {
	s.count()
	return s.SQLiteStore.GetSession(ctx, id)
}

type fakeGenerator struct {
	mu               sync.Mutex
	descriptionCalls []string
	descriptionErr   error
	questions        []models.InterviewQuestion
	questionsErr     error
	feedbackErr      error
	panicOnFeedback  bool
}

func (g *fakeGenerator) Description(ctx context.Context, title, company, url string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.descriptionCalls = append(g.descriptionCalls, title+"|"+company+"|"+url)
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if g.descriptionErr != nil {
		return "", g.descriptionErr
	}
	return "Generated description for " + title + " at " + company, nil
}

func (g *fakeGenerator) DescriptionCalls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.descriptionCalls...)
}

func (g *fakeGenerator) Questions(_ context.Context, _ models.JobPosting) ([]models.InterviewQuestion, error) {
	if g.questionsErr != nil {
		return nil, g.questionsErr
	}
	return g.questions, nil
}

func (g *fakeGenerator) Feedback(_ context.Context, question, _, answer string) (models.AnswerFeedback, error) {
	if g.panicOnFeedback {
		panic("boom")
	}
	if g.feedbackErr != nil {
		return models.AnswerFeedback{}, g.feedbackErr
	}
	return models.AnswerFeedback{
		Question:               question,
		UserAnswer:             answer,
		Feedback:               "Clear and specific.",
		Score:                  8,
		ImprovementSuggestions: []string{"Quantify the impact"},
		IdealPoints:            []string{"Ownership"},
	}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

type testEnv struct {
	server *Server
	store  *countingStore
	gen    *fakeGenerator
	pub    *recordingPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sqlite, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close(context.Background()) })

	env := &testEnv{
		store: &countingStore{SQLiteStore: sqlite},
		gen: &fakeGenerator{questions: []models.InterviewQuestion{
			{Question: "Why Go?", Category: models.CategoryTechnical, Difficulty: models.DifficultyEasy},
		}},
		pub: &recordingPublisher{},
	}

	logger, _ := test.NewNullLogger()
	env.server = New(env.store, env.gen, env.pub, logger, Options{AllowedOrigin: "http://localhost:3000"})
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) seedJob(t *testing.T, description string) models.JobPosting {
	t.Helper()
	job, err := e.store.InsertJob(context.Background(), models.JobPosting{
		Title:       "Backend Engineer",
		URL:         "https://example.com/jobs/1",
		Company:     "Acme",
		Status:      models.StatusApplied,
		DateApplied: "2024-03-01",
		Description: description,
	})
	require.NoError(t, err)
	return job
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func detailOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	decode(t, rec, &body)
	msg, _ := body["detail"].(string)
	return msg
}

func validInput() map[string]interface{} {
	return map[string]interface{}{
		"title":        "Platform Engineer",
		"url":          "https://example.com/jobs/99",
		"company":      "Globex",
		"status":       "Applied",
		"date_applied": "2024-05-10",
		"notes":        "via referral",
	}
}

var errEmpty = errors.Wrap(llm.ErrEmptyResponse, "failed to generate job description")
