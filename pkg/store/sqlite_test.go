package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nikogura/job-tracker/pkg/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func sampleJob() models.JobPosting {
	notes := "referred by Dana"
	return models.JobPosting{
		Title:       "Backend Engineer",
		URL:         "https://example.com/jobs/42",
		Company:     "Acme",
		Status:      models.StatusApplied,
		DateApplied: "2024-03-01",
		Notes:       &notes,
		Description: "Build services.",
	}
}

func TestInsertThenGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := sampleJob()
	created, err := s.InsertJob(ctx, in)
	require.NoError(t, err)
	normalized, ok := NormalizeID(created.ID)
	require.True(t, ok)
	require.Equal(t, created.ID, normalized)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, err := s.GetJob(ctx, created.ID)
	require.NoError(t, err)

	got.ID = ""
	got.CreatedAt = time.Time{}
	got.UpdatedAt = time.Time{}
	assert.Equal(t, in, got)
}

func TestGetJobErrors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetJob(ctx, "not-an-id")
	assert.True(t, errors.Is(err, ErrInvalidID))

	_, err = s.GetJob(ctx, NewID())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListJobsKeepsInsertOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	jobs, err := s.ListJobs(ctx)
	require.NoError(t, err)
	assert.Empty(t, jobs)

	first := sampleJob()
	first.Company = "First"
	second := sampleJob()
	second.Company = "Second"

	_, err = s.InsertJob(ctx, first)
	require.NoError(t, err)
	_, err = s.InsertJob(ctx, second)
	require.NoError(t, err)

	jobs, err = s.ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "First", jobs[0].Company)
	assert.Equal(t, "Second", jobs[1].Company)
}

func TestReplaceJobKeepsCreatedAt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.InsertJob(ctx, sampleJob())
	require.NoError(t, err)

	later := created.CreatedAt.Add(time.Hour)
	s.now = func() time.Time { return later }

	replacement := sampleJob()
	replacement.Title = "Staff Engineer"
	replacement.Notes = nil

	updated, err := s.ReplaceJob(ctx, created.ID, replacement)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Staff Engineer", updated.Title)
	assert.Nil(t, updated.Notes)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
	assert.True(t, later.Equal(updated.UpdatedAt))

	_, err = s.ReplaceJob(ctx, NewID(), replacement)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPatchJob(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.InsertJob(ctx, sampleJob())
	require.NoError(t, err)

	status := models.StatusInterview
	updated, err := s.PatchJob(ctx, created.ID, models.JobPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInterview, updated.Status)
	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, created.Description, updated.Description)
}

func TestPatchJobEmptyLeavesRecordUnchanged(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.InsertJob(ctx, sampleJob())
	require.NoError(t, err)

	_, err = s.PatchJob(ctx, created.ID, models.JobPatch{})
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	got, err := s.GetJob(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestDeleteJobCascadesSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	x, err := s.InsertJob(ctx, sampleJob())
	require.NoError(t, err)
	y, err := s.InsertJob(ctx, sampleJob())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = s.InsertSession(ctx, models.InterviewSession{JobID: x.ID})
		require.NoError(t, err)
	}
	kept, err := s.InsertSession(ctx, models.InterviewSession{JobID: y.ID})
	require.NoError(t, err)

	require.NoError(t, s.DeleteJob(ctx, x.ID))

	sessions, err := s.ListSessions(ctx, x.ID)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	sessions, err = s.ListSessions(ctx, y.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, kept.ID, sessions[0].ID)

	_, err = s.GetJob(ctx, x.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	err = s.DeleteJob(ctx, x.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSessionRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	jobID := NewID()
	created, err := s.InsertSession(ctx, models.InterviewSession{
		JobID: jobID,
		Questions: []models.InterviewQuestion{
			{Question: "Tell me about a outage you handled.", Category: models.CategoryBehavioral, Difficulty: models.DifficultyMedium},
		},
	})
	require.NoError(t, err)

	got, err := s.GetSession(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, jobID, got.JobID)
	require.Len(t, got.Questions, 1)
	assert.Equal(t, models.DifficultyMedium, got.Questions[0].Difficulty)

	_, err = s.GetSession(ctx, NewID())
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = s.GetSession(ctx, "xyz")
	assert.True(t, errors.Is(err, ErrInvalidID))
}

func TestValidIDs(t *testing.T) {
	for id, want := range map[string]bool{
		"507f1f77bcf86cd799439011": true,
		"507f1f77bcf86cd79943901":  false,
		"zzzzzzzzzzzzzzzzzzzzzzzz": false,
		"":                         false,
	} {
		_, ok := NormalizeID(id)
		assert.Equal(t, want, ok, id)
	}
}

func TestNormalizeID(t *testing.T) {
	id, ok := NormalizeID("507F1F77BCF86CD799439011")
	assert.True(t, ok)
	assert.Equal(t, "507f1f77bcf86cd799439011", id)

	_, ok = NormalizeID("507f1f77bcf86cd79943901")
	assert.False(t, ok)
}

func TestInvalidIDIsInvalidArgument(t *testing.T) {
	assert.True(t, errors.Is(ErrInvalidID, ErrInvalidArgument))

	s := newTestStore(t)
	_, err := s.GetJob(context.Background(), "not-an-id")
	assert.True(t, errors.Is(err, ErrInvalidID))
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestUpperCaseIDAddressesSameRecord(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.InsertJob(ctx, sampleJob())
	require.NoError(t, err)
	upper := strings.ToUpper(created.ID)

	got, err := s.GetJob(ctx, upper)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	status := models.StatusInterview
	patched, err := s.PatchJob(ctx, upper, models.JobPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, created.ID, patched.ID)
	assert.Equal(t, models.StatusInterview, patched.Status)

	session, err := s.InsertSession(ctx, models.InterviewSession{JobID: upper})
	require.NoError(t, err)
	assert.Equal(t, created.ID, session.JobID)

	_, err = s.GetSession(ctx, strings.ToUpper(session.ID))
	require.NoError(t, err)

	sessions, err := s.ListSessions(ctx, upper)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)

	require.NoError(t, s.DeleteJob(ctx, upper))

	_, err = s.GetJob(ctx, created.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	sessions, err = s.ListSessions(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestPatchJobExplicitNullClearsNotes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.InsertJob(ctx, sampleJob())
	require.NoError(t, err)
	require.NotNil(t, created.Notes)

	updated, err := s.PatchJob(ctx, created.ID, models.JobPatch{ClearNotes: true})
	require.NoError(t, err)
	assert.Nil(t, updated.Notes)

	got, err := s.GetJob(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Notes)
	assert.Equal(t, created.Title, got.Title)
}
