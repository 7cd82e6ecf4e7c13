// Package store persists job postings and interview sessions.
package store

import (
	"context"
	"time"

	"github.com/nikogura/job-tracker/pkg/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when no record matches the given id.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidArgument is returned for requests the store refuses to run, such as an empty patch.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidID is returned for ids that are not 24 hex characters. It is also an ErrInvalidArgument.
	ErrInvalidID = errors.Wrap(ErrInvalidArgument, "invalid record id")
)

// Collection names, shared by every backend.
const (
	JobsCollection     = "jobs"
	SessionsCollection = "interview_sessions"
)

// Store is the record store used by the API.
type Store interface {
	InsertJob(ctx context.Context, job models.JobPosting) (models.JobPosting, error)
	ListJobs(ctx context.Context) ([]models.JobPosting, error)
	GetJob(ctx context.Context, id string) (models.JobPosting, error)
	ReplaceJob(ctx context.Context, id string, job models.JobPosting) (models.JobPosting, error)
	PatchJob(ctx context.Context, id string, patch models.JobPatch) (models.JobPosting, error)
	// DeleteJob removes every session of the job, then the job itself.
	DeleteJob(ctx context.Context, id string) error

	InsertSession(ctx context.Context, session models.InterviewSession) (models.InterviewSession, error)
	ListSessions(ctx context.Context, jobID string) ([]models.InterviewSession, error)
	GetSession(ctx context.Context, id string) (models.InterviewSession, error)

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// NormalizeID returns the canonical lower case form of a well formed record id.
func NormalizeID(id string) (normalized string, ok bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return id, false
	}
	normalized = oid.Hex()
	return normalized, true
}

// NewID mints a fresh record id.
func NewID() (id string) {
	id = primitive.NewObjectID().Hex()
	return id
}

// parseID decodes id. Callers key storage by oid.Hex() so ids differing only in case match.
func parseID(id string) (oid primitive.ObjectID, err error) {
	oid, err = primitive.ObjectIDFromHex(id)
	if err != nil {
		err = errors.Wrapf(ErrInvalidID, "%q", id)
		return oid, err
	}
	return oid, err
}

// canonicalID lower cases well formed ids and leaves anything else alone.
func canonicalID(id string) (canonical string) {
	canonical, _ = NormalizeID(id)
	return canonical
}

// clock returns UTC time truncated to what every backend can store.
func clock() (now time.Time) {
	now = time.Now().UTC().Truncate(time.Millisecond)
	return now
}

// Options selects and configures a backend.
type Options struct {
	Driver     string
	MongoURI   string
	Database   string
	SQLitePath string
}

// Open builds the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (s Store, err error) {
	switch opts.Driver {
	case "mongo", "":
		s, err = NewMongoStore(ctx, opts.MongoURI, opts.Database)
	case "sqlite":
		s, err = NewSQLiteStore(opts.SQLitePath)
	default:
		err = errors.Errorf("unknown store driver: %s", opts.Driver)
	}
	return s, err
}
