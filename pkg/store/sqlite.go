package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/nikogura/job-tracker/pkg/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS jobs (
	id  TEXT PRIMARY KEY,
	doc TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS interview_sessions (
	id     TEXT PRIMARY KEY,
	job_id TEXT NOT NULL,
	doc    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_interview_sessions_job_id ON interview_sessions (job_id);
`

// SQLiteStore keeps records as JSON documents in a single SQLite file.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) the database at dbPath and ensures the schema exists.
func NewSQLiteStore(dbPath string) (s *SQLiteStore, err error) {
	var db *sql.DB
	db, err = sql.Open("sqlite", dbPath)
	if err != nil {
		err = errors.Wrapf(err, "failed to open sqlite db: %s", dbPath)
		return s, err
	}

	// A single connection keeps writes serialized.
	db.SetMaxOpenConns(1)

	err = db.Ping()
	if err != nil {
		db.Close()
		err = errors.Wrapf(err, "failed to ping sqlite db: %s", dbPath)
		return s, err
	}

	_, err = db.Exec(sqliteSchema)
	if err != nil {
		db.Close()
		err = errors.Wrap(err, "failed to create sqlite schema")
		return s, err
	}

	s = &SQLiteStore{db: db, now: clock}
	return s, err
}

func (s *SQLiteStore) Ping(ctx context.Context) (err error) {
	err = s.db.PingContext(ctx)
	if err != nil {
		err = errors.Wrap(err, "sqlite ping failed")
		return err
	}
	return err
}

func (s *SQLiteStore) Close(_ context.Context) (err error) {
	err = s.db.Close()
	return err
}

func (s *SQLiteStore) InsertJob(ctx context.Context, job models.JobPosting) (result models.JobPosting, err error) {
	now := s.now()
	job.ID = NewID()
	job.CreatedAt = now
	job.UpdatedAt = now

	var doc []byte
	doc, err = json.Marshal(job)
	if err != nil {
		err = errors.Wrap(err, "failed to encode job")
		return result, err
	}

	_, err = s.db.ExecContext(ctx, "INSERT INTO jobs (id, doc) VALUES (?, ?)", job.ID, string(doc))
	if err != nil {
		err = errors.Wrap(err, "failed to insert job")
		return result, err
	}

	result = job
	return result, err
}

func (s *SQLiteStore) ListJobs(ctx context.Context) (jobs []models.JobPosting, err error) {
	var rows *sql.Rows
	rows, err = s.db.QueryContext(ctx, "SELECT id, doc FROM jobs ORDER BY rowid")
	if err != nil {
		err = errors.Wrap(err, "failed to list jobs")
		return jobs, err
	}
	defer rows.Close()

	jobs = make([]models.JobPosting, 0)
	for rows.Next() {
		var job models.JobPosting
		job, err = scanJob(rows)
		if err != nil {
			return jobs, err
		}
		jobs = append(jobs, job)
	}

	err = rows.Err()
	if err != nil {
		err = errors.Wrap(err, "failed to iterate jobs")
		return jobs, err
	}
	return jobs, err
}

func (s *SQLiteStore) GetJob(ctx context.Context, id string) (job models.JobPosting, err error) {
	var oid primitive.ObjectID
	oid, err = parseID(id)
	if err != nil {
		return job, err
	}
	id = oid.Hex()

	row := s.db.QueryRowContext(ctx, "SELECT id, doc FROM jobs WHERE id = ?", id)
	job, err = scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		err = errors.Wrapf(ErrNotFound, "job %s", id)
		return job, err
	}
	return job, err
}

func (s *SQLiteStore) ReplaceJob(ctx context.Context, id string, job models.JobPosting) (result models.JobPosting, err error) {
	result, err = s.modifyJob(ctx, id, func(existing *models.JobPosting) {
		job.ID = existing.ID
		job.CreatedAt = existing.CreatedAt
		*existing = job
	})
	return result, err
}

func (s *SQLiteStore) PatchJob(ctx context.Context, id string, patch models.JobPatch) (result models.JobPosting, err error) {
	if patch.IsEmpty() {
		err = errors.Wrap(ErrInvalidArgument, "no fields to update")
		return result, err
	}
	result, err = s.modifyJob(ctx, id, patch.Apply)
	return result, err
}

// modifyJob reads, mutates and writes back a job inside one transaction.
func (s *SQLiteStore) modifyJob(ctx context.Context, id string, mutate func(*models.JobPosting)) (result models.JobPosting, err error) {
	var oid primitive.ObjectID
	oid, err = parseID(id)
	if err != nil {
		return result, err
	}
	id = oid.Hex()

	var tx *sql.Tx
	tx, err = s.db.BeginTx(ctx, nil)
	if err != nil {
		err = errors.Wrap(err, "failed to begin transaction")
		return result, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var job models.JobPosting
	job, err = scanJob(tx.QueryRowContext(ctx, "SELECT id, doc FROM jobs WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		err = errors.Wrapf(ErrNotFound, "job %s", id)
		return result, err
	}
	if err != nil {
		return result, err
	}

	mutate(&job)
	job.UpdatedAt = s.now()

	var doc []byte
	doc, err = json.Marshal(job)
	if err != nil {
		err = errors.Wrap(err, "failed to encode job")
		return result, err
	}

	_, err = tx.ExecContext(ctx, "UPDATE jobs SET doc = ? WHERE id = ?", string(doc), id)
	if err != nil {
		err = errors.Wrapf(err, "failed to update job %s", id)
		return result, err
	}

	err = tx.Commit()
	if err != nil {
		err = errors.Wrap(err, "failed to commit job update")
		return result, err
	}

	result = job
	return result, err
}

func (s *SQLiteStore) DeleteJob(ctx context.Context, id string) (err error) {
	var oid primitive.ObjectID
	oid, err = parseID(id)
	if err != nil {
		return err
	}
	id = oid.Hex()

	var tx *sql.Tx
	tx, err = s.db.BeginTx(ctx, nil)
	if err != nil {
		err = errors.Wrap(err, "failed to begin transaction")
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, "DELETE FROM interview_sessions WHERE job_id = ?", id)
	if err != nil {
		err = errors.Wrapf(err, "failed to delete sessions of job %s", id)
		return err
	}

	var res sql.Result
	res, err = tx.ExecContext(ctx, "DELETE FROM jobs WHERE id = ?", id)
	if err != nil {
		err = errors.Wrapf(err, "failed to delete job %s", id)
		return err
	}

	var n int64
	n, err = res.RowsAffected()
	if err != nil {
		err = errors.Wrap(err, "failed to read affected rows")
		return err
	}
	if n == 0 {
		err = errors.Wrapf(ErrNotFound, "job %s", id)
		return err
	}

	err = tx.Commit()
	if err != nil {
		err = errors.Wrap(err, "failed to commit job delete")
		return err
	}
	return err
}

func (s *SQLiteStore) InsertSession(ctx context.Context, session models.InterviewSession) (result models.InterviewSession, err error) {
	session.JobID = canonicalID(session.JobID)
	now := s.now()
	session.ID = NewID()
	session.CreatedAt = now
	session.UpdatedAt = now

	var doc []byte
	doc, err = json.Marshal(session)
	if err != nil {
		err = errors.Wrap(err, "failed to encode interview session")
		return result, err
	}

	_, err = s.db.ExecContext(ctx, "INSERT INTO interview_sessions (id, job_id, doc) VALUES (?, ?, ?)",
		session.ID, session.JobID, string(doc))
	if err != nil {
		err = errors.Wrap(err, "failed to insert interview session")
		return result, err
	}

	result = session
	return result, err
}

func (s *SQLiteStore) ListSessions(ctx context.Context, jobID string) (sessions []models.InterviewSession, err error) {
	jobID = canonicalID(jobID)
	var rows *sql.Rows
	rows, err = s.db.QueryContext(ctx, "SELECT id, doc FROM interview_sessions WHERE job_id = ? ORDER BY rowid", jobID)
	if err != nil {
		err = errors.Wrapf(err, "failed to list sessions of job %s", jobID)
		return sessions, err
	}
	defer rows.Close()

	sessions = make([]models.InterviewSession, 0)
	for rows.Next() {
		var session models.InterviewSession
		session, err = scanSession(rows)
		if err != nil {
			return sessions, err
		}
		sessions = append(sessions, session)
	}

	err = rows.Err()
	if err != nil {
		err = errors.Wrap(err, "failed to iterate sessions")
		return sessions, err
	}
	return sessions, err
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (session models.InterviewSession, err error) {
	var oid primitive.ObjectID
	oid, err = parseID(id)
	if err != nil {
		return session, err
	}
	id = oid.Hex()

	session, err = scanSession(s.db.QueryRowContext(ctx, "SELECT id, doc FROM interview_sessions WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		err = errors.Wrapf(ErrNotFound, "interview session %s", id)
		return session, err
	}
	return session, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (job models.JobPosting, err error) {
	var id, doc string
	err = row.Scan(&id, &doc)
	if err != nil {
		return job, err
	}

	err = json.Unmarshal([]byte(doc), &job)
	if err != nil {
		err = errors.Wrapf(err, "failed to decode job %s", id)
		return job, err
	}
	job.ID = id
	return job, err
}

func scanSession(row scanner) (session models.InterviewSession, err error) {
	var id, doc string
	err = row.Scan(&id, &doc)
	if err != nil {
		return session, err
	}

	err = json.Unmarshal([]byte(doc), &session)
	if err != nil {
		err = errors.Wrapf(err, "failed to decode interview session %s", id)
		return session, err
	}
	session.ID = id
	return session, err
}
