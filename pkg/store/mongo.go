package store

import (
	"context"
	"time"

	"github.com/nikogura/job-tracker/pkg/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type jobDocument struct {
	ID                primitive.ObjectID `bson:"_id"`
	models.JobPosting `bson:",inline"`
}

func (d jobDocument) posting() (job models.JobPosting) {
	job = d.JobPosting
	job.ID = d.ID.Hex()
	return job
}

type sessionDocument struct {
	ID                      primitive.ObjectID `bson:"_id"`
	models.InterviewSession `bson:",inline"`
}

func (d sessionDocument) session() (s models.InterviewSession) {
	s = d.InterviewSession
	s.ID = d.ID.Hex()
	return s
}

// MongoStore keeps records in MongoDB.
type MongoStore struct {
	client   *mongo.Client
	jobs     *mongo.Collection
	sessions *mongo.Collection
	now      func() time.Time
}

// NewMongoStore connects to uri and uses the named database.
func NewMongoStore(ctx context.Context, uri, database string) (s *MongoStore, err error) {
	var client *mongo.Client
	client, err = mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		err = errors.Wrapf(err, "failed to connect to mongodb at %s", uri)
		return s, err
	}

	db := client.Database(database)
	s = &MongoStore{
		client:   client,
		jobs:     db.Collection(JobsCollection),
		sessions: db.Collection(SessionsCollection),
		now:      clock,
	}

	err = s.Ping(ctx)
	if err != nil {
		_ = client.Disconnect(ctx)
		s = nil
		return s, err
	}

	_, err = s.sessions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "job_id", Value: 1}},
	})
	if err != nil {
		err = errors.Wrap(err, "failed to create job_id index on interview_sessions")
		return s, err
	}

	return s, err
}

// Ping checks the server is reachable.
func (s *MongoStore) Ping(ctx context.Context) (err error) {
	err = s.client.Ping(ctx, readpref.Primary())
	if err != nil {
		err = errors.Wrap(err, "mongodb ping failed")
		return err
	}
	return err
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) (err error) {
	err = s.client.Disconnect(ctx)
	if err != nil {
		err = errors.Wrap(err, "failed to disconnect from mongodb")
		return err
	}
	return err
}

func (s *MongoStore) InsertJob(ctx context.Context, job models.JobPosting) (result models.JobPosting, err error) {
	now := s.now()
	job.CreatedAt = now
	job.UpdatedAt = now

	doc := jobDocument{ID: primitive.NewObjectID(), JobPosting: job}
	_, err = s.jobs.InsertOne(ctx, doc)
	if err != nil {
		err = errors.Wrap(err, "failed to insert job")
		return result, err
	}

	result = doc.posting()
	return result, err
}

func (s *MongoStore) ListJobs(ctx context.Context) (jobs []models.JobPosting, err error) {
	var cursor *mongo.Cursor
	cursor, err = s.jobs.Find(ctx, bson.M{})
	if err != nil {
		err = errors.Wrap(err, "failed to list jobs")
		return jobs, err
	}

	var docs []jobDocument
	err = cursor.All(ctx, &docs)
	if err != nil {
		err = errors.Wrap(err, "failed to decode jobs")
		return jobs, err
	}

	jobs = make([]models.JobPosting, 0, len(docs))
	for _, doc := range docs {
		jobs = append(jobs, doc.posting())
	}
	return jobs, err
}

func (s *MongoStore) GetJob(ctx context.Context, id string) (job models.JobPosting, err error) {
	var oid primitive.ObjectID
	oid, err = parseID(id)
	if err != nil {
		return job, err
	}

	var doc jobDocument
	err = s.jobs.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		err = notFound(err, "job", id)
		return job, err
	}

	job = doc.posting()
	return job, err
}

func (s *MongoStore) ReplaceJob(ctx context.Context, id string, job models.JobPosting) (result models.JobPosting, err error) {
	set := bson.M{
		"title":        job.Title,
		"url":          job.URL,
		"company":      job.Company,
		"status":       job.Status,
		"date_applied": job.DateApplied,
		"resume_path":  job.ResumePath,
		"notes":        job.Notes,
		"description":  job.Description,
	}
	result, err = s.updateJob(ctx, id, set)
	return result, err
}

func (s *MongoStore) PatchJob(ctx context.Context, id string, patch models.JobPatch) (result models.JobPosting, err error) {
	if patch.IsEmpty() {
		err = errors.Wrap(ErrInvalidArgument, "no fields to update")
		return result, err
	}
	result, err = s.updateJob(ctx, id, bson.M(patch.Fields()))
	return result, err
}

func (s *MongoStore) updateJob(ctx context.Context, id string, set bson.M) (result models.JobPosting, err error) {
	var oid primitive.ObjectID
	oid, err = parseID(id)
	if err != nil {
		return result, err
	}

	set["updated_at"] = s.now()

	var doc jobDocument
	err = s.jobs.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		err = notFound(err, "job", id)
		return result, err
	}

	result = doc.posting()
	return result, err
}

func (s *MongoStore) DeleteJob(ctx context.Context, id string) (err error) {
	var oid primitive.ObjectID
	oid, err = parseID(id)
	if err != nil {
		return err
	}

	_, err = s.sessions.DeleteMany(ctx, bson.M{"job_id": oid.Hex()})
	if err != nil {
		err = errors.Wrapf(err, "failed to delete sessions of job %s", id)
		return err
	}

	var res *mongo.DeleteResult
	res, err = s.jobs.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		err = errors.Wrapf(err, "failed to delete job %s", id)
		return err
	}

	if res.DeletedCount == 0 {
		err = errors.Wrapf(ErrNotFound, "job %s", id)
		return err
	}

	return err
}

func (s *MongoStore) InsertSession(ctx context.Context, session models.InterviewSession) (result models.InterviewSession, err error) {
	now := s.now()
	session.JobID = canonicalID(session.JobID)
	session.CreatedAt = now
	session.UpdatedAt = now

	doc := sessionDocument{ID: primitive.NewObjectID(), InterviewSession: session}
	_, err = s.sessions.InsertOne(ctx, doc)
	if err != nil {
		err = errors.Wrap(err, "failed to insert interview session")
		return result, err
	}

	result = doc.session()
	return result, err
}

func (s *MongoStore) ListSessions(ctx context.Context, jobID string) (sessions []models.InterviewSession, err error) {
	var cursor *mongo.Cursor
	cursor, err = s.sessions.Find(ctx, bson.M{"job_id": canonicalID(jobID)})
	if err != nil {
		err = errors.Wrapf(err, "failed to list sessions of job %s", jobID)
		return sessions, err
	}

	var docs []sessionDocument
	err = cursor.All(ctx, &docs)
	if err != nil {
		err = errors.Wrap(err, "failed to decode sessions")
		return sessions, err
	}

	sessions = make([]models.InterviewSession, 0, len(docs))
	for _, doc := range docs {
		sessions = append(sessions, doc.session())
	}
	return sessions, err
}

func (s *MongoStore) GetSession(ctx context.Context, id string) (session models.InterviewSession, err error) {
	var oid primitive.ObjectID
	oid, err = parseID(id)
	if err != nil {
		return session, err
	}

	var doc sessionDocument
	err = s.sessions.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		err = notFound(err, "interview session", id)
		return session, err
	}

	session = doc.session()
	return session, err
}

func notFound(err error, kind, id string) (mapped error) {
	if errors.Is(err, mongo.ErrNoDocuments) {
		mapped = errors.Wrapf(ErrNotFound, "%s %s", kind, id)
		return mapped
	}
	mapped = errors.Wrapf(err, "failed to load %s %s", kind, id)
	return mapped
}
