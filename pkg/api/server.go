// Package api serves the job tracker HTTP API.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nikogura/job-tracker/pkg/events"
	"github.com/nikogura/job-tracker/pkg/models"
	"github.com/nikogura/job-tracker/pkg/store"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Generator produces the LLM backed content served by the API.
type Generator interface {
	Description(ctx context.Context, title, company, url string) (string, error)
	Questions(ctx context.Context, job models.JobPosting) ([]models.InterviewQuestion, error)
	Feedback(ctx context.Context, question, category, answer string) (models.AnswerFeedback, error)
}

// Options configure the HTTP server.
type Options struct {
	Addr            string
	AllowedOrigin   string
	ShutdownTimeout time.Duration
}

// Server wires the store, the generator and the event publisher into a gin router.
type Server struct {
	store     store.Store
	generator Generator
	publisher events.Publisher
	logger    logrus.FieldLogger
	opts      Options
	router    *gin.Engine
	backfills singleflight.Group
}

// New builds a Server. A nil publisher disables events.
func New(st store.Store, generator Generator, publisher events.Publisher, logger logrus.FieldLogger, opts Options) (s *Server) {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	s = &Server{
		store:     st,
		generator: generator,
		publisher: publisher,
		logger:    logger,
		opts:      opts,
	}

	useJSONFieldNames()

	router := gin.New()
	router.Use(s.recovery(), requestID(), accessLog(logger), cors(opts.AllowedOrigin))
	s.routes(router)
	s.router = router

	return s
}

func (s *Server) routes(router *gin.Engine) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"Hello": "World"})
	})
	router.GET("/health", s.Health)

	jobs := router.Group("/jobs")
	jobs.POST("", s.CreateJob)
	jobs.GET("", s.ListJobs)
	jobs.GET("/:id", s.GetJob)
	jobs.PUT("/:id", s.ReplaceJob)
	jobs.PATCH("/:id", s.PatchJob)
	jobs.DELETE("/:id", s.DeleteJob)

	interview := router.Group("/interview")
	interview.POST("/generate-questions", s.GenerateQuestions)
	interview.POST("/submit-answer", s.SubmitAnswer)
	interview.POST("/get-feedback", s.GetFeedback)
	interview.GET("/sessions/:job_id", s.ListSessions)
	interview.GET("/session/:id", s.GetSession)
}

// Handler returns the router.
func (s *Server) Handler() (h http.Handler) {
	h = s.router
	return h
}

// Run serves on the configured address until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) (err error) {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.opts.Addr).Info("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		err = errors.Wrap(err, "http server failed")
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	err = srv.Shutdown(shutdownCtx)
	if err != nil {
		err = errors.Wrap(err, "http server shutdown failed")
		return err
	}

	return err
}

// Health reports whether the store is reachable.
func (s *Server) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	err := s.store.Ping(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) publish(ctx context.Context, eventType string, job models.JobPosting) {
	err := s.publisher.Publish(ctx, events.NewJobEvent(eventType, job))
	if err != nil {
		s.logger.WithError(err).WithField("job_id", job.ID).Warn("Failed to publish job event")
	}
}
