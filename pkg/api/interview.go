package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nikogura/job-tracker/pkg/models"
	"github.com/nikogura/job-tracker/pkg/store"
)

// GenerateQuestionsRequest asks for practice questions for a job.
type GenerateQuestionsRequest struct {
	JobID string `json:"job_id" binding:"required"`
}

// GenerateQuestionsResponse carries the generated questions.
type GenerateQuestionsResponse struct {
	Questions []models.InterviewQuestion `json:"questions"`
	JobTitle  string                     `json:"job_title"`
	Company   string                     `json:"company"`
}

// AnswerRequest is the body of submit-answer and get-feedback.
type AnswerRequest struct {
	SessionID        string `json:"session_id"`
	Question         string `json:"question" binding:"required"`
	Answer           string `json:"answer" binding:"required"`
	QuestionCategory string `json:"question_category"`
}

// GenerateQuestions produces interview questions from a job's description.
func (s *Server) GenerateQuestions(c *gin.Context) {
	var req GenerateQuestionsRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		bindError(c, err)
		return
	}

	var ok bool
	req.JobID, ok = store.NormalizeID(req.JobID)
	if !ok {
		detail(c, http.StatusBadRequest, msgInvalidJobID)
		return
	}

	ctx := c.Request.Context()
	job, err := s.store.GetJob(ctx, req.JobID)
	if err != nil {
		storeError(c, err, msgJobNotFound)
		return
	}

	job = s.backfill(ctx, job)

	questions, err := s.generator.Questions(ctx, job)
	if err != nil {
		generationError(c, err)
		return
	}

	c.JSON(http.StatusOK, GenerateQuestionsResponse{
		Questions: questions,
		JobTitle:  job.Title,
		Company:   job.Company,
	})
}

// SubmitAnswer acknowledges an answer. Answers are not stored.
func (s *Server) SubmitAnswer(c *gin.Context) {
	var req AnswerRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		bindError(c, err)
		return
	}

	s.logger.WithField("session_id", req.SessionID).Debug("Answer submitted")
	c.JSON(http.StatusOK, gin.H{"detail": msgAnswerReceived})
}

// GetFeedback evaluates one answer.
func (s *Server) GetFeedback(c *gin.Context) {
	var req AnswerRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		bindError(c, err)
		return
	}

	feedback, err := s.generator.Feedback(c.Request.Context(), req.Question, req.QuestionCategory, req.Answer)
	if err != nil {
		generationError(c, err)
		return
	}

	c.JSON(http.StatusOK, feedback)
}

// ListSessions returns the interview sessions of a job.
func (s *Server) ListSessions(c *gin.Context) {
	id, ok := store.NormalizeID(c.Param("job_id"))
	if !ok {
		detail(c, http.StatusNotFound, msgJobNotFound)
		return
	}

	sessions, err := s.store.ListSessions(c.Request.Context(), id)
	if err != nil {
		storeError(c, err, msgJobNotFound)
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// GetSession returns one interview session.
func (s *Server) GetSession(c *gin.Context) {
	id, ok := store.NormalizeID(c.Param("id"))
	if !ok {
		detail(c, http.StatusNotFound, msgSessionNotFound)
		return
	}

	session, err := s.store.GetSession(c.Request.Context(), id)
	if err != nil {
		storeError(c, err, msgSessionNotFound)
		return
	}

	c.JSON(http.StatusOK, session)
}
