package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nikogura/job-tracker/pkg/events"
	"github.com/nikogura/job-tracker/pkg/models"
	"github.com/nikogura/job-tracker/pkg/store"
)

// CreateJob validates the input, synthesizes a description when none is given and stores the job.
func (s *Server) CreateJob(c *gin.Context) {
	var in models.JobInput
	err := c.ShouldBindJSON(&in)
	if err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	job := in.Posting()

	if job.Description == "" {
		job.Description, err = s.generator.Description(ctx, job.Title, job.Company, job.URL)
		if err != nil {
			generationError(c, err)
			return
		}
	}

	job, err = s.store.InsertJob(ctx, job)
	if err != nil {
		storeError(c, err, msgJobNotFound)
		return
	}

	s.publish(ctx, events.JobCreated, job)
	c.JSON(http.StatusOK, job)
}

// ListJobs returns every job, backfilling missing descriptions.
func (s *Server) ListJobs(c *gin.Context) {
	ctx := c.Request.Context()

	jobs, err := s.store.ListJobs(ctx)
	if err != nil {
		storeError(c, err, msgJobNotFound)
		return
	}

	for i := range jobs {
		jobs[i] = s.backfill(ctx, jobs[i])
	}

	c.JSON(http.StatusOK, jobs)
}

// GetJob returns one job, backfilling a missing description.
func (s *Server) GetJob(c *gin.Context) {
	id, ok := jobID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		storeError(c, err, msgJobNotFound)
		return
	}

	c.JSON(http.StatusOK, s.backfill(ctx, job))
}

// ReplaceJob overwrites a job. The description is regenerated only when the URL changes.
func (s *Server) ReplaceJob(c *gin.Context) {
	id, ok := jobID(c, "id")
	if !ok {
		return
	}

	var in models.JobInput
	err := c.ShouldBindJSON(&in)
	if err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	existing, err := s.store.GetJob(ctx, id)
	if err != nil {
		storeError(c, err, msgJobNotFound)
		return
	}

	job := in.Posting()
	if job.URL != existing.URL {
		job.Description, err = s.generator.Description(ctx, job.Title, job.Company, job.URL)
		if err != nil {
			generationError(c, err)
			return
		}
	} else {
		job.Description = existing.Description
	}

	job, err = s.store.ReplaceJob(ctx, id, job)
	if err != nil {
		storeError(c, err, msgJobNotFound)
		return
	}

	s.publish(ctx, events.JobUpdated, job)
	c.JSON(http.StatusOK, job)
}

// PatchJob applies a partial update. A URL in the patch regenerates the description.
func (s *Server) PatchJob(c *gin.Context) {
	id, ok := jobID(c, "id")
	if !ok {
		return
	}

	var patch models.JobPatch
	err := c.ShouldBindJSON(&patch)
	if err != nil {
		bindError(c, err)
		return
	}

	if patch.IsEmpty() {
		detail(c, http.StatusBadRequest, msgNoFieldsToUpdate)
		return
	}

	ctx := c.Request.Context()

	if patch.URL != nil {
		var existing models.JobPosting
		existing, err = s.store.GetJob(ctx, id)
		if err != nil {
			storeError(c, err, msgJobNotFound)
			return
		}

		title, company := existing.Title, existing.Company
		if patch.Title != nil {
			title = *patch.Title
		}
		if patch.Company != nil {
			company = *patch.Company
		}

		var description string
		description, err = s.generator.Description(ctx, title, company, *patch.URL)
		if err != nil {
			generationError(c, err)
			return
		}
		patch.Description = &description
	}

	job, err := s.store.PatchJob(ctx, id, patch)
	if err != nil {
		storeError(c, err, msgJobNotFound)
		return
	}

	s.publish(ctx, events.JobUpdated, job)
	c.JSON(http.StatusOK, job)
}

// DeleteJob removes a job and its interview sessions.
func (s *Server) DeleteJob(c *gin.Context) {
	id, ok := jobID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	err := s.store.DeleteJob(ctx, id)
	if err != nil {
		storeError(c, err, msgJobNotFound)
		return
	}

	s.publish(ctx, events.JobDeleted, models.JobPosting{ID: id})
	c.JSON(http.StatusOK, gin.H{"detail": msgJobDeleted})
}

// jobID reads and normalizes an id path parameter, answering 400 when malformed.
func jobID(c *gin.Context, param string) (id string, ok bool) {
	id, ok = store.NormalizeID(c.Param(param))
	if !ok {
		detail(c, http.StatusBadRequest, msgInvalidJobID)
		return id, false
	}
	return id, true
}

// backfillTimeout bounds one shared description generation.
const backfillTimeout = 2 * time.Minute

// backfill synthesizes and persists a description for a job that lacks one.
// Concurrent requests for the same job share one generation. On failure the job is returned unchanged.
// The shared generation outlives the request that started it so other waiters are not cancelled with it.
func (s *Server) backfill(ctx context.Context, job models.JobPosting) (filled models.JobPosting) {
	if job.Description != "" {
		return job
	}

	log := s.logger.WithField("job_id", job.ID)

	v, _, _ := s.backfills.Do(job.ID, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), backfillTimeout)
		defer cancel()

		description, err := s.generator.Description(ctx, job.Title, job.Company, job.URL)
		if err != nil {
			log.WithError(err).Warn("Description backfill failed")
			return job, nil
		}

		updated, err := s.store.PatchJob(ctx, job.ID, models.JobPatch{Description: &description})
		if err != nil {
			log.WithError(err).Warn("Failed to persist backfilled description")
			job.Description = description
			return job, nil
		}

		log.Info("Backfilled job description")
		return updated, nil
	})

	filled = v.(models.JobPosting)
	return filled
}
