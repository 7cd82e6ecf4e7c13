package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// Status is the application state of a job posting.
type Status string

const (
	StatusApplied   Status = "Applied"
	StatusRejected  Status = "Rejected"
	StatusInterview Status = "Interview"
)

// JobPosting is a tracked job application.
type JobPosting struct {
	ID          string    `json:"id" bson:"-"`
	Title       string    `json:"title" bson:"title"`
	URL         string    `json:"url" bson:"url"`
	Company     string    `json:"company" bson:"company"`
	Status      Status    `json:"status" bson:"status"`
	DateApplied string    `json:"date_applied" bson:"date_applied"`
	ResumePath  *string   `json:"resume_path" bson:"resume_path"`
	Notes       *string   `json:"notes" bson:"notes"`
	Description string    `json:"description" bson:"description"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// JobInput is the body accepted when creating or replacing a job.
type JobInput struct {
	Title       string  `json:"title" binding:"required"`
	URL         string  `json:"url" binding:"required,http_url"`
	Company     string  `json:"company" binding:"required"`
	Status      Status  `json:"status" binding:"required,oneof=Applied Rejected Interview"`
	DateApplied string  `json:"date_applied" binding:"required,datetime=2006-01-02"`
	ResumePath  *string `json:"resume_path"`
	Notes       *string `json:"notes"`
	Description string  `json:"description"`
}

// Posting converts the input into a JobPosting without id or timestamps.
func (in JobInput) Posting() (job JobPosting) {
	job = JobPosting{
		Title:       in.Title,
		URL:         in.URL,
		Company:     in.Company,
		Status:      in.Status,
		DateApplied: in.DateApplied,
		ResumePath:  in.ResumePath,
		Notes:       in.Notes,
		Description: in.Description,
	}
	return job
}

// JobPatch carries a partial update. Nil fields are left untouched.
// An explicit null for resume_path or notes clears the stored value.
type JobPatch struct {
	Title       *string `json:"title" binding:"omitempty,min=1"`
	URL         *string `json:"url" binding:"omitempty,http_url"`
	Company     *string `json:"company" binding:"omitempty,min=1"`
	Status      *Status `json:"status" binding:"omitempty,oneof=Applied Rejected Interview"`
	DateApplied *string `json:"date_applied" binding:"omitempty,datetime=2006-01-02"`
	ResumePath  *string `json:"resume_path"`
	Notes       *string `json:"notes"`
	Description *string `json:"description"`

	ClearResumePath bool `json:"-"`
	ClearNotes      bool `json:"-"`
}

// UnmarshalJSON decodes the patch and records which nullable fields were sent as null.
func (p *JobPatch) UnmarshalJSON(data []byte) (err error) {
	type plain JobPatch
	var decoded plain
	err = json.Unmarshal(data, &decoded)
	if err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	err = json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}

	*p = JobPatch(decoded)
	p.ClearResumePath = isNull(raw, "resume_path")
	p.ClearNotes = isNull(raw, "notes")
	return err
}

func isNull(raw map[string]json.RawMessage, key string) (null bool) {
	value, ok := raw[key]
	null = ok && bytes.Equal(bytes.TrimSpace(value), []byte("null"))
	return null
}

// IsEmpty reports whether the patch sets no field at all.
func (p JobPatch) IsEmpty() (empty bool) {
	empty = p.Title == nil && p.URL == nil && p.Company == nil && p.Status == nil &&
		p.DateApplied == nil && p.ResumePath == nil && p.Notes == nil && p.Description == nil &&
		!p.ClearResumePath && !p.ClearNotes
	return empty
}

// Apply copies every set field of the patch onto job.
func (p JobPatch) Apply(job *JobPosting) {
	if p.Title != nil {
		job.Title = *p.Title
	}
	if p.URL != nil {
		job.URL = *p.URL
	}
	if p.Company != nil {
		job.Company = *p.Company
	}
	if p.Status != nil {
		job.Status = *p.Status
	}
	if p.DateApplied != nil {
		job.DateApplied = *p.DateApplied
	}
	if p.ResumePath != nil {
		job.ResumePath = p.ResumePath
	} else if p.ClearResumePath {
		job.ResumePath = nil
	}
	if p.Notes != nil {
		job.Notes = p.Notes
	} else if p.ClearNotes {
		job.Notes = nil
	}
	if p.Description != nil {
		job.Description = *p.Description
	}
}

// Fields returns the patch as a flat field map keyed by stored field name.
func (p JobPatch) Fields() (fields map[string]interface{}) {
	fields = make(map[string]interface{})
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.URL != nil {
		fields["url"] = *p.URL
	}
	if p.Company != nil {
		fields["company"] = *p.Company
	}
	if p.Status != nil {
		fields["status"] = *p.Status
	}
	if p.DateApplied != nil {
		fields["date_applied"] = *p.DateApplied
	}
	if p.ResumePath != nil {
		fields["resume_path"] = *p.ResumePath
	} else if p.ClearResumePath {
		fields["resume_path"] = nil
	}
	if p.Notes != nil {
		fields["notes"] = *p.Notes
	} else if p.ClearNotes {
		fields["notes"] = nil
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	return fields
}
