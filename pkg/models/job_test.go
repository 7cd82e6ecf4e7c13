package models

import (
	"encoding/json"
	"testing"
)

func TestJobPatchIsEmpty(t *testing.T) {
	var patch JobPatch
	if !patch.IsEmpty() {
		t.Error("Expected zero patch to be empty")
	}

	notes := "call back friday"
	patch.Notes = &notes
	if patch.IsEmpty() {
		t.Error("Expected patch with notes to be non-empty")
	}
}

func TestJobPatchApply(t *testing.T) {
	job := JobPosting{
		Title:   "Engineer",
		URL:     "https://example.com/jobs/1",
		Company: "Acme",
		Status:  StatusApplied,
	}

	status := StatusInterview
	url := "https://example.com/jobs/2"
	patch := JobPatch{Status: &status, URL: &url}
	patch.Apply(&job)

	if job.Status != StatusInterview {
		t.Errorf("Expected status '%s', got '%s'", StatusInterview, job.Status)
	}
	if job.URL != url {
		t.Errorf("Expected url '%s', got '%s'", url, job.URL)
	}
	if job.Title != "Engineer" {
		t.Errorf("Expected title to be untouched, got '%s'", job.Title)
	}

	fields := patch.Fields()
	if len(fields) != 2 {
		t.Errorf("Expected 2 fields, got %d", len(fields))
	}
}

func TestJobPatchExplicitNullClears(t *testing.T) {
	var patch JobPatch
	err := json.Unmarshal([]byte(`{"notes": null, "title": "Staff Engineer"}`), &patch)
	if err != nil {
		t.Fatalf("Failed to decode patch: %v", err)
	}

	if !patch.ClearNotes {
		t.Error("Expected explicit null notes to be recorded")
	}
	if patch.ClearResumePath {
		t.Error("Absent resume_path must not be cleared")
	}
	if patch.Title == nil || *patch.Title != "Staff Engineer" {
		t.Errorf("Expected title to decode, got %v", patch.Title)
	}

	notes := "old"
	resume := "resume.pdf"
	job := JobPosting{Notes: &notes, ResumePath: &resume}
	patch.Apply(&job)

	if job.Notes != nil {
		t.Errorf("Expected notes to be cleared, got %q", *job.Notes)
	}
	if job.ResumePath == nil || *job.ResumePath != "resume.pdf" {
		t.Error("Expected resume_path to be untouched")
	}

	fields := patch.Fields()
	value, ok := fields["notes"]
	if !ok || value != nil {
		t.Errorf("Expected notes field set to nil, got %v (present %v)", value, ok)
	}
}

func TestJobPatchOnlyNullIsNotEmpty(t *testing.T) {
	var patch JobPatch
	err := json.Unmarshal([]byte(`{"resume_path": null}`), &patch)
	if err != nil {
		t.Fatalf("Failed to decode patch: %v", err)
	}

	if patch.IsEmpty() {
		t.Error("Patch clearing resume_path should not be empty")
	}

	var empty JobPatch
	err = json.Unmarshal([]byte(`{}`), &empty)
	if err != nil {
		t.Fatalf("Failed to decode patch: %v", err)
	}
	if !empty.IsEmpty() {
		t.Error("Expected {} to be an empty patch")
	}
}
