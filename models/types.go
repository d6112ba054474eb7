package models

import "time"

// Template is one purchasable video template from the catalog. Video names
// the template's default base video file, used when a request does not pick
// one explicitly.
type Template struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Duration    int     `json:"duration"`
	Price       float64 `json:"price"`
	Video       string  `json:"video,omitempty"`
}

// Script is one narration segment from the catalog. Goodbye messages live
// in the same collection under the "goodbye" category. Text contains the
// {name} placeholder.
type Script struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Text     string `json:"text"`
	Duration int    `json:"duration"`
	Category string `json:"category"`
}

// GenerateResponse returns the job ID for a newly accepted request
type GenerateResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// StatusResponse reports a job's current progress
type StatusResponse struct {
	Status      string  `json:"status"` // "processing", "completed", "failed"
	Progress    int     `json:"progress"`
	CurrentStep string  `json:"current_step"`
	VideoURL    *string `json:"video_url,omitempty"`
	Error       *string `json:"error,omitempty"`
}

// JobStatus tracks a composition job in memory
type JobStatus struct {
	JobID       string
	Status      string
	Progress    int
	CurrentStep string
	SubjectName string
	Recipient   string
	VideoPath   string
	VideoURL    string
	CloudStored bool
	Error       error
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
