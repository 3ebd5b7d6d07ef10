package domain

import "time"

// ResumeAnalyzedEvent is published after a new resume has been stored.
type ResumeAnalyzedEvent struct {
	ResumeID         string       `json:"resume_id"`
	JobDescriptionID *uint        `json:"job_description_id"`
	AnalysisMode     AnalysisMode `json:"analysis_mode"`
	Score            *float64     `json:"score"`
	Name             *string      `json:"name"`
	UploadedOn       time.Time    `json:"uploaded_on"`
}
