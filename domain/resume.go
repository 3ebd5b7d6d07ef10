package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Status is the hiring pipeline stage of a resume.
type Status string

const (
	StatusNew          Status = "New"
	StatusUnderReview  Status = "Under Review"
	StatusInterviewing Status = "Interviewing"
	StatusOffer        Status = "Offer"
	StatusHired        Status = "Hired"
	StatusRejected     Status = "Rejected"
)

// Statuses lists every valid status in pipeline order.
var Statuses = []Status{
	StatusNew,
	StatusUnderReview,
	StatusInterviewing,
	StatusOffer,
	StatusHired,
	StatusRejected,
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// AnalysisMode tells whether a scorecard was produced against a job description.
type AnalysisMode string

const (
	ModeStandalone  AnalysisMode = "standalone"
	ModeComparative AnalysisMode = "comparative"
)

// Resume is one analysed application. The job description reference is weak:
// deleting the job sets it to NULL and never removes the resume.
type Resume struct {
	ID               string                        `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name             *string                       `gorm:"size:255;index" json:"name"`
	Email            *string                       `gorm:"size:254" json:"email"`
	Scorecard        datatypes.JSONType[Scorecard] `gorm:"column:scorecard_data;not null" json:"scorecard_data"`
	Score            *float64                      `gorm:"index" json:"score"`
	JobDescriptionID *uint                         `gorm:"index" json:"job_description"`
	JobDescription   *JobDescription               `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Status           Status                        `gorm:"type:varchar(32);not null;default:'New'" json:"status"`
	AnalysisMode     AnalysisMode                  `gorm:"type:varchar(16);not null" json:"analysis_mode"`
	ContractVersion  string                        `gorm:"size:16;not null" json:"contract_version"`
	OriginalCV       string                        `gorm:"size:512" json:"original_cv"`
	OriginalFilename string                        `gorm:"size:255" json:"original_filename"`
	UploadedOn       time.Time                     `gorm:"not null;index" json:"uploaded_on"`
}

// NewResume builds a resume from an extracted scorecard, copying the
// searchable contact fields and the ranking score out of it.
func NewResume(id string, card Scorecard, jobID *uint, mode AnalysisMode, uploadedOn time.Time) *Resume {
	card.EnsureLists()
	return &Resume{
		ID:               id,
		Name:             card.BasicInformation.Name,
		Email:            card.BasicInformation.Email,
		Scorecard:        datatypes.NewJSONType(card),
		Score:            card.Score(),
		JobDescriptionID: jobID,
		Status:           StatusNew,
		AnalysisMode:     mode,
		UploadedOn:       uploadedOn,
	}
}
