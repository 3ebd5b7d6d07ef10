package domain

import "time"

// JobDescription is a posting resumes are compared against. Anyone may read
// it; only the creator may change or delete it.
type JobDescription struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	CreatedByID uint      `gorm:"not null;index" json:"created_by"`
	CreatedBy   *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OwnedBy reports whether userID created the job.
func (j *JobDescription) OwnedBy(userID uint) bool {
	return j.CreatedByID == userID
}
