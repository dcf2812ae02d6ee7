package models

import "time"

// Submission lifecycle states. A submission is pending until the judge
// reports a terminal status, then finalized exactly once.
const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusAccepted = "accepted"
	SubmissionStatusRejected = "rejected"
)

// Submission records one attempt dispatched to the remote judge. The judge
// token is unique per dispatched attempt and is the handle used for polling.
type Submission struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	ProblemID     uint      `gorm:"not null;index" json:"problem_id"`
	LanguageID    uint      `gorm:"not null" json:"language_id"`
	SubmittedCode string    `gorm:"type:text" json:"submitted_code"`
	JudgeToken    string    `gorm:"size:64;uniqueIndex;not null" json:"judge_token"`
	Status        string    `gorm:"size:16;not null;default:pending" json:"status"`
	IsSuccessful  bool      `gorm:"not null;default:false" json:"is_successful"`
	ExecutionTime *float64  `json:"execution_time,omitempty"`
	MemoryUsed    *float64  `json:"memory_used,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	User     User            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Problem  Problem         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Language ProblemLanguage `gorm:"foreignKey:LanguageID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsTerminal reports whether the judge already returned a final verdict.
func (s Submission) IsTerminal() bool {
	return s.Status != SubmissionStatusPending
}
