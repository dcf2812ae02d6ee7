package models

import "time"

// Problem difficulty levels.
const (
	ProblemDifficultyEasy   = "easy"
	ProblemDifficultyMedium = "medium"
	ProblemDifficultyHard   = "hard"
)

// Problem represents a coding problem. The description is stored in the
// base64 wire format and decoded at the display boundary.
type Problem struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Title       string            `gorm:"size:255;not null" json:"title"`
	Description string            `gorm:"type:text" json:"description"`
	Points      int               `gorm:"not null;default:0" json:"points"`
	Difficulty  string            `gorm:"size:16;not null" json:"difficulty"`
	Category    string            `gorm:"size:64;index" json:"category"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Languages   []ProblemLanguage `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"languages"`
}

// ProblemLanguage supplies the per-language starter stub and the language
// identifier understood by the remote judge. The function signature is stored
// base64 encoded, the test harness code as plain text.
type ProblemLanguage struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	ProblemID         uint      `gorm:"not null;index:idx_problem_judge_lang,unique" json:"problem_id"`
	JudgeLanguageID   int       `gorm:"not null;index:idx_problem_judge_lang,unique" json:"judge_language_id"`
	Name              string    `gorm:"size:64;not null" json:"name"`
	FunctionSignature string    `gorm:"type:text" json:"function_signature"`
	TestCode          string    `gorm:"type:text" json:"-"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
