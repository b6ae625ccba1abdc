package mark

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nawanshu18/student-result-management-system/core"
	"github.com/nawanshu18/student-result-management-system/core/student"
)

const (
	DefaultExamType = "final"
	DefaultMaxScore = 100
)

type Mark struct {
	ID        int64     `json:"id"`
	Roll      string    `json:"roll"`
	Subject   string    `json:"subject"`
	ExamType  string    `json:"exam_type"`
	Score     int       `json:"score"`
	MaxScore  int       `json:"max_score"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Percentage returns Score over MaxScore, as a percentage (unrounded).
func (m Mark) Percentage() float64 {
	if m.MaxScore <= 0 {
		return 0
	}
	return float64(m.Score) * 100 / float64(m.MaxScore)
}

// NewMark contains information needed to record a Mark.
// (Roll, Subject, ExamType) identifies a Mark: recording it twice replaces the scores.
type NewMark struct {
	Roll     string `json:"roll" validate:"required,roll"`
	Subject  string `json:"subject" validate:"required,notblank,max=128"`
	ExamType string `json:"exam_type" validate:"required,max=64"`
	Score    int    `json:"score" validate:"min=0"`
	MaxScore int    `json:"max_score" validate:"min=1"`
}

func (nm *NewMark) Validate(validate *validator.Validate) error {
	nm.Roll = student.NormalizeRoll(nm.Roll)
	nm.Subject = core.CleanString(nm.Subject)
	nm.ExamType = core.CleanString(nm.ExamType, true /* lower */)
	if nm.ExamType == "" {
		nm.ExamType = DefaultExamType
	}
	if nm.MaxScore == 0 {
		nm.MaxScore = DefaultMaxScore
	}
	return validate.Struct(nm)
}

// UpdateMark defines what information may be provided to modify an existing Mark.
type UpdateMark struct {
	Score    *int `json:"score" validate:"omitempty,min=0"`
	MaxScore *int `json:"max_score" validate:"omitempty,min=1"`

	// resolved by Validate
	score, maxScore int
}

func (um *UpdateMark) Validate(orig Mark, validate *validator.Validate) error {
	if err := validate.Struct(um); err != nil {
		return err
	}
	um.score, um.maxScore = orig.Score, orig.MaxScore
	if um.Score != nil {
		um.score = *um.Score
	}
	if um.MaxScore != nil {
		um.maxScore = *um.MaxScore
	}
	if um.score > um.maxScore {
		return core.NewValidationError(nil, core.FieldError{Field: "score", Error: scoreLeMaxText})
	}
	return nil
}

type QueryFilter struct {
	Roll     string `query:"roll"`
	Subject  string `query:"subject"`
	ExamType string `query:"exam_type"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Roll == "" && qf.Subject == "" && qf.ExamType == ""
}

func (qf *QueryFilter) Clean() {
	qf.Roll = student.NormalizeRoll(qf.Roll)
	qf.Subject = core.CleanString(qf.Subject)
	qf.ExamType = core.CleanString(qf.ExamType, true /* lower */)
}
