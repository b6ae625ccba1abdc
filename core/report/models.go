package report

import (
	"github.com/nawanshu18/student-result-management-system/core/student"
)

type (
	// Line is one recorded mark of a Report.
	Line struct {
		Subject    string  `json:"subject"`
		ExamType   string  `json:"exam_type"`
		Score      int     `json:"score"`
		MaxScore   int     `json:"max_score"`
		Percentage float64 `json:"percentage"` // rounded to 2 decimals
	}

	// Report is the result sheet of one student. The same marks always produce the same Report.
	Report struct {
		Student    student.Student `json:"student"`
		Lines      []Line          `json:"marks"`
		Total      int             `json:"total"`
		TotalMax   int             `json:"total_max"`
		Percentage float64         `json:"percentage"` // rounded to 2 decimals; 0 without marks
		Grade      string          `json:"grade"`
		Rank       int             `json:"rank,omitempty"`       // 1-based; 0 when unranked
		ClassSize  int             `json:"class_size,omitempty"` // number of ranked students
	}

	// Standing is the overall percentage of one student, used for ranking.
	Standing struct {
		Roll       string  `json:"roll"`
		Percentage float64 `json:"percentage"`
	}

	Bucket struct {
		Label string  `json:"label"`
		Lower float64 `json:"lower"`
		Upper float64 `json:"upper"`
		Count int     `json:"count"`
	}

	Stats struct {
		Count  int     `json:"count"`
		Mean   float64 `json:"mean"`
		Median float64 `json:"median"`
		Min    float64 `json:"min"`
		Max    float64 `json:"max"`
		StdDev float64 `json:"std_dev"`
	}

	// Summary describes the distribution of the overall percentages of every student with marks.
	Summary struct {
		BucketWidth int      `json:"bucket_width"`
		Buckets     []Bucket `json:"buckets"`
		Stats       Stats    `json:"stats"`
	}

	SubjectAverage struct {
		Subject           string  `json:"subject"`
		Marks             int     `json:"marks"`
		AveragePercentage float64 `json:"average_percentage"`
	}
)

// HasMarks reports whether there is anything to export.
func (r Report) HasMarks() bool {
	return len(r.Lines) > 0
}
