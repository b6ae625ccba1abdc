package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nawanshu18/student-result-management-system/core/mark"
	"github.com/nawanshu18/student-result-management-system/core/student"
)

func newMark(roll, subject string, score, maxScore int) mark.Mark {
	return mark.Mark{Roll: roll, Subject: subject, ExamType: mark.DefaultExamType, Score: score, MaxScore: maxScore}
}

func TestBuild(t *testing.T) {
	s := student.Student{Roll: "S-01", Name: "Asha Rao"}

	t.Run("totals", func(t *testing.T) {
		marks := []mark.Mark{
			newMark("S-01", "Physics", 30, 50),
			newMark("S-01", "Maths", 80, 100),
		}
		r := Build(s, marks)

		assert.Equal(t, 110, r.Total)
		assert.Equal(t, 150, r.TotalMax)
		assert.Equal(t, 73.33, r.Percentage)
		assert.Equal(t, "B", r.Grade)
		require.Len(t, r.Lines, 2)
		assert.Equal(t, "Maths", r.Lines[0].Subject) // ordered by subject
		assert.Equal(t, 60.0, r.Lines[1].Percentage)

		// input untouched
		assert.Equal(t, "Physics", marks[0].Subject)
	})

	t.Run("same marks, same report", func(t *testing.T) {
		a := Build(s, []mark.Mark{newMark("S-01", "Maths", 80, 100), newMark("S-01", "Art", 7, 9)})
		b := Build(s, []mark.Mark{newMark("S-01", "Art", 7, 9), newMark("S-01", "Maths", 80, 100)})
		assert.Equal(t, a, b)
	})

	t.Run("no marks", func(t *testing.T) {
		r := Build(s, nil)
		assert.Equal(t, 0, r.TotalMax)
		assert.Equal(t, 0.0, r.Percentage)
		assert.Equal(t, "F", r.Grade)
		assert.False(t, r.HasMarks())
	})
}

func TestGrade(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{100, "A+"},
		{90, "A+"},
		{89.99, "A"},
		{80, "A"},
		{70, "B"},
		{69.99, "C"},
		{60, "C"},
		{50, "D"},
		{49.99, "F"},
		{0, "F"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Grade(tt.pct), "Grade(%v)", tt.pct)
	}
}

func TestRank(t *testing.T) {
	standings := Standings([]mark.Mark{
		newMark("D", "Maths", 60, 100),
		newMark("B", "Maths", 70, 100),
		newMark("A", "Maths", 80, 100),
		newMark("C", "Maths", 35, 50), // 70%
	})
	require.Len(t, standings, 4)
	assert.Equal(t, []string{"A", "B", "C", "D"}, []string{
		standings[0].Roll, standings[1].Roll, standings[2].Roll, standings[3].Roll,
	})

	tests := []struct {
		roll     string
		wantRank int
	}{
		{"A", 1},
		{"B", 2},
		{"C", 2},
		{"D", 4},
		{"Z", 0},
	}
	for _, tt := range tests {
		rank, size := Rank(standings, tt.roll)
		assert.Equal(t, tt.wantRank, rank, "Rank(%s)", tt.roll)
		assert.Equal(t, 4, size)
	}
}

func TestHistogram(t *testing.T) {
	t.Run("edges", func(t *testing.T) {
		buckets := Histogram([]float64{0, 9.99, 10, 55, 99.99, 100}, 10)
		require.Len(t, buckets, 10)

		counts := make([]int, len(buckets))
		for i, b := range buckets {
			counts[i] = b.Count
		}
		assert.Equal(t, []int{2, 1, 0, 0, 0, 1, 0, 0, 0, 2}, counts)
		assert.Equal(t, "90-100", buckets[9].Label)
	})

	t.Run("uneven width", func(t *testing.T) {
		buckets := Histogram([]float64{95, 100}, 30)
		require.Len(t, buckets, 4)
		assert.Equal(t, "90-100", buckets[3].Label)
		assert.Equal(t, 2, buckets[3].Count)
	})

	t.Run("invalid width", func(t *testing.T) {
		assert.Len(t, Histogram(nil, 0), 100/DefaultBucketWidth)
		assert.Len(t, Histogram(nil, 101), 100/DefaultBucketWidth)
	})
}

func TestSummarize(t *testing.T) {
	summary, err := Summarize(nil, 20)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, summary.Stats)
	assert.Len(t, summary.Buckets, 5)

	summary, err = Summarize([]Standing{{"A", 80}, {"B", 70}, {"C", 60}}, 20)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Stats.Count)
	assert.Equal(t, 70.0, summary.Stats.Mean)
	assert.Equal(t, 70.0, summary.Stats.Median)
	assert.Equal(t, 60.0, summary.Stats.Min)
	assert.Equal(t, 80.0, summary.Stats.Max)
	assert.Equal(t, 8.16, summary.Stats.StdDev) // population standard deviation
}

func TestSubjectAverages(t *testing.T) {
	avgs := SubjectAverages([]mark.Mark{
		newMark("A", "Physics", 30, 50),
		newMark("A", "Maths", 80, 100),
		newMark("B", "Maths", 35, 50),
	})
	assert.Equal(t, []SubjectAverage{
		{Subject: "Maths", Marks: 2, AveragePercentage: 75},
		{Subject: "Physics", Marks: 1, AveragePercentage: 60},
	}, avgs)
}
