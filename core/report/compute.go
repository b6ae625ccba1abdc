package report

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"github.com/nawanshu18/student-result-management-system/core/mark"
	"github.com/nawanshu18/student-result-management-system/core/student"
)

const DefaultBucketWidth = 10

// Round2 rounds f half away from zero to 2 decimals.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// Grade maps an overall percentage to a letter grade.
func Grade(pct float64) string {
	switch {
	case pct >= 90:
		return "A+"
	case pct >= 80:
		return "A"
	case pct >= 70:
		return "B"
	case pct >= 60:
		return "C"
	case pct >= 50:
		return "D"
	default:
		return "F"
	}
}

// Build computes the Report of s from its marks. It is pure: marks are not modified
// and lines are ordered by subject then exam type whatever the input order.
func Build(s student.Student, marks []mark.Mark) Report {
	r := Report{Student: s, Lines: make([]Line, 0, len(marks))}
	for _, m := range marks {
		r.Lines = append(r.Lines, Line{
			Subject:    m.Subject,
			ExamType:   m.ExamType,
			Score:      m.Score,
			MaxScore:   m.MaxScore,
			Percentage: Round2(m.Percentage()),
		})
		r.Total += m.Score
		r.TotalMax += m.MaxScore
	}
	sort.SliceStable(r.Lines, func(i, j int) bool {
		if r.Lines[i].Subject != r.Lines[j].Subject {
			return r.Lines[i].Subject < r.Lines[j].Subject
		}
		return r.Lines[i].ExamType < r.Lines[j].ExamType
	})
	r.Percentage = percentage(r.Total, r.TotalMax)
	r.Grade = Grade(r.Percentage)
	return r
}

func percentage(total, totalMax int) float64 {
	if totalMax <= 0 {
		return 0
	}
	return Round2(float64(total) * 100 / float64(totalMax))
}

// Standings computes the overall percentage of every student having marks, best first (ties by roll).
func Standings(marks []mark.Mark) []Standing {
	type acc struct{ total, max int }
	byRoll := make(map[string]*acc)
	for _, m := range marks {
		a, ok := byRoll[m.Roll]
		if !ok {
			a = new(acc)
			byRoll[m.Roll] = a
		}
		a.total += m.Score
		a.max += m.MaxScore
	}

	standings := make([]Standing, 0, len(byRoll))
	for roll, a := range byRoll {
		standings = append(standings, Standing{Roll: roll, Percentage: percentage(a.total, a.max)})
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Percentage != standings[j].Percentage {
			return standings[i].Percentage > standings[j].Percentage
		}
		return standings[i].Roll < standings[j].Roll
	})
	return standings
}

// Rank returns the competition rank (1, 2, 2, 4) of roll among standings and the number of ranked students.
// rank is 0 when roll has no standing.
func Rank(standings []Standing, roll string) (rank, size int) {
	var pct float64
	found := false
	for _, st := range standings {
		if st.Roll == roll {
			pct, found = st.Percentage, true
			break
		}
	}
	if !found {
		return 0, len(standings)
	}
	rank = 1
	for _, st := range standings {
		if st.Percentage > pct {
			rank++
		}
	}
	return rank, len(standings)
}

// Histogram counts percentages into buckets of the given width covering [0, 100].
// Buckets are half-open [lower, upper) except the last one, which includes 100.
func Histogram(pcts []float64, width int) []Bucket {
	if width <= 0 || width > 100 {
		width = DefaultBucketWidth
	}
	n := int(math.Ceil(100 / float64(width)))
	buckets := make([]Bucket, n)
	for i := range buckets {
		lower := i * width
		upper := lower + width
		if upper > 100 {
			upper = 100
		}
		buckets[i] = Bucket{
			Label: fmt.Sprintf("%d-%d", lower, upper),
			Lower: float64(lower),
			Upper: float64(upper),
		}
	}
	for _, p := range pcts {
		idx := int(p / float64(width))
		if idx < 0 {
			idx = 0
		} else if idx >= n {
			idx = n - 1
		}
		buckets[idx].Count++
	}
	return buckets
}

// Describe computes descriptive statistics of pcts. An empty input gives zero Stats.
func Describe(pcts []float64) (Stats, error) {
	if len(pcts) == 0 {
		return Stats{}, nil
	}
	data := stats.LoadRawData(pcts)

	var st Stats
	var err error
	st.Count = len(pcts)
	if st.Mean, err = data.Mean(); err != nil {
		return Stats{}, errors.Wrap(err, "computing mean")
	}
	if st.Median, err = data.Median(); err != nil {
		return Stats{}, errors.Wrap(err, "computing median")
	}
	if st.Min, err = data.Min(); err != nil {
		return Stats{}, errors.Wrap(err, "computing min")
	}
	if st.Max, err = data.Max(); err != nil {
		return Stats{}, errors.Wrap(err, "computing max")
	}
	if st.StdDev, err = data.StandardDeviation(); err != nil {
		return Stats{}, errors.Wrap(err, "computing standard deviation")
	}

	st.Mean, st.Median = Round2(st.Mean), Round2(st.Median)
	st.Min, st.Max = Round2(st.Min), Round2(st.Max)
	st.StdDev = Round2(st.StdDev)
	return st, nil
}

// Summarize builds the class Summary of standings.
func Summarize(standings []Standing, bucketWidth int) (Summary, error) {
	if bucketWidth <= 0 || bucketWidth > 100 {
		bucketWidth = DefaultBucketWidth
	}
	pcts := make([]float64, 0, len(standings))
	for _, st := range standings {
		pcts = append(pcts, st.Percentage)
	}
	st, err := Describe(pcts)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		BucketWidth: bucketWidth,
		Buckets:     Histogram(pcts, bucketWidth),
		Stats:       st,
	}, nil
}

// SubjectAverages averages the per-mark percentages of every subject, ordered by subject.
func SubjectAverages(marks []mark.Mark) []SubjectAverage {
	type acc struct {
		sum float64
		n   int
	}
	bySubject := make(map[string]*acc)
	for _, m := range marks {
		a, ok := bySubject[m.Subject]
		if !ok {
			a = new(acc)
			bySubject[m.Subject] = a
		}
		a.sum += m.Percentage()
		a.n++
	}

	avgs := make([]SubjectAverage, 0, len(bySubject))
	for subject, a := range bySubject {
		avgs = append(avgs, SubjectAverage{
			Subject:           subject,
			Marks:             a.n,
			AveragePercentage: Round2(a.sum / float64(a.n)),
		})
	}
	sort.Slice(avgs, func(i, j int) bool { return avgs[i].Subject < avgs[j].Subject })
	return avgs
}
