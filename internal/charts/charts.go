// Package charts reshapes summaries and progress reports into chart series.
// Adapters only read their inputs.
package charts

import (
	"sort"

	"github.com/2beens/volumetracker/internal/fitness"
	"github.com/2beens/volumetracker/internal/progress"
	"github.com/2beens/volumetracker/pkg"
)

const (
	LabelLifted      = "Lifted"
	LabelYearElapsed = "Year"
)

type Bar struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type BarSeries []Bar

type Slice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ProgressBars yields the percent lifted toward the goal and the percent of
// the year elapsed. The two are computed independently.
func ProgressBars(report progress.Report) BarSeries {
	return BarSeries{
		{Label: LabelLifted, Value: report.ProgressPercentage},
		{Label: LabelYearElapsed, Value: report.YearElapsedPercentage},
	}
}

// Breakdown returns one slice per exercise in summary order.
func Breakdown(summary *fitness.Summary) []Slice {
	if summary == nil {
		return []Slice{}
	}
	slices := make([]Slice, 0, len(summary.ExerciseData))
	for _, e := range summary.ExerciseData {
		slices = append(slices, Slice{
			Label: pkg.ToTitleCase(e.Name),
			Value: e.TotalVolume,
		})
	}
	return slices
}

// TopExercises ranks exercises by volume, ties keep summary order.
// n <= 0 returns all of them.
func TopExercises(summary *fitness.Summary, n int) []Slice {
	slices := Breakdown(summary)
	sort.SliceStable(slices, func(i, j int) bool {
		return slices[i].Value > slices[j].Value
	})
	if n > 0 && n < len(slices) {
		slices = slices[:n]
	}
	return slices
}
