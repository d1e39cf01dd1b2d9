// Package progress derives yearly goal metrics from a lifted total.
// Nothing here rounds; rounding belongs to the presentation helpers.
package progress

import "time"

const (
	YearlyGoal = 25_000_000.0
	DaysInYear = 365
)

// DaysIntoYear counts days inclusively from Jan 1, which is day 1.
// Leap years are honoured, so Dec 31 of a leap year is day 366.
func DaysIntoYear(date time.Time) int {
	return date.YearDay()
}

// ProgressPercentage is not clamped, values above 100 or below 0 pass through.
func ProgressPercentage(totalLifted float64) float64 {
	return totalLifted / YearlyGoal * 100
}

func DailyTarget() float64 {
	return YearlyGoal / DaysInYear
}

// CurrentDailyAverage returns 0 when daysIntoYear is not positive.
func CurrentDailyAverage(totalLifted float64, daysIntoYear int) float64 {
	if daysIntoYear <= 0 {
		return 0
	}
	return totalLifted / float64(daysIntoYear)
}

func ProjectedTotal(currentDailyAverage float64) float64 {
	return currentDailyAverage * DaysInYear
}

func YearElapsedPercentage(daysIntoYear int) float64 {
	return float64(daysIntoYear) / DaysInYear * 100
}

type Report struct {
	TotalLifted           float64 `json:"total_lifted"`
	DaysIntoYear          int     `json:"days_into_year"`
	ProgressPercentage    float64 `json:"progress_percentage"`
	YearElapsedPercentage float64 `json:"year_elapsed_percentage"`
	DailyTarget           float64 `json:"daily_target"`
	CurrentDailyAverage   float64 `json:"current_daily_average"`
	ProjectedTotal        float64 `json:"projected_total"`
	RemainingToGoal       float64 `json:"remaining_to_goal"`
	OnTrack               bool    `json:"on_track"`
}

func NewReport(totalLifted float64, date time.Time) Report {
	days := DaysIntoYear(date)
	avg := CurrentDailyAverage(totalLifted, days)
	target := DailyTarget()
	return Report{
		TotalLifted:           totalLifted,
		DaysIntoYear:          days,
		ProgressPercentage:    ProgressPercentage(totalLifted),
		YearElapsedPercentage: YearElapsedPercentage(days),
		DailyTarget:           target,
		CurrentDailyAverage:   avg,
		ProjectedTotal:        ProjectedTotal(avg),
		RemainingToGoal:       YearlyGoal - totalLifted,
		OnTrack:               avg >= target,
	}
}
