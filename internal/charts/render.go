package charts

import (
	"fmt"
	"strings"
	"time"

	"github.com/2beens/volumetracker/internal/fitness"
	"github.com/2beens/volumetracker/internal/progress"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
)

const (
	minRenderWidth  = 20
	minRenderHeight = 6
)

var (
	barColors = []lipgloss.Color{"10", "12", "13", "11", "14", "9"}

	legendStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
)

func barStyle(i int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(barColors[i%len(barColors)])
}

type chartValue struct {
	label string
	value float64
}

// RenderBars draws the series as a terminal bar chart with a legend.
func RenderBars(title string, series BarSeries, width, height int) string {
	values := make([]chartValue, 0, len(series))
	for _, b := range series {
		values = append(values, chartValue{label: b.Label, value: b.Value})
	}
	return renderChart(title, values, progress.FormatPercent, width, height)
}

// RenderSlices draws a volume breakdown as horizontal-label bars.
func RenderSlices(title string, slices []Slice, width, height int) string {
	values := make([]chartValue, 0, len(slices))
	for _, sl := range slices {
		values = append(values, chartValue{label: sl.Label, value: sl.Value})
	}
	return renderChart(title, values, progress.FormatVolume, width, height)
}

// renderChart draws one bar per value; formatValue only affects the legend.
func renderChart(title string, values []chartValue, formatValue func(float64) string, width, height int) string {
	if width < minRenderWidth {
		width = minRenderWidth
	}
	if height < minRenderHeight {
		height = minRenderHeight
	}

	chart := barchart.New(width, height)
	bars := make([]barchart.BarData, 0, len(values))
	legend := make([]string, 0, len(values))
	for i, v := range values {
		bars = append(bars, barchart.BarData{
			Label: v.label,
			Values: []barchart.BarValue{{
				Name:  v.label,
				Value: v.value,
				Style: barStyle(i),
			}},
		})
		legend = append(legend, fmt.Sprintf("%s %s: %s",
			barStyle(i).Render("●"), v.label, formatValue(v.value)))
	}
	chart.PushAll(bars)
	chart.Draw()

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		chart.View(),
		legendStyle.Render(strings.Join(legend, "  ")),
	)
}

// LoginPrompt is what the wearable shows until the phone shares an identity.
const LoginPrompt = "Sign in on your phone to see your stats."

// RenderStats is the compact wearable view: total lifted, goal progress
// against the year and the top exercises.
func RenderStats(summary *fitness.Summary, now time.Time, top int, width int) string {
	if summary == nil {
		return LoginPrompt
	}
	report := progress.NewReport(summary.TotalLifted, now)
	header := fmt.Sprintf("%s lbs lifted, %s of %s lbs",
		progress.FormatVolume(summary.TotalLifted),
		progress.FormatPercent(report.ProgressPercentage),
		progress.FormatVolume(progress.YearlyGoal),
	)

	parts := []string{
		titleStyle.Render(header),
		RenderBars("Progress", ProgressBars(report), width, minRenderHeight*2),
	}
	if slices := TopExercises(summary, top); len(slices) > 0 {
		parts = append(parts, RenderSlices("Top exercises", slices, width, minRenderHeight*2))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
