package charts

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/2beens/volumetracker/internal/fitness"
	"github.com/2beens/volumetracker/internal/progress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSummary(t *testing.T) *fitness.Summary {
	t.Helper()
	s := &fitness.Summary{}
	require.NoError(t, json.Unmarshal([]byte(`{
		"user": "a@b.com",
		"exercise_data": {
			"bench press": {"total_volume": 1350, "total_reps": 10},
			"squat": {"total_volume": 5000, "total_reps": 50},
			"curl": {"total_volume": 400, "total_reps": 40},
			"deadlift": {"total_volume": 5000, "total_reps": 20}
		},
		"total_lifted": 11750
	}`), s))
	return s
}

func TestProgressBars(t *testing.T) {
	report := progress.NewReport(2_500_000, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC))
	bars := ProgressBars(report)
	require.Len(t, bars, 2)
	assert.Equal(t, LabelLifted, bars[0].Label)
	assert.InDelta(t, 10.0, bars[0].Value, 1e-9)
	assert.Equal(t, LabelYearElapsed, bars[1].Label)
	assert.InDelta(t, 100.0, bars[1].Value, 1e-9)
}

func TestBreakdown_SingleExercise(t *testing.T) {
	s := &fitness.Summary{}
	require.NoError(t, json.Unmarshal(
		[]byte(`{"user":"a@b.com","exercise_data":{"squat":{"total_volume":5000,"total_reps":50}},"total_lifted":5000}`),
		s,
	))
	assert.Equal(t, []Slice{{Label: "Squat", Value: 5000}}, Breakdown(s))
}

func TestBreakdown_KeepsSummaryOrder(t *testing.T) {
	s := testSummary(t)
	slices := Breakdown(s)
	require.Len(t, slices, 4)
	assert.Equal(t, "Bench Press", slices[0].Label)
	assert.Equal(t, "Squat", slices[1].Label)
	assert.Equal(t, "Curl", slices[2].Label)
	assert.Equal(t, "Deadlift", slices[3].Label)

	assert.Empty(t, Breakdown(nil))
}

func TestTopExercises(t *testing.T) {
	s := testSummary(t)
	before := append([]fitness.ExerciseTotals(nil), s.ExerciseData...)

	top := TopExercises(s, 3)
	require.Len(t, top, 3)
	// ties keep summary order
	assert.Equal(t, "Squat", top[0].Label)
	assert.Equal(t, "Deadlift", top[1].Label)
	assert.Equal(t, "Bench Press", top[2].Label)

	assert.Len(t, TopExercises(s, 0), 4)
	assert.Len(t, TopExercises(s, 10), 4)

	// summary untouched
	assert.Equal(t, before, s.ExerciseData)
}

func TestRenderBars(t *testing.T) {
	out := RenderBars("Progress", BarSeries{{Label: LabelLifted, Value: 40}, {Label: LabelYearElapsed, Value: 50}}, 40, 10)
	assert.Contains(t, out, "Progress")
	assert.Contains(t, out, "40.00%")
	assert.Contains(t, out, "50.00%")

	// tiny sizes are bumped up instead of panicking
	assert.NotPanics(t, func() {
		RenderBars("x", nil, 1, 1)
	})
}

func TestRenderSlices(t *testing.T) {
	out := RenderSlices("Breakdown", TopExercises(testSummary(t), 2), 40, 10)
	assert.Contains(t, out, "Breakdown")
	assert.Contains(t, out, "5K")
}

func TestRenderChart_LegendUsesFormatter(t *testing.T) {
	values := []chartValue{{label: "a", value: 1}, {label: "b", value: 2}}
	out := renderChart("T", values, func(v float64) string {
		return fmt.Sprintf("<%g>", v)
	}, 40, 10)
	assert.Contains(t, out, "a: <1>")
	assert.Contains(t, out, "b: <2>")
}

func TestRenderStats(t *testing.T) {
	assert.Equal(t, LoginPrompt, RenderStats(nil, time.Now(), 3, 40))

	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	out := RenderStats(testSummary(t), now, 2, 40)
	assert.Contains(t, out, "11.8K lbs lifted")
	assert.Contains(t, out, "of 25M lbs")
	assert.Contains(t, out, "Top exercises")
	assert.Contains(t, out, "Squat")
	assert.NotContains(t, out, "Curl")
}
