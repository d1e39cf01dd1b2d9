package test

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/2beens/volumetracker/internal/fitness"
	"github.com/2beens/volumetracker/internal/middleware"
	"github.com/2beens/volumetracker/internal/progress"
	"github.com/2beens/volumetracker/internal/tracker"
	"github.com/2beens/volumetracker/pkg"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestLoginLogout() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// no app secret, no sign in
	resp, _ := s.doRequest(ctx, "POST", "/a/login", tracker.LoginRequest{Email: gofakeit.Email()}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, respBytes := s.doRequest(ctx, "POST", "/a/login", tracker.LoginRequest{Email: "  "}, map[string]string{
		middleware.HeaderAppSecret: testAppSecret,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(respBytes))

	token := s.doLogin(ctx, t, gofakeit.Email())

	resp, _ = s.doRequest(ctx, "GET", "/tracker/identity", nil, authHeader(token))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, respBytes = s.doRequest(ctx, "GET", "/a/logout", nil, authHeader(token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"logged_out":true}`, string(respBytes))

	// the session is gone
	resp, _ = s.doRequest(ctx, "GET", "/tracker/home", nil, authHeader(token))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestHomeAndSubmit() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	email := gofakeit.Email()
	token := s.doLogin(ctx, t, email)

	// new user, nothing lifted yet
	resp, respBytes := s.doRequest(ctx, "GET", "/tracker/home", nil, authHeader(token))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(respBytes))
	var home tracker.HomeView
	require.NoError(t, json.Unmarshal(respBytes, &home))
	assert.Equal(t, 0.0, home.Summary.TotalLifted)
	assert.Empty(t, home.Breakdown)

	today := time.Now().Format(fitness.DateLayout)
	workout := tracker.WorkoutRequest{
		Date: today,
		Exercises: []fitness.ExerciseEntry{
			{Name: "Deadlift", Weight: 200, Reps: 5},
			{Name: " Squat", Weight: 150, Reps: 10},
			{Name: "deadlift", Weight: 220, Reps: 3},
		},
	}
	resp, respBytes = s.doRequest(ctx, "POST", "/tracker/workouts", workout, authHeader(token))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(respBytes))
	var submitted tracker.SubmitView
	require.NoError(t, json.Unmarshal(respBytes, &submitted))
	assert.Equal(t, 3160.0, submitted.Result.TotalVolume)
	assert.Equal(t, progress.FormatTotalVolume(3160), submitted.Message)
	assert.Equal(t, 1660.0, submitted.Result.ExerciseVolumes["deadlift"])

	resp, respBytes = s.doRequest(ctx, "GET", "/tracker/home", nil, authHeader(token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(respBytes, &home))
	assert.Equal(t, 3160.0, home.Summary.TotalLifted)
	require.Len(t, home.Breakdown, 2)
	assert.Equal(t, "Deadlift", home.Breakdown[0].Label)
	assert.Equal(t, "Squat", home.Breakdown[1].Label)
	assert.InDelta(t, 3160.0/progress.YearlyGoal*100, home.Report.ProgressPercentage, 1e-9)

	resp, respBytes = s.doRequest(ctx, "GET", "/tracker/charts/breakdown?top=1", nil, authHeader(token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var breakdown tracker.BreakdownResponse
	require.NoError(t, json.Unmarshal(respBytes, &breakdown))
	require.Len(t, breakdown.Top, 1)
	assert.Equal(t, "Deadlift", breakdown.Top[0].Label)
}

func (s *IntegrationTestSuite) TestSubmitValidation() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token := s.doLogin(ctx, t, gofakeit.Email())
	tomorrow := time.Now().AddDate(0, 0, 2).Format(fitness.DateLayout)

	cases := map[string]tracker.WorkoutRequest{
		"future date": {
			Date:      tomorrow,
			Exercises: []fitness.ExerciseEntry{{Name: "squat", Weight: 100, Reps: 5}},
		},
		"too heavy": {
			Date:      time.Now().Format(fitness.DateLayout),
			Exercises: []fitness.ExerciseEntry{{Name: "squat", Weight: fitness.MaxWeight + 1, Reps: 5}},
		},
		"no exercises": {
			Date: time.Now().Format(fitness.DateLayout),
		},
	}

	for name, workout := range cases {
		resp, respBytes := s.doRequest(ctx, "POST", "/tracker/workouts", workout, authHeader(token))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, name)

		var errResp pkg.ErrorResponse
		require.NoError(t, json.Unmarshal(respBytes, &errResp), name)
		assert.NotEmpty(t, errResp.Error, name)
	}
}

func (s *IntegrationTestSuite) TestPlanRateLimited() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token := s.doLogin(ctx, t, gofakeit.Email())

	resp, respBytes := s.doRequest(ctx, "GET", "/tracker/plan", nil, authHeader(token))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(respBytes))
	var plan fitness.WorkoutPlan
	require.NoError(t, json.Unmarshal(respBytes, &plan))
	assert.Equal(t, "Day 1: squat 5x5\n\nDay 2: bench 5x5", plan.Text)

	resp, _ = s.doRequest(ctx, "GET", "/tracker/plan", nil, authHeader(token))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.doRequest(ctx, "GET", "/tracker/plan", nil, authHeader(token))
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, 2, s.backend.PlanCalls())
}
