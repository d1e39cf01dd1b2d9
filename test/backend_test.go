package test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/2beens/volumetracker/internal/backend"
	"github.com/2beens/volumetracker/internal/fitness"
)

// fakeBackend aggregates posted workouts per user the way the real
// REST backend does, keeping exercises in first-seen order.
type fakeBackend struct {
	server *httptest.Server
	apiKey string

	mu        sync.Mutex
	summaries map[string]*fitness.Summary
	planCalls int
}

func newFakeBackend(apiKey string) *fakeBackend {
	b := &fakeBackend{
		apiKey:    apiKey,
		summaries: make(map[string]*fitness.Summary),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/get", b.handleGet)
	mux.HandleFunc("/post", b.handlePost)
	mux.HandleFunc("/claude", b.handlePlan)
	b.server = httptest.NewServer(b.checkAPIKey(mux))
	return b
}

func (b *fakeBackend) URL() string {
	return b.server.URL
}

func (b *fakeBackend) Close() {
	b.server.Close()
}

func (b *fakeBackend) PlanCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.planCalls
}

func (b *fakeBackend) checkAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(backend.HeaderAPIKey) != b.apiKey {
			http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *fakeBackend) handleGet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		User string `json:"user"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.User == "" {
		http.Error(w, `{"error":"user required"}`, http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	summary, ok := b.summaries[req.User]
	if !ok {
		summary = &fitness.Summary{User: req.User}
	}
	respBytes, err := json.Marshal(summary)
	b.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_, _ = w.Write(respBytes)
}

func (b *fakeBackend) handlePost(w http.ResponseWriter, r *http.Request) {
	var sub fitness.WorkoutSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		http.Error(w, `{"error":"bad workout"}`, http.StatusBadRequest)
		return
	}

	result := fitness.SubmitResult{
		Message:         "Workout saved",
		User:            sub.User,
		Date:            sub.Date,
		ExerciseVolumes: make(map[string]float64),
		ExerciseReps:    make(map[string]float64),
	}

	b.mu.Lock()
	summary, ok := b.summaries[sub.User]
	if !ok {
		summary = &fitness.Summary{User: sub.User}
		b.summaries[sub.User] = summary
	}
	for _, e := range sub.Exercises {
		volume := e.Volume()
		result.TotalVolume += volume
		result.ExerciseVolumes[e.Name] += volume
		result.ExerciseReps[e.Name] += float64(e.Reps)

		summary.TotalLifted += volume
		found := false
		for i := range summary.ExerciseData {
			if summary.ExerciseData[i].Name == e.Name {
				summary.ExerciseData[i].TotalVolume += volume
				summary.ExerciseData[i].TotalReps += float64(e.Reps)
				found = true
				break
			}
		}
		if !found {
			summary.ExerciseData = append(summary.ExerciseData, fitness.ExerciseTotals{
				Name:        e.Name,
				TotalVolume: volume,
				TotalReps:   float64(e.Reps),
			})
		}
	}
	b.mu.Unlock()

	respBytes, err := json.Marshal(result)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_, _ = w.Write(respBytes)
}

func (b *fakeBackend) handlePlan(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	b.planCalls++
	b.mu.Unlock()
	_, _ = w.Write([]byte(`{"workout_plan":[
		{"type":"text","text":"Day 1: squat 5x5"},
		{"type":"tool_use","text":"ignored"},
		{"type":"text","text":"Day 2: bench 5x5"}
	]}`))
}
