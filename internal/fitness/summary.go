package fitness

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

type ExerciseTotals struct {
	Name        string  `json:"-"`
	TotalVolume float64 `json:"total_volume"`
	TotalReps   float64 `json:"total_reps"`
}

// Summary is the server aggregated view of a user's lifting. ExerciseData
// keeps the order in which the backend listed the exercises.
type Summary struct {
	User         string
	TotalLifted  float64
	ExerciseData []ExerciseTotals
}

func (s *Summary) exercise(name string) (ExerciseTotals, bool) {
	for _, e := range s.ExerciseData {
		if e.Name == name {
			return e, true
		}
	}
	return ExerciseTotals{}, false
}

type summaryWire struct {
	User         string          `json:"user"`
	ExerciseData json.RawMessage `json:"exercise_data"`
	TotalLifted  float64         `json:"total_lifted"`
}

func (s *Summary) UnmarshalJSON(data []byte) error {
	var wire summaryWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	exercises, err := decodeOrderedTotals(wire.ExerciseData)
	if err != nil {
		return fmt.Errorf("exercise_data: %w", err)
	}

	s.User = wire.User
	s.TotalLifted = wire.TotalLifted
	s.ExerciseData = exercises
	return nil
}

func (s Summary) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"user":`)
	userBytes, err := json.Marshal(s.User)
	if err != nil {
		return nil, err
	}
	buf.Write(userBytes)

	buf.WriteString(`,"exercise_data":{`)
	for i, e := range s.ExerciseData {
		if i > 0 {
			buf.WriteByte(',')
		}
		nameBytes, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		totalsBytes, err := json.Marshal(e)
		if err != nil {
			return nil, err
		}
		buf.Write(nameBytes)
		buf.WriteByte(':')
		buf.Write(totalsBytes)
	}
	buf.WriteString(`},"total_lifted":`)
	totalBytes, err := json.Marshal(s.TotalLifted)
	if err != nil {
		return nil, err
	}
	buf.Write(totalBytes)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// decodeOrderedTotals walks the object token by token so key order survives.
func decodeOrderedTotals(raw json.RawMessage) ([]ExerciseTotals, error) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return []ExerciseTotals{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("expected an object")
	}

	totals := make([]ExerciseTotals, 0)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, errors.New("expected an exercise name")
		}
		var t ExerciseTotals
		if err := dec.Decode(&t); err != nil {
			return nil, fmt.Errorf("exercise %q: %w", name, err)
		}
		t.Name = name
		totals = append(totals, t)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return totals, nil
}

type WorkoutPlan struct {
	Text string `json:"text"`
}

// SubmitResult is what the backend returns for an accepted workout.
type SubmitResult struct {
	Message         string             `json:"message,omitempty"`
	User            string             `json:"user,omitempty"`
	Date            string             `json:"date,omitempty"`
	TotalVolume     float64            `json:"total_volume"`
	ExerciseVolumes map[string]float64 `json:"exercise_volumes,omitempty"`
	ExerciseReps    map[string]float64 `json:"exercise_reps,omitempty"`
}
