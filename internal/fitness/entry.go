package fitness

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"
)

const (
	MaxWeight = 10_000
	MaxReps   = 1_000

	DateLayout = "2006-01-02"
)

var (
	ErrInvalidExercise   = errors.New("invalid exercise")
	ErrInvalidSubmission = errors.New("invalid workout submission")
	ErrInvalidDate       = errors.New("invalid workout date")
)

type UserSession struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

type ExerciseEntry struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
}

func (e ExerciseEntry) Volume() float64 {
	return e.Weight * float64(e.Reps)
}

// Normalized returns a copy with the name trimmed and lower-cased.
func (e ExerciseEntry) Normalized() ExerciseEntry {
	e.Name = strings.ToLower(strings.TrimSpace(e.Name))
	return e
}

// Validate reports every rule the entry violates. Zero weight or reps
// would contribute no volume, so they are rejected too.
func (e ExerciseEntry) Validate() error {
	var err error
	if strings.TrimSpace(e.Name) == "" {
		err = multierr.Append(err, fmt.Errorf("%w: name is required", ErrInvalidExercise))
	}
	if e.Weight <= 0 || e.Weight > MaxWeight {
		err = multierr.Append(err, fmt.Errorf("%w: weight must be in (0, %d], got %v", ErrInvalidExercise, MaxWeight, e.Weight))
	}
	if e.Reps <= 0 || e.Reps > MaxReps {
		err = multierr.Append(err, fmt.Errorf("%w: reps must be in (0, %d], got %d", ErrInvalidExercise, MaxReps, e.Reps))
	}
	return err
}

// ClientVolume is the running total shown while a workout is being filled in.
// The confirmed total always comes from the backend.
func ClientVolume(entries []ExerciseEntry) float64 {
	var total float64
	for _, e := range entries {
		total += e.Volume()
	}
	return total
}

type WorkoutSubmission struct {
	User      string          `json:"user"`
	Date      string          `json:"date"`
	Exercises []ExerciseEntry `json:"exercises"`
}

func NewWorkoutSubmission(user string, date time.Time, entries []ExerciseEntry) (*WorkoutSubmission, error) {
	var err error
	user = strings.TrimSpace(user)
	if user == "" {
		err = multierr.Append(err, fmt.Errorf("%w: user is required", ErrInvalidSubmission))
	}
	if len(entries) == 0 {
		err = multierr.Append(err, fmt.Errorf("%w: at least one exercise is required", ErrInvalidSubmission))
	}

	normalized := make([]ExerciseEntry, 0, len(entries))
	for i, e := range entries {
		e = e.Normalized()
		if vErr := e.Validate(); vErr != nil {
			err = multierr.Append(err, fmt.Errorf("exercise %d: %w", i+1, vErr))
		}
		normalized = append(normalized, e)
	}
	if err != nil {
		return nil, err
	}

	return &WorkoutSubmission{
		User:      user,
		Date:      date.Format(DateLayout),
		Exercises: normalized,
	}, nil
}

// ValidateWorkoutDate rejects dates in the future and dates more than a year back.
func ValidateWorkoutDate(date, now time.Time) error {
	day := truncateDay(date)
	today := truncateDay(now)
	if day.After(today) {
		return fmt.Errorf("%w: %s is in the future", ErrInvalidDate, date.Format(DateLayout))
	}
	if day.Before(today.AddDate(-1, 0, 0)) {
		return fmt.Errorf("%w: %s is more than a year ago", ErrInvalidDate, date.Format(DateLayout))
	}
	return nil
}

func ParseWorkoutDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidDate, err)
	}
	return t, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
