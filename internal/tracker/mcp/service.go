package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/volumetracker/internal/charts"
	"github.com/2beens/volumetracker/internal/fitness"
	"github.com/2beens/volumetracker/internal/progress"
	"github.com/2beens/volumetracker/internal/tracker"
)

// trackerService is the slice of tracker.Service the tools need.
type trackerService interface {
	Home(ctx context.Context, user string, now time.Time) (*tracker.HomeView, error)
	Summary(ctx context.Context, user string, now time.Time) (*fitness.Summary, error)
	Plan(ctx context.Context) (*fitness.WorkoutPlan, error)
}

// contextService provides tracker data shaped for tool responses.
// Used by Handler for testability.
type contextService interface {
	GetSummary(ctx context.Context, user string, refresh bool) (*fitness.Summary, error)
	GetProgressReport(ctx context.Context, user string, refresh bool) (string, error)
	GetTopExercises(ctx context.Context, user string, top int) ([]charts.Slice, error)
	GeneratePlan(ctx context.Context) (string, error)
}

// ContextService implements the tool logic on top of the tracker service.
type ContextService struct {
	tracker trackerService
	NowFunc func() time.Time
}

func NewContextService(tracker trackerService) *ContextService {
	return &ContextService{
		tracker: tracker,
		NowFunc: time.Now,
	}
}

// GetSummary returns the held summary, or a fresh one when refresh is set or
// nothing is held yet.
func (s *ContextService) GetSummary(ctx context.Context, user string, refresh bool) (*fitness.Summary, error) {
	now := s.NowFunc()
	if refresh {
		view, err := s.tracker.Home(ctx, user, now)
		if err != nil {
			return nil, err
		}
		return view.Summary, nil
	}
	return s.tracker.Summary(ctx, user, now)
}

// GetProgressReport renders the yearly goal progress as markdown.
func (s *ContextService) GetProgressReport(ctx context.Context, user string, refresh bool) (string, error) {
	summary, err := s.GetSummary(ctx, user, refresh)
	if err != nil {
		return "", err
	}
	return formatReport(user, progress.NewReport(summary.TotalLifted, s.NowFunc())), nil
}

func (s *ContextService) GetTopExercises(ctx context.Context, user string, top int) ([]charts.Slice, error) {
	summary, err := s.GetSummary(ctx, user, false)
	if err != nil {
		return nil, err
	}
	return charts.TopExercises(summary, top), nil
}

func (s *ContextService) GeneratePlan(ctx context.Context) (string, error) {
	plan, err := s.tracker.Plan(ctx)
	if err != nil {
		return "", err
	}
	return plan.Text, nil
}

func formatReport(user string, r progress.Report) string {
	onTrack := "no"
	if r.OnTrack {
		onTrack = "yes"
	}

	var b strings.Builder
	b.WriteString("# Yearly volume progress\n\n")
	if user != "" {
		b.WriteString(fmt.Sprintf("User: %s\n\n", user))
	}
	b.WriteString("| Metric | Value |\n|--------|-------|\n")
	b.WriteString(fmt.Sprintf("| Total lifted | %s lbs |\n", progress.FormatVolume(r.TotalLifted)))
	b.WriteString(fmt.Sprintf("| Yearly goal | %s lbs |\n", progress.FormatVolume(progress.YearlyGoal)))
	b.WriteString(fmt.Sprintf("| Goal progress | %s |\n", progress.FormatPercent(r.ProgressPercentage)))
	b.WriteString(fmt.Sprintf("| Year elapsed | %s |\n", progress.FormatPercent(r.YearElapsedPercentage)))
	b.WriteString(fmt.Sprintf("| Days into year | %d |\n", r.DaysIntoYear))
	b.WriteString(fmt.Sprintf("| Daily target | %s lbs |\n", progress.FormatVolume(r.DailyTarget)))
	b.WriteString(fmt.Sprintf("| Current daily average | %s lbs |\n", progress.FormatVolume(r.CurrentDailyAverage)))
	b.WriteString(fmt.Sprintf("| Projected total | %s lbs |\n", progress.FormatVolume(r.ProjectedTotal)))
	b.WriteString(fmt.Sprintf("| On track | %s |\n", onTrack))
	return b.String()
}
