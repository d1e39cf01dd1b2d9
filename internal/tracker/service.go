package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/volumetracker/internal/charts"
	"github.com/2beens/volumetracker/internal/companion"
	"github.com/2beens/volumetracker/internal/fitness"
	"github.com/2beens/volumetracker/internal/progress"
	"github.com/2beens/volumetracker/internal/session"
	"github.com/2beens/volumetracker/internal/telemetry/metrics"
	"github.com/2beens/volumetracker/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const DefaultTopExercises = 5

var (
	ErrNoSummary = errors.New("no summary fetched yet")
	ErrNoDevice  = errors.New("session has no paired companion device")
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=tracker

type backendApi interface {
	FetchSummary(ctx context.Context, user string) (*fitness.Summary, error)
	SubmitWorkout(ctx context.Context, submission *fitness.WorkoutSubmission) (*fitness.SubmitResult, error)
	GeneratePlan(ctx context.Context) (*fitness.WorkoutPlan, error)
}

type sessionStore interface {
	Login(ctx context.Context, user fitness.UserSession, device string) (string, error)
	Get(ctx context.Context, token string) (*session.Session, error)
	Logout(ctx context.Context, token string) (bool, error)
}

// companionLinks routes identities to the companion paired with a device.
type companionLinks interface {
	SendIdentity(ctx context.Context, device, email string)
	Identity(device string) (string, companion.State)
}

type HomeView struct {
	Summary   *fitness.Summary `json:"summary"`
	Report    progress.Report  `json:"report"`
	Bars      charts.BarSeries `json:"bars"`
	Breakdown []charts.Slice   `json:"breakdown"`
	Top       []charts.Slice   `json:"top"`
}

type SubmitView struct {
	Result  *fitness.SubmitResult `json:"result"`
	Message string                `json:"message"`
}

type IdentityView struct {
	Device    string `json:"device,omitempty"`
	Identity  string `json:"identity"`
	LinkState string `json:"link_state"`
}

// Service is the one place the surfaces go through. It owns the last
// fetched summaries and pushes sign ins to the paired companion.
type Service struct {
	api      backendApi
	sessions sessionStore
	links    companionLinks
	store    *SummaryStore
	metrics  *metrics.Manager
	topN     int
}

type ServiceParams struct {
	Api      backendApi
	Sessions sessionStore
	Links    companionLinks
	Store    *SummaryStore
	Metrics  *metrics.Manager
	TopN     int
}

func NewService(params ServiceParams) *Service {
	store := params.Store
	if store == nil {
		store = NewSummaryStore(DefaultSummaryCacheSizeMB, 0)
	}
	topN := params.TopN
	if topN <= 0 {
		topN = DefaultTopExercises
	}
	return &Service{
		api:      params.Api,
		sessions: params.Sessions,
		links:    params.Links,
		store:    store,
		metrics:  params.Metrics,
		topN:     topN,
	}
}

// Home fetches a fresh summary and derives everything the home screen shows.
// The held summary is replaced only once the whole view is ready, and the
// latest response wins when requests overlap.
func (s *Service) Home(ctx context.Context, user string, now time.Time) (_ *HomeView, err error) {
	ctx, span := tracing.StartSpan(ctx, "tracker.home")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	summary, err := s.api.FetchSummary(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("fetch summary: %w", err)
	}

	view := NewHomeView(summary, now, s.topN)
	span.SetAttributes(attribute.Float64("summary.total_lifted", summary.TotalLifted))

	if err := s.store.Put(user, summary); err != nil {
		log.Errorf("store summary for %s: %s", user, err)
	}

	return view, nil
}

// NewHomeView derives the progress report and chart series from a summary.
func NewHomeView(summary *fitness.Summary, now time.Time, topN int) *HomeView {
	report := progress.NewReport(summary.TotalLifted, now)
	return &HomeView{
		Summary:   summary,
		Report:    report,
		Bars:      charts.ProgressBars(report),
		Breakdown: charts.Breakdown(summary),
		Top:       charts.TopExercises(summary, topN),
	}
}

// LastSummary is the summary held from the last successful Home call.
func (s *Service) LastSummary(user string) (*fitness.Summary, error) {
	summary, ok := s.store.Get(user)
	if !ok {
		return nil, ErrNoSummary
	}
	return summary, nil
}

// Summary returns the held summary, fetching one when none is held yet.
func (s *Service) Summary(ctx context.Context, user string, now time.Time) (*fitness.Summary, error) {
	if summary, err := s.LastSummary(user); err == nil {
		return summary, nil
	}
	view, err := s.Home(ctx, user, now)
	if err != nil {
		return nil, err
	}
	return view.Summary, nil
}

// Submit validates and sends a workout. The confirmation shows the total the
// backend computed, never the local sum.
func (s *Service) Submit(
	ctx context.Context,
	user string,
	date time.Time,
	entries []fitness.ExerciseEntry,
	now time.Time,
) (_ *SubmitView, err error) {
	ctx, span := tracing.StartSpan(ctx, "tracker.submit")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if err := fitness.ValidateWorkoutDate(date, now); err != nil {
		return nil, err
	}
	submission, err := fitness.NewWorkoutSubmission(user, date, entries)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Float64("workout.client_volume", fitness.ClientVolume(submission.Exercises)))

	result, err := s.api.SubmitWorkout(ctx, submission)
	if err != nil {
		return nil, fmt.Errorf("submit workout: %w", err)
	}
	if s.metrics != nil {
		s.metrics.CounterWorkoutsSubmitted.Inc()
	}

	return &SubmitView{
		Result:  result,
		Message: progress.FormatTotalVolume(result.TotalVolume),
	}, nil
}

func (s *Service) Plan(ctx context.Context) (*fitness.WorkoutPlan, error) {
	plan, err := s.api.GeneratePlan(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate plan: %w", err)
	}
	return plan, nil
}

// SignIn opens a session for a user the auth provider vouched for. When
// the signing in device is paired, the identity goes to its companion only.
func (s *Service) SignIn(ctx context.Context, user fitness.UserSession, device string) (string, error) {
	if device != "" {
		if err := companion.ValidateDevice(device); err != nil {
			return "", err
		}
	}

	token, err := s.sessions.Login(ctx, user, device)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if device != "" && s.links != nil {
		s.links.SendIdentity(ctx, device, user.Email)
	}
	return token, nil
}

func (s *Service) SignOut(ctx context.Context, token string) (bool, error) {
	sess, err := s.sessions.Get(ctx, token)
	if err == nil {
		s.store.Delete(sess.User.Email)
	}
	loggedOut, err := s.sessions.Logout(ctx, token)
	if err != nil {
		return false, fmt.Errorf("logout: %w", err)
	}
	return loggedOut, nil
}

// Session rehydrates a session. It never talks to a companion.
func (s *Service) Session(ctx context.Context, token string) (*session.Session, error) {
	return s.sessions.Get(ctx, token)
}

// Resync re-sends the session user to the companion paired with the
// session's device, for a primary that restarted or a companion that missed it.
func (s *Service) Resync(ctx context.Context, sess *session.Session) (IdentityView, error) {
	if sess.Device == "" {
		return IdentityView{}, ErrNoDevice
	}
	if s.links == nil {
		return s.Identity(sess), nil
	}
	s.links.SendIdentity(ctx, sess.Device, sess.User.Email)
	return s.Identity(sess), nil
}

// Identity is what the companion paired with the session's device was last sent.
func (s *Service) Identity(sess *session.Session) IdentityView {
	view := IdentityView{
		Device:    sess.Device,
		Identity:  companion.Unknown,
		LinkState: companion.StateInactive.String(),
	}
	if sess.Device == "" || s.links == nil {
		return view
	}
	identity, state := s.links.Identity(sess.Device)
	if identity != "" {
		view.Identity = identity
	}
	view.LinkState = state.String()
	return view
}
