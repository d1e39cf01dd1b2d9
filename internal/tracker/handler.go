package tracker

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/volumetracker/internal/backend"
	"github.com/2beens/volumetracker/internal/charts"
	"github.com/2beens/volumetracker/internal/companion"
	"github.com/2beens/volumetracker/internal/fitness"
	"github.com/2beens/volumetracker/internal/middleware"
	"github.com/2beens/volumetracker/internal/progress"
	"github.com/2beens/volumetracker/internal/session"
	"github.com/2beens/volumetracker/internal/telemetry/metrics"
	"github.com/2beens/volumetracker/internal/telemetry/tracing"
	"github.com/2beens/volumetracker/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	chartWidth  = 60
	chartHeight = 12
)

type LoginRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	// Device is the pairing id of the companion that follows this sign in.
	Device string `json:"device,omitempty"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type LogoutResponse struct {
	LoggedOut bool `json:"logged_out"`
}

type WorkoutRequest struct {
	Date      string                  `json:"date"`
	Exercises []fitness.ExerciseEntry `json:"exercises"`
}

type BreakdownResponse struct {
	Breakdown []charts.Slice `json:"breakdown"`
	Top       []charts.Slice `json:"top"`
}

type Handler struct {
	service     *Service
	versionInfo string
	NowFunc     func() time.Time
}

func NewHandler(service *Service, versionInfo string) *Handler {
	return &Handler{
		service:     service,
		versionInfo: versionInfo,
		NowFunc:     time.Now,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	metricsManager *metrics.Manager,
	loginPerMin int,
	planPerMin int,
) {
	mainRouter.HandleFunc("/", handler.handleRoot).Methods("GET", "POST", "OPTIONS").Name("root")
	mainRouter.HandleFunc("/version", handler.handleVersion).Methods("GET").Name("version")

	loginSubrouter := mainRouter.PathPrefix("/a").Subrouter()
	loginSubrouter.
		HandleFunc("/login", handler.handleLogin).
		Methods("POST", "OPTIONS").Name("login")
	loginSubrouter.
		HandleFunc("/logout", handler.handleLogout).
		Methods("GET", "OPTIONS").Name("logout")
	loginSubrouter.Use(middleware.RateLimit(rateLimiter, "login", loginPerMin, metricsManager))

	trackerRouter := mainRouter.PathPrefix("/tracker").Subrouter()
	trackerRouter.HandleFunc("/home", handler.handleHome).Methods("GET", "OPTIONS").Name("home")
	trackerRouter.HandleFunc("/progress", handler.handleProgress).Methods("GET", "OPTIONS").Name("progress")
	trackerRouter.HandleFunc("/charts/bars", handler.handleBars).Methods("GET", "OPTIONS").Name("charts-bars")
	trackerRouter.HandleFunc("/charts/breakdown", handler.handleBreakdown).Methods("GET", "OPTIONS").Name("charts-breakdown")
	trackerRouter.HandleFunc("/workouts", handler.handleSubmitWorkout).Methods("POST", "OPTIONS").Name("submit-workout")
	trackerRouter.HandleFunc("/identity", handler.handleIdentity).Methods("GET", "OPTIONS").Name("identity")
	trackerRouter.HandleFunc("/companion/sync", handler.handleCompanionSync).Methods("POST", "OPTIONS").Name("companion-sync")

	// plan generation is the expensive backend call
	planRouter := trackerRouter.PathPrefix("/plan").Subrouter()
	planRouter.HandleFunc("", handler.handlePlan).Methods("GET", "OPTIONS").Name("plan")
	planRouter.Use(middleware.RateLimit(rateLimiter, "plan", planPerMin, metricsManager))
}

func (handler *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "I'm OK, thanks ;)")
}

func (handler *Handler) handleVersion(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, handler.versionInfo)
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.login")
	defer span.End()

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("login, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid login request", http.StatusBadRequest)
		return
	}

	token, err := handler.service.SignIn(ctx, fitness.UserSession{
		Email:       req.Email,
		DisplayName: req.DisplayName,
	}, req.Device)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		log.Errorf("login [%s]: %s", req.Email, err)
		writeServiceError(w, err)
		return
	}

	span.SetAttributes(attribute.String("user.email", req.Email))
	pkg.WriteJSON(w, LoginResponse{Token: token}, http.StatusOK)
}

func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.logout")
	defer span.End()

	token := r.Header.Get(middleware.HeaderSessionToken)
	if token == "" {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	loggedOut, err := handler.service.SignOut(ctx, token)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		log.Errorf("logout: %s", err)
		pkg.WriteJSONError(w, "logout failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, LogoutResponse{LoggedOut: loggedOut}, http.StatusOK)
}

func (handler *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.home")
	defer span.End()

	user, ok := requestUser(w, r)
	if !ok {
		return
	}

	view, err := handler.service.Home(ctx, user, handler.NowFunc())
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		log.Errorf("home [%s]: %s", user, err)
		writeServiceError(w, err)
		return
	}

	pkg.WriteJSON(w, view, http.StatusOK)
}

func (handler *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.progress")
	defer span.End()

	user, ok := requestUser(w, r)
	if !ok {
		return
	}

	now := handler.NowFunc()
	summary, err := handler.service.Summary(ctx, user, now)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		log.Errorf("progress [%s]: %s", user, err)
		writeServiceError(w, err)
		return
	}

	pkg.WriteJSON(w, progress.NewReport(summary.TotalLifted, now), http.StatusOK)
}

// handleBars returns the lifted vs elapsed series; format=text renders it
// for terminals.
func (handler *Handler) handleBars(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.charts.bars")
	defer span.End()

	user, ok := requestUser(w, r)
	if !ok {
		return
	}

	now := handler.NowFunc()
	summary, err := handler.service.Summary(ctx, user, now)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		log.Errorf("charts bars [%s]: %s", user, err)
		writeServiceError(w, err)
		return
	}

	bars := charts.ProgressBars(progress.NewReport(summary.TotalLifted, now))
	if r.URL.Query().Get("format") == "text" {
		pkg.WriteTextResponseOK(w, charts.RenderBars("Yearly progress", bars, chartWidth, chartHeight))
		return
	}
	pkg.WriteJSON(w, bars, http.StatusOK)
}

func (handler *Handler) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.charts.breakdown")
	defer span.End()

	user, ok := requestUser(w, r)
	if !ok {
		return
	}

	top := handler.service.topN
	if topStr := r.URL.Query().Get("top"); topStr != "" {
		n, err := strconv.Atoi(topStr)
		if err != nil || n < 0 {
			pkg.WriteJSONError(w, "top must be a non negative number", http.StatusBadRequest)
			return
		}
		top = n
	}

	summary, err := handler.service.Summary(ctx, user, handler.NowFunc())
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		log.Errorf("charts breakdown [%s]: %s", user, err)
		writeServiceError(w, err)
		return
	}

	resp := BreakdownResponse{
		Breakdown: charts.Breakdown(summary),
		Top:       charts.TopExercises(summary, top),
	}
	if r.URL.Query().Get("format") == "text" {
		pkg.WriteTextResponseOK(w, charts.RenderSlices("Top exercises", resp.Top, chartWidth, chartHeight))
		return
	}
	pkg.WriteJSON(w, resp, http.StatusOK)
}

func (handler *Handler) handleSubmitWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.workouts.submit")
	defer span.End()

	user, ok := requestUser(w, r)
	if !ok {
		return
	}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != pkg.ContentType.JSON {
		pkg.WriteJSONError(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req WorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("submit workout, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid workout", http.StatusBadRequest)
		return
	}

	date, err := fitness.ParseWorkoutDate(req.Date)
	if err != nil {
		pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	view, err := handler.service.Submit(ctx, user, date, req.Exercises, handler.NowFunc())
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		log.Errorf("submit workout [%s]: %s", user, err)
		writeServiceError(w, err)
		return
	}

	log.Debugf("workout submitted [%s] [%s]: %s", user, req.Date, view.Message)
	pkg.WriteJSON(w, view, http.StatusCreated)
}

func (handler *Handler) handlePlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.plan")
	defer span.End()

	plan, err := handler.service.Plan(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		log.Errorf("generate plan: %s", err)
		writeServiceError(w, err)
		return
	}

	pkg.WriteJSON(w, plan, http.StatusOK)
}

func (handler *Handler) handleIdentity(w http.ResponseWriter, r *http.Request) {
	sess, ok := requestSession(w, r)
	if !ok {
		return
	}
	pkg.WriteJSON(w, handler.service.Identity(sess), http.StatusOK)
}

// handleCompanionSync is called by the primary device that owns the session.
func (handler *Handler) handleCompanionSync(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.companion.sync")
	defer span.End()

	sess, ok := requestSession(w, r)
	if !ok {
		return
	}

	view, err := handler.service.Resync(ctx, sess)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		log.Errorf("companion sync [%s]: %s", sess.User.Email, err)
		writeServiceError(w, err)
		return
	}

	span.SetAttributes(attribute.String("companion.device", sess.Device))
	pkg.WriteJSON(w, view, http.StatusOK)
}

func requestSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok || sess.User.Email == "" {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return nil, false
	}
	return sess, true
}

func requestUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	sess, ok := requestSession(w, r)
	if !ok {
		return "", false
	}
	return sess.User.Email, true
}

// StatusForError maps a service error to the status code and message a
// client is shown.
func StatusForError(err error) (int, string) {
	switch {
	case errors.Is(err, fitness.ErrInvalidDate),
		errors.Is(err, fitness.ErrInvalidSubmission),
		errors.Is(err, fitness.ErrInvalidExercise),
		errors.Is(err, session.ErrInvalidEmail),
		errors.Is(err, companion.ErrInvalidDevice),
		errors.Is(err, ErrNoDevice):
		return http.StatusBadRequest, err.Error()
	}

	var bErr *backend.Error
	if !errors.As(err, &bErr) {
		return http.StatusInternalServerError, "Something went wrong."
	}

	switch bErr.Kind {
	case backend.KindAuthentication:
		return http.StatusUnauthorized, bErr.UserMessage()
	case backend.KindServer, backend.KindHTTP, backend.KindDecoding, backend.KindInvalidResponse:
		return http.StatusBadGateway, bErr.UserMessage()
	case backend.KindNetwork:
		return http.StatusGatewayTimeout, bErr.UserMessage()
	default:
		return http.StatusInternalServerError, bErr.UserMessage()
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	status, msg := StatusForError(err)
	pkg.WriteJSONError(w, msg, status)
}
