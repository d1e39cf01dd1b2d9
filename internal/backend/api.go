package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/2beens/volumetracker/internal/fitness"
	"github.com/2beens/volumetracker/internal/telemetry/metrics"
	"github.com/2beens/volumetracker/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultTimeout = 15 * time.Second

	HeaderAPIKey    = "x-api-key"
	HeaderUserEmail = "x-user-email"

	endpointGet    = "get"
	endpointPost   = "post"
	endpointClaude = "claude"
)

type ApiParams struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
	Metrics    *metrics.Manager
}

// Api talks to the fitness backend. It never retries, every failure is
// surfaced to the caller as *Error.
type Api struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	timeout    time.Duration
	metrics    *metrics.Manager
}

func NewApi(params ApiParams) *Api {
	httpClient := params.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Api{
		baseURL:    params.BaseURL,
		apiKey:     params.APIKey,
		httpClient: httpClient,
		timeout:    timeout,
		metrics:    params.Metrics,
	}
}

type fetchSummaryRequest struct {
	User string `json:"user"`
}

func (api *Api) FetchSummary(ctx context.Context, user string) (_ *fitness.Summary, err error) {
	ctx, span := tracing.StartSpan(ctx, "backend.fetchSummary")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	defer api.observe(endpointGet, time.Now(), &err)

	body, err := encodeBody(fetchSummaryRequest{User: user})
	if err != nil {
		return nil, err
	}

	respBytes, err := api.do(ctx, span, http.MethodPost, endpointGet, user, body)
	if err != nil {
		return nil, err
	}

	summary := &fitness.Summary{}
	if err := json.Unmarshal(respBytes, summary); err != nil {
		return nil, newError(KindDecoding, 0, fmt.Errorf("summary: %w", err))
	}
	span.SetAttributes(attribute.Int("summary.exercises", len(summary.ExerciseData)))
	return summary, nil
}

func (api *Api) SubmitWorkout(ctx context.Context, submission *fitness.WorkoutSubmission) (_ *fitness.SubmitResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "backend.submitWorkout")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	defer api.observe(endpointPost, time.Now(), &err)

	if submission == nil {
		return nil, newError(KindSerialization, 0, errors.New("nil submission"))
	}
	span.SetAttributes(
		attribute.String("workout.date", submission.Date),
		attribute.Int("workout.exercises", len(submission.Exercises)),
	)

	body, err := encodeBody(submission)
	if err != nil {
		return nil, err
	}

	respBytes, err := api.do(ctx, span, http.MethodPost, endpointPost, submission.User, body)
	if err != nil {
		return nil, err
	}

	result := &fitness.SubmitResult{}
	if err := json.Unmarshal(respBytes, result); err != nil {
		return nil, newError(KindDecoding, 0, fmt.Errorf("submit result: %w", err))
	}
	return result, nil
}

// planBlock fields are pointers so a block missing either key is rejected.
type planBlock struct {
	Type *string `json:"type"`
	Text *string `json:"text"`
}

type planResponse struct {
	WorkoutPlan json.RawMessage `json:"workout_plan"`
}

func (api *Api) GeneratePlan(ctx context.Context) (_ *fitness.WorkoutPlan, err error) {
	ctx, span := tracing.StartSpan(ctx, "backend.generatePlan")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	defer api.observe(endpointClaude, time.Now(), &err)

	respBytes, err := api.do(ctx, span, http.MethodGet, endpointClaude, "", nil)
	if err != nil {
		return nil, err
	}

	text, err := decodePlan(respBytes)
	if err != nil {
		return nil, newError(KindDecoding, 0, err)
	}
	return &fitness.WorkoutPlan{Text: text}, nil
}

// decodePlan accepts the plan either as a plain string or as a list of
// typed blocks, in which case the text blocks are joined by a blank line.
func decodePlan(respBytes []byte) (string, error) {
	var resp planResponse
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return "", fmt.Errorf("plan response: %w", err)
	}
	raw := bytes.TrimSpace(resp.WorkoutPlan)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", fmt.Errorf("%w: workout_plan missing", ErrUnrecognizedShape)
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text, nil
	}

	var blocks []planBlock
	if err := json.Unmarshal(raw, &blocks); err == nil {
		parts := make([]string, 0, len(blocks))
		for i, b := range blocks {
			if b.Type == nil || b.Text == nil {
				return "", fmt.Errorf("%w: block %d needs type and text", ErrUnrecognizedShape, i)
			}
			if *b.Type != "text" {
				continue
			}
			parts = append(parts, *b.Text)
		}
		return strings.Join(parts, "\n\n"), nil
	}

	return "", ErrUnrecognizedShape
}

func encodeBody(v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, newError(KindSerialization, 0, err)
	}
	return body, nil
}

func (api *Api) endpointURL(endpoint string) (string, error) {
	base, err := url.Parse(api.baseURL)
	if err != nil {
		return "", newError(KindInvalidURL, 0, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return "", newError(KindInvalidURL, 0, fmt.Errorf("base url [%s] needs a scheme and a host", api.baseURL))
	}
	return base.JoinPath(endpoint).String(), nil
}

func (api *Api) do(
	ctx context.Context,
	span trace.Span,
	method, endpoint, userEmail string,
	body []byte,
) ([]byte, error) {
	endpointURL, err := api.endpointURL(endpoint)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, api.timeout)
	defer cancel()

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpointURL, bodyReader)
	if err != nil {
		return nil, newError(KindInvalidURL, 0, err)
	}
	req.Header.Set(HeaderAPIKey, api.apiKey)
	if userEmail != "" {
		req.Header.Set(HeaderUserEmail, userEmail)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Tracef("backend call: %s %s", method, endpointURL)

	resp, err := api.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Warnf("close backend response body: %s", err)
		}
	}()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, newError(KindNetwork, 0, err)
		}
		return nil, newError(KindInvalidResponse, resp.StatusCode, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Debugf("backend call %s %s: status %d, body: %s", method, endpoint, resp.StatusCode, respBytes)
		return nil, newError(classifyStatus(resp.StatusCode), resp.StatusCode, nil)
	}

	return respBytes, nil
}

func classifyTransportError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && !urlErr.Timeout() && isURLProblem(urlErr.Err) {
		return newError(KindInvalidURL, 0, err)
	}
	return newError(KindNetwork, 0, err)
}

func isURLProblem(err error) bool {
	// the transport rejects unsupported schemes before dialing
	return err != nil && strings.Contains(err.Error(), "unsupported protocol scheme")
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (api *Api) observe(endpoint string, start time.Time, errPtr *error) {
	if api.metrics == nil {
		return
	}
	outcome := metrics.OutcomeOK
	if errPtr != nil && *errPtr != nil {
		outcome = metrics.OutcomeError
	}
	api.metrics.CounterBackendCalls.WithLabelValues(endpoint, outcome).Inc()
	api.metrics.HistogramBackendCallDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
