package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/2beens/volumetracker/internal/backend"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Handler parses tool input, calls the service and formats the MCP result.
type Handler struct {
	service contextService
}

func NewHandler(service contextService) *Handler {
	return &Handler{
		service: service,
	}
}

// SummaryInput is the input for get_fitness_summary and get_progress_report.
type SummaryInput struct {
	User    string `json:"user" jsonschema:"Email of the user whose lifting is summarized"`
	Refresh bool   `json:"refresh,omitempty" jsonschema:"Fetch a fresh summary from the backend instead of the held one"`
}

// TopExercisesInput is the input for get_top_exercises.
type TopExercisesInput struct {
	User string `json:"user" jsonschema:"Email of the user"`
	Top  int    `json:"top,omitempty" jsonschema:"How many exercises to return, 0 returns all"`
}

// PlanInput is the input for generate_workout_plan.
type PlanInput struct{}

func errorResult(prefix string, err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: prefix + ": " + userMessage(err)}},
		IsError: true,
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// userMessage prefers the backend message shown in the apps over raw errors.
func userMessage(err error) string {
	var bErr *backend.Error
	if errors.As(err, &bErr) {
		return bErr.UserMessage()
	}
	return err.Error()
}

func jsonResult(v any) *mcp.CallToolResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error encoding response", err)
	}
	return textResult(string(raw))
}

func missingUser() *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: "user is required"}},
		IsError: true,
	}
}

// GetFitnessSummaryTool returns the MCP tool handler for get_fitness_summary.
func (h *Handler) GetFitnessSummaryTool() func(context.Context, *mcp.CallToolRequest, SummaryInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in SummaryInput) (*mcp.CallToolResult, any, error) {
		user := strings.TrimSpace(in.User)
		if user == "" {
			return missingUser(), nil, nil
		}
		summary, err := h.service.GetSummary(ctx, user, in.Refresh)
		if err != nil {
			return errorResult("Error fetching summary", err), nil, nil
		}
		return jsonResult(summary), nil, nil
	}
}

// GetProgressReportTool returns the MCP tool handler for get_progress_report.
func (h *Handler) GetProgressReportTool() func(context.Context, *mcp.CallToolRequest, SummaryInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in SummaryInput) (*mcp.CallToolResult, any, error) {
		user := strings.TrimSpace(in.User)
		if user == "" {
			return missingUser(), nil, nil
		}
		report, err := h.service.GetProgressReport(ctx, user, in.Refresh)
		if err != nil {
			return errorResult("Error building progress report", err), nil, nil
		}
		return textResult(report), nil, nil
	}
}

// GetTopExercisesTool returns the MCP tool handler for get_top_exercises.
func (h *Handler) GetTopExercisesTool() func(context.Context, *mcp.CallToolRequest, TopExercisesInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in TopExercisesInput) (*mcp.CallToolResult, any, error) {
		user := strings.TrimSpace(in.User)
		if user == "" {
			return missingUser(), nil, nil
		}
		if in.Top < 0 {
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: "top must not be negative"}},
				IsError: true,
			}, nil, nil
		}
		top, err := h.service.GetTopExercises(ctx, user, in.Top)
		if err != nil {
			return errorResult("Error fetching top exercises", err), nil, nil
		}
		return jsonResult(top), nil, nil
	}
}

// GenerateWorkoutPlanTool returns the MCP tool handler for generate_workout_plan.
func (h *Handler) GenerateWorkoutPlanTool() func(context.Context, *mcp.CallToolRequest, PlanInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ PlanInput) (*mcp.CallToolResult, any, error) {
		plan, err := h.service.GeneratePlan(ctx)
		if err != nil {
			return errorResult("Error generating plan", err), nil, nil
		}
		return textResult(plan), nil, nil
	}
}
