package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds an MCP server with the tracker tools: summary, progress
// report, top exercises and workout plan.
// Mounted at /mcp by internal/server and served over stdio by cmd/tracker_mcp.
func NewServer(tracker trackerService, version string) *mcp.Server {
	h := NewHandler(NewContextService(tracker))
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "volume-tracker",
		Version: version,
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_fitness_summary",
		Description: "Returns the user's lifting summary: total lifted and per exercise total volume and reps, in backend order. Args: user (email); optional: refresh to bypass the held summary.",
	}, h.GetFitnessSummaryTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_progress_report",
		Description: "Returns progress toward the 25M lbs yearly goal: percent lifted, percent of year elapsed, daily target, current daily average and projected total. Args: user (email); optional: refresh.",
	}, h.GetProgressReportTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_top_exercises",
		Description: "Returns exercises ranked by total volume. Args: user (email); optional: top (0 returns all).",
	}, h.GetTopExercisesTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "generate_workout_plan",
		Description: "Asks the backend to generate a workout plan and returns it as text.",
	}, h.GenerateWorkoutPlanTool())

	return s
}
