// Package main runs the tracker MCP server over stdio (for local agent use).
// The same MCP server is also mounted on the service at /mcp over HTTP.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/2beens/volumetracker/internal/backend"
	"github.com/2beens/volumetracker/internal/config"
	"github.com/2beens/volumetracker/internal/tracker"
	trackermcp "github.com/2beens/volumetracker/internal/tracker/mcp"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	apiKey := os.Getenv("TRACKER_API_KEY")
	if apiKey == "" {
		log.Fatalf("backend API key not set. use TRACKER_API_KEY")
	}

	// no sessions or companion link here, the tools only read summaries and plans
	service := tracker.NewService(tracker.ServiceParams{
		Api: backend.NewApi(backend.ApiParams{
			BaseURL: cfg.BackendBaseURL,
			APIKey:  apiKey,
			Timeout: cfg.BackendTimeout.Duration,
		}),
		Store: tracker.NewSummaryStore(cfg.SummaryCacheSizeMB, 0),
	})

	server := trackermcp.NewServer(service, "stdio")
	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatal(err)
	}
}
