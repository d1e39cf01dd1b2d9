package test

import (
	"bytes"
	"context"
	"net/http"

	"github.com/2beens/volumetracker/internal/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mcpInitializeRequest = `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{
	"protocolVersion":"2025-06-18",
	"capabilities":{},
	"clientInfo":{"name":"integration-test","version":"1.0.0"}
}}`

func (s *IntegrationTestSuite) TestMCPRequiresAppSecret() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	send := func(secret string) int {
		req, err := http.NewRequestWithContext(ctx, "POST", serverEndpoint+"/mcp", bytes.NewBufferString(mcpInitializeRequest))
		require.NoError(t, err)
		req.Header.Set("User-Agent", "test-agent")
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json, text/event-stream")
		if secret != "" {
			req.Header.Set(middleware.HeaderAppSecret, secret)
		}
		resp, err := s.httpClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusUnauthorized, send(""))
	assert.Equal(t, http.StatusUnauthorized, send("wrong-secret"))
	assert.Equal(t, http.StatusOK, send(testAppSecret))
}
