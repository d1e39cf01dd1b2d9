package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/2beens/volumetracker/internal/middleware"
	"github.com/2beens/volumetracker/internal/tracker"

	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) doRequest(
	ctx context.Context,
	method, path string,
	body any,
	headers map[string]string,
) (*http.Response, []byte) {
	t := s.T()

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, fmt.Sprintf("%s%s", serverEndpoint, path), bodyReader)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, respBytes
}

func (s *IntegrationTestSuite) doLogin(ctx context.Context, t *testing.T, email string) string {
	return s.doDeviceLogin(ctx, t, email, "")
}

func (s *IntegrationTestSuite) doDeviceLogin(ctx context.Context, t *testing.T, email, device string) string {
	resp, respBytes := s.doRequest(ctx, "POST", "/a/login", tracker.LoginRequest{
		Email:       email,
		DisplayName: "Test User",
		Device:      device,
	}, map[string]string{
		middleware.HeaderAppSecret: testAppSecret,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(respBytes))

	var loginResp tracker.LoginResponse
	require.NoError(t, json.Unmarshal(respBytes, &loginResp))
	require.NotEmpty(t, loginResp.Token)
	return loginResp.Token
}

func authHeader(token string) map[string]string {
	return map[string]string{middleware.HeaderSessionToken: token}
}
