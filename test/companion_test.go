package test

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/2beens/volumetracker/internal/companion"
	"github.com/2beens/volumetracker/internal/tracker"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) newWatch(ctx context.Context, device string) (*companion.Companion, func()) {
	t := s.T()
	transport := companion.NewRedisTransport(
		s.redisClient,
		companion.DevicePrefix(testCompanionPrefix, device),
		companion.SideCompanion,
	)
	require.NoError(t, transport.Activate(ctx))

	comp := companion.NewCompanion(transport, nil)
	runCtx, cancel := context.WithCancel(ctx)
	runDone := make(chan error, 1)
	go func() {
		runDone <- comp.Run(runCtx)
	}()

	return comp, func() {
		cancel()
		select {
		case err := <-runDone:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("companion did not stop")
		}
		_ = transport.Close()
	}
}

func (s *IntegrationTestSuite) TestCompanionSync() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	device := "watch-" + gofakeit.LetterN(8)

	// the watch announces itself before anyone signs in
	transport := companion.NewRedisTransport(s.redisClient, companion.DevicePrefix(testCompanionPrefix, device), companion.SideCompanion)
	require.NoError(t, transport.Announce(ctx))

	// signed in before the companion runs, picked up from the application context
	firstEmail := gofakeit.Email()
	token := s.doDeviceLogin(ctx, t, firstEmail, device)

	comp, stop := s.newWatch(ctx, device)
	defer stop()

	assert.Eventually(t, func() bool {
		return comp.Identity() == firstEmail
	}, 5*time.Second, 50*time.Millisecond)
	assert.False(t, comp.LoginRequired())

	// pushed while the companion is listening
	secondEmail := gofakeit.Email()
	s.doDeviceLogin(ctx, t, secondEmail, device)
	assert.Eventually(t, func() bool {
		return comp.Identity() == secondEmail
	}, 5*time.Second, 50*time.Millisecond)

	// the first phone session asks for a resync and wins the watch back
	resp, respBytes := s.doRequest(ctx, "POST", "/tracker/companion/sync", nil, authHeader(token))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(respBytes))
	var view tracker.IdentityView
	require.NoError(t, json.Unmarshal(respBytes, &view))
	assert.Equal(t, device, view.Device)
	assert.Equal(t, firstEmail, view.Identity)
	assert.Eventually(t, func() bool {
		return comp.Identity() == firstEmail
	}, 5*time.Second, 50*time.Millisecond)
}

func (s *IntegrationTestSuite) TestCompanionsStayWithTheirUsers() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	aliceDevice := "alice-" + gofakeit.LetterN(8)
	bobDevice := "bob-" + gofakeit.LetterN(8)
	aliceWatch, stopAlice := s.newWatch(ctx, aliceDevice)
	defer stopAlice()
	bobWatch, stopBob := s.newWatch(ctx, bobDevice)
	defer stopBob()

	aliceEmail := gofakeit.Email()
	bobEmail := gofakeit.Email()
	aliceToken := s.doDeviceLogin(ctx, t, aliceEmail, aliceDevice)
	bobToken := s.doDeviceLogin(ctx, t, bobEmail, bobDevice)

	require.Eventually(t, func() bool {
		return aliceWatch.Identity() == aliceEmail && bobWatch.Identity() == bobEmail
	}, 5*time.Second, 50*time.Millisecond)

	// both users keep using the app, nobody's watch switches owner
	for i := 0; i < 3; i++ {
		for _, token := range []string{aliceToken, bobToken} {
			resp, _ := s.doRequest(ctx, "GET", "/tracker/identity", nil, authHeader(token))
			require.Equal(t, http.StatusOK, resp.StatusCode)
		}
	}
	assert.Never(t, func() bool {
		return aliceWatch.Identity() != aliceEmail || bobWatch.Identity() != bobEmail
	}, 500*time.Millisecond, 50*time.Millisecond)

	// a browser session without a device cannot resync anything
	webToken := s.doLogin(ctx, t, gofakeit.Email())
	resp, _ := s.doRequest(ctx, "POST", "/tracker/companion/sync", nil, authHeader(webToken))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
