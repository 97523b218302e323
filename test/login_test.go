//go:build integration_test || all_tests

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manea-palluat/flexfit-workout-sub001/internal/auth"
	"github.com/manea-palluat/flexfit-workout-sub001/internal/tracking"
	"github.com/manea-palluat/flexfit-workout-sub001/internal/tracking/remote"
)

func (s *IntegrationTestSuite) TestLogin() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cases := map[string]struct {
		credentials        auth.Credentials
		expectedStatusCode int
	}{
		"good creds": {
			credentials:        auth.Credentials{Username: testUsername, Password: testPassword},
			expectedStatusCode: http.StatusOK,
		},
		"bad password": {
			credentials:        auth.Credentials{Username: testUsername, Password: "bad-password"},
			expectedStatusCode: http.StatusUnauthorized,
		},
		"unknown user": {
			credentials:        auth.Credentials{Username: "nobody", Password: testPassword},
			expectedStatusCode: http.StatusUnauthorized,
		},
		"no password": {
			credentials:        auth.Credentials{Username: testUsername},
			expectedStatusCode: http.StatusBadRequest,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			body, err := json.Marshal(tc.credentials)
			require.NoError(t, err)

			req, err := http.NewRequestWithContext(ctx, "POST", serverEndpoint+"/a/login", bytes.NewReader(body))
			require.NoError(t, err)
			req.Header.Set("Content-Type", "application/json")

			resp, err := s.httpClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tc.expectedStatusCode, resp.StatusCode)

			if resp.StatusCode == http.StatusOK {
				var session auth.LoginSession
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
				assert.NotEmpty(t, session.Token)
				assert.Equal(t, s.testOwnerID, session.OwnerID)
			}
		})
	}
}

func (s *IntegrationTestSuite) TestLoginThenLogout() {
	t := s.T()
	ctx := context.Background()

	identity, err := remote.Login(ctx, serverEndpoint, s.httpClient, auth.Credentials{
		Username: testUsername,
		Password: testPassword,
	})
	require.NoError(t, err)
	require.True(t, identity.SignedIn())

	client := remote.NewClient(serverEndpoint, identity, s.httpClient)
	_, err = client.ListByOwner(ctx, identity.OwnerID)
	require.NoError(t, err)

	require.NoError(t, client.SignOut(ctx))

	// the old token is dead
	stale := remote.NewClient(serverEndpoint, identity, s.httpClient)
	_, err = stale.ListByOwner(ctx, identity.OwnerID)
	assert.ErrorIs(t, err, tracking.ErrNotAuthenticated)
	assert.True(t, strings.Contains(err.Error(), "list"))
}
