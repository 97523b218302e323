package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/manea-palluat/flexfit-workout-sub001/internal/auth"
	"github.com/manea-palluat/flexfit-workout-sub001/internal/tracking"
)

// Login exchanges credentials for an identity on the store at baseURL.
func Login(ctx context.Context, baseURL string, httpClient *http.Client, credentials auth.Credentials) (auth.Identity, error) {
	c := NewClient(baseURL, auth.Identity{}, httpClient)

	resp, err := c.doJSON(ctx, http.MethodPost, "/a/login", credentials)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return auth.Identity{}, fmt.Errorf("login: %w", statusError(resp))
	}

	var session auth.LoginSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return auth.Identity{}, fmt.Errorf("decode login session: %w", err)
	}

	identity := auth.Identity{
		OwnerID:  session.OwnerID,
		Username: credentials.Username,
		Token:    session.Token,
	}
	if !identity.SignedIn() {
		return auth.Identity{}, fmt.Errorf("login: %w", tracking.ErrNotAuthenticated)
	}
	return identity, nil
}
