package google

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
)

// Scopes are the Gmail OAuth scopes the labeler needs: reading and
// modifying messages plus managing labels.
var Scopes = []string{
	gmail.GmailModifyScope,
	gmail.GmailLabelsScope,
}

// HasToken checks if a cached OAuth token exists at tokenPath.
func HasToken(tokenPath string) bool {
	_, err := os.ReadFile(tokenPath)
	return err == nil
}

// GetAuthURL returns the OAuth URL for user authorization.
func GetAuthURL() (string, error) {
	conf, err := getOAuthConfig()
	if err != nil {
		return "", err
	}
	return conf.AuthCodeURL("state", oauth2.AccessTypeOffline), nil
}

// SaveToken exchanges an authorization code for tokens and caches them
// at tokenPath.
func SaveToken(ctx context.Context, tokenPath, authCode string) error {
	conf, err := getOAuthConfig()
	if err != nil {
		return err
	}

	t, err := conf.Exchange(ctx, authCode)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}

	tokenData := t.AccessToken + " " + t.RefreshToken
	if err := os.WriteFile(tokenPath, []byte(tokenData), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

// getOAuthConfig returns the OAuth2 configuration for the Gmail API.
// Client credentials come from the environment; this is a configuration
// error surfaced before any remote call.
func getOAuthConfig() (*oauth2.Config, error) {
	clientID := os.Getenv("GOOGLE_OAUTH_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_OAUTH_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("GOOGLE_OAUTH_CLIENT_ID and GOOGLE_OAUTH_CLIENT_SECRET must be set")
	}

	const oob = "urn:ietf:wg:oauth:2.0:oob"
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  oob,
		Scopes:       Scopes,
	}, nil
}

// GetTokenSource returns an OAuth2 token source backed by the cached
// token at tokenPath. The token is validated (and refreshed if needed)
// before it is handed out.
func GetTokenSource(ctx context.Context, tokenPath string) (oauth2.TokenSource, error) {
	conf, err := getOAuthConfig()
	if err != nil {
		return nil, err
	}

	slurp, err := os.ReadFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found at %s", tokenPath)
	}

	f := strings.Fields(strings.TrimSpace(string(slurp)))
	if len(f) != 2 {
		return nil, fmt.Errorf("invalid token format in %s", tokenPath)
	}

	ts := conf.TokenSource(ctx, &oauth2.Token{
		AccessToken:  f[0],
		TokenType:    "Bearer",
		RefreshToken: f[1],
		Expiry:       time.Unix(1, 0),
	})

	if _, err := ts.Token(); err != nil {
		return nil, fmt.Errorf("cached token is invalid: %w", err)
	}

	return ts, nil
}

// GetHTTPClient returns an HTTP client configured with OAuth2
// authentication. The client is configured to use HTTP/1.1 to avoid
// HTTP/2 protocol errors with the Gmail API.
func GetHTTPClient(ctx context.Context, tokenPath string) (*http.Client, error) {
	ts, err := GetTokenSource(ctx, tokenPath)
	if err != nil {
		return nil, err
	}

	client := oauth2.NewClient(ctx, ts)

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	transport.Base = &http.Transport{
		ForceAttemptHTTP2: false,
	}

	return client, nil
}
