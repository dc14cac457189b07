package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/quality-match/hari-client-sub000/internal/httpclient"
	"github.com/quality-match/hari-client-sub000/internal/logging"
	jsonx "github.com/quality-match/hari-client-sub000/internal/shared/json"
)

// tokenRefreshSkew is how long before actual expiry a token is treated as
// stale, so in-flight requests never race the server-side cutoff.
const tokenRefreshSkew = 5 * time.Minute

type authToken struct {
	value     string
	expiresAt time.Time
}

func (t authToken) usable(now time.Time) bool {
	return t.value != "" && now.Add(tokenRefreshSkew).Before(t.expiresAt)
}

// tokenProvider exchanges password credentials for access tokens and caches
// the current one until it nears expiry. Safe for concurrent use.
type tokenProvider struct {
	authURL  string
	clientID string
	username string
	password string

	httpClient *http.Client
	logger     logging.Logger

	mu    sync.Mutex
	token authToken
}

func newTokenProvider(authURL, clientID, username, password string, timeout time.Duration, logger logging.Logger) *tokenProvider {
	return &tokenProvider{
		authURL:    authURL,
		clientID:   clientID,
		username:   username,
		password:   password,
		httpClient: httpclient.New(timeout),
		logger:     logging.OrNop(logger),
	}
}

// Token returns a usable access token, refreshing it when missing or close to
// expiry.
func (p *tokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token.usable(time.Now()) {
		return p.token.value, nil
	}

	token, err := p.fetch(ctx)
	if err != nil {
		return "", err
	}
	p.token = token
	return token.value, nil
}

// Invalidate drops the cached token so the next call re-authenticates.
// Used when the API rejects a token before its communicated expiry.
func (p *tokenProvider) Invalidate() {
	p.mu.Lock()
	p.token = authToken{}
	p.mu.Unlock()
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (p *tokenProvider) fetch(ctx context.Context) (authToken, error) {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("client_id", p.clientID)
	form.Set("username", p.username)
	form.Set("password", p.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return authToken{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	p.logger.Debug("Requesting access token for %s", p.username)
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return authToken{}, fmt.Errorf("token request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := httpclient.ReadAllWithLimit(resp.Body, 1<<20)
	if err != nil {
		return authToken{}, fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return authToken{}, &APIError{
			Method:     http.MethodPost,
			Path:       p.authURL,
			StatusCode: resp.StatusCode,
			Message:    "authentication failed",
			Body:       body,
		}
	}

	var payload tokenResponse
	if err := jsonx.Unmarshal(body, &payload); err != nil {
		return authToken{}, fmt.Errorf("decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return authToken{}, fmt.Errorf("token response contained no access token")
	}

	expiresIn := payload.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 300
	}

	p.logger.Debug("Access token obtained, expires in %ds", expiresIn)
	return authToken{
		value:     payload.AccessToken,
		expiresAt: time.Now().Add(time.Duration(expiresIn) * time.Second),
	}, nil
}
