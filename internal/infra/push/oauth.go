package push

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// googleTokenURI is the default OAuth2 token endpoint for Google service
// accounts. A service account JSON file may override it.
const googleTokenURI = "https://oauth2.googleapis.com/token"

// fcmScope is the OAuth2 scope required for the FCM HTTP v1 API.
const fcmScope = "https://www.googleapis.com/auth/firebase.messaging"

// expirySkew is subtracted from the token lifetime so a token is never
// used in the last moments before the server considers it expired.
const expirySkew = time.Minute

// ServiceAccount holds the fields of a Google service account credential
// needed to mint FCM access tokens. Loading it from a JSON key file is
// the caller's concern.
type ServiceAccount struct {
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// ParseServiceAccount decodes a Google service account JSON key file.
func ParseServiceAccount(data []byte) (ServiceAccount, error) {
	var account ServiceAccount
	if err := json.Unmarshal(data, &account); err != nil {
		return ServiceAccount{}, fmt.Errorf("parse service account: %w", err)
	}
	if account.ClientEmail == "" || account.PrivateKey == "" {
		return ServiceAccount{}, fmt.Errorf("service account missing client_email or private_key")
	}
	return account, nil
}

// TokenSource yields a valid bearer token for FCM requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource returns the same token forever. Useful for tests and
// for environments where a sidecar handles credential rotation.
type StaticTokenSource string

func (s StaticTokenSource) Token(context.Context) (string, error) {
	return string(s), nil
}

// serviceAccountTokenSource exchanges a signed JWT assertion for an
// access token at the service account's token endpoint, caching the
// result until shortly before expiry.
type serviceAccountTokenSource struct {
	account    ServiceAccount
	httpClient *http.Client

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewServiceAccountTokenSource creates a caching token source for the
// given service account.
func NewServiceAccountTokenSource(account ServiceAccount, httpClient *http.Client) TokenSource {
	if account.TokenURI == "" {
		account.TokenURI = googleTokenURI
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &serviceAccountTokenSource{
		account:    account,
		httpClient: httpClient,
	}
}

func (s *serviceAccountTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Now().Before(s.expires) {
		return s.token, nil
	}

	token, expiresIn, err := s.exchange(ctx)
	if err != nil {
		return "", fmt.Errorf("Token: %w", err)
	}

	s.token = token
	s.expires = time.Now().Add(expiresIn - expirySkew)
	return s.token, nil
}

// exchange signs a one-hour RS256 assertion and trades it for an access
// token via the JWT bearer grant.
func (s *serviceAccountTokenSource) exchange(ctx context.Context) (string, time.Duration, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(s.account.PrivateKey))
	if err != nil {
		return "", 0, fmt.Errorf("parse private key: %w", err)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   s.account.ClientEmail,
		"scope": fcmScope,
		"aud":   s.account.TokenURI,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", 0, fmt.Errorf("sign assertion: %w", err)
	}

	form := url.Values{
		"grant_type": {"urn:ietf:params:oauth:grant-type:jwt-bearer"},
		"assertion":  {assertion},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.account.TokenURI, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("execute token request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", 0, fmt.Errorf("decode token response: %w", err)
	}
	if parsed.AccessToken == "" {
		return "", 0, fmt.Errorf("token endpoint returned no access token")
	}

	expiresIn := time.Duration(parsed.ExpiresIn) * time.Second
	if expiresIn <= expirySkew {
		expiresIn = expirySkew + time.Minute
	}
	return parsed.AccessToken, expiresIn, nil
}
