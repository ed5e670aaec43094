// MIT License
//
// Copyright (c) 2025 Mike Lane
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package github

import (
	"context"
	"crypto/rsa"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/oauth2"
)

const (
	// GitHub rejects app JWTs valid for more than ten minutes
	appJWTLifetime = 9 * time.Minute
	// clock drift allowance for the iat claim
	appJWTBackdate = 60 * time.Second

	installationCacheSize = 256
	installationCacheTTL  = time.Hour
	tokenRequestTimeout   = 30 * time.Second
)

// ClientProvider returns the client to use for a webhook delivery
type ClientProvider interface {
	// ClientFor returns a client for the installation. installationID is zero
	// when the delivery did not come from a GitHub App installation.
	ClientFor(installationID int64) (Client, error)
}

// staticProvider serves every delivery with the same client
type staticProvider struct {
	client Client
}

// StaticProvider returns a ClientProvider that always returns client
func StaticProvider(client Client) ClientProvider {
	return &staticProvider{client: client}
}

func (p *staticProvider) ClientFor(int64) (Client, error) {
	return p.client, nil
}

// App authenticates as a GitHub App and hands out installation clients
type App struct {
	key      *rsa.PrivateKey
	clients  *expirable.LRU[int64, Client]
	users    *expirable.LRU[string, time.Time]
	now      func() time.Time
	opts     options
	fallback Client
	mu       sync.Mutex
	id       int64
}

// NewApp creates an App from its ID and PEM encoded private key
func NewApp(appID int64, privateKeyPEM []byte, opts ...Option) (*App, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse app private key: %w", err)
	}

	return &App{
		id:      appID,
		key:     key,
		clients: expirable.NewLRU[int64, Client](installationCacheSize, nil, installationCacheTTL),
		users:   newUserCache(),
		now:     time.Now,
		opts:    buildOptions(opts),
	}, nil
}

// WithFallback sets the client used for deliveries without an installation
func (a *App) WithFallback(client Client) *App {
	a.fallback = client
	return a
}

// JWT returns a signed token authenticating as the app itself
func (a *App) JWT() (string, error) {
	now := a.now()
	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now.Add(-appJWTBackdate)),
		ExpiresAt: jwt.NewNumericDate(now.Add(appJWTLifetime)),
		Issuer:    strconv.FormatInt(a.id, 10),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(a.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign app JWT: %w", err)
	}
	return signed, nil
}

// ClientFor returns a client authenticated as the installation. Clients are
// cached and refresh their installation token when it expires.
func (a *App) ClientFor(installationID int64) (Client, error) {
	if installationID == 0 {
		if a.fallback == nil {
			return nil, fmt.Errorf("delivery has no installation and no fallback token is configured")
		}
		return a.fallback, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if client, ok := a.clients.Get(installationID); ok {
		return client, nil
	}

	source := oauth2.ReuseTokenSource(nil, &installationTokenSource{app: a, installationID: installationID})
	client, err := newClient(oauth2.NewClient(context.Background(), source), a.users, a.opts)
	if err != nil {
		return nil, err
	}
	a.clients.Add(installationID, client)
	return client, nil
}

// InstallationToken exchanges the app JWT for an installation access token
func (a *App) InstallationToken(ctx context.Context, installationID int64) (*oauth2.Token, error) {
	signed, err := a.JWT()
	if err != nil {
		return nil, err
	}

	gh, err := newGitHub(nil, a.opts.baseURL)
	if err != nil {
		return nil, err
	}
	gh = gh.WithAuthToken(signed)

	token, _, err := gh.Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create installation token for %d: %w", installationID, err)
	}

	return &oauth2.Token{
		AccessToken: token.GetToken(),
		TokenType:   "Bearer",
		Expiry:      token.GetExpiresAt().Time,
	}, nil
}

// installationTokenSource mints installation tokens on demand
type installationTokenSource struct {
	app            *App
	installationID int64
}

func (s *installationTokenSource) Token() (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(context.Background(), tokenRequestTimeout)
	defer cancel()
	return s.app.InstallationToken(ctx, s.installationID)
}
