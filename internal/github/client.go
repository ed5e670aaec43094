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
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/oauth2"

	"github.com/mikelane/codey/internal/moderation"
)

const (
	userCacheSize = 4096
	userCacheTTL  = 24 * time.Hour
)

// RetryConfig defines the retry behavior for API calls
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
}

// DefaultRetryConfig returns the retry behavior used when none is given
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     30 * time.Second,
		BackoffFactor:  2.0,
	}
}

// Option configures a client
type Option func(*options)

type options struct {
	baseURL string
	retry   RetryConfig
}

// WithBaseURL points the client at a GitHub Enterprise or test API root
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// WithRetryConfig overrides DefaultRetryConfig
func WithRetryConfig(rc RetryConfig) Option {
	return func(o *options) {
		o.retry = rc
	}
}

func buildOptions(opts []Option) options {
	o := options{retry: DefaultRetryConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// githubClient implements the Client interface using go-github
type githubClient struct {
	client      *github.Client
	retryConfig *RetryConfig
	// account creation dates never change, so lookups are cached across deliveries
	users *expirable.LRU[string, time.Time]
}

// NewClient creates a new GitHub client authenticated with a personal access token.
// An empty token creates an unauthenticated client.
func NewClient(token string, opts ...Option) (Client, error) {
	var httpClient *http.Client
	if token != "" {
		httpClient = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	}
	client, err := newClient(httpClient, nil, buildOptions(opts))
	if err != nil {
		return nil, err
	}
	return client, nil
}

func newClient(httpClient *http.Client, users *expirable.LRU[string, time.Time], o options) (*githubClient, error) {
	gh, err := newGitHub(httpClient, o.baseURL)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = newUserCache()
	}
	retry := o.retry
	return &githubClient{
		client:      gh,
		retryConfig: &retry,
		users:       users,
	}, nil
}

func newGitHub(httpClient *http.Client, baseURL string) (*github.Client, error) {
	gh := github.NewClient(httpClient)
	if baseURL == "" {
		return gh, nil
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GitHub API URL: %w", err)
	}
	gh.BaseURL = u
	return gh, nil
}

func newUserCache() *expirable.LRU[string, time.Time] {
	return expirable.NewLRU[string, time.Time](userCacheSize, nil, userCacheTTL)
}

// GetUserCreatedAt returns when the account was created
func (c *githubClient) GetUserCreatedAt(ctx context.Context, login string) (time.Time, error) {
	key := strings.ToLower(login)
	if createdAt, ok := c.users.Get(key); ok {
		return createdAt, nil
	}

	var user *github.User
	err := c.executeWithRetry(ctx, func() error {
		var err error
		user, _, err = c.client.Users.Get(ctx, login)
		return err
	})
	if err != nil {
		if isNotFound(err) {
			return time.Time{}, fmt.Errorf("user %s: %w", login, moderation.ErrNotFound)
		}
		return time.Time{}, fmt.Errorf("failed to get user: %w", err)
	}
	if user.CreatedAt == nil {
		return time.Time{}, fmt.Errorf("user %s has no creation date", login)
	}

	createdAt := user.GetCreatedAt().Time
	c.users.Add(key, createdAt)
	return createdAt, nil
}

// GetFileContent returns the decoded content of a file
func (c *githubClient) GetFileContent(ctx context.Context, owner, repo, path string) (string, error) {
	file, _, err := c.getContents(ctx, owner, repo, path)
	if err != nil {
		return "", err
	}
	if file == nil {
		return "", fmt.Errorf("%s/%s:%s is a directory: %w", owner, repo, path, moderation.ErrNotFound)
	}

	content, err := file.GetContent()
	if err != nil {
		return "", fmt.Errorf("failed to decode %s/%s:%s: %w", owner, repo, path, err)
	}
	return content, nil
}

// ListDirectory lists the entries of a directory
func (c *githubClient) ListDirectory(ctx context.Context, owner, repo, path string) ([]moderation.FileEntry, error) {
	file, dir, err := c.getContents(ctx, owner, repo, path)
	if err != nil {
		return nil, err
	}
	if file != nil {
		return nil, fmt.Errorf("%s/%s:%s is a file: %w", owner, repo, path, moderation.ErrNotFound)
	}

	entries := make([]moderation.FileEntry, 0, len(dir))
	for _, entry := range dir {
		if entry == nil {
			continue
		}
		entries = append(entries, moderation.FileEntry{
			Name: entry.GetName(),
			Path: entry.GetPath(),
			Type: entry.GetType(),
		})
	}
	return entries, nil
}

func (c *githubClient) getContents(ctx context.Context, owner, repo, path string) (*github.RepositoryContent, []*github.RepositoryContent, error) {
	var file *github.RepositoryContent
	var dir []*github.RepositoryContent

	err := c.executeWithRetry(ctx, func() error {
		var err error
		file, dir, _, err = c.client.Repositories.GetContents(ctx, owner, repo, path, nil)
		return err
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil, fmt.Errorf("%s/%s:%s: %w", owner, repo, path, moderation.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("failed to get contents: %w", err)
	}
	return file, dir, nil
}

// AddLabels adds labels to an issue or pull request
func (c *githubClient) AddLabels(ctx context.Context, item Item, labels []string) error {
	err := c.executeWithRetry(ctx, func() error {
		_, _, err := c.client.Issues.AddLabelsToIssue(ctx, item.Owner, item.Repo, item.Number, labels)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to add labels: %w", err)
	}
	return nil
}

// CloseItem closes an issue or pull request
func (c *githubClient) CloseItem(ctx context.Context, item Item, stateReason string) error {
	err := c.executeWithRetry(ctx, func() error {
		if item.IsPullRequest {
			_, _, err := c.client.PullRequests.Edit(ctx, item.Owner, item.Repo, item.Number, &github.PullRequest{
				State: github.String("closed"),
			})
			return err
		}

		req := &github.IssueRequest{State: github.String("closed")}
		if stateReason != "" {
			req.StateReason = github.String(stateReason)
		}
		_, _, err := c.client.Issues.Edit(ctx, item.Owner, item.Repo, item.Number, req)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to close #%d: %w", item.Number, err)
	}
	return nil
}

// CreateComment comments on an issue or pull request
func (c *githubClient) CreateComment(ctx context.Context, item Item, body string) error {
	err := c.executeWithRetry(ctx, func() error {
		_, _, err := c.client.Issues.CreateComment(ctx, item.Owner, item.Repo, item.Number, &github.IssueComment{
			Body: github.String(body),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// CreateDispatchEvent triggers a repository_dispatch workflow
func (c *githubClient) CreateDispatchEvent(ctx context.Context, owner, repo string, event *DispatchEvent) error {
	opts := github.DispatchRequestOptions{EventType: event.EventType}
	if event.Payload != nil {
		data, err := json.Marshal(event.Payload)
		if err != nil {
			return fmt.Errorf("failed to encode dispatch payload: %w", err)
		}
		raw := json.RawMessage(data)
		opts.ClientPayload = &raw
	}

	err := c.executeWithRetry(ctx, func() error {
		_, _, err := c.client.Repositories.Dispatch(ctx, owner, repo, opts)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to dispatch %s: %w", event.EventType, err)
	}
	return nil
}

// executeWithRetry executes an operation with exponential backoff retry
func (c *githubClient) executeWithRetry(ctx context.Context, operation func() error) error {
	var lastErr error

	for attempt := 0; attempt <= c.retryConfig.MaxRetries; attempt++ {
		// Check if context is cancelled before attempting
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = operation()

		// Success
		if lastErr == nil {
			apiRequests.WithLabelValues("success").Inc()
			return nil
		}

		// Check if error is retryable
		if !c.isRetryableError(lastErr) {
			apiRequests.WithLabelValues("error").Inc()
			return lastErr
		}
		apiRequests.WithLabelValues("retryable_error").Inc()

		// Don't retry if we've exhausted attempts
		if attempt == c.retryConfig.MaxRetries {
			break
		}

		backoff := c.calculateBackoff(attempt)
		if wait, limited := c.rateLimitWait(lastErr); limited && wait > backoff {
			backoff = min(wait, c.retryConfig.MaxBackoff)
		}

		// Wait with context cancellation support
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
			// Continue to next retry
		}
	}

	return fmt.Errorf("operation failed after %d retries: %w", c.retryConfig.MaxRetries, lastErr)
}

// isRetryableError determines if an error should trigger a retry
func (c *githubClient) isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return true
	}

	// Only wait out a primary rate limit that resets inside the backoff window
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return time.Until(rateErr.Rate.Reset.Time) <= c.retryConfig.MaxBackoff
	}

	// Check for GitHub API errors
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch ghErr.Response.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		case http.StatusForbidden:
			// Check if it's a rate limit error
			if ghErr.Message == "API rate limit exceeded" {
				return true
			}
		}
	}

	return false
}

// rateLimitWait returns how long GitHub asked us to wait, if it did
func (c *githubClient) rateLimitWait(err error) (time.Duration, bool) {
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		if abuseErr.RetryAfter != nil {
			return *abuseErr.RetryAfter, true
		}
		// Default wait for secondary rate limit
		return 60 * time.Second, true
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		if wait := time.Until(rateErr.Rate.Reset.Time); wait > 0 {
			return wait, true
		}
		return 0, true
	}

	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		if retryAfter := ghErr.Response.Header.Get("Retry-After"); retryAfter != "" {
			if secs, err := strconv.Atoi(retryAfter); err == nil && secs >= 0 {
				return time.Duration(secs) * time.Second, true
			}
		}
	}

	return 0, false
}

// calculateBackoff calculates the backoff duration for a retry attempt
func (c *githubClient) calculateBackoff(attempt int) time.Duration {
	factor := c.retryConfig.BackoffFactor
	if factor < 1 {
		factor = 2.0
	}
	base := float64(c.retryConfig.InitialBackoff) * math.Pow(factor, float64(attempt))

	// Add jitter (±20%)
	jitter := (rand.Float64() * 0.4) - 0.2 // -0.2 to +0.2
	backoff := time.Duration(base * (1 + jitter))

	// Cap at max backoff
	if backoff > c.retryConfig.MaxBackoff {
		backoff = c.retryConfig.MaxBackoff
	}

	return backoff
}

func isNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}
