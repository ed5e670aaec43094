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

// Package github provides GitHub API integration for Codey.
//
// This package implements the client the webhook server uses to look up
// authors, read repository files and act on issues and pull requests.
//
// Key features:
//   - Account creation dates, cached for a day per login
//   - File and directory reads, with 404s mapped to moderation.ErrNotFound
//   - Labels, comments and closing for issues and pull requests
//   - repository_dispatch events for the format-check workflow
//   - Retry logic with exponential backoff
//   - Rate limit handling
//
// Authentication:
//
// NewClient authenticates with a personal access token. App authenticates as
// a GitHub App and returns one client per installation; installation tokens
// are minted from a short-lived RS256 JWT and refreshed when they expire.
//
// Example usage:
//
//	app, err := github.NewApp(appID, privateKeyPEM)
//	if err != nil {
//	    return err
//	}
//	client, err := app.ClientFor(installationID)
//	if err != nil {
//	    return err
//	}
//	createdAt, err := client.GetUserCreatedAt(ctx, "octocat")
//
// Retry Logic:
//
// Failed requests are retried with exponential backoff:
//   - Initial backoff: 100 milliseconds
//   - Maximum backoff: 30 seconds
//   - Maximum retries: 3
//   - Backoff factor: 2.0
//
// Retries are performed for transient errors (rate limits, 502, 503, 504).
// A primary rate limit is only waited out when it resets within the maximum
// backoff. Client errors (4xx except 429) are not retried.
package github
