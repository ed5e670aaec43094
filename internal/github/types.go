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
	"time"

	"github.com/mikelane/codey/internal/moderation"
)

// Client interface defines the contract for interacting with GitHub API
type Client interface {
	// GetUserCreatedAt returns when the account was created
	GetUserCreatedAt(ctx context.Context, login string) (time.Time, error)
	// GetFileContent returns a decoded file. Missing files and directories
	// return an error wrapping moderation.ErrNotFound.
	GetFileContent(ctx context.Context, owner, repo, path string) (string, error)
	// ListDirectory lists a directory. A missing directory returns an error
	// wrapping moderation.ErrNotFound.
	ListDirectory(ctx context.Context, owner, repo, path string) ([]moderation.FileEntry, error)
	// AddLabels adds labels to an issue or pull request
	AddLabels(ctx context.Context, item Item, labels []string) error
	// CloseItem closes an issue or pull request. stateReason only applies to issues.
	CloseItem(ctx context.Context, item Item, stateReason string) error
	// CreateComment comments on an issue or pull request
	CreateComment(ctx context.Context, item Item, body string) error
	// CreateDispatchEvent triggers a repository_dispatch workflow
	CreateDispatchEvent(ctx context.Context, owner, repo string, event *DispatchEvent) error
}

// Item identifies an issue or pull request
type Item struct {
	Owner         string
	Repo          string
	Number        int
	IsPullRequest bool
}

// DispatchEvent is a repository_dispatch event
type DispatchEvent struct {
	Payload   any
	EventType string
}

// FormatCheckPayload is the client_payload of the format-check dispatch event
type FormatCheckPayload struct {
	Ref      string `json:"ref"`
	SHA      string `json:"sha"`
	PRNumber int    `json:"pr_number"`
}
