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

// RepoContents reads files from one repository
type RepoContents struct {
	Client Client
	Owner  string
	Repo   string
}

// FileContent implements moderation.ContentReader
func (r RepoContents) FileContent(ctx context.Context, path string) (string, error) {
	return r.Client.GetFileContent(ctx, r.Owner, r.Repo, path)
}

// ListDirectory implements moderation.ContentReader
func (r RepoContents) ListDirectory(ctx context.Context, path string) ([]moderation.FileEntry, error) {
	return r.Client.ListDirectory(ctx, r.Owner, r.Repo, path)
}

// UserLookup resolves account creation dates
type UserLookup struct {
	Client Client
}

// UserCreatedAt implements moderation.UserFetcher
func (u UserLookup) UserCreatedAt(ctx context.Context, login string) (time.Time, error) {
	return u.Client.GetUserCreatedAt(ctx, login)
}

// ItemMutator applies changes to one issue or pull request
type ItemMutator struct {
	Client Client
	Item   Item
}

// AddLabels implements moderation.IssueMutator
func (m ItemMutator) AddLabels(ctx context.Context, labels []string) error {
	return m.Client.AddLabels(ctx, m.Item, labels)
}

// Close implements moderation.IssueMutator
func (m ItemMutator) Close(ctx context.Context, stateReason string) error {
	return m.Client.CloseItem(ctx, m.Item, stateReason)
}

// Comment implements moderation.IssueMutator
func (m ItemMutator) Comment(ctx context.Context, body string) error {
	return m.Client.CreateComment(ctx, m.Item, body)
}

var (
	_ moderation.ContentReader = RepoContents{}
	_ moderation.UserFetcher   = UserLookup{}
	_ moderation.IssueMutator  = ItemMutator{}
)

// RepoDispatcher sends repository_dispatch events to one repository
type RepoDispatcher struct {
	Client Client
	Owner  string
	Repo   string
}

// Dispatch sends event to the repository
func (d RepoDispatcher) Dispatch(ctx context.Context, event *DispatchEvent) error {
	return d.Client.CreateDispatchEvent(ctx, d.Owner, d.Repo, event)
}
