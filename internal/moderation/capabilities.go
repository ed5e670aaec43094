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

package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is wrapped by capability errors for paths or users that do not exist
var ErrNotFound = errors.New("not found")

// UserFetcher looks up account metadata
type UserFetcher interface {
	// UserCreatedAt returns the creation time of the account with the given login
	UserCreatedAt(ctx context.Context, login string) (time.Time, error)
}

// FileEntry is one entry of a repository directory listing
type FileEntry struct {
	Name string
	Path string
	// Type is "file", "dir", "symlink" or "submodule"
	Type string
}

// ContentReader reads files from the repository an event belongs to
type ContentReader interface {
	// FileContent returns the decoded content of the file at path
	FileContent(ctx context.Context, path string) (string, error)
	// ListDirectory returns the entries of the directory at path
	ListDirectory(ctx context.Context, path string) ([]FileEntry, error)
}

// IssueMutator changes the issue or pull request an event belongs to
type IssueMutator interface {
	// AddLabels adds labels to the item
	AddLabels(ctx context.Context, labels []string) error
	// Close closes the item. stateReason is only sent for issues.
	Close(ctx context.Context, stateReason string) error
	// Comment posts a comment on the item
	Comment(ctx context.Context, body string) error
}

// Capabilities groups the read capabilities the pipeline consumes
type Capabilities struct {
	Users    UserFetcher
	Contents ContentReader
}

// MutationError reports a failed remediation action
type MutationError struct {
	Err    error
	Action string
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Action, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}
