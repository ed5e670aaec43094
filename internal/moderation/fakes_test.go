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
	"fmt"
	"time"
)

type fakeUsers struct {
	createdAt time.Time
	err       error
	calls     int
}

func (f *fakeUsers) UserCreatedAt(_ context.Context, _ string) (time.Time, error) {
	f.calls++
	return f.createdAt, f.err
}

type fakeContents struct {
	files     map[string]string
	fileErrs  map[string]error
	dirs      map[string][]FileEntry
	listErr   error
	fileCalls []string
	listCalls int
}

func (f *fakeContents) FileContent(_ context.Context, path string) (string, error) {
	f.fileCalls = append(f.fileCalls, path)
	if err, ok := f.fileErrs[path]; ok {
		return "", err
	}
	if content, ok := f.files[path]; ok {
		return content, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, path)
}

func (f *fakeContents) ListDirectory(_ context.Context, path string) ([]FileEntry, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	if entries, ok := f.dirs[path]; ok {
		return entries, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
}

func (f *fakeContents) calls() int {
	return len(f.fileCalls) + f.listCalls
}

// fakeMutator behaves like the GitHub API: labeling a labeled item and closing
// a closed item both succeed
type fakeMutator struct {
	labelErr   error
	closeErr   error
	commentErr error
	labels     map[string]bool
	calls      []string
	comments   []string
	reasons    []string
	closed     bool
}

func (f *fakeMutator) AddLabels(_ context.Context, labels []string) error {
	f.calls = append(f.calls, ActionAddLabel)
	if f.labelErr != nil {
		return f.labelErr
	}
	if f.labels == nil {
		f.labels = make(map[string]bool)
	}
	for _, l := range labels {
		f.labels[l] = true
	}
	return nil
}

func (f *fakeMutator) Close(_ context.Context, stateReason string) error {
	f.calls = append(f.calls, ActionClose)
	if f.closeErr != nil {
		return f.closeErr
	}
	f.closed = true
	f.reasons = append(f.reasons, stateReason)
	return nil
}

func (f *fakeMutator) Comment(_ context.Context, body string) error {
	f.calls = append(f.calls, ActionComment)
	if f.commentErr != nil {
		return f.commentErr
	}
	f.comments = append(f.comments, body)
	return nil
}
