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
	"strings"

	"sigs.k8s.io/controller-runtime/pkg/log"
)

// IssueTemplateDir is the directory holding issue templates
const IssueTemplateDir = ".github/ISSUE_TEMPLATE"

const templateExt = ".md"

// PullRequestTemplatePaths are probed in order; the first hit is used
var PullRequestTemplatePaths = []string{
	".github/pull_request_template.md",
	".github/PULL_REQUEST_TEMPLATE.md",
	"pull_request_template.md",
	"PULL_REQUEST_TEMPLATE.md",
	"docs/pull_request_template.md",
	"docs/PULL_REQUEST_TEMPLATE.md",
}

// IssueTemplatePaths are probed in order when IssueTemplateDir does not exist
var IssueTemplatePaths = []string{
	".github/ISSUE_TEMPLATE.md",
	"ISSUE_TEMPLATE.md",
	"docs/ISSUE_TEMPLATE.md",
}

// FetchTemplates resolves the templates that apply to an issue or pull request.
// It never fails: resolution errors are logged and yield an empty set.
func FetchTemplates(ctx context.Context, isPullRequest bool, reader ContentReader) TemplateSet {
	if reader == nil {
		return nil
	}
	if isPullRequest {
		return firstTemplate(ctx, reader, PullRequestTemplatePaths)
	}
	return issueTemplates(ctx, reader)
}

// issueTemplates collects every Markdown template in IssueTemplateDir, falling
// back to the single-file locations when the directory does not exist
func issueTemplates(ctx context.Context, reader ContentReader) TemplateSet {
	logger := log.FromContext(ctx)

	entries, err := reader.ListDirectory(ctx, IssueTemplateDir)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return firstTemplate(ctx, reader, IssueTemplatePaths)
		}
		logger.Info("Failed to list issue templates, skipping template check", "error", err.Error())
		return nil
	}

	var templates TemplateSet
	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.Type != "file" || !strings.HasSuffix(entry.Name, templateExt) {
			continue
		}
		content, err := reader.FileContent(ctx, entry.Path)
		if err != nil {
			logger.V(1).Info("Failed to read issue template", "path", entry.Path, "error", err.Error())
			continue
		}
		if content == "" || seen[content] {
			continue
		}
		seen[content] = true
		templates = append(templates, content)
	}
	return templates
}

// firstTemplate returns the content of the first path that resolves
func firstTemplate(ctx context.Context, reader ContentReader, paths []string) TemplateSet {
	logger := log.FromContext(ctx)

	for _, path := range paths {
		content, err := reader.FileContent(ctx, path)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				logger.V(1).Info("Failed to read template", "path", path, "error", err.Error())
			}
			continue
		}
		if content != "" {
			return TemplateSet{content}
		}
	}
	return nil
}
