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
	"time"
)

// EventKind identifies the repository activity that triggered an evaluation
type EventKind string

const (
	// IssueOpened is a newly opened issue
	IssueOpened EventKind = "issue_opened"
	// IssueEdited is an edit to an existing issue
	IssueEdited EventKind = "issue_edited"
	// PullRequestOpened is a newly opened pull request
	PullRequestOpened EventKind = "pull_request_opened"
	// PullRequestEdited is an edit to an existing pull request
	PullRequestEdited EventKind = "pull_request_edited"
	// PullRequestSynchronize is a push to the head branch of a pull request
	PullRequestSynchronize EventKind = "pull_request_synchronize"
	// CommentCreated is a new comment on an issue or pull request
	CommentCreated EventKind = "comment_created"
)

// Event is an immutable snapshot of the activity being moderated
type Event struct {
	// AuthorCreatedAt is the author's account creation time, if the payload
	// carried it. When nil the pipeline looks it up once.
	AuthorCreatedAt *time.Time
	Kind            EventKind
	AuthorLogin     string
	// Title is empty for comments
	Title string
	Body  string
	// IsPullRequest is true for pull request events and for comments on a
	// pull request
	IsPullRequest bool
}

// NewlyOpened reports whether the event opened a new issue or pull request
func (e Event) NewlyOpened() bool {
	return e.Kind == IssueOpened || e.Kind == PullRequestOpened
}

// Config holds the moderation thresholds for one event.
// It is validated before it reaches the pipeline.
type Config struct {
	Keywords                 []string
	MinAccountAgeDays        int
	MaxLinks                 int
	MaxTemplateSimilarityPct int
	Enabled                  bool
	DryRun                   bool
}

// Stage names, used in verdicts, logs and metrics
const (
	StageAccountAge = "account-age"
	StageKeywords   = "keywords"
	StageLinks      = "links"
	StageTemplate   = "template"
)

// Spam reasons posted back to the item
const (
	ReasonAccountTooNew   = "Account is too new."
	ReasonSpamKeywords    = "Content contains spam keywords."
	ReasonTooManyLinks    = "Too many links in content."
	ReasonTemplateSimilar = "Content is too similar to the template (did you fill it out?)."
)

// Verdict is the pipeline's decision for one event
type Verdict struct {
	// Stage is the stage that produced a spam verdict
	Stage  string
	Reason string
	Spam   bool
}

// Clean returns a verdict that lets the event through
func Clean() Verdict {
	return Verdict{}
}

// SpamVerdict returns a terminal spam verdict from the named stage
func SpamVerdict(stage, reason string) Verdict {
	return Verdict{Spam: true, Stage: stage, Reason: reason}
}

// String returns "clean" or "spam(<reason>)"
func (v Verdict) String() string {
	if !v.Spam {
		return "clean"
	}
	return "spam(" + v.Reason + ")"
}

// TemplateSet is the ordered set of template bodies relevant to an event
type TemplateSet []string
