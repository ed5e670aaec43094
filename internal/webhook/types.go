// Copyright 2025 The Codey Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package webhook

import (
	"fmt"
	"time"

	"github.com/google/go-github/v66/github"

	"github.com/mikelane/codey/internal/moderation"
)

// GitHub webhook event names handled by the server
const (
	EventIssues       = "issues"
	EventPullRequest  = "pull_request"
	EventIssueComment = "issue_comment"
	EventPing         = "ping"
)

// Delivery is a webhook delivery the server acts on
type Delivery struct {
	// Event is the moderation snapshot of the delivery
	Event moderation.Event

	ID     string
	Name   string
	Action string
	Owner  string
	Repo   string
	// AuthorAssociation is GitHub's author_association for the item or comment
	AuthorAssociation string
	HeadRef           string
	HeadSHA           string

	InstallationID int64
	Number         int
}

// FullName returns owner/repo
func (d *Delivery) FullName() string {
	return d.Owner + "/" + d.Repo
}

// eventKinds maps an event name and action to the activity it represents
var eventKinds = map[string]map[string]moderation.EventKind{
	EventIssues: {
		"opened": moderation.IssueOpened,
		"edited": moderation.IssueEdited,
	},
	EventPullRequest: {
		"opened":      moderation.PullRequestOpened,
		"edited":      moderation.PullRequestEdited,
		"synchronize": moderation.PullRequestSynchronize,
	},
	EventIssueComment: {
		"created": moderation.CommentCreated,
	},
}

// Handled reports whether the server acts on name and action
func Handled(name, action string) bool {
	_, ok := eventKinds[name][action]
	return ok
}

// ParseDelivery decodes a webhook payload. It returns nil without error for
// events and actions the server does not act on.
func ParseDelivery(name, id string, payload []byte) (*Delivery, error) {
	if _, ok := eventKinds[name]; !ok {
		return nil, nil
	}

	raw, err := github.ParseWebHook(name, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s payload: %w", name, err)
	}

	d := &Delivery{ID: id, Name: name}
	var repo *github.Repository
	var installation *github.Installation

	switch e := raw.(type) {
	case *github.IssuesEvent:
		d.Action = e.GetAction()
		repo, installation = e.GetRepo(), e.GetInstallation()
		issue := e.GetIssue()
		d.Number = issue.GetNumber()
		d.AuthorAssociation = issue.GetAuthorAssociation()
		d.Event = moderation.Event{
			AuthorLogin:     issue.GetUser().GetLogin(),
			AuthorCreatedAt: createdAt(issue.GetUser()),
			Title:           issue.GetTitle(),
			Body:            issue.GetBody(),
		}

	case *github.PullRequestEvent:
		d.Action = e.GetAction()
		repo, installation = e.GetRepo(), e.GetInstallation()
		pr := e.GetPullRequest()
		d.Number = pr.GetNumber()
		if d.Number == 0 {
			d.Number = e.GetNumber()
		}
		d.AuthorAssociation = pr.GetAuthorAssociation()
		d.HeadRef = pr.GetHead().GetRef()
		d.HeadSHA = pr.GetHead().GetSHA()
		d.Event = moderation.Event{
			AuthorLogin:     pr.GetUser().GetLogin(),
			AuthorCreatedAt: createdAt(pr.GetUser()),
			Title:           pr.GetTitle(),
			Body:            pr.GetBody(),
			IsPullRequest:   true,
		}

	case *github.IssueCommentEvent:
		d.Action = e.GetAction()
		repo, installation = e.GetRepo(), e.GetInstallation()
		comment, issue := e.GetComment(), e.GetIssue()
		d.Number = issue.GetNumber()
		d.AuthorAssociation = comment.GetAuthorAssociation()
		d.Event = moderation.Event{
			AuthorLogin:     comment.GetUser().GetLogin(),
			AuthorCreatedAt: createdAt(comment.GetUser()),
			Body:            comment.GetBody(),
			IsPullRequest:   issue != nil && issue.IsPullRequest(),
		}

	default:
		return nil, nil
	}

	kind, ok := eventKinds[name][d.Action]
	if !ok {
		return nil, nil
	}
	d.Event.Kind = kind
	d.Owner = repo.GetOwner().GetLogin()
	d.Repo = repo.GetName()
	d.InstallationID = installation.GetID()

	if d.Owner == "" || d.Repo == "" || d.Number == 0 {
		return nil, fmt.Errorf("%s payload is missing its repository or number", name)
	}
	return d, nil
}

func createdAt(user *github.User) *time.Time {
	if user.GetCreatedAt().IsZero() {
		return nil
	}
	t := user.GetCreatedAt().Time
	return &t
}
