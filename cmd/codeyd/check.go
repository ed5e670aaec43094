/*
Copyright (c) 2025 Mike Lane

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mikelane/codey/internal/community"
	"github.com/mikelane/codey/internal/config"
	"github.com/mikelane/codey/internal/github"
	"github.com/mikelane/codey/internal/moderation"
)

// errSpam is returned by check --fail-on-spam
var errSpam = errors.New("content was marked as spam")

type checkOptions struct {
	repo        string
	author      string
	association string
	title       string
	body        string
	event       string
	token       string
	apiURL      string
	pullRequest bool
	failOnSpam  bool
}

var eventKinds = map[string]moderation.EventKind{
	string(moderation.IssueOpened):            moderation.IssueOpened,
	string(moderation.IssueEdited):            moderation.IssueEdited,
	string(moderation.PullRequestOpened):      moderation.PullRequestOpened,
	string(moderation.PullRequestEdited):      moderation.PullRequestEdited,
	string(moderation.PullRequestSynchronize): moderation.PullRequestSynchronize,
	string(moderation.CommentCreated):         moderation.CommentCreated,
}

func newCheckCmd() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate content against a repository's moderation settings without changing anything",
		Long: `check loads the repository's configuration and templates from GitHub, runs the spam
checks on the given title and body, and prints the verdict and the actions the bot would take.
The body is read from stdin when --body is not set. Cluster policies are not consulted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.repo, "repo", "", "Repository as owner/repo (required)")
	cmd.Flags().StringVar(&opts.author, "author", "", "Login of the author (required)")
	cmd.Flags().StringVar(&opts.association, "association", "NONE", "Author association, e.g. FIRST_TIME_CONTRIBUTOR")
	cmd.Flags().StringVar(&opts.title, "title", "", "Title of the issue or pull request")
	cmd.Flags().StringVar(&opts.body, "body", "", "Body to check. Read from stdin when empty")
	cmd.Flags().StringVar(&opts.event, "event", string(moderation.IssueOpened), "Event kind, e.g. issue_opened, pull_request_synchronize or comment_created")
	cmd.Flags().BoolVar(&opts.pullRequest, "pull-request", false, "The comment is on a pull request")
	cmd.Flags().BoolVar(&opts.failOnSpam, "fail-on-spam", false, "Exit with an error when the content is spam")
	cmd.Flags().StringVar(&opts.token, "github-token", envOr("GITHUB_TOKEN", ""), "GitHub token [GITHUB_TOKEN]")
	cmd.Flags().StringVar(&opts.apiURL, "github-api-url", envOr("GITHUB_API_URL", ""), "GitHub API base URL [GITHUB_API_URL]")

	_ = cmd.MarkFlagRequired("repo")
	_ = cmd.MarkFlagRequired("author")

	return cmd
}

func runCheck(cmd *cobra.Command, opts *checkOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	owner, repo, ok := strings.Cut(opts.repo, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return fmt.Errorf("invalid repository %q, expected owner/repo", opts.repo)
	}

	kind, ok := eventKinds[opts.event]
	if !ok {
		return fmt.Errorf("unknown event %q", opts.event)
	}

	body := opts.body
	if body == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read body: %w", err)
		}
		body = string(data)
	}

	var clientOpts []github.Option
	if opts.apiURL != "" {
		clientOpts = append(clientOpts, github.WithBaseURL(opts.apiURL))
	}
	client, err := github.NewClient(opts.token, clientOpts...)
	if err != nil {
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}

	cfg, err := config.NewLoader(client, nil).Load(ctx, owner, repo)
	if err != nil {
		return err
	}

	event := moderation.Event{
		Kind:          kind,
		AuthorLogin:   opts.author,
		Title:         opts.title,
		Body:          body,
		IsPullRequest: opts.pullRequest || strings.HasPrefix(opts.event, "pull_request"),
	}
	if kind == moderation.CommentCreated {
		event.Title = ""
	}

	verdict := moderation.NewPipeline().Evaluate(ctx, event, cfg.Moderation(), moderation.Capabilities{
		Users:    github.UserLookup{Client: client},
		Contents: github.RepoContents{Client: client, Owner: owner, Repo: repo},
	})

	actions := moderation.Plan(event, verdict)
	if !verdict.Spam {
		actions = community.Plan(community.Item{AuthorAssociation: opts.association, Event: event}, cfg)
	}

	fmt.Fprintf(out, "repository: %s/%s\n", owner, repo)
	fmt.Fprintf(out, "dry run: %t\n", cfg.DryRun)
	fmt.Fprintf(out, "verdict: %s\n", verdict)
	if verdict.Spam {
		fmt.Fprintf(out, "stage: %s\n", verdict.Stage)
	}
	if len(actions) == 0 {
		fmt.Fprintln(out, "actions: none")
	} else {
		fmt.Fprintln(out, "actions:")
		for _, a := range actions {
			fmt.Fprintf(out, "  %s: %s\n", a.Name, a.Detail)
		}
	}

	if verdict.Spam && opts.failOnSpam {
		return errSpam
	}
	return nil
}
