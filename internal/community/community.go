/*
MIT License

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

package community

import (
	"context"
	"maps"
	"regexp"
	"slices"
	"strings"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mikelane/codey/internal/config"
	"github.com/mikelane/codey/internal/moderation"
)

// Author associations GitHub reports for a first contribution.
// FIRST_TIMER is used on issues, FIRST_TIME_CONTRIBUTOR on pull requests.
const (
	AssociationFirstTimer           = "FIRST_TIMER"
	AssociationFirstTimeContributor = "FIRST_TIME_CONTRIBUTOR"
)

// EmptyBodyComment is posted on new items without a description
const EmptyBodyComment = "Hi there! It looks like you didn't provide a description. " +
	"Please update the issue/PR with more details so we can help you better."

// Item is a newly opened issue or pull request
type Item struct {
	// AuthorAssociation is GitHub's author_association for the item
	AuthorAssociation string
	Event             moderation.Event
}

// FirstTime reports whether the author is contributing for the first time
func (i Item) FirstTime() bool {
	return i.AuthorAssociation == AssociationFirstTimer ||
		i.AuthorAssociation == AssociationFirstTimeContributor
}

// Plan returns the community actions for item under cfg, in execution order
func Plan(item Item, cfg *config.Config) []moderation.Action {
	if !item.Event.NewlyOpened() {
		return nil
	}

	var actions []moderation.Action
	if cfg.PR.RequireBody && strings.TrimSpace(item.Event.Body) == "" {
		actions = append(actions, moderation.Action{Name: moderation.ActionComment, Detail: EmptyBodyComment})
	}

	if item.FirstTime() {
		if msg := cfg.Community.WelcomeMessage; msg != "" {
			actions = append(actions, moderation.Action{Name: moderation.ActionComment, Detail: msg})
		}
		if label := cfg.Community.NewContributorLabel; label != "" {
			actions = append(actions, moderation.Action{Name: moderation.ActionAddLabel, Detail: label})
		}
	}

	for _, label := range MatchLabels(cfg.Community.AutoLabeler, item.Event.Title, item.Event.Body) {
		actions = append(actions, moderation.Action{Name: moderation.ActionAddLabel, Detail: label})
	}
	return actions
}

// MatchLabels returns the labels whose pattern matches title or body,
// case-insensitively. Patterns are tried in sorted order and each label
// appears once. Patterns that do not compile are skipped.
func MatchLabels(autoLabeler map[string]string, title, body string) []string {
	var labels []string
	for _, pattern := range slices.Sorted(maps.Keys(autoLabeler)) {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			continue
		}
		label := autoLabeler[pattern]
		if (re.MatchString(title) || re.MatchString(body)) && !slices.Contains(labels, label) {
			labels = append(labels, label)
		}
	}
	return labels
}

// Handle performs the community actions for item.
//
// Label failures are logged and recorded in the report. A comment failure
// stops processing and is returned as *moderation.MutationError.
func Handle(ctx context.Context, item Item, cfg *config.Config, mutator moderation.IssueMutator) (*moderation.Report, error) {
	logger := log.FromContext(ctx)

	report := &moderation.Report{DryRun: cfg.DryRun}
	plan := Plan(item, cfg)
	if len(plan) == 0 {
		return report, nil
	}

	if cfg.DryRun {
		for _, action := range plan {
			logger.Info("DRY RUN: Would have applied community action", "action", action.Name, "detail", action.Detail)
		}
		report.Actions = plan
		return report, nil
	}

	for _, comment := range filter(plan, moderation.ActionComment) {
		if err := mutator.Comment(ctx, comment.Detail); err != nil {
			return report, &moderation.MutationError{Action: moderation.ActionComment, Err: err}
		}
		report.Actions = append(report.Actions, comment)
	}

	labels := filter(plan, moderation.ActionAddLabel)
	if len(labels) == 0 {
		return report, nil
	}
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		if !slices.Contains(names, l.Detail) {
			names = append(names, l.Detail)
		}
	}
	if err := mutator.AddLabels(ctx, names); err != nil {
		logger.Info("Failed to add labels", "labels", names, "error", err.Error())
		report.Failed = append(report.Failed, labels...)
		return report, nil
	}
	report.Actions = append(report.Actions, labels...)
	logger.V(1).Info("Applied community actions", "labels", names)
	return report, nil
}

func filter(actions []moderation.Action, name string) []moderation.Action {
	var out []moderation.Action
	for _, a := range actions {
		if a.Name == name {
			out = append(out, a)
		}
	}
	return out
}

