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

	"sigs.k8s.io/controller-runtime/pkg/log"
)

// SpamLabel is added to every item marked as spam
const SpamLabel = "spam"

// StateReasonNotPlanned is the close reason used for issues.
// Pull requests have no close reason.
const StateReasonNotPlanned = "not_planned"

// Remediation actions, in execution order
const (
	ActionAddLabel = "add-label"
	ActionClose    = "close"
	ActionComment  = "comment"
)

// Action is one remediation step
type Action struct {
	Name   string
	Detail string
}

// Report describes what Remediate did, or would have done in dry-run mode
type Report struct {
	Actions []Action
	// Failed lists actions that were attempted and failed but were tolerated
	Failed []Action
	DryRun bool
}

// SpamComment returns the comment posted on an item marked as spam
func SpamComment(reason string) string {
	return fmt.Sprintf("This item has been automatically marked as spam and closed. Reason: %s", reason)
}

// Plan returns the actions remediation takes for a spam verdict on event
func Plan(event Event, verdict Verdict) []Action {
	if !verdict.Spam {
		return nil
	}
	closeDetail := StateReasonNotPlanned
	if event.IsPullRequest {
		closeDetail = ""
	}
	return []Action{
		{Name: ActionAddLabel, Detail: SpamLabel},
		{Name: ActionClose, Detail: closeDetail},
		{Name: ActionComment, Detail: SpamComment(verdict.Reason)},
	}
}

// Remediate labels, closes and comments on the item behind a spam verdict.
//
// The label is best-effort: its failure is logged and recorded in the report.
// Close and comment failures stop remediation and are returned as
// *MutationError. Running Remediate again on an item that is already closed
// and labeled does not fail. With cfg.DryRun set the planned actions are
// reported and mutator is never called.
func Remediate(ctx context.Context, event Event, verdict Verdict, cfg Config, mutator IssueMutator) (*Report, error) {
	logger := log.FromContext(ctx).WithValues("reason", verdict.Reason)

	report := &Report{DryRun: cfg.DryRun}
	if !verdict.Spam {
		return report, nil
	}

	plan := Plan(event, verdict)
	if cfg.DryRun {
		report.Actions = plan
		logger.Info("DRY RUN: Would have marked as spam and closed")
		return report, nil
	}

	for _, action := range plan {
		err := apply(ctx, mutator, action)
		if err == nil {
			report.Actions = append(report.Actions, action)
			continue
		}
		if action.Name == ActionAddLabel {
			logger.Info("Could not add spam label", "error", err.Error())
			report.Failed = append(report.Failed, action)
			continue
		}
		return report, &MutationError{Action: action.Name, Err: err}
	}

	logger.Info("Marked as spam and closed")
	return report, nil
}

func apply(ctx context.Context, mutator IssueMutator, action Action) error {
	switch action.Name {
	case ActionAddLabel:
		return mutator.AddLabels(ctx, []string{action.Detail})
	case ActionClose:
		return mutator.Close(ctx, action.Detail)
	case ActionComment:
		return mutator.Comment(ctx, action.Detail)
	default:
		return fmt.Errorf("unknown action %q", action.Name)
	}
}
