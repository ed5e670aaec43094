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

package format

import (
	"context"
	"errors"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mikelane/codey/internal/config"
	"github.com/mikelane/codey/internal/github"
	"github.com/mikelane/codey/internal/moderation"
)

const (
	// BiomeConfigPath marks a repository as formatted with Biome
	BiomeConfigPath = "biome.json"

	// EventType is the repository_dispatch event type sent to the repository
	EventType = "format-check"
)

// Outcome describes what Trigger did
type Outcome string

const (
	// OutcomeSkipped means the event or repository does not qualify
	OutcomeSkipped Outcome = "skipped"
	// OutcomeDryRun means the dispatch was logged but not sent
	OutcomeDryRun Outcome = "dry-run"
	// OutcomeDispatched means the dispatch was sent
	OutcomeDispatched Outcome = "dispatched"
	// OutcomeFailed means the dispatch was attempted and failed
	OutcomeFailed Outcome = "failed"
)

// PullRequest identifies the pull request to check
type PullRequest struct {
	HeadRef string
	HeadSHA string
	Kind    moderation.EventKind
	Number  int
}

// Dispatcher sends repository_dispatch events to the pull request's repository
type Dispatcher interface {
	Dispatch(ctx context.Context, event *github.DispatchEvent) error
}

// Trigger sends the format-check dispatch for pr when enabled and the
// repository has a Biome configuration. Failures are logged, never returned.
func Trigger(ctx context.Context, pr PullRequest, cfg *config.Config, contents moderation.ContentReader, dispatcher Dispatcher) Outcome {
	logger := log.FromContext(ctx).WithValues("pr", pr.Number)

	if !cfg.PR.AutoFormat {
		return OutcomeSkipped
	}
	if pr.Kind != moderation.PullRequestOpened && pr.Kind != moderation.PullRequestSynchronize {
		return OutcomeSkipped
	}

	if _, err := contents.FileContent(ctx, BiomeConfigPath); err != nil {
		if errors.Is(err, moderation.ErrNotFound) {
			logger.V(1).Info("No biome.json found, skipping format check")
		} else {
			logger.Error(err, "Failed to probe for biome.json, skipping format check")
		}
		return OutcomeSkipped
	}

	if cfg.DryRun {
		logger.Info("DRY RUN: Would have triggered format workflow")
		return OutcomeDryRun
	}

	err := dispatcher.Dispatch(ctx, &github.DispatchEvent{
		EventType: EventType,
		Payload: github.FormatCheckPayload{
			PRNumber: pr.Number,
			Ref:      pr.HeadRef,
			SHA:      pr.HeadSHA,
		},
	})
	if err != nil {
		logger.Error(err, "Failed to trigger format workflow")
		return OutcomeFailed
	}

	logger.Info("Triggered format check")
	return OutcomeDispatched
}
