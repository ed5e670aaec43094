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
	"fmt"
	"testing"

	"github.com/mikelane/codey/internal/config"
	"github.com/mikelane/codey/internal/github"
	"github.com/mikelane/codey/internal/moderation"
)

type fakeContents struct {
	err   error
	calls int
}

func (f *fakeContents) FileContent(_ context.Context, path string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if path != BiomeConfigPath {
		return "", fmt.Errorf("%s: %w", path, moderation.ErrNotFound)
	}
	return "{}", nil
}

func (f *fakeContents) ListDirectory(context.Context, string) ([]moderation.FileEntry, error) {
	return nil, moderation.ErrNotFound
}

type fakeDispatcher struct {
	err    error
	events []*github.DispatchEvent
}

func (f *fakeDispatcher) Dispatch(_ context.Context, event *github.DispatchEvent) error {
	f.events = append(f.events, event)
	return f.err
}

func TestTrigger(t *testing.T) {
	notFound := fmt.Errorf("biome.json: %w", moderation.ErrNotFound)

	tests := []struct {
		name         string
		kind         moderation.EventKind
		autoFormat   bool
		dryRun       bool
		probeErr     error
		dispatchErr  error
		want         Outcome
		wantProbe    bool
		wantDispatch bool
	}{
		{
			name:         "Dispatches on opened",
			kind:         moderation.PullRequestOpened,
			autoFormat:   true,
			want:         OutcomeDispatched,
			wantProbe:    true,
			wantDispatch: true,
		},
		{
			name:         "Dispatches on synchronize",
			kind:         moderation.PullRequestSynchronize,
			autoFormat:   true,
			want:         OutcomeDispatched,
			wantProbe:    true,
			wantDispatch: true,
		},
		{
			name:       "Skips edits",
			kind:       moderation.PullRequestEdited,
			autoFormat: true,
			want:       OutcomeSkipped,
		},
		{
			name:       "Skips issues",
			kind:       moderation.IssueOpened,
			autoFormat: true,
			want:       OutcomeSkipped,
		},
		{
			name:       "Skips when disabled",
			kind:       moderation.PullRequestOpened,
			autoFormat: false,
			want:       OutcomeSkipped,
		},
		{
			name:       "Skips without biome.json",
			kind:       moderation.PullRequestOpened,
			autoFormat: true,
			probeErr:   notFound,
			want:       OutcomeSkipped,
			wantProbe:  true,
		},
		{
			name:       "Skips when probe fails",
			kind:       moderation.PullRequestOpened,
			autoFormat: true,
			probeErr:   errors.New("502 bad gateway"),
			want:       OutcomeSkipped,
			wantProbe:  true,
		},
		{
			name:       "Dry run does not dispatch",
			kind:       moderation.PullRequestOpened,
			autoFormat: true,
			dryRun:     true,
			want:       OutcomeDryRun,
			wantProbe:  true,
		},
		{
			name:         "Dispatch failure is reported",
			kind:         moderation.PullRequestOpened,
			autoFormat:   true,
			dispatchErr:  errors.New("404"),
			want:         OutcomeFailed,
			wantProbe:    true,
			wantDispatch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			cfg.PR.AutoFormat = tt.autoFormat
			cfg.DryRun = tt.dryRun

			contents := &fakeContents{err: tt.probeErr}
			dispatcher := &fakeDispatcher{err: tt.dispatchErr}
			pr := PullRequest{Number: 42, HeadRef: "feature", HeadSHA: "abc123", Kind: tt.kind}

			got := Trigger(context.Background(), pr, &cfg, contents, dispatcher)
			if got != tt.want {
				t.Errorf("Trigger() = %v, want %v", got, tt.want)
			}
			if (contents.calls > 0) != tt.wantProbe {
				t.Errorf("Trigger() probed biome.json %d times, want probe %v", contents.calls, tt.wantProbe)
			}
			if (len(dispatcher.events) > 0) != tt.wantDispatch {
				t.Errorf("Trigger() dispatched %d events, want dispatch %v", len(dispatcher.events), tt.wantDispatch)
			}
			if tt.wantDispatch {
				event := dispatcher.events[0]
				if event.EventType != EventType {
					t.Errorf("EventType = %q, want %q", event.EventType, EventType)
				}
				want := github.FormatCheckPayload{PRNumber: 42, Ref: "feature", SHA: "abc123"}
				if event.Payload != want {
					t.Errorf("Payload = %+v, want %+v", event.Payload, want)
				}
			}
		})
	}
}
