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
	"strings"
	"time"

	"github.com/go-logr/logr"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// stageFunc is one check of the pipeline. It returns Clean to continue.
type stageFunc func(ctx context.Context, ev *evaluation) Verdict

type stage struct {
	run  stageFunc
	name string
}

// stages run in this order for every event
var stages = []stage{
	{name: StageAccountAge, run: checkAccountAge},
	{name: StageKeywords, run: checkKeywords},
	{name: StageLinks, run: checkLinks},
	{name: StageTemplate, run: checkTemplate},
}

// evaluation is the per-event state shared by the stages
type evaluation struct {
	caps   Capabilities
	now    time.Time
	logger logr.Logger
	event  Event
	config Config
}

// Pipeline evaluates events against a moderation config
type Pipeline struct {
	clock func() time.Time
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithClock sets the time source used for account age
func WithClock(clock func() time.Time) Option {
	return func(p *Pipeline) {
		p.clock = clock
	}
}

// NewPipeline creates a pipeline
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{clock: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultPipeline = NewPipeline()

// Evaluate runs event through the default pipeline
func Evaluate(ctx context.Context, event Event, cfg Config, caps Capabilities) Verdict {
	return defaultPipeline.Evaluate(ctx, event, cfg, caps)
}

// Evaluate runs every stage in order and returns the first spam verdict, or
// Clean if all stages abstain. A disabled config returns Clean without
// calling any capability.
func (p *Pipeline) Evaluate(ctx context.Context, event Event, cfg Config, caps Capabilities) Verdict {
	logger := log.FromContext(ctx).WithValues("kind", string(event.Kind), "author", event.AuthorLogin)

	if !cfg.Enabled {
		logger.V(1).Info("Spam check disabled")
		return Clean()
	}

	ev := &evaluation{
		event:  event,
		config: cfg,
		caps:   caps,
		now:    p.clock(),
		logger: logger,
	}

	for _, s := range stages {
		verdict := s.run(ctx, ev)
		if verdict.Spam {
			logger.Info("Spam detected", "stage", s.name, "reason", verdict.Reason)
			return verdict
		}
	}
	return Clean()
}

func checkAccountAge(ctx context.Context, ev *evaluation) Verdict {
	createdAt := ev.authorCreatedAt(ctx)
	if AccountAgeDays(createdAt, ev.now) < ev.config.MinAccountAgeDays {
		return SpamVerdict(StageAccountAge, ReasonAccountTooNew)
	}
	return Clean()
}

func checkKeywords(_ context.Context, ev *evaluation) Verdict {
	if ContainsAnyKeyword(ev.event.Title, ev.config.Keywords) ||
		ContainsAnyKeyword(ev.event.Body, ev.config.Keywords) {
		return SpamVerdict(StageKeywords, ReasonSpamKeywords)
	}
	return Clean()
}

func checkLinks(_ context.Context, ev *evaluation) Verdict {
	if CountLinks(ev.event.Body) > ev.config.MaxLinks {
		return SpamVerdict(StageLinks, ReasonTooManyLinks)
	}
	return Clean()
}

// checkTemplate only applies to newly opened items, never edits or comments
func checkTemplate(ctx context.Context, ev *evaluation) Verdict {
	if !ev.event.NewlyOpened() {
		return Clean()
	}

	templates := FetchTemplates(ctx, ev.event.IsPullRequest, ev.caps.Contents)
	if len(templates) == 0 {
		ev.logger.V(1).Info("No templates found, skipping template check")
		return Clean()
	}

	emptyBody := strings.TrimSpace(ev.event.Body) == ""
	for _, template := range templates {
		similarity := SimilarityPct(ev.event.Body, template)
		// an empty body is scored as an unfilled template
		if emptyBody {
			similarity = 100
		}
		ev.logger.V(1).Info("Template similarity", "similarity", similarity)
		if similarity >= ev.config.MaxTemplateSimilarityPct {
			return SpamVerdict(StageTemplate, ReasonTemplateSimilar)
		}
	}
	return Clean()
}

// authorCreatedAt returns the author's creation time, fetching it at most once.
// A failed lookup counts as an account created now.
func (ev *evaluation) authorCreatedAt(ctx context.Context) time.Time {
	if ev.event.AuthorCreatedAt != nil {
		return *ev.event.AuthorCreatedAt
	}
	if ev.caps.Users == nil {
		ev.logger.Info("No user lookup available, treating account as new")
		return ev.now
	}

	createdAt, err := ev.caps.Users.UserCreatedAt(ctx, ev.event.AuthorLogin)
	if err != nil {
		ev.logger.Error(err, "Failed to fetch user, treating account as new", "login", ev.event.AuthorLogin)
		return ev.now
	}
	return createdAt
}
