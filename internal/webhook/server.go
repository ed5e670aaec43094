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
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mikelane/codey/internal/community"
	"github.com/mikelane/codey/internal/config"
	"github.com/mikelane/codey/internal/format"
	"github.com/mikelane/codey/internal/github"
	"github.com/mikelane/codey/internal/moderation"
)

// GitHub caps webhook payloads at 25 MB
const maxPayloadBytes = 25 << 20

// Server handles GitHub webhook requests
type Server struct {
	clients       github.ClientProvider
	policies      config.PolicySource
	pipeline      *moderation.Pipeline
	server        *http.Server
	addr          string
	webhookSecret string
	port          int
}

// NewServer creates a new webhook server. policies may be nil.
func NewServer(addr string, port int, webhookSecret string, clients github.ClientProvider, policies config.PolicySource) *Server {
	return &Server{
		addr:          addr,
		port:          port,
		webhookSecret: webhookSecret,
		clients:       clients,
		policies:      policies,
		pipeline:      moderation.NewPipeline(),
	}
}

// Handler returns the HTTP handler serving /webhook and /healthz
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", s.handleWebhook)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// Start starts the webhook server
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.addr, s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		log.Log.Info("Starting webhook server", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// NeedLeaderElection lets every replica serve webhooks
func (s *Server) NeedLeaderElection() bool {
	return false
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	log.Log.Info("Shutting down webhook server")
	return s.server.Shutdown(ctx)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK")) //nolint:errcheck,gosec
}

// handleWebhook handles GitHub webhook requests
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	eventType := r.Header.Get("X-GitHub-Event")
	deliveryID := r.Header.Get("X-GitHub-Delivery")
	logger := log.FromContext(r.Context()).WithValues("delivery", deliveryID, "event", eventType)

	// Only accept POST requests
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Read body
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		logger.Error(err, "Failed to read request body")
		deliveriesReceived.WithLabelValues(eventType, outcomeBadRequest).Inc()
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close() //nolint:errcheck

	// Validate signature
	signature := r.Header.Get("X-Hub-Signature-256")
	if !ValidateSignature(payload, signature, s.webhookSecret) {
		logger.Info("Invalid webhook signature")
		deliveriesReceived.WithLabelValues(eventType, outcomeInvalidSignature).Inc()
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	delivery, err := ParseDelivery(eventType, deliveryID, payload)
	if err != nil {
		logger.Error(err, "Failed to parse webhook payload")
		deliveriesReceived.WithLabelValues(eventType, outcomeBadRequest).Inc()
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}
	if delivery == nil {
		logger.V(1).Info("Ignoring event")
		deliveriesReceived.WithLabelValues(eventType, outcomeIgnored).Inc()
		w.WriteHeader(http.StatusOK)
		return
	}

	logger = logger.WithValues("repository", delivery.FullName(), "number", delivery.Number, "action", delivery.Action)
	ctx := log.IntoContext(r.Context(), logger)

	if err := s.Process(ctx, delivery); err != nil {
		if config.IsConfigurationError(err) {
			logger.Info("Skipping event with invalid configuration", "error", err.Error())
			deliveriesReceived.WithLabelValues(eventType, outcomeConfigError).Inc()
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		logger.Error(err, "Failed to process event")
		deliveriesReceived.WithLabelValues(eventType, outcomeError).Inc()
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	deliveriesReceived.WithLabelValues(eventType, outcomeProcessed).Inc()
	w.WriteHeader(http.StatusOK)
}

// Process runs moderation, then community features, then the format check for
// one delivery. Nothing after moderation runs for spam.
func (s *Server) Process(ctx context.Context, d *Delivery) error {
	logger := log.FromContext(ctx)

	client, err := s.clients.ClientFor(d.InstallationID)
	if err != nil {
		return fmt.Errorf("failed to get GitHub client: %w", err)
	}

	cfg, err := config.NewLoader(client, s.policies).Load(ctx, d.Owner, d.Repo)
	if err != nil {
		return err
	}

	contents := github.RepoContents{Client: client, Owner: d.Owner, Repo: d.Repo}
	mutator := github.ItemMutator{
		Client: client,
		Item: github.Item{
			Owner:         d.Owner,
			Repo:          d.Repo,
			Number:        d.Number,
			IsPullRequest: d.Event.IsPullRequest,
		},
	}

	modCfg := cfg.Moderation()
	start := time.Now()
	verdict := s.pipeline.Evaluate(ctx, d.Event, modCfg, moderation.Capabilities{
		Users:    github.UserLookup{Client: client},
		Contents: contents,
	})
	evaluationDuration.Observe(time.Since(start).Seconds())
	verdictsIssued.WithLabelValues(stageLabel(verdict), strconv.FormatBool(cfg.DryRun)).Inc()

	if verdict.Spam {
		report, err := moderation.Remediate(ctx, d.Event, verdict, modCfg, mutator)
		recordFailures(report)
		if err != nil {
			var mutErr *moderation.MutationError
			if errors.As(err, &mutErr) {
				remediationFailures.WithLabelValues(mutErr.Action).Inc()
			}
			return fmt.Errorf("failed to remediate spam: %w", err)
		}
		return nil
	}
	logger.V(1).Info("Content is clean")

	report, err := community.Handle(ctx, community.Item{
		AuthorAssociation: d.AuthorAssociation,
		Event:             d.Event,
	}, cfg, mutator)
	recordFailures(report)
	if err != nil {
		var mutErr *moderation.MutationError
		if errors.As(err, &mutErr) {
			remediationFailures.WithLabelValues(mutErr.Action).Inc()
		}
		return fmt.Errorf("failed to apply community actions: %w", err)
	}

	if d.Event.IsPullRequest && d.Event.Kind != moderation.CommentCreated {
		outcome := format.Trigger(ctx, format.PullRequest{
			Number:  d.Number,
			HeadRef: d.HeadRef,
			HeadSHA: d.HeadSHA,
			Kind:    d.Event.Kind,
		}, cfg, contents, github.RepoDispatcher{Client: client, Owner: d.Owner, Repo: d.Repo})
		formatDispatches.WithLabelValues(string(outcome)).Inc()
	}

	return nil
}

func stageLabel(v moderation.Verdict) string {
	if !v.Spam {
		return "clean"
	}
	return v.Stage
}

func recordFailures(report *moderation.Report) {
	if report == nil {
		return
	}
	for _, action := range report.Failed {
		remediationFailures.WithLabelValues(action.Name).Inc()
	}
}
