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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

// Delivery outcomes
const (
	outcomeProcessed        = "processed"
	outcomeIgnored          = "ignored"
	outcomeInvalidSignature = "invalid_signature"
	outcomeBadRequest       = "bad_request"
	outcomeConfigError      = "config_error"
	outcomeError            = "error"
)

var factory = promauto.With(metrics.Registry)

var deliveriesReceived = factory.NewCounterVec(prometheus.CounterOpts{
	Name: "codey_webhook_deliveries_total",
	Help: "Number of webhook deliveries received, by event and outcome",
}, []string{"event", "outcome"})

var verdictsIssued = factory.NewCounterVec(prometheus.CounterOpts{
	Name: "codey_moderation_verdicts_total",
	Help: "Number of moderation verdicts, by deciding stage (clean when no stage flagged the item)",
}, []string{"stage", "dry_run"})

var evaluationDuration = factory.NewHistogram(prometheus.HistogramOpts{
	Name:    "codey_moderation_evaluation_duration_seconds",
	Help:    "Time spent evaluating an item, including GitHub lookups",
	Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
})

var remediationFailures = factory.NewCounterVec(prometheus.CounterOpts{
	Name: "codey_remediation_failures_total",
	Help: "Number of failed remediation and community actions, by action",
}, []string{"action"})

var formatDispatches = factory.NewCounterVec(prometheus.CounterOpts{
	Name: "codey_format_dispatches_total",
	Help: "Number of format-check dispatch decisions, by outcome",
}, []string{"outcome"})
