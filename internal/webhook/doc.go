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

// Package webhook provides GitHub webhook handling for Codey.
//
// This package implements an HTTP server that receives GitHub App webhook
// deliveries, moderates the content they carry and runs the follow-up
// automation for clean items.
//
// Key features:
//   - Validates GitHub webhook signatures using HMAC-SHA256
//   - Handles issues (opened, edited), pull_request (opened, edited,
//     synchronize) and issue_comment (created) events
//   - Marks spam with a label, closes it and explains why in a comment
//   - Welcomes first-time contributors and auto-labels clean items
//   - Triggers the format-check workflow for pull requests
//   - Prometheus metrics and a health check endpoint
//
// Webhook Security:
//
// All webhook requests must include a valid X-Hub-Signature-256 header containing
// an HMAC-SHA256 signature computed with the webhook secret. Requests with invalid
// or missing signatures are rejected with HTTP 401.
//
// Event Handling:
//
// Each delivery is processed in order:
//   - configuration is loaded for the repository (HTTP 422 when invalid)
//   - the moderation pipeline classifies the content
//   - spam is remediated and processing stops
//   - community actions run for newly opened items
//   - the format check is dispatched for opened or updated pull requests
//
// A failed close or comment answers HTTP 500 so GitHub records the failed
// delivery. Other deliveries are unaffected.
//
// Example usage:
//
//	server := webhook.NewServer(
//		"",
//		8080,
//		"webhook-secret",
//		github.StaticProvider(client),
//		nil,
//	)
//	if err := server.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
package webhook
