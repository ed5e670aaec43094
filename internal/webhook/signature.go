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
	"strings"

	"github.com/google/go-github/v66/github"
)

const signaturePrefix = "sha256="

// ValidateSignature reports whether signature is the X-Hub-Signature-256 value
// GitHub computes for payload with secret. Only "sha256=<hex>" is accepted and
// an empty secret rejects every delivery.
func ValidateSignature(payload []byte, signature string, secret string) bool {
	if signature == "" || secret == "" || !strings.HasPrefix(signature, signaturePrefix) {
		return false
	}
	return github.ValidateSignature(signature, payload, []byte(secret)) == nil
}
