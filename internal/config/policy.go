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

package config

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	moderationv1alpha1 "github.com/mikelane/codey/api/v1alpha1"
)

// Repository pattern specificity, least specific first
const (
	matchNone = iota
	matchAny
	matchOwner
	matchRepository
)

// ClusterPolicies reads ModerationPolicy resources as configuration layers
type ClusterPolicies struct {
	reader    client.Reader
	namespace string
}

// NewClusterPolicies creates a PolicySource. An empty namespace lists policies in all namespaces.
func NewClusterPolicies(reader client.Reader, namespace string) *ClusterPolicies {
	return &ClusterPolicies{
		reader:    reader,
		namespace: namespace,
	}
}

// OverlaysFor returns the overlays of every policy matching owner/repo, ordered
// "*" policies first, then "owner/*", then "owner/repo", ties broken by name.
// Policies whose Ready condition is False are skipped.
func (p *ClusterPolicies) OverlaysFor(ctx context.Context, owner, repo string) ([]*Overlay, error) {
	logger := log.FromContext(ctx)

	var opts []client.ListOption
	if p.namespace != "" {
		opts = append(opts, client.InNamespace(p.namespace))
	}

	var list moderationv1alpha1.ModerationPolicyList
	if err := p.reader.List(ctx, &list, opts...); err != nil {
		return nil, fmt.Errorf("failed to list moderation policies: %w", err)
	}

	type match struct {
		policy      *moderationv1alpha1.ModerationPolicy
		specificity int
	}
	var matches []match
	for i := range list.Items {
		policy := &list.Items[i]
		if cond := meta.FindStatusCondition(policy.Status.Conditions, moderationv1alpha1.ConditionReady); cond != nil && cond.Status == metav1.ConditionFalse {
			logger.V(1).Info("Skipping policy that is not ready", "policy", policy.Name, "reason", cond.Reason)
			continue
		}
		if s := Specificity(policy.Spec.Repositories, owner, repo); s != matchNone {
			matches = append(matches, match{policy: policy, specificity: s})
		}
	}

	slices.SortStableFunc(matches, func(a, b match) int {
		return cmp.Or(
			cmp.Compare(a.specificity, b.specificity),
			cmp.Compare(a.policy.Namespace, b.policy.Namespace),
			cmp.Compare(a.policy.Name, b.policy.Name),
		)
	})

	overlays := make([]*Overlay, 0, len(matches))
	for _, m := range matches {
		overlays = append(overlays, OverlayFromPolicy(&m.policy.Spec))
	}
	return overlays, nil
}

// Specificity returns how closely patterns match owner/repo, or zero when none match.
// Names compare case-insensitively.
func Specificity(patterns []string, owner, repo string) int {
	best := matchNone
	for _, pattern := range patterns {
		best = max(best, patternSpecificity(strings.TrimSpace(pattern), owner, repo))
	}
	return best
}

func patternSpecificity(pattern, owner, repo string) int {
	if pattern == "*" {
		return matchAny
	}
	patternOwner, patternRepo, ok := strings.Cut(pattern, "/")
	if !ok || !strings.EqualFold(patternOwner, owner) {
		return matchNone
	}
	switch {
	case patternRepo == "*":
		return matchOwner
	case strings.EqualFold(patternRepo, repo):
		return matchRepository
	default:
		return matchNone
	}
}

// ValidPattern reports whether pattern is "*", "owner/*" or "owner/repo"
func ValidPattern(pattern string) bool {
	if pattern == "*" {
		return true
	}
	owner, repo, ok := strings.Cut(pattern, "/")
	return ok && owner != "" && owner != "*" && repo != "" && !strings.Contains(repo, "/")
}

// OverlayFromPolicy converts a policy spec to a configuration layer
func OverlayFromPolicy(spec *moderationv1alpha1.ModerationPolicySpec) *Overlay {
	overlay := &Overlay{DryRun: spec.DryRun}
	if s := spec.Spam; s != nil {
		overlay.Spam = &SpamOverlay{
			Enabled:               s.Enabled,
			Keywords:              slices.Clone(s.Keywords),
			MinAccountAgeDays:     intPtr(s.MinAccountAgeDays),
			MaxLinks:              intPtr(s.MaxLinks),
			MaxTemplateSimilarity: intPtr(s.MaxTemplateSimilarity),
		}
	}
	return overlay
}

func intPtr(v *int32) *int {
	if v == nil {
		return nil
	}
	return ptr(int(*v))
}
