/*
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

package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ConditionReady is set to True when the policy validates and is applied to webhook events
const ConditionReady = "Ready"

// ModerationPolicySpec defines cluster-level moderation defaults for a set of repositories
type ModerationPolicySpec struct {
	// DryRun overrides the dry-run default for matching repositories.
	// Repositories without a configuration file otherwise run in dry-run mode.
	// +optional
	DryRun *bool `json:"dryRun,omitempty"`

	// Spam overrides the spam check thresholds
	// +optional
	Spam *SpamPolicy `json:"spam,omitempty"`

	// Repositories lists the repositories this policy applies to, each as
	// "owner/repo", "owner/*" or "*"
	// +kubebuilder:validation:MinItems=1
	Repositories []string `json:"repositories"`
}

// SpamPolicy holds spam check overrides. Unset fields keep the built-in default.
type SpamPolicy struct {
	// Enabled turns the spam check on or off
	// +optional
	Enabled *bool `json:"enabled,omitempty"`

	// MinAccountAgeDays flags authors whose account is younger than this many days
	// +kubebuilder:validation:Minimum=0
	// +optional
	MinAccountAgeDays *int32 `json:"minAccountAgeDays,omitempty"`

	// MaxLinks flags content with more links than this
	// +kubebuilder:validation:Minimum=0
	// +optional
	MaxLinks *int32 `json:"maxLinks,omitempty"`

	// MaxTemplateSimilarity flags new items whose body is at least this
	// similar (percent) to a repository template
	// +kubebuilder:validation:Minimum=0
	// +kubebuilder:validation:Maximum=100
	// +optional
	MaxTemplateSimilarity *int32 `json:"maxTemplateSimilarity,omitempty"`

	// Keywords replaces the spam keyword list. Matching is a case-insensitive substring match.
	// +optional
	Keywords []string `json:"keywords,omitempty"`
}

// ModerationPolicyStatus defines the observed state of ModerationPolicy.
type ModerationPolicyStatus struct {
	// conditions represent the current state of the ModerationPolicy resource.
	//
	// The "Ready" condition is True when the merged configuration is valid and
	// the policy is used for webhook events, False otherwise.
	// +listType=map
	// +listMapKey=type
	// +optional
	Conditions []metav1.Condition `json:"conditions,omitempty"`

	// ObservedGeneration reflects the generation of the most recently observed spec
	// +optional
	ObservedGeneration int64 `json:"observedGeneration,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="Ready",type="string",JSONPath=".status.conditions[?(@.type==\"Ready\")].status",description="Policy is valid"
// +kubebuilder:printcolumn:name="Age",type="date",JSONPath=".metadata.creationTimestamp",description="Creation Time"
// +kubebuilder:resource:shortName=modpolicy;modpolicies

// ModerationPolicy is the Schema for the moderationpolicies API
type ModerationPolicy struct {
	metav1.TypeMeta `json:",inline"`

	// metadata is a standard object metadata
	// +optional
	metav1.ObjectMeta `json:"metadata,omitempty,omitzero"`

	// status defines the observed state of ModerationPolicy
	// +optional
	Status ModerationPolicyStatus `json:"status,omitempty,omitzero"`

	// spec defines the desired state of ModerationPolicy
	// +required
	Spec ModerationPolicySpec `json:"spec"`
}

// +kubebuilder:object:root=true

// ModerationPolicyList contains a list of ModerationPolicy
type ModerationPolicyList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []ModerationPolicy `json:"items"`
}

func init() {
	SchemeBuilder.Register(&ModerationPolicy{}, &ModerationPolicyList{})
}
