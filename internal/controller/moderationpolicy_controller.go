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

package controller

import (
	"context"
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	moderationv1alpha1 "github.com/mikelane/codey/api/v1alpha1"
	"github.com/mikelane/codey/internal/config"
)

// Ready condition reasons
const (
	ReasonValid                = "Valid"
	ReasonInvalidConfiguration = "InvalidConfiguration"
	ReasonInvalidRepositories  = "InvalidRepositories"
)

// ModerationPolicyReconciler validates ModerationPolicy objects and reports
// the result in the Ready condition. Only policies that are not Ready=False
// are applied to webhook events.
type ModerationPolicyReconciler struct {
	client.Client
	Scheme *runtime.Scheme
}

// +kubebuilder:rbac:groups=moderation.codey.io,resources=moderationpolicies,verbs=get;list;watch
// +kubebuilder:rbac:groups=moderation.codey.io,resources=moderationpolicies/status,verbs=get;update;patch

// Reconcile is part of the main kubernetes reconciliation loop which aims to
// move the current state of the cluster closer to the desired state.
//
// For more details, check Reconcile and its Result here:
// - https://pkg.go.dev/sigs.k8s.io/controller-runtime@v0.22.4/pkg/reconcile
func (r *ModerationPolicyReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	log := logf.FromContext(ctx)

	var policy moderationv1alpha1.ModerationPolicy
	if err := r.Get(ctx, req.NamespacedName, &policy); err != nil {
		// Resource not found, return without error
		return ctrl.Result{}, client.IgnoreNotFound(err)
	}

	condition := evaluate(&policy)
	if policy.Status.ObservedGeneration == policy.Generation {
		existing := meta.FindStatusCondition(policy.Status.Conditions, moderationv1alpha1.ConditionReady)
		if existing != nil && existing.Status == condition.Status && existing.Reason == condition.Reason && existing.Message == condition.Message {
			return ctrl.Result{}, nil
		}
	}

	meta.SetStatusCondition(&policy.Status.Conditions, condition)
	policy.Status.ObservedGeneration = policy.Generation

	if err := r.Status().Update(ctx, &policy); err != nil {
		log.Error(err, "Failed to update moderation policy status")
		return ctrl.Result{}, err
	}

	log.Info("Validated moderation policy",
		"ready", condition.Status,
		"reason", condition.Reason,
		"repositories", policy.Spec.Repositories)

	return ctrl.Result{}, nil
}

// evaluate returns the Ready condition for policy
func evaluate(policy *moderationv1alpha1.ModerationPolicy) metav1.Condition {
	condition := metav1.Condition{
		Type:               moderationv1alpha1.ConditionReady,
		ObservedGeneration: policy.Generation,
	}

	var invalid []string
	for _, pattern := range policy.Spec.Repositories {
		if !config.ValidPattern(pattern) {
			invalid = append(invalid, fmt.Sprintf("%q", pattern))
		}
	}
	if len(policy.Spec.Repositories) == 0 || len(invalid) > 0 {
		condition.Status = metav1.ConditionFalse
		condition.Reason = ReasonInvalidRepositories
		condition.Message = "repositories must be \"*\", \"owner/*\" or \"owner/repo\""
		if len(invalid) > 0 {
			condition.Message += ", got " + strings.Join(invalid, ", ")
		}
		return condition
	}

	source := fmt.Sprintf("ModerationPolicy %s/%s", policy.Namespace, policy.Name)
	cfg := config.Merge(config.Defaults(), config.OverlayFromPolicy(&policy.Spec))
	if err := config.Validate(source, &cfg); err != nil {
		condition.Status = metav1.ConditionFalse
		condition.Reason = ReasonInvalidConfiguration
		condition.Message = strings.ReplaceAll(err.Error(), "\n", "; ")
		return condition
	}

	condition.Status = metav1.ConditionTrue
	condition.Reason = ReasonValid
	condition.Message = "Policy is applied to matching repositories"
	return condition
}

// SetupWithManager sets up the controller with the Manager.
func (r *ModerationPolicyReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&moderationv1alpha1.ModerationPolicy{}).
		Named("moderationpolicy").
		Complete(r)
}
