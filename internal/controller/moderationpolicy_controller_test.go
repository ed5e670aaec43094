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
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	moderationv1alpha1 "github.com/mikelane/codey/api/v1alpha1"
	"github.com/mikelane/codey/internal/config"
)

func int32Ptr(v int32) *int32 { return &v }

var _ = Describe("ModerationPolicy Controller", func() {
	const resourceName = "acme-defaults"

	typeNamespacedName := types.NamespacedName{
		Name:      resourceName,
		Namespace: "default",
	}

	var (
		policy     *moderationv1alpha1.ModerationPolicy
		reconciler *ModerationPolicyReconciler
	)

	BeforeEach(func() {
		policy = &moderationv1alpha1.ModerationPolicy{
			ObjectMeta: metav1.ObjectMeta{
				Name:      resourceName,
				Namespace: "default",
			},
			Spec: moderationv1alpha1.ModerationPolicySpec{
				Repositories: []string{"acme/*"},
				Spam: &moderationv1alpha1.SpamPolicy{
					MaxLinks: int32Ptr(3),
				},
			},
		}
		reconciler = &ModerationPolicyReconciler{
			Client: k8sClient,
			Scheme: k8sClient.Scheme(),
		}
	})

	reconcileAndGet := func() *moderationv1alpha1.ModerationPolicy {
		GinkgoHelper()
		_, err := reconciler.Reconcile(ctx, reconcile.Request{NamespacedName: typeNamespacedName})
		Expect(err).NotTo(HaveOccurred())

		updated := &moderationv1alpha1.ModerationPolicy{}
		Expect(k8sClient.Get(ctx, typeNamespacedName, updated)).To(Succeed())
		return updated
	}

	Describe("Scenario: Reconcile a valid policy", func() {
		It("sets Ready to True", func() {
			Expect(k8sClient.Create(ctx, policy)).To(Succeed())

			updated := reconcileAndGet()

			ready := meta.FindStatusCondition(updated.Status.Conditions, moderationv1alpha1.ConditionReady)
			Expect(ready).NotTo(BeNil())
			Expect(ready.Status).To(Equal(metav1.ConditionTrue))
			Expect(ready.Reason).To(Equal(ReasonValid))
			Expect(updated.Status.ObservedGeneration).To(Equal(updated.Generation))
		})

		It("does not rewrite an unchanged status", func() {
			Expect(k8sClient.Create(ctx, policy)).To(Succeed())

			first := reconcileAndGet()
			second := reconcileAndGet()

			Expect(second.ResourceVersion).To(Equal(first.ResourceVersion))
		})
	})

	Describe("Scenario: Reconcile an invalid policy", func() {
		It("rejects malformed repository patterns", func() {
			policy.Spec.Repositories = []string{"acme", "acme/*"}
			Expect(k8sClient.Create(ctx, policy)).To(Succeed())

			updated := reconcileAndGet()

			ready := meta.FindStatusCondition(updated.Status.Conditions, moderationv1alpha1.ConditionReady)
			Expect(ready).NotTo(BeNil())
			Expect(ready.Status).To(Equal(metav1.ConditionFalse))
			Expect(ready.Reason).To(Equal(ReasonInvalidRepositories))
			Expect(ready.Message).To(ContainSubstring(`"acme"`))
		})

		It("rejects out of range thresholds", func() {
			policy.Spec.Spam.MaxTemplateSimilarity = int32Ptr(150)
			Expect(k8sClient.Create(ctx, policy)).To(Succeed())

			updated := reconcileAndGet()

			ready := meta.FindStatusCondition(updated.Status.Conditions, moderationv1alpha1.ConditionReady)
			Expect(ready).NotTo(BeNil())
			Expect(ready.Status).To(Equal(metav1.ConditionFalse))
			Expect(ready.Reason).To(Equal(ReasonInvalidConfiguration))
			Expect(ready.Message).To(ContainSubstring("spam.maxTemplateSimilarity"))
		})

		It("rejects blank keywords", func() {
			policy.Spec.Spam.Keywords = []string{"casino", "  "}
			Expect(k8sClient.Create(ctx, policy)).To(Succeed())

			updated := reconcileAndGet()

			ready := meta.FindStatusCondition(updated.Status.Conditions, moderationv1alpha1.ConditionReady)
			Expect(ready).NotTo(BeNil())
			Expect(ready.Reason).To(Equal(ReasonInvalidConfiguration))
			Expect(ready.Message).To(ContainSubstring("spam.keywords[1]"))
		})

		It("becomes Ready once fixed", func() {
			policy.Spec.Spam.MaxLinks = int32Ptr(-1)
			Expect(k8sClient.Create(ctx, policy)).To(Succeed())
			Expect(meta.IsStatusConditionFalse(reconcileAndGet().Status.Conditions, moderationv1alpha1.ConditionReady)).To(BeTrue())

			current := &moderationv1alpha1.ModerationPolicy{}
			Expect(k8sClient.Get(ctx, typeNamespacedName, current)).To(Succeed())
			current.Spec.Spam.MaxLinks = int32Ptr(5)
			Expect(k8sClient.Update(ctx, current)).To(Succeed())

			Expect(meta.IsStatusConditionTrue(reconcileAndGet().Status.Conditions, moderationv1alpha1.ConditionReady)).To(BeTrue())
		})
	})

	Describe("Scenario: Policies used by the webhook", func() {
		It("skips policies marked not ready", func() {
			policy.Spec.Spam.MaxLinks = int32Ptr(-1)
			Expect(k8sClient.Create(ctx, policy)).To(Succeed())
			reconcileAndGet()

			overlays, err := config.NewClusterPolicies(k8sClient, "default").OverlaysFor(ctx, "acme", "app")
			Expect(err).NotTo(HaveOccurred())
			Expect(overlays).To(BeEmpty())
		})

		It("applies ready policies", func() {
			Expect(k8sClient.Create(ctx, policy)).To(Succeed())
			reconcileAndGet()

			overlays, err := config.NewClusterPolicies(k8sClient, "default").OverlaysFor(ctx, "acme", "app")
			Expect(err).NotTo(HaveOccurred())
			Expect(overlays).To(HaveLen(1))

			cfg := config.Merge(config.Defaults(), overlays...)
			Expect(cfg.Spam.MaxLinks).To(Equal(3))
		})
	})

	Describe("Scenario: Reconcile a deleted policy", func() {
		It("returns without error", func() {
			_, err := reconciler.Reconcile(ctx, reconcile.Request{NamespacedName: typeNamespacedName})
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
