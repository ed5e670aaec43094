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
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

func int32Ptr(v int32) *int32 { return &v }
func boolPtr(v bool) *bool    { return &v }

var _ = Describe("ModerationPolicy", func() {
	newPolicy := func(name string) *ModerationPolicy {
		return &ModerationPolicy{
			ObjectMeta: metav1.ObjectMeta{
				Name:      name,
				Namespace: "default",
			},
			Spec: ModerationPolicySpec{
				Repositories: []string{"acme/*"},
				DryRun:       boolPtr(false),
				Spam: &SpamPolicy{
					Enabled:               boolPtr(true),
					Keywords:              []string{"casino"},
					MinAccountAgeDays:     int32Ptr(14),
					MaxLinks:              int32Ptr(3),
					MaxTemplateSimilarity: int32Ptr(90),
				},
			},
		}
	}

	Context("Scheme registration", func() {
		It("registers the policy kinds under the moderation group", func() {
			Expect(GroupVersion.Group).To(Equal("moderation.codey.io"))
			Expect(GroupVersion.Version).To(Equal("v1alpha1"))

			gvks, _, err := k8sClient.Scheme().ObjectKinds(&ModerationPolicy{})
			Expect(err).NotTo(HaveOccurred())
			Expect(gvks).To(HaveLen(1))
			Expect(gvks[0].Kind).To(Equal("ModerationPolicy"))

			_, _, err = k8sClient.Scheme().ObjectKinds(&ModerationPolicyList{})
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Context("DeepCopy", func() {
		It("does not share pointers or slices with the original", func() {
			original := newPolicy("copy-test")
			copied := original.DeepCopy()

			*copied.Spec.DryRun = true
			*copied.Spec.Spam.MaxLinks = 10
			copied.Spec.Spam.Keywords[0] = "changed"
			copied.Spec.Repositories[0] = "other/*"

			Expect(*original.Spec.DryRun).To(BeFalse())
			Expect(*original.Spec.Spam.MaxLinks).To(Equal(int32(3)))
			Expect(original.Spec.Spam.Keywords).To(Equal([]string{"casino"}))
			Expect(original.Spec.Repositories).To(Equal([]string{"acme/*"}))
		})

		It("copies conditions", func() {
			original := newPolicy("conditions-test")
			meta.SetStatusCondition(&original.Status.Conditions, metav1.Condition{
				Type:   ConditionReady,
				Status: metav1.ConditionTrue,
				Reason: "Valid",
			})

			copied := original.DeepCopy()
			copied.Status.Conditions[0].Status = metav1.ConditionFalse

			Expect(original.Status.Conditions[0].Status).To(Equal(metav1.ConditionTrue))
		})

		It("handles nil receivers", func() {
			var policy *ModerationPolicy
			Expect(policy.DeepCopy()).To(BeNil())

			var spam *SpamPolicy
			Expect(spam.DeepCopy()).To(BeNil())
		})
	})

	Context("Client round trip", func() {
		It("round-trips the policy fields", func() {
			policy := newPolicy("roundtrip")
			Expect(k8sClient.Create(ctx, policy)).To(Succeed())

			fetched := &ModerationPolicy{}
			Expect(k8sClient.Get(ctx, client.ObjectKeyFromObject(policy), fetched)).To(Succeed())
			Expect(fetched.Spec.Repositories).To(Equal([]string{"acme/*"}))
			Expect(*fetched.Spec.Spam.MinAccountAgeDays).To(Equal(int32(14)))
			Expect(fetched.Spec.Spam.Keywords).To(ConsistOf("casino"))
		})

		It("updates status through the status subresource", func() {
			policy := newPolicy("status")
			Expect(k8sClient.Create(ctx, policy)).To(Succeed())

			policy.Status.ObservedGeneration = policy.Generation
			meta.SetStatusCondition(&policy.Status.Conditions, metav1.Condition{
				Type:    ConditionReady,
				Status:  metav1.ConditionTrue,
				Reason:  "Valid",
				Message: "policy is valid",
			})
			Expect(k8sClient.Status().Update(ctx, policy)).To(Succeed())

			fetched := &ModerationPolicy{}
			Expect(k8sClient.Get(ctx, client.ObjectKeyFromObject(policy), fetched)).To(Succeed())
			Expect(meta.IsStatusConditionTrue(fetched.Status.Conditions, ConditionReady)).To(BeTrue())
		})

		It("lists policies", func() {
			Expect(k8sClient.Create(ctx, newPolicy("one"))).To(Succeed())
			Expect(k8sClient.Create(ctx, newPolicy("two"))).To(Succeed())

			list := &ModerationPolicyList{}
			Expect(k8sClient.List(ctx, list)).To(Succeed())
			Expect(list.Items).To(HaveLen(2))
		})
	})
})
