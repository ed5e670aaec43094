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

// Package moderation decides whether repository activity is spam and applies
// the resulting remediation.
//
// An Event (new issue, new or updated pull request, new comment) is run
// through a fixed sequence of stages. Each stage either abstains or returns a
// terminal spam verdict:
//
//	account-age -> keywords -> links -> template
//
// The first spam verdict stops the pipeline. The template stage only runs for
// newly opened issues and pull requests, and compares the body against the
// repository's issue or pull request templates by edit distance.
//
// Fetch Policy:
//
// The pipeline reads repository content and user metadata through the
// ContentReader and UserFetcher capabilities. Content fetch failures fail
// open (the template stage abstains). A failed account lookup fails closed:
// the creation time is taken to be "now", so the account is treated as brand
// new.
//
// Remediation:
//
// Remediate labels the item "spam", closes it and posts a comment stating the
// reason. The label is best-effort. Close and comment failures are returned
// as *MutationError. In dry-run mode the planned actions are reported and
// nothing is called.
//
// Example usage:
//
//	verdict := moderation.Evaluate(ctx, event, cfg, moderation.Capabilities{
//		Users:    users,
//		Contents: contents,
//	})
//	if verdict.Spam {
//		report, err := moderation.Remediate(ctx, event, verdict, cfg, mutator)
//		...
//	}
package moderation
