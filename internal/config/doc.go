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

// Package config loads the per-repository bot configuration.
//
// Configuration is built in layers, each one overriding only the fields it
// sets:
//
//  1. Built-in defaults (Defaults)
//  2. Cluster ModerationPolicy resources matching the repository, least
//     specific first ("*", then "owner/*", then "owner/repo")
//  3. The repository's .github/codey-bot.yml, or the owner's
//     <owner>/.github repository when the repository has none
//
// When no configuration file is found and no layer sets dryRun, the bot runs
// in dry-run mode: nothing is changed on GitHub until a repository opts in.
//
// The merged result is validated once, at load time. Invalid thresholds,
// blank keywords and auto-label patterns that do not compile are reported as
// *ConfigurationError so the moderation pipeline can trust its input.
//
// Example configuration file:
//
//	dryRun: false
//	spam:
//	  keywords: ["buy now", "cheap meds"]
//	  minAccountAgeDays: 3
//	  maxLinks: 5
//	  maxTemplateSimilarity: 85
//	community:
//	  welcomeMessage: "Thanks for your first contribution!"
//	  autoLabeler:
//	    "crash|panic": bug
//	pr:
//	  requireBody: true
//	  autoFormat: false
package config
