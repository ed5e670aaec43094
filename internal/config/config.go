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
	"maps"
	"slices"

	"github.com/mikelane/codey/internal/moderation"
)

// FileName is the name of the repository configuration file
const FileName = "codey-bot.yml"

// FilePath is where FileName is read from, in the repository and in the
// owner's .github repository
const FilePath = ".github/" + FileName

// OrgConfigRepo is the owner-level repository consulted when a repository has no FilePath
const OrgConfigRepo = ".github"

// Config is the effective configuration for one repository
type Config struct {
	Community CommunityConfig
	Spam      SpamConfig
	PR        PRConfig
	DryRun    bool
}

// SpamConfig holds the spam check thresholds
type SpamConfig struct {
	Keywords              []string
	MinAccountAgeDays     int
	MaxLinks              int
	MaxTemplateSimilarity int // percentage (0-100)
	Enabled               bool
}

// CommunityConfig drives the welcome message and auto-labeling
type CommunityConfig struct {
	// AutoLabeler maps a case-insensitive regular expression to a label
	AutoLabeler map[string]string
	// WelcomeMessage is posted for first-time contributors. Empty disables it.
	WelcomeMessage string
	// NewContributorLabel is added for first-time contributors. Empty disables it.
	NewContributorLabel string
}

// PRConfig holds the pull request checks
type PRConfig struct {
	RequireBody         bool
	ConventionalCommits bool
	AutoFormat          bool
}

// Defaults returns the built-in configuration
func Defaults() Config {
	return Config{
		DryRun: false,
		Spam: SpamConfig{
			Enabled:               true,
			Keywords:              []string{"spam", "buy now", "cheap meds"},
			MinAccountAgeDays:     1,
			MaxLinks:              10,
			MaxTemplateSimilarity: 90,
		},
		Community: CommunityConfig{
			WelcomeMessage:      "Thanks for opening your first issue/PR! We'll take a look soon.",
			NewContributorLabel: "first-time-contributor",
			AutoLabeler: map[string]string{
				"bug":         "bug",
				"enhancement": "enhancement",
				"feature":     "enhancement",
			},
		},
		PR: PRConfig{
			RequireBody:         true,
			ConventionalCommits: true,
			AutoFormat:          true,
		},
	}
}

// Moderation returns the settings consumed by the moderation pipeline
func (c *Config) Moderation() moderation.Config {
	return moderation.Config{
		Enabled:                  c.Spam.Enabled,
		Keywords:                 slices.Clone(c.Spam.Keywords),
		MinAccountAgeDays:        c.Spam.MinAccountAgeDays,
		MaxLinks:                 c.Spam.MaxLinks,
		MaxTemplateSimilarityPct: c.Spam.MaxTemplateSimilarity,
		DryRun:                   c.DryRun,
	}
}

// clone returns a deep copy of c
func (c Config) clone() Config {
	c.Spam.Keywords = slices.Clone(c.Spam.Keywords)
	c.Community.AutoLabeler = maps.Clone(c.Community.AutoLabeler)
	return c
}
