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

	"gopkg.in/yaml.v3"
)

// Overlay is one configuration layer. Nil fields leave the layer below unchanged.
type Overlay struct {
	DryRun    *bool             `yaml:"dryRun"`
	Spam      *SpamOverlay      `yaml:"spam"`
	Community *CommunityOverlay `yaml:"community"`
	PR        *PROverlay        `yaml:"pr"`
}

// SpamOverlay overrides SpamConfig fields
type SpamOverlay struct {
	Enabled               *bool    `yaml:"enabled"`
	Keywords              []string `yaml:"keywords"`
	MinAccountAgeDays     *int     `yaml:"minAccountAgeDays"`
	MaxLinks              *int     `yaml:"maxLinks"`
	MaxTemplateSimilarity *int     `yaml:"maxTemplateSimilarity"`
}

// CommunityOverlay overrides CommunityConfig fields.
// A non-nil AutoLabeler replaces the map below it.
type CommunityOverlay struct {
	WelcomeMessage      *string           `yaml:"welcomeMessage"`
	NewContributorLabel *string           `yaml:"newContributorLabel"`
	AutoLabeler         map[string]string `yaml:"autoLabeler"`
}

// PROverlay overrides PRConfig fields
type PROverlay struct {
	RequireBody         *bool `yaml:"requireBody"`
	ConventionalCommits *bool `yaml:"conventionalCommits"`
	AutoFormat          *bool `yaml:"autoFormat"`
}

// ParseOverlay decodes a YAML configuration file
func ParseOverlay(source string, data []byte) (*Overlay, error) {
	var overlay Overlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, &ConfigurationError{Source: source, Message: err.Error()}
	}
	return &overlay, nil
}

// Merge applies overlays to base in order and returns the result.
// base and the overlays are not modified.
func Merge(base Config, overlays ...*Overlay) Config {
	out := base.clone()
	for _, o := range overlays {
		if o == nil {
			continue
		}
		setIf(&out.DryRun, o.DryRun)
		if s := o.Spam; s != nil {
			setIf(&out.Spam.Enabled, s.Enabled)
			setIf(&out.Spam.MinAccountAgeDays, s.MinAccountAgeDays)
			setIf(&out.Spam.MaxLinks, s.MaxLinks)
			setIf(&out.Spam.MaxTemplateSimilarity, s.MaxTemplateSimilarity)
			if s.Keywords != nil {
				out.Spam.Keywords = slices.Clone(s.Keywords)
			}
		}
		if c := o.Community; c != nil {
			setIf(&out.Community.WelcomeMessage, c.WelcomeMessage)
			setIf(&out.Community.NewContributorLabel, c.NewContributorLabel)
			if c.AutoLabeler != nil {
				out.Community.AutoLabeler = maps.Clone(c.AutoLabeler)
			}
		}
		if p := o.PR; p != nil {
			setIf(&out.PR.RequireBody, p.RequireBody)
			setIf(&out.PR.ConventionalCommits, p.ConventionalCommits)
			setIf(&out.PR.AutoFormat, p.AutoFormat)
		}
	}
	return out
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
