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
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ConfigurationError reports an invalid configuration value
type ConfigurationError struct {
	// Source is the file or policy the value came from, if known
	Source  string
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString("invalid configuration")
	if e.Source != "" {
		b.WriteString(" in ")
		b.WriteString(e.Source)
	}
	if e.Field != "" {
		b.WriteString(": ")
		b.WriteString(e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

// IsConfigurationError reports whether err contains a *ConfigurationError
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}

// Validate checks c and returns every problem found, joined
func Validate(source string, c *Config) error {
	var errs []error
	fail := func(field, format string, args ...any) {
		errs = append(errs, &ConfigurationError{Source: source, Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.Spam.MinAccountAgeDays < 0 {
		fail("spam.minAccountAgeDays", "must not be negative, got %d", c.Spam.MinAccountAgeDays)
	}
	if c.Spam.MaxLinks < 0 {
		fail("spam.maxLinks", "must not be negative, got %d", c.Spam.MaxLinks)
	}
	if c.Spam.MaxTemplateSimilarity < 0 || c.Spam.MaxTemplateSimilarity > 100 {
		fail("spam.maxTemplateSimilarity", "must be between 0 and 100, got %d", c.Spam.MaxTemplateSimilarity)
	}
	for i, keyword := range c.Spam.Keywords {
		// a blank keyword matches every item
		if strings.TrimSpace(keyword) == "" {
			fail(fmt.Sprintf("spam.keywords[%d]", i), "must not be blank")
		}
	}
	for pattern, label := range c.Community.AutoLabeler {
		if _, err := regexp.Compile("(?i)" + pattern); err != nil {
			fail("community.autoLabeler", "pattern %q does not compile: %v", pattern, err)
		}
		if strings.TrimSpace(label) == "" {
			fail("community.autoLabeler", "pattern %q has an empty label", pattern)
		}
	}

	return errors.Join(errs...)
}
