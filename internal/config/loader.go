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
	"context"
	"errors"
	"fmt"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mikelane/codey/internal/moderation"
)

// FileReader reads a file from any repository
type FileReader interface {
	// GetFileContent returns the decoded file, or an error wrapping
	// moderation.ErrNotFound when it does not exist
	GetFileContent(ctx context.Context, owner, repo, path string) (string, error)
}

// PolicySource returns the cluster policy layers for a repository, least specific first
type PolicySource interface {
	OverlaysFor(ctx context.Context, owner, repo string) ([]*Overlay, error)
}

// Loader builds the effective Config for a repository
type Loader struct {
	files    FileReader
	policies PolicySource
}

// NewLoader creates a loader. policies may be nil.
func NewLoader(files FileReader, policies PolicySource) *Loader {
	return &Loader{
		files:    files,
		policies: policies,
	}
}

// Load reads and merges every layer for owner/repo and validates the result.
// A *ConfigurationError is returned when the result is invalid.
func (l *Loader) Load(ctx context.Context, owner, repo string) (*Config, error) {
	logger := log.FromContext(ctx).WithValues("repository", owner+"/"+repo)

	var overlays []*Overlay
	if l.policies != nil {
		policyOverlays, err := l.policies.OverlaysFor(ctx, owner, repo)
		if err != nil {
			// cluster policies are optional defaults; carry on without them
			logger.Error(err, "Failed to read moderation policies")
		} else {
			overlays = append(overlays, policyOverlays...)
		}
	}

	file, source, err := l.readFile(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	if file == nil {
		logger.V(1).Info("No configuration file found, defaulting to dry run")
		overlays = append([]*Overlay{{DryRun: ptr(true)}}, overlays...)
	} else {
		overlays = append(overlays, file)
	}

	cfg := Merge(Defaults(), overlays...)
	if err := Validate(source, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// readFile returns the repository's configuration overlay, or the owner's
// when the repository has none. Both missing is not an error.
func (l *Loader) readFile(ctx context.Context, owner, repo string) (*Overlay, string, error) {
	candidates := [][2]string{{owner, repo}}
	if repo != OrgConfigRepo {
		candidates = append(candidates, [2]string{owner, OrgConfigRepo})
	}

	for _, c := range candidates {
		source := fmt.Sprintf("%s/%s:%s", c[0], c[1], FilePath)
		content, err := l.files.GetFileContent(ctx, c[0], c[1], FilePath)
		if errors.Is(err, moderation.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", source, err)
		}
		overlay, err := ParseOverlay(source, []byte(content))
		if err != nil {
			return nil, "", err
		}
		return overlay, source, nil
	}
	return nil, "", nil
}

func ptr[T any](v T) *T {
	return &v
}
