// Copyright 2025 The Codey Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package format triggers the repository's format-check workflow for pull requests.
//
// When a pull request is opened or pushed to and the repository uses Biome
// (a biome.json at the root), a repository_dispatch event named
// "format-check" is sent carrying the pull request number, head ref and head
// SHA. The workflow itself lives in the repository.
package format
