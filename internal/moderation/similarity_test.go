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

package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var similarityInputs = []string{
	"",
	"   ",
	"a",
	"kitten",
	"sitting",
	"## Describe the bug\n\nA clear description.",
	"## Describe the bug\n\nIt crashes on startup.",
	"héllo wörld",
	"こんにちは世界",
	"\xff\xfe broken utf-8",
}

func TestSimilarityPct(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		a, b string
		want int
	}{
		{a: "", b: "", want: 100},
		{a: "  same  ", b: "same", want: 100},
		{a: "kitten", b: "sitting", want: 57},
		{a: "abc", b: "abd", want: 67},
		{a: "abc", b: "xyz", want: 0},
		{a: "Hello", b: "hello", want: 80},
		{a: "héllo", b: "hello", want: 80},
		{a: "template", b: "", want: 0},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.want, SimilarityPct(fix.a, fix.b), "%q vs %q", fix.a, fix.b)
	}
}

func TestSimilarityPctIdentity(t *testing.T) {
	for _, s := range similarityInputs {
		assert.Equal(t, 100, SimilarityPct(s, s), "%q", s)
	}
}

func TestSimilarityPctAgainstEmpty(t *testing.T) {
	for _, s := range similarityInputs {
		if s == "" || s == "   " {
			continue
		}
		assert.Equal(t, 0, SimilarityPct(s, ""), "%q", s)
		assert.Equal(t, 0, SimilarityPct("", s), "%q", s)
	}
}

func TestSimilarityPctSymmetricAndBounded(t *testing.T) {
	for _, a := range similarityInputs {
		for _, b := range similarityInputs {
			ab := SimilarityPct(a, b)
			assert.Equal(t, ab, SimilarityPct(b, a), "%q vs %q", a, b)
			assert.GreaterOrEqual(t, ab, 0)
			assert.LessOrEqual(t, ab, 100)
			// same input, same output
			assert.Equal(t, ab, SimilarityPct(a, b))
		}
	}
}
