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
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccountAgeDays(t *testing.T) {
	assert := assert.New(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	fixtures := []struct {
		name      string
		createdAt time.Time
		want      int
	}{
		{name: "created now", createdAt: now, want: 0},
		{name: "exactly one day", createdAt: now.Add(-24 * time.Hour), want: 1},
		{name: "partial days round up", createdAt: now.Add(-25 * time.Hour), want: 2},
		{name: "one minute old", createdAt: now.Add(-time.Minute), want: 1},
		{name: "years old", createdAt: now.AddDate(-3, 0, 0), want: 1096},
		{name: "future timestamp is not negative", createdAt: now.Add(36 * time.Hour), want: 2},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.want, AccountAgeDays(fix.createdAt, now), fix.name)
	}
}

func TestContainsAnyKeyword(t *testing.T) {
	assert := assert.New(t)
	keywords := []string{"spam", "buy now", "cheap meds"}

	fixtures := []struct {
		text string
		want bool
	}{
		{text: "Cheap Meds for you", want: true},
		{text: "BUY NOW!", want: true},
		{text: "I am a spammer", want: true},
		{text: "a perfectly normal bug report", want: false},
		{text: "", want: false},
		{text: "buy\nnow", want: false},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.want, ContainsAnyKeyword(fix.text, keywords), fix.text)
	}

	assert.False(ContainsAnyKeyword("anything", nil))
	assert.False(ContainsAnyKeyword("anything", []string{""}))
	assert.True(ContainsAnyKeyword("Grüße aus MÜNCHEN", []string{"münchen"}))
}

func TestCountLinks(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		text string
		want int
	}{
		{text: "", want: 0},
		{text: "no links here, just example.com", want: 0},
		{text: "see https://example.com/docs.", want: 1},
		{text: "http://a.example https://b.example", want: 2},
		{text: "(https://a.example),(https://b.example)", want: 1},
		{text: "https://", want: 0},
		{text: "ftp://files.example", want: 0},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.want, CountLinks(fix.text), fix.text)
	}

	var links []string
	for i := 0; i < 11; i++ {
		links = append(links, "http://example.com/"+strings.Repeat("x", i+1))
	}
	assert.Equal(11, CountLinks(strings.Join(links, "\n")))
}
