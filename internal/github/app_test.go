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

package github

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func generateKey(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}
	return key, pem.EncodeToMemory(block)
}

func TestNewAppRejectsInvalidKey(t *testing.T) {
	if _, err := NewApp(1, []byte("not a key")); err == nil {
		t.Error("NewApp() expected error for invalid key, got nil")
	}
}

// TestAppJWT tests the app JWT claims
func TestAppJWT(t *testing.T) {
	key, keyPEM := generateKey(t)
	app, err := NewApp(4242, keyPEM)
	if err != nil {
		t.Fatalf("NewApp() unexpected error: %v", err)
	}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	app.now = func() time.Time { return now }

	signed, err := app.JWT()
	if err != nil {
		t.Fatalf("JWT() unexpected error: %v", err)
	}

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(signed, claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodRS256 {
			t.Errorf("signing method = %v, want RS256", token.Method)
		}
		return &key.PublicKey, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("Failed to verify JWT: %v", err)
	}

	if claims.Issuer != "4242" {
		t.Errorf("iss = %q, want 4242", claims.Issuer)
	}
	if got := claims.IssuedAt.Time; !got.Equal(now.Add(-60 * time.Second)) {
		t.Errorf("iat = %v, want %v", got, now.Add(-60*time.Second))
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got > 10*time.Minute {
		t.Errorf("JWT lifetime = %v, GitHub allows at most 10m", got)
	}
}

// TestAppClientFor tests installation token exchange and client caching
func TestAppClientFor(t *testing.T) {
	_, keyPEM := generateKey(t)

	var mints int32
	mux := http.NewServeMux()
	mux.HandleFunc("/app/installations/99/access_tokens", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&mints, 1)
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST request, got %s", r.Method)
		}
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.Count(auth, ".") != 2 {
			t.Errorf("Authorization = %q, want Bearer JWT", auth)
		}
		writeJSON(t, w, http.StatusCreated, map[string]any{
			"token":      "ghs_installation",
			"expires_at": time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/repos/acme/app/contents/README.md", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer ghs_installation" {
			t.Errorf("Authorization = %q, want installation token", got)
		}
		writeJSON(t, w, http.StatusOK, map[string]any{
			"type":     "file",
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte("# app")),
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	app, err := NewApp(1, keyPEM, WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewApp() unexpected error: %v", err)
	}

	client, err := app.ClientFor(99)
	if err != nil {
		t.Fatalf("ClientFor() unexpected error: %v", err)
	}
	again, err := app.ClientFor(99)
	if err != nil {
		t.Fatalf("ClientFor() unexpected error: %v", err)
	}
	if client != again {
		t.Error("ClientFor() did not reuse the cached client")
	}

	for i := 0; i < 2; i++ {
		content, err := client.GetFileContent(context.Background(), "acme", "app", "README.md")
		if err != nil {
			t.Fatalf("GetFileContent() unexpected error: %v", err)
		}
		if content != "# app" {
			t.Errorf("GetFileContent() = %q, want %q", content, "# app")
		}
	}

	if n := atomic.LoadInt32(&mints); n != 1 {
		t.Errorf("minted %d installation tokens, want 1", n)
	}
}

func TestAppClientForWithoutInstallation(t *testing.T) {
	_, keyPEM := generateKey(t)
	app, err := NewApp(1, keyPEM)
	if err != nil {
		t.Fatalf("NewApp() unexpected error: %v", err)
	}

	if _, err := app.ClientFor(0); err == nil {
		t.Error("ClientFor(0) expected error without fallback, got nil")
	}

	fallback, _ := NewClient("github_pat_test")
	app.WithFallback(fallback)

	got, err := app.ClientFor(0)
	if err != nil {
		t.Fatalf("ClientFor(0) unexpected error: %v", err)
	}
	if got != fallback {
		t.Error("ClientFor(0) did not return the fallback client")
	}
}

func TestInstallationTokenError(t *testing.T) {
	_, keyPEM := generateKey(t)
	mux := http.NewServeMux()
	mux.HandleFunc("/app/installations/7/access_tokens", notFound)
	server := httptest.NewServer(mux)
	defer server.Close()

	app, err := NewApp(1, keyPEM, WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewApp() unexpected error: %v", err)
	}

	if _, err := app.InstallationToken(context.Background(), 7); err == nil {
		t.Error("InstallationToken() expected error, got nil")
	}
}
