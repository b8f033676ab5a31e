package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func envFrom(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestRawConfigFromEnv(t *testing.T) {
	raw, err := rawConfigFromEnv(envFrom(map[string]string{
		envClientID:         "app-id",
		envClientSecret:     "app-secret",
		envMode:             "testing",
		envTransportTimeout: "5s",
	}))
	if err != nil {
		t.Fatalf("raw config: %v", err)
	}
	facebook, ok := raw["facebook"].(map[string]any)
	if !ok || facebook["client_id"] != "app-id" || facebook["client_secret"] != "app-secret" {
		t.Fatalf("unexpected facebook section %#v", raw["facebook"])
	}
	if raw["mode"] != "testing" {
		t.Fatalf("expected mode, got %#v", raw["mode"])
	}
	transport := raw["transport"].(map[string]any)
	if transport["timeout"] != 5*time.Second {
		t.Fatalf("expected parsed timeout, got %#v", transport["timeout"])
	}

	empty, err := rawConfigFromEnv(envFrom(nil))
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty raw config, got %#v (%v)", empty, err)
	}
	if _, err := rawConfigFromEnv(envFrom(map[string]string{envTransportTimeout: "soon"})); err == nil {
		t.Fatalf("expected invalid duration error")
	}
}

func TestExchangeCommand_PrintsLongLivedToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("client_secret") != "app-secret" {
			t.Errorf("expected client secret in query")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"long-lived"}`))
	}))
	defer server.Close()

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(&stdout, &stderr, envFrom(map[string]string{
		envClientID:     "app-id",
		envClientSecret: "app-secret",
		envBaseURL:      server.URL,
	}))
	cmd.SetArgs([]string{"exchange", "--token", "short", "--env-file", "", "--verbose"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if strings.TrimSpace(stdout.String()) != "long-lived" {
		t.Fatalf("expected long-lived token on stdout, got %q", stdout.String())
	}
	if strings.Contains(stderr.String(), "app-secret") || strings.Contains(stderr.String(), "long-lived") {
		t.Fatalf("expected secrets kept out of logs, got %q", stderr.String())
	}
	if !strings.Contains(stderr.String(), "ensure_tokens succeeded") {
		t.Fatalf("expected verbose operation log, got %q", stderr.String())
	}
	if !strings.Contains(stderr.String(), "facebook token exchange response") {
		t.Fatalf("expected adapter debug log, got %q", stderr.String())
	}
}

func TestExchangeCommand_QuietWithoutVerbose(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(&stdout, &stderr, envFrom(map[string]string{envMode: "testing"}))
	cmd.SetArgs([]string{"exchange", "--token", "short", "--env-file", ""})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if stderr.Len() != 0 {
		t.Fatalf("expected no log output, got %q", stderr.String())
	}
}

func TestExchangeCommand_TestingModeEchoesToken(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(&stdout, &stderr, envFrom(map[string]string{envMode: "testing"}))
	cmd.SetArgs([]string{"exchange", "--token", "short", "--env-file", ""})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if strings.TrimSpace(stdout.String()) != "short" {
		t.Fatalf("expected token unchanged, got %q", stdout.String())
	}
}

func TestExchangeCommand_MissingCredentialsFails(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(&stdout, &stderr, envFrom(nil))
	cmd.SetArgs([]string{"exchange", "--token", "short", "--env-file", ""})
	err := cmd.Execute()
	if err == nil {
		t.Fatalf("expected missing credentials error")
	}
	if stdout.Len() != 0 {
		t.Fatalf("expected no token output, got %q", stdout.String())
	}
}

func TestExchangeCommand_RequiresToken(t *testing.T) {
	cmd := newRootCommand(&bytes.Buffer{}, &bytes.Buffer{}, envFrom(nil))
	cmd.SetArgs([]string{"exchange", "--env-file", ""})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected missing token error")
	}
}

func TestRootCommand_ExplicitMissingEnvFileFails(t *testing.T) {
	cmd := newRootCommand(&bytes.Buffer{}, &bytes.Buffer{}, envFrom(nil))
	missing := filepath.Join(t.TempDir(), "missing.env")
	cmd.SetArgs([]string{"exchange", "--token", "short", "--env-file", missing})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected env file error")
	}
	if _, err := os.Stat(missing); err == nil {
		t.Fatalf("expected env file to stay missing")
	}
}
