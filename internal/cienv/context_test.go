package cienv

import (
	"errors"
	"testing"
)

func mapGetenv(env map[string]string) func(string) string {
	return func(key string) string { return env[key] }
}

func TestDetectGitHubActions(t *testing.T) {
	env := map[string]string{
		"GITHUB_ACTIONS":    "true",
		"GITHUB_WORKFLOW":   "deploy",
		"GITHUB_EVENT_NAME": "pull_request",
		"GITHUB_EVENT_PATH": "/tmp/event.json",
		"GITHUB_REF":        "refs/heads/main",
		"GITHUB_SHA":        "abc123",
		"GITHUB_TOKEN":      "secret",
		"GITHUB_REPOSITORY": "acme/infra",
		"GITHUB_ACTOR":      "octocat",
	}
	ctx, err := Detect(mapGetenv(env))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if ctx.System != SystemGitHub {
		t.Fatalf("system = %q, want %q", ctx.System, SystemGitHub)
	}
	if ctx.EventName != "pull_request" || ctx.EventPath != "/tmp/event.json" {
		t.Fatalf("unexpected event context: %+v", ctx)
	}
	if ctx.Ref != "refs/heads/main" || ctx.SHA != "abc123" || ctx.Token != "secret" {
		t.Fatalf("unexpected git context: %+v", ctx)
	}
}

func TestDetectViaGenericCIFlag(t *testing.T) {
	env := map[string]string{
		"CI":                "true",
		"GITHUB_EVENT_NAME": "push",
	}
	ctx, err := Detect(mapGetenv(env))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if ctx.EventName != "push" {
		t.Fatalf("event = %q, want push", ctx.EventName)
	}
}

func TestDetectUnknownCI(t *testing.T) {
	_, err := Detect(mapGetenv(map[string]string{"CI": "true"}))
	if !errors.Is(err, ErrUnknownCI) {
		t.Fatalf("err = %v, want ErrUnknownCI", err)
	}
}
