package cienv

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEvent(t *testing.T) {
	payload := `{
		"action": "opened",
		"pull_request": {
			"number": 42,
			"state": "open",
			"comments_url": "https://api.github.invalid/repos/acme/infra/issues/42/comments",
			"head": {"ref": "feature/api", "sha": "deadbeef"},
			"base": {"ref": "main", "sha": "cafef00d"}
		},
		"unknown_field": {"ignored": true}
	}`
	path := filepath.Join(t.TempDir(), "event.json")
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("write payload: %v", err)
	}
	ev, err := LoadEvent(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ev.Action != "opened" {
		t.Fatalf("action = %q", ev.Action)
	}
	if ev.PullRequest == nil || ev.PullRequest.Number != 42 {
		t.Fatalf("pull request not decoded: %+v", ev.PullRequest)
	}
	if got := ev.PullRequest.Head.Ref; got != "feature/api" {
		t.Fatalf("head ref = %q", got)
	}
}

func TestLoadEventMissingFile(t *testing.T) {
	if _, err := LoadEvent(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing payload")
	}
}

func TestBranchResolution(t *testing.T) {
	ctx := &Context{Ref: "refs/heads/env-ref"}
	cases := []struct {
		name  string
		event *Event
		want  string
	}{
		{"pull request head ref wins", &Event{PullRequest: &PullRequest{Head: GitRef{Ref: "feature/x"}}}, "feature/x"},
		{"push ref trimmed", &Event{Ref: "refs/heads/main"}, "main"},
		{"delete short ref kept", &Event{Ref: "feature/gone", RefType: "branch"}, "feature/gone"},
		{"fallback to context ref", &Event{}, "env-ref"},
		{"nil event falls back", nil, "env-ref"},
	}
	for _, tc := range cases {
		if got := tc.event.Branch(ctx); got != tc.want {
			t.Errorf("%s: branch = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestAllowedPRAction(t *testing.T) {
	for _, action := range []string{"opened", "edited", "synchronize", "Opened"} {
		if !AllowedPRAction(action) {
			t.Errorf("action %q should proceed", action)
		}
	}
	for _, action := range []string{"closed", "labeled", "assigned", ""} {
		if AllowedPRAction(action) {
			t.Errorf("action %q should be skipped", action)
		}
	}
}
