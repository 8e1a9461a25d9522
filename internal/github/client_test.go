package github

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPostComment(t *testing.T) {
	var requests int
	var gotAuth, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		gotAuth = r.Header.Get("Authorization")
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := &Client{Token: "test-token", HTTPClient: srv.Client()}
	if err := c.PostComment(context.Background(), srv.URL+"/comments", "hello from CI"); err != nil {
		t.Fatalf("post comment: %v", err)
	}
	if requests != 1 {
		t.Fatalf("requests = %d, want exactly 1", requests)
	}
	if gotAuth != "token test-token" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	var payload map[string]string
	if err := json.Unmarshal([]byte(gotBody), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload["body"] != "hello from CI" {
		t.Fatalf("body field = %q", payload["body"])
	}
}

func TestPostCommentServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Bad credentials"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := &Client{Token: "bad", HTTPClient: srv.Client()}
	err := c.PostComment(context.Background(), srv.URL+"/comments", "body")
	if err == nil {
		t.Fatal("expected error on 401")
	}
	if !strings.Contains(err.Error(), "Bad credentials") {
		t.Fatalf("error lacks response body: %v", err)
	}
}

func TestPostCommentEmptyURL(t *testing.T) {
	c := &Client{}
	if err := c.PostComment(context.Background(), "  ", "body"); err == nil {
		t.Fatal("expected error for empty comments URL")
	}
}
