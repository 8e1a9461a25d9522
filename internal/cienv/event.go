package cienv

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Event models the slice of the GitHub event payload stackrun consumes.
// The document is externally owned; unknown fields are ignored.
type Event struct {
	Action      string       `json:"action"`
	Ref         string       `json:"ref"`
	RefType     string       `json:"ref_type"`
	PullRequest *PullRequest `json:"pull_request"`
}

type PullRequest struct {
	Number      int    `json:"number"`
	State       string `json:"state"`
	CommentsURL string `json:"comments_url"`
	Head        GitRef `json:"head"`
	Base        GitRef `json:"base"`
}

type GitRef struct {
	Ref string `json:"ref"`
	SHA string `json:"sha"`
}

// LoadEvent decodes the event payload file supplied by the CI system.
func LoadEvent(path string) (*Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read event payload: %w", err)
	}
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("decode event payload %s: %w", path, err)
	}
	return &ev, nil
}

// Branch resolves the branch the event concerns. Pull requests use the
// head ref; push and delete events carry a fully qualified git ref.
func (e *Event) Branch(ctx *Context) string {
	if e != nil && e.PullRequest != nil && e.PullRequest.Head.Ref != "" {
		return e.PullRequest.Head.Ref
	}
	ref := ""
	if e != nil {
		ref = e.Ref
	}
	if ref == "" && ctx != nil {
		ref = ctx.Ref
	}
	return strings.TrimPrefix(ref, "refs/heads/")
}

// AllowedPRAction reports whether a pull_request action warrants a run.
// Everything else (closed, labeled, assigned, ...) is a clean skip.
func AllowedPRAction(action string) bool {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "opened", "edited", "synchronize":
		return true
	}
	return false
}
