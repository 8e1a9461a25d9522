// Package cienv detects the CI system stackrun was launched from and
// decodes the event payload the system hands us.
package cienv

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// SystemGitHub is the only CI system stackrun currently recognizes.
const SystemGitHub = "github"

// ErrUnknownCI is returned when no recognized CI environment is present.
var ErrUnknownCI = errors.New("unrecognized CI environment")

// Context holds the normalized CI run context read from the environment.
type Context struct {
	System     string
	Workflow   string
	EventName  string
	EventPath  string
	Ref        string
	SHA        string
	Token      string
	Repository string
	Actor      string
}

// Detect reads CI marker variables through getenv and normalizes them.
// getenv defaults to os.Getenv; tests inject a map-backed lookup.
func Detect(getenv func(string) string) (*Context, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	onGitHub := isTruthy(getenv("GITHUB_ACTIONS")) ||
		(isTruthy(getenv("CI")) && getenv("GITHUB_EVENT_NAME") != "")
	if !onGitHub {
		return nil, fmt.Errorf("%w: set GITHUB_ACTIONS=true (or CI=true with GITHUB_EVENT_NAME) to run under GitHub Actions", ErrUnknownCI)
	}
	return &Context{
		System:     SystemGitHub,
		Workflow:   getenv("GITHUB_WORKFLOW"),
		EventName:  getenv("GITHUB_EVENT_NAME"),
		EventPath:  getenv("GITHUB_EVENT_PATH"),
		Ref:        getenv("GITHUB_REF"),
		SHA:        getenv("GITHUB_SHA"),
		Token:      getenv("GITHUB_TOKEN"),
		Repository: getenv("GITHUB_REPOSITORY"),
		Actor:      getenv("GITHUB_ACTOR"),
	}, nil
}

func isTruthy(val string) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
