package github

import (
	"fmt"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"

	idderrors "github.com/olusolaa/cfn-diff-reporter/internal/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	defaultServerURL = "https://github.com"
	defaultAPIURL    = "https://api.github.com"
)

// RunContext is the part of the GitHub Actions environment the notifier needs.
type RunContext struct {
	Owner     string
	Repo      string
	RunID     string
	ServerURL string
	APIURL    string
	// PullRequest is 0 outside pull_request events.
	PullRequest int
}

type eventPayload struct {
	PullRequest *struct {
		Number int `json:"number"`
	} `json:"pull_request"`
}

// RunContextFromEnv reads the standard GITHUB_* variables. getenv is
// os.Getenv outside tests.
func RunContextFromEnv(getenv func(string) string) (RunContext, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	rc := RunContext{
		RunID:     getenv("GITHUB_RUN_ID"),
		ServerURL: strings.TrimSuffix(or(getenv("GITHUB_SERVER_URL"), defaultServerURL), "/"),
		APIURL:    strings.TrimSuffix(or(getenv("GITHUB_API_URL"), defaultAPIURL), "/"),
	}

	repository := getenv("GITHUB_REPOSITORY")
	owner, repo, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || repo == "" {
		return rc, idderrors.New(idderrors.CodeConfigValidation, fmt.Sprintf("GITHUB_REPOSITORY %q is not owner/repo", repository))
	}
	rc.Owner, rc.Repo = owner, repo

	if path := getenv("GITHUB_EVENT_PATH"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return rc, idderrors.Wrap(err, idderrors.CodeConfigReadError, "failed to read GitHub event payload")
		}
		var payload eventPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return rc, idderrors.Wrap(err, idderrors.CodeConfigParseError, "failed to parse GitHub event payload")
		}
		if payload.PullRequest != nil {
			rc.PullRequest = payload.PullRequest.Number
		}
	}
	return rc, nil
}

// CommentBody links the job summary of the run.
func (rc RunContext) CommentBody() string {
	return fmt.Sprintf(":books: [CloudFormation Resource Summary](%s/%s/%s/actions/runs/%s) is reported.",
		rc.ServerURL, rc.Owner, rc.Repo, rc.RunID)
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
