package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	gogithub "github.com/google/go-github/v66/github"

	"github.com/olusolaa/cfn-diff-reporter/internal/core/domain"
	"github.com/olusolaa/cfn-diff-reporter/internal/core/ports"
	idderrors "github.com/olusolaa/cfn-diff-reporter/internal/errors"
)

const (
	NotifierTypeGitHub = "github"
	botLogin           = "github-actions[bot]"
	perPage            = 100
)

type Config struct {
	Token string `mapstructure:"token"`
}

// Notifier leaves a single comment per run on the pull request that
// triggered it.
type Notifier struct {
	token      string
	run        RunContext
	httpClient *http.Client
	client     *gogithub.Client
	logger     ports.Logger

	mu     sync.Mutex
	posted bool
}

var _ ports.Notifier = (*Notifier)(nil)

type NotifierOption func(*Notifier)

// WithHTTPClient replaces the transport used for GitHub API calls.
func WithHTTPClient(client *http.Client) NotifierOption {
	return func(n *Notifier) {
		if client != nil {
			n.httpClient = client
		}
	}
}

func NewNotifier(cfg Config, run RunContext, logger ports.Logger, opts ...NotifierOption) (*Notifier, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, idderrors.NewUserFacing(idderrors.CodeConfigValidation, "github notifier requires a token",
			"Set notify.github.token or export GITHUB_TOKEN.")
	}
	n := &Notifier{
		token:      cfg.Token,
		run:        run,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.WithFields(map[string]any{"component": "github_notifier"}),
	}
	for _, opt := range opts {
		opt(n)
	}

	client := gogithub.NewClient(n.httpClient).WithAuthToken(n.token)
	if run.APIURL != "" {
		baseURL, err := url.Parse(strings.TrimSuffix(run.APIURL, "/") + "/")
		if err != nil {
			return nil, idderrors.Wrap(err, idderrors.CodeConfigValidation, fmt.Sprintf("invalid GitHub API URL %q", run.APIURL))
		}
		client.BaseURL = baseURL
	}
	n.client = client
	return n, nil
}

func (n *Notifier) Type() string {
	return NotifierTypeGitHub
}

// Notify is a no-op outside pull requests and after the first successful
// comment of the run.
func (n *Notifier) Notify(ctx context.Context, report *domain.Report) error {
	if n.run.PullRequest == 0 {
		n.logger.Debugf(ctx, "Not a pull request event, comment skipped")
		return nil
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.posted {
		return nil
	}

	body := n.run.CommentBody()
	found, err := n.hasComment(ctx, body)
	if err != nil {
		return err
	}
	if found {
		n.logger.Debugf(ctx, "Pull request #%d already links this run", n.run.PullRequest)
		n.posted = true
		return nil
	}

	_, _, err = n.client.Issues.CreateComment(ctx, n.run.Owner, n.run.Repo, n.run.PullRequest,
		&gogithub.IssueComment{Body: gogithub.String(body)})
	if err != nil {
		return apiError(err, "create comment")
	}

	n.posted = true
	n.logger.Infof(ctx, "Commented on pull request #%d for stack %s", n.run.PullRequest, report.StackName)
	return nil
}

func (n *Notifier) hasComment(ctx context.Context, body string) (bool, error) {
	opts := &gogithub.IssueListCommentsOptions{ListOptions: gogithub.ListOptions{PerPage: perPage}}
	for {
		comments, resp, err := n.client.Issues.ListComments(ctx, n.run.Owner, n.run.Repo, n.run.PullRequest, opts)
		if err != nil {
			return false, apiError(err, "list comments")
		}
		for _, c := range comments {
			if c.GetUser().GetLogin() == botLogin && strings.Contains(c.GetBody(), body) {
				return true, nil
			}
		}
		if resp.NextPage == 0 {
			return false, nil
		}
		opts.Page = resp.NextPage
	}
}

func apiError(err error, action string) error {
	var errResp *gogithub.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		message := fmt.Sprintf("failed to %s: GitHub returned %s: %s", action, errResp.Response.Status, errResp.Message)
		switch errResp.Response.StatusCode {
		case http.StatusForbidden, http.StatusNotFound:
			return idderrors.NewUserFacing(idderrors.CodeNotifyError, message, "Set permissions of pull-requests to write.")
		}
		return idderrors.New(idderrors.CodeNotifyError, message)
	}
	return idderrors.Wrap(err, idderrors.CodeNotifyError, "failed to "+action+" on GitHub")
}
