package service

import (
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

const (
	DefaultDriftDelay       = 3000 * time.Millisecond
	DefaultDriftMaxAttempts = 7
	DefaultDriftTimeout     = 360000 * time.Millisecond

	// backoffFactor is fixed; only the base delay is configurable.
	backoffFactor = 2
)

// RetryPolicy bounds the poll loop of a single drift detection.
type RetryPolicy struct {
	BaseDelay   time.Duration
	MaxAttempts int
	Timeout     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		BaseDelay:   DefaultDriftDelay,
		MaxAttempts: DefaultDriftMaxAttempts,
		Timeout:     DefaultDriftTimeout,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.BaseDelay < 0 {
		p.BaseDelay = 0
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultDriftMaxAttempts
	}
	if p.Timeout <= 0 {
		p.Timeout = DefaultDriftTimeout
	}
	return p
}

// Backoff returns the sleep sequence of one ticket. The n-th Step is drawn
// from [d/2, d] with d = BaseDelay * 2^(n-1), so a sleep never exceeds the
// un-jittered exponential delay. Growth stops at the ticket timeout.
func (p RetryPolicy) Backoff() wait.Backoff {
	initial := p.BaseDelay / 2
	if p.Timeout > 0 && initial > p.Timeout {
		initial = p.Timeout
	}
	return wait.Backoff{
		Duration: initial,
		Factor:   backoffFactor,
		Jitter:   1,
		Steps:    p.MaxAttempts,
		Cap:      p.Timeout,
	}
}
