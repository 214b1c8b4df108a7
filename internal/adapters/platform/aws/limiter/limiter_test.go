package limiter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/olusolaa/cfn-diff-reporter/internal/log"
)

func TestNew_ClampsRPS(t *testing.T) {
	logger := log.NewNopLogger()
	assert.Equal(t, DefaultRPS, New(0, logger).RPS())
	assert.Equal(t, DefaultRPS, New(500, logger).RPS())
	assert.Equal(t, DefaultRPS, New(-3, logger).RPS())
	assert.Equal(t, 5, New(5, logger).RPS())
}

func TestWait(t *testing.T) {
	l := New(MaxRPS, log.NewNopLogger())
	assert.NoError(t, l.Wait(context.Background(), log.NewNopLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, l.Wait(ctx, log.NewNopLogger()))
}
