package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VaitaR/chainscan/pkg/common/types"
)

func TestExecuteSucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Policy{InitialInterval: time.Millisecond}.Execute(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &types.Error{Kind: types.KindTransport, Message: "reset"}
		}
		return nil
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecuteFailsFastOnPermanent(t *testing.T) {
	calls := 0
	providerErr := &types.Error{Kind: types.KindProvider, Message: "Invalid API Key"}
	err := Policy{InitialInterval: time.Millisecond}.Execute(context.Background(), func() error {
		calls++
		return providerErr
	}, nil)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, types.IsKind(err, types.KindProvider))
}

func TestExecuteRespectsAttemptCap(t *testing.T) {
	calls := 0
	err := Policy{InitialInterval: time.Millisecond, MaxAttempts: 3}.Execute(context.Background(), func() error {
		calls++
		return &types.Error{Kind: types.KindRateLimited}
	}, nil)
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, types.IsKind(err, types.KindRateLimited))
}

func TestExecuteHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := Policy{InitialInterval: time.Hour}.Execute(ctx, func() error {
		calls++
		return &types.Error{Kind: types.KindTransport}
	}, nil)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestCustomClassifier(t *testing.T) {
	calls := 0
	alwaysFail := func(error) Outcome { return Fail }
	err := Policy{InitialInterval: time.Millisecond}.Execute(context.Background(), func() error {
		calls++
		return errors.New("anything")
	}, alwaysFail)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestOnRetryCallback(t *testing.T) {
	notified := 0
	p := Policy{
		InitialInterval: time.Millisecond,
		MaxAttempts:     3,
		OnRetry:         func(error, time.Duration) { notified++ },
	}
	_ = p.Execute(context.Background(), func() error {
		return &types.Error{Kind: types.KindTransport}
	}, nil)
	assert.Equal(t, 2, notified)
}

func TestDefaultClassifier(t *testing.T) {
	assert.Equal(t, Retry, DefaultClassifier(&types.Error{Kind: types.KindTransport}))
	assert.Equal(t, Retry, DefaultClassifier(&types.Error{Kind: types.KindRateLimited}))
	assert.Equal(t, Fail, DefaultClassifier(&types.Error{Kind: types.KindProvider}))
	assert.Equal(t, Fail, DefaultClassifier(&types.Error{Kind: types.KindParse}))
	assert.Equal(t, Fail, DefaultClassifier(errors.New("plain")))
}
